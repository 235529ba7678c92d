package protocol

import "fmt"

// ========== 辅助构造方法 ==========

// NewPacket 把消息编码为负载并装入信封
func NewPacket(t MessageType, msg Message) *Packet {
	var payload []byte
	if msg != nil {
		payload = msg.Marshal()
	}
	return &Packet{Type: t, Payload: payload}
}

// NewHelloPacket 构造握手消息包
func NewHelloPacket(name, token string) *Packet {
	return NewPacket(MessageTypeHello, &Hello{Name: name, Token: token})
}

// NewInputPacket 构造输入消息包
func NewInputPacket(input *Input) *Packet {
	return NewPacket(MessageTypeInput, input)
}

// NewPingPacket 构造心跳消息包
func NewPingPacket(clientTime int64) *Packet {
	return NewPacket(MessageTypePing, &Ping{ClientTime: clientTime})
}

// ========== 服务器消息构造 ==========

// NewWelcomePacket 构造握手响应消息包
func NewWelcomePacket(w *Welcome) *Packet {
	return NewPacket(MessageTypeWelcome, w)
}

// NewSnapshotPacket 构造状态消息包
func NewSnapshotPacket(s *Snapshot) *Packet {
	return NewPacket(MessageTypeSnapshot, s)
}

// NewPongPacket 构造心跳响应消息包
func NewPongPacket(clientTime, serverTime int64, serverTick uint64) *Packet {
	return NewPacket(MessageTypePong, &Pong{
		ClientTime: clientTime,
		ServerTime: serverTime,
		ServerTick: serverTick,
	})
}

// NewErrorPacket 构造错误消息包
func NewErrorPacket(format string, args ...any) *Packet {
	return NewPacket(MessageTypeError, &ErrorMessage{Message: fmt.Sprintf(format, args...)})
}

// ========== 序列化与反序列化 ==========

// MarshalPacket 将 Packet 对象转换为字节切片
func MarshalPacket(pkt *Packet) []byte {
	return pkt.Marshal()
}

// UnmarshalPacket 将字节切片转换为 Packet 对象
func UnmarshalPacket(data []byte) (*Packet, error) {
	pkt := &Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return nil, err
	}
	if pkt.Type == MessageTypeUnspecified {
		return nil, fmt.Errorf("%w: unspecified", ErrUnexpectedType)
	}
	return pkt, nil
}

// ========== 消息解析辅助 ==========

// parse 检查类型后解码负载
func parse[T any, PT interface {
	*T
	Message
}](pkt *Packet, want MessageType) (PT, error) {
	msg := PT(new(T))
	if err := (ProtoCodec{}).Parse(pkt, want, msg); err != nil {
		var zero PT
		return zero, err
	}
	return msg, nil
}

// ParseHello 从 Packet 中解析 Hello
func ParseHello(pkt *Packet) (*Hello, error) {
	return parse[Hello](pkt, MessageTypeHello)
}

// ParseWelcome 从 Packet 中解析 Welcome
func ParseWelcome(pkt *Packet) (*Welcome, error) {
	return parse[Welcome](pkt, MessageTypeWelcome)
}

// ParseInput 从 Packet 中解析 Input
func ParseInput(pkt *Packet) (*Input, error) {
	return parse[Input](pkt, MessageTypeInput)
}

// ParseSnapshot 从 Packet 中解析 Snapshot
func ParseSnapshot(pkt *Packet) (*Snapshot, error) {
	return parse[Snapshot](pkt, MessageTypeSnapshot)
}

// ParsePing 从 Packet 中解析 Ping
func ParsePing(pkt *Packet) (*Ping, error) {
	return parse[Ping](pkt, MessageTypePing)
}

// ParsePong 从 Packet 中解析 Pong
func ParsePong(pkt *Packet) (*Pong, error) {
	return parse[Pong](pkt, MessageTypePong)
}

// ParseError 从 Packet 中解析 ErrorMessage
func ParseError(pkt *Packet) (*ErrorMessage, error) {
	return parse[ErrorMessage](pkt, MessageTypeError)
}
