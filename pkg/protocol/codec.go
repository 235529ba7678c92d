package protocol

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnexpectedType 数据包类型与期望不符
var ErrUnexpectedType = errors.New("protocol: unexpected message type")

// Codec 数据包编解码器。TCP/KCP 固定使用 protobuf，WebSocket 客户端可以选择 msgpack。
type Codec interface {
	Name() string
	Encode(t MessageType, msg Message) ([]byte, error)
	Decode(data []byte) (*Packet, error)
	Parse(pkt *Packet, want MessageType, msg Message) error
}

// CodecByName 按名称查找编解码器，空名称返回 protobuf
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "proto", "protobuf":
		return ProtoCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("protocol: unknown codec %q", name)
}

// ProtoCodec protobuf 线格式
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "protobuf" }

func (ProtoCodec) Encode(t MessageType, msg Message) ([]byte, error) {
	pkt := NewPacket(t, msg)
	return MarshalPacket(pkt), nil
}

func (ProtoCodec) Decode(data []byte) (*Packet, error) {
	return UnmarshalPacket(data)
}

func (ProtoCodec) Parse(pkt *Packet, want MessageType, msg Message) error {
	if pkt.Type != want {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedType, pkt.Type, want)
	}
	if err := msg.Unmarshal(pkt.Payload); err != nil {
		return fmt.Errorf("parse %s: %w", want, err)
	}
	return nil
}

// MsgpackCodec 信封和负载都使用 msgpack，便于浏览器端直接解码
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(t MessageType, msg Message) ([]byte, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("msgpack encode %s: %w", t, err)
	}
	data, err := msgpack.Marshal(&Packet{Type: t, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("msgpack encode packet: %w", err)
	}
	return data, nil
}

func (MsgpackCodec) Decode(data []byte) (*Packet, error) {
	pkt := &Packet{}
	if err := msgpack.Unmarshal(data, pkt); err != nil {
		return nil, fmt.Errorf("msgpack decode packet: %w", err)
	}
	return pkt, nil
}

func (MsgpackCodec) Parse(pkt *Packet, want MessageType, msg Message) error {
	if pkt.Type != want {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedType, pkt.Type, want)
	}
	if err := msgpack.Unmarshal(pkt.Payload, msg); err != nil {
		return fmt.Errorf("msgpack parse %s: %w", want, err)
	}
	return nil
}
