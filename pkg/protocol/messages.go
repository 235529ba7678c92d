package protocol

import "fmt"

// MessageType 数据包类型
type MessageType int32

const (
	MessageTypeUnspecified MessageType = iota
	MessageTypeHello                   // C→S 建立或恢复会话
	MessageTypeWelcome                 // S→C 会话信息与令牌
	MessageTypeInput                   // C→S 一帧输入
	MessageTypeSnapshot                // S→C 一帧状态
	MessageTypePing
	MessageTypePong
	MessageTypeError // S→C 错误说明
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeHello:
		return "hello"
	case MessageTypeWelcome:
		return "welcome"
	case MessageTypeInput:
		return "input"
	case MessageTypeSnapshot:
		return "snapshot"
	case MessageTypePing:
		return "ping"
	case MessageTypePong:
		return "pong"
	case MessageTypeError:
		return "error"
	}
	return fmt.Sprintf("unspecified(%d)", int32(t))
}

// Message 可以编码为 protobuf 线格式的消息
type Message interface {
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Packet 外层信封：类型 + 负载
type Packet struct {
	Type    MessageType `msgpack:"t"`
	Payload []byte      `msgpack:"p"`
}

func (m *Packet) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, int32(m.Type))
	b = appendBytes(b, 2, m.Payload)
	return b
}

func (m *Packet) Unmarshal(data []byte) error {
	*m = Packet{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.Type = MessageType(f.int32())
		case 2:
			m.Payload = f.clone()
		}
		return nil
	})
}

// Hello 客户端握手。Token 非空时尝试恢复已断开的会话。
type Hello struct {
	Name  string `msgpack:"name"`
	Token string `msgpack:"token"`
}

func (m *Hello) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Token)
	return b
}

func (m *Hello) Unmarshal(data []byte) error {
	*m = Hello{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.Name = f.str()
		case 2:
			m.Token = f.str()
		}
		return nil
	})
}

// Welcome 服务器握手响应
type Welcome struct {
	SessionID string `msgpack:"sid"`
	Token     string `msgpack:"token"`
	TPS       int32  `msgpack:"tps"`
	Width     int32  `msgpack:"w"`
	Height    int32  `msgpack:"h"`
	Resumed   bool   `msgpack:"resumed"`
	Seed      int64  `msgpack:"seed"`
}

func (m *Welcome) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.SessionID)
	b = appendString(b, 2, m.Token)
	b = appendInt32(b, 3, m.TPS)
	b = appendInt32(b, 4, m.Width)
	b = appendInt32(b, 5, m.Height)
	b = appendBool(b, 6, m.Resumed)
	b = appendInt64(b, 7, m.Seed)
	return b
}

func (m *Welcome) Unmarshal(data []byte) error {
	*m = Welcome{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.SessionID = f.str()
		case 2:
			m.Token = f.str()
		case 3:
			m.TPS = f.int32()
		case 4:
			m.Width = f.int32()
		case 5:
			m.Height = f.int32()
		case 6:
			m.Resumed = f.boolean()
		case 7:
			m.Seed = f.int64()
		}
		return nil
	})
}

// Input 一帧输入
type Input struct {
	Seq             uint32  `msgpack:"seq"`
	AimX            float64 `msgpack:"ax"`
	AimY            float64 `msgpack:"ay"`
	Fire            bool    `msgpack:"fire"`
	FireHeld        bool    `msgpack:"held"`
	ToggleAutoAim   bool    `msgpack:"auto"`
	Reset           bool    `msgpack:"reset"`
	BoostShield     bool    `msgpack:"boost"`
	RequestKeyframe bool    `msgpack:"key"`
}

func (m *Input) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.Seq))
	b = appendDouble(b, 2, m.AimX)
	b = appendDouble(b, 3, m.AimY)
	b = appendBool(b, 4, m.Fire)
	b = appendBool(b, 5, m.FireHeld)
	b = appendBool(b, 6, m.ToggleAutoAim)
	b = appendBool(b, 7, m.Reset)
	b = appendBool(b, 8, m.BoostShield)
	b = appendBool(b, 9, m.RequestKeyframe)
	return b
}

func (m *Input) Unmarshal(data []byte) error {
	*m = Input{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.Seq = f.uint32()
		case 2:
			m.AimX = f.double()
		case 3:
			m.AimY = f.double()
		case 4:
			m.Fire = f.boolean()
		case 5:
			m.FireHeld = f.boolean()
		case 6:
			m.ToggleAutoAim = f.boolean()
		case 7:
			m.Reset = f.boolean()
		case 8:
			m.BoostShield = f.boolean()
		case 9:
			m.RequestKeyframe = f.boolean()
		}
		return nil
	})
}

// Vec 二维坐标
type Vec struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func (m *Vec) Marshal() []byte {
	var b []byte
	b = appendDouble(b, 1, m.X)
	b = appendDouble(b, 2, m.Y)
	return b
}

func (m *Vec) Unmarshal(data []byte) error {
	*m = Vec{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.X = f.double()
		case 2:
			m.Y = f.double()
		}
		return nil
	})
}

// ProjectileKind 弹体种类（0 保留为未指定）
type ProjectileKind int32

const (
	ProjectileKindUnspecified ProjectileKind = iota
	ProjectileKindMissile
	ProjectileKindCannonShot
	ProjectileKindSupportCollapse
)

// ProjectileState 单个弹体
type ProjectileState struct {
	ID          uint64         `msgpack:"id"`
	Kind        ProjectileKind `msgpack:"k"`
	Pos         Vec            `msgpack:"pos"`
	DrawRadius  float64        `msgpack:"dr"`
	Exploding   bool           `msgpack:"ex"`
	BlastRadius float64        `msgpack:"br"`
	Progress    float64        `msgpack:"pg"`
	Trail       []Vec          `msgpack:"tr"`
}

func (m *ProjectileState) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, m.ID)
	b = appendInt32(b, 2, int32(m.Kind))
	b = appendMessage(b, 3, m.Pos.Marshal())
	b = appendDouble(b, 4, m.DrawRadius)
	b = appendBool(b, 5, m.Exploding)
	b = appendDouble(b, 6, m.BlastRadius)
	b = appendDouble(b, 7, m.Progress)
	for i := range m.Trail {
		b = appendMessage(b, 8, m.Trail[i].Marshal())
	}
	return b
}

func (m *ProjectileState) Unmarshal(data []byte) error {
	*m = ProjectileState{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.u64
		case 2:
			m.Kind = ProjectileKind(f.int32())
		case 3:
			return m.Pos.Unmarshal(f.bytes)
		case 4:
			m.DrawRadius = f.double()
		case 5:
			m.Exploding = f.boolean()
		case 6:
			m.BlastRadius = f.double()
		case 7:
			m.Progress = f.double()
		case 8:
			var v Vec
			if err := v.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Trail = append(m.Trail, v)
		}
		return nil
	})
}

// ShieldState 护盾
type ShieldState struct {
	Center     Vec     `msgpack:"c"`
	HalfWidth  float64 `msgpack:"hw"`
	HalfHeight float64 `msgpack:"hh"`
	Online     bool    `msgpack:"on"`
	Health     int32   `msgpack:"hp"`
	Brightness int32   `msgpack:"br"`
}

func (m *ShieldState) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, m.Center.Marshal())
	b = appendDouble(b, 2, m.HalfWidth)
	b = appendDouble(b, 3, m.HalfHeight)
	b = appendBool(b, 4, m.Online)
	b = appendInt32(b, 5, m.Health)
	b = appendInt32(b, 6, m.Brightness)
	return b
}

func (m *ShieldState) Unmarshal(data []byte) error {
	*m = ShieldState{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			return m.Center.Unmarshal(f.bytes)
		case 2:
			m.HalfWidth = f.double()
		case 3:
			m.HalfHeight = f.double()
		case 4:
			m.Online = f.boolean()
		case 5:
			m.Health = f.int32()
		case 6:
			m.Brightness = f.int32()
		}
		return nil
	})
}

// CannonState 加农炮
type CannonState struct {
	Base      Vec     `msgpack:"b"`
	Direction Vec     `msgpack:"d"`
	Length    float64 `msgpack:"l"`
	Destroyed bool    `msgpack:"x"`
}

func (m *CannonState) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, m.Base.Marshal())
	b = appendMessage(b, 2, m.Direction.Marshal())
	b = appendDouble(b, 3, m.Length)
	b = appendBool(b, 4, m.Destroyed)
	return b
}

func (m *CannonState) Unmarshal(data []byte) error {
	*m = CannonState{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			return m.Base.Unmarshal(f.bytes)
		case 2:
			return m.Direction.Unmarshal(f.bytes)
		case 3:
			m.Length = f.double()
		case 4:
			m.Destroyed = f.boolean()
		}
		return nil
	})
}

// CellChange 单个地形格子的变化
type CellChange struct {
	X        int32 `msgpack:"x"`
	Y        int32 `msgpack:"y"`
	Occupied bool  `msgpack:"o"`
}

func (m *CellChange) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.X)
	b = appendInt32(b, 2, m.Y)
	b = appendBool(b, 3, m.Occupied)
	return b
}

func (m *CellChange) Unmarshal(data []byte) error {
	*m = CellChange{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.X = f.int32()
		case 2:
			m.Y = f.int32()
		case 3:
			m.Occupied = f.boolean()
		}
		return nil
	})
}

// Snapshot 一帧的完整状态。Terrain 为按位打包的完整地形，仅关键帧携带。
type Snapshot struct {
	Tick         uint64            `msgpack:"tick"`
	Score        int64             `msgpack:"score"`
	AutoAim      bool              `msgpack:"auto"`
	CityLeft     float64           `msgpack:"city"`
	Reset        bool              `msgpack:"reset"`
	Width        int32             `msgpack:"w"`
	Height       int32             `msgpack:"h"`
	Projectiles  []ProjectileState `msgpack:"projectiles"`
	Shield       ShieldState       `msgpack:"shield"`
	Cannon       CannonState       `msgpack:"cannon"`
	Terrain      []byte            `msgpack:"terrain"`
	Changes      []CellChange      `msgpack:"changes"`
	LastInputSeq uint32            `msgpack:"seq"`
}

func (m *Snapshot) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, m.Tick)
	b = appendInt64(b, 2, m.Score)
	b = appendBool(b, 3, m.AutoAim)
	b = appendDouble(b, 4, m.CityLeft)
	b = appendBool(b, 5, m.Reset)
	b = appendInt32(b, 6, m.Width)
	b = appendInt32(b, 7, m.Height)
	for i := range m.Projectiles {
		b = appendMessage(b, 8, m.Projectiles[i].Marshal())
	}
	b = appendMessage(b, 9, m.Shield.Marshal())
	b = appendMessage(b, 10, m.Cannon.Marshal())
	b = appendBytes(b, 11, m.Terrain)
	for i := range m.Changes {
		b = appendMessage(b, 12, m.Changes[i].Marshal())
	}
	b = appendVarint(b, 13, uint64(m.LastInputSeq))
	return b
}

func (m *Snapshot) Unmarshal(data []byte) error {
	*m = Snapshot{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.Tick = f.u64
		case 2:
			m.Score = f.int64()
		case 3:
			m.AutoAim = f.boolean()
		case 4:
			m.CityLeft = f.double()
		case 5:
			m.Reset = f.boolean()
		case 6:
			m.Width = f.int32()
		case 7:
			m.Height = f.int32()
		case 8:
			var p ProjectileState
			if err := p.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Projectiles = append(m.Projectiles, p)
		case 9:
			return m.Shield.Unmarshal(f.bytes)
		case 10:
			return m.Cannon.Unmarshal(f.bytes)
		case 11:
			m.Terrain = f.clone()
		case 12:
			var c CellChange
			if err := c.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Changes = append(m.Changes, c)
		case 13:
			m.LastInputSeq = f.uint32()
		}
		return nil
	})
}

// Ping 心跳请求
type Ping struct {
	ClientTime int64 `msgpack:"ct"`
}

func (m *Ping) Marshal() []byte {
	return appendInt64(nil, 1, m.ClientTime)
}

func (m *Ping) Unmarshal(data []byte) error {
	*m = Ping{}
	return rangeFields(data, func(f field) error {
		if f.num == 1 {
			m.ClientTime = f.int64()
		}
		return nil
	})
}

// Pong 心跳响应
type Pong struct {
	ClientTime int64  `msgpack:"ct"`
	ServerTime int64  `msgpack:"st"`
	ServerTick uint64 `msgpack:"tick"`
}

func (m *Pong) Marshal() []byte {
	var b []byte
	b = appendInt64(b, 1, m.ClientTime)
	b = appendInt64(b, 2, m.ServerTime)
	b = appendVarint(b, 3, m.ServerTick)
	return b
}

func (m *Pong) Unmarshal(data []byte) error {
	*m = Pong{}
	return rangeFields(data, func(f field) error {
		switch f.num {
		case 1:
			m.ClientTime = f.int64()
		case 2:
			m.ServerTime = f.int64()
		case 3:
			m.ServerTick = f.u64
		}
		return nil
	})
}

// ErrorMessage 服务器拒绝请求时的说明
type ErrorMessage struct {
	Message string `msgpack:"msg"`
}

func (m *ErrorMessage) Marshal() []byte {
	return appendString(nil, 1, m.Message)
}

func (m *ErrorMessage) Unmarshal(data []byte) error {
	*m = ErrorMessage{}
	return rangeFields(data, func(f field) error {
		if f.num == 1 {
			m.Message = f.str()
		}
		return nil
	})
}
