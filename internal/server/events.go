package server

import "missiledefence/pkg/protocol"

type EventKind int

const (
	EventUnknown EventKind = iota
	EventHello
	EventInput
	EventPing
	EventPong
)

func (k EventKind) String() string {
	switch k {
	case EventHello:
		return "hello"
	case EventInput:
		return "input"
	case EventPing:
		return "ping"
	case EventPong:
		return "pong"
	default:
		return "unknown"
	}
}

type HelloEvent struct {
	Name  string
	Token string // 非空时尝试恢复断线会话
}

// ServerEvent 服务器收到的一条客户端消息
type ServerEvent struct {
	Kind  EventKind
	Hello *HelloEvent
	Input *protocol.Input
	Ping  *protocol.Ping
	Pong  *protocol.Pong
}
