package server

import (
	"fmt"

	"missiledefence/pkg/protocol"
)

// DecodePacket 用连接协商的编解码器解析服务器收到的数据包
func DecodePacket(codec protocol.Codec, data []byte) (*ServerEvent, error) {
	pkt, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeHello:
		var hello protocol.Hello
		if err := codec.Parse(pkt, pkt.Type, &hello); err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind:  EventHello,
			Hello: &HelloEvent{Name: hello.Name, Token: hello.Token},
		}, nil

	case protocol.MessageTypeInput:
		input := &protocol.Input{}
		if err := codec.Parse(pkt, pkt.Type, input); err != nil {
			return nil, err
		}
		return &ServerEvent{Kind: EventInput, Input: input}, nil

	case protocol.MessageTypePing:
		ping := &protocol.Ping{}
		if err := codec.Parse(pkt, pkt.Type, ping); err != nil {
			return nil, err
		}
		return &ServerEvent{Kind: EventPing, Ping: ping}, nil

	case protocol.MessageTypePong:
		pong := &protocol.Pong{}
		if err := codec.Parse(pkt, pkt.Type, pong); err != nil {
			return nil, err
		}
		return &ServerEvent{Kind: EventPong, Pong: pong}, nil

	default:
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}
