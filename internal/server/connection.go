package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"missiledefence/pkg/protocol"
)

const sendQueueSize = 256

var (
	ErrSendQueueFull    = errors.New("发送队列满")
	ErrConnectionClosed = errors.New("连接已关闭")
)

// Connection 表示一个客户端连接，握手后绑定到一个会话
type Connection struct {
	transport Transport
	codec     protocol.Codec
	server    *GameServer
	session   atomic.Pointer[Session]
	limiter   *rate.Limiter
	logger    *log.Logger

	// 发送队列
	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64
	dropped      atomic.Int64
}

// NewConnection 创建新连接，连接到服务器上
func NewConnection(transport Transport, codec protocol.Codec, server *GameServer) *Connection {
	c := &Connection{
		transport: transport,
		codec:     codec,
		server:    server,
		limiter:   rate.NewLimiter(rate.Limit(server.cfg.InputRate), server.cfg.InputBurst),
		logger:    log.With("remote", transport.RemoteAddr()),
		sendChan:  make(chan []byte, sendQueueSize),
		closeCh:   make(chan struct{}),
	}
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle 处理连接，直到上下文取消或连接关闭
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	c.logger.Debug("连接处理开始", "codec", c.codec.Name())

	wg.Add(1)
	go c.startHeartbeat(ctx, wg)

	// 启动发送循环
	wg.Add(1)
	go c.sendLoop(ctx, wg)

	// 启动接收循环
	wg.Add(1)
	go c.receiveLoop(ctx, wg)

	// 等待上下文取消或连接关闭
	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}

	c.Close()
}

// Close 关闭连接，并让会话进入断线保留状态
func (c *Connection) Close() {
	c.closeWithNotify(true)
}

// CloseWithoutNotify 关闭连接但不通知会话（会话已被新连接接管或正在关闭）
func (c *Connection) CloseWithoutNotify() {
	c.closeWithNotify(false)
}

func (c *Connection) closeWithNotify(notify bool) {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	close(c.closeCh)
	close(c.sendChan)
	c.closeMu.Unlock()

	_ = c.transport.Close()

	if notify {
		if s := c.Session(); s != nil {
			s.Detach(c)
		}
	}

	if s := c.Session(); s != nil {
		c.logger.Info("连接已关闭", "session", s.ID(), "dropped", c.dropped.Load())
	} else {
		c.logger.Info("连接已关闭")
	}
}

// Done 连接关闭后可读
func (c *Connection) Done() <-chan struct{} {
	return c.closeCh
}

// Send 发送数据（异步），队列满时立即返回 ErrSendQueueFull
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		c.dropped.Add(1)
		return ErrSendQueueFull
	}
}

// SendPacket 用连接的编解码器编码后发送
func (c *Connection) SendPacket(t protocol.MessageType, msg protocol.Message) error {
	data, err := c.codec.Encode(t, msg)
	if err != nil {
		return err
	}
	if len(data) > protocol.MaxOutboundFrame {
		return fmt.Errorf("%w: %s %d bytes", protocol.ErrFrameTooLarge, t, len(data))
	}
	return c.Send(data)
}

// sendLoop 发送循环
func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.sendChan:
			if !ok {
				// 通道已关闭
				return
			}
			if err := c.transport.WriteFrame(data); err != nil {
				c.logger.Warn("发送数据失败", "err", err)
				c.Close()
				return
			}
		}
	}
}

// receiveLoop 接收循环
func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := c.transport.ReadFrame()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				c.logger.Info("读取超时")
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				c.logger.Warn("读取数据失败", "err", err)
			}
			c.Close()
			return
		}

		if len(data) == 0 {
			c.logger.Debug("收到空消息")
			continue
		}

		c.onMessageReceived()
		if err := c.handleMessage(data); err != nil {
			c.logger.Warn("处理消息失败", "err", err)
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(c.codec, data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventHello:
		if c.Session() != nil {
			return fmt.Errorf("重复握手")
		}
		if err := c.server.handleHello(c, event.Hello); err != nil {
			_ = c.SendPacket(protocol.MessageTypeError, &protocol.ErrorMessage{Message: err.Error()})
			return fmt.Errorf("处理握手失败: %w", err)
		}

	case EventInput:
		s := c.Session()
		if s == nil {
			return fmt.Errorf("握手前收到输入")
		}
		if !c.limiter.Allow() {
			c.logger.Debug("输入过于频繁，丢弃", "seq", event.Input.Seq)
			return nil
		}
		s.EnqueueInput(event.Input)

	case EventPing:
		var tick uint64
		if s := c.Session(); s != nil {
			tick = s.Tick()
		}
		return c.SendPacket(protocol.MessageTypePong, &protocol.Pong{
			ClientTime: event.Ping.ClientTime,
			ServerTime: time.Now().UnixMilli(),
			ServerTick: tick,
		})

	case EventPong:
		c.handlePong(event.Pong)

	default:
		return fmt.Errorf("未知消息类型")
	}

	return nil
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	if s := c.Session(); s != nil {
		return fmt.Sprintf("Connection{%s, %s}", s.ID(), c.transport.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%s}", c.transport.RemoteAddr())
}

// Session 返回已绑定的会话，握手前为 nil
func (c *Connection) Session() *Session {
	return c.session.Load()
}

func (c *Connection) bind(s *Session) {
	c.session.Store(s)
}

// RTT 最近一次心跳往返时间
func (c *Connection) RTT() time.Duration {
	return time.Duration(c.rtt.Load()) * time.Millisecond
}

const (
	heartbeatInterval = 5 * time.Second
	heartbeatTimeout  = 15 * time.Second
)

func (c *Connection) startHeartbeat(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if !lastRecv.IsZero() && time.Since(lastRecv) > heartbeatTimeout {
				c.logger.Info("心跳超时")
				c.Close()
				return
			}
			_ = c.SendPacket(protocol.MessageTypePing, &protocol.Ping{ClientTime: time.Now().UnixMilli()})
		}
	}
}

func (c *Connection) handlePong(pong *protocol.Pong) {
	if pong == nil || pong.ClientTime <= 0 {
		return
	}
	rtt := time.Now().UnixMilli() - pong.ClientTime
	c.rtt.Store(rtt)
}

func (c *Connection) onMessageReceived() {
	c.lastRecvTime.Store(time.Now())
}
