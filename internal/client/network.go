package client

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
	kcp "github.com/xtaci/kcp-go/v5"

	"missiledefence/pkg/core"
	"missiledefence/pkg/protocol"
)

const (
	snapshotQueueSize = 256
	sendQueueSize     = 256
	connectTimeout    = 5 * time.Second
	pingInterval      = 2 * time.Second
	writeTimeout      = time.Second
)

// ErrNotConnected 连接未建立或已断开
var ErrNotConnected = errors.New("未连接到服务器")

// NetworkClient 网络客户端：握手、收发帧、心跳
type NetworkClient struct {
	conn       net.Conn
	serverAddr string
	proto      string
	name       string

	// 会话信息
	welcome *protocol.Welcome

	// 网络
	connected atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// 消息队列
	snapshotChan chan *protocol.Snapshot
	welcomeChan  chan *protocol.Welcome
	errChan      chan error
	dropped      atomic.Bool // 有快照因队列满被丢弃

	// 发送队列
	inputSeq uint32
	sendChan chan []byte

	rtt atomic.Int64
}

// NewNetworkClient 创建网络客户端
func NewNetworkClient(serverAddr, proto, name string) *NetworkClient {
	return &NetworkClient{
		serverAddr: serverAddr,
		proto:      proto,
		name:       name,
	}
}

// Connect 连接到服务器并完成握手。token 非空时请求恢复之前的会话。
func (nc *NetworkClient) Connect(token string) error {
	log.Info("连接到服务器", "addr", nc.serverAddr, "proto", nc.proto)

	conn, err := nc.dial()
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}

	nc.ctx, nc.cancel = context.WithCancel(context.Background())
	nc.conn = conn
	nc.snapshotChan = make(chan *protocol.Snapshot, snapshotQueueSize)
	nc.welcomeChan = make(chan *protocol.Welcome, 1)
	nc.errChan = make(chan error, 1)
	nc.sendChan = make(chan []byte, sendQueueSize)
	nc.inputSeq = 0
	nc.dropped.Store(false)
	nc.connected.Store(true)

	// 启动接收循环
	nc.wg.Add(1)
	go nc.receiveLoop()

	// 启动发送循环
	nc.wg.Add(1)
	go nc.sendLoop()

	if err := nc.sendPacket(protocol.NewHelloPacket(nc.name, token)); err != nil {
		nc.Close()
		return fmt.Errorf("发送握手失败: %w", err)
	}

	// 等待握手响应
	select {
	case w := <-nc.welcomeChan:
		nc.welcome = w
		log.Info("握手成功", "session", w.SessionID, "resumed", w.Resumed, "seed", w.Seed, "tps", w.TPS)
	case err := <-nc.errChan:
		nc.Close()
		return err
	case <-time.After(10 * time.Second):
		nc.Close()
		return errors.New("等待握手响应超时")
	}

	nc.wg.Add(1)
	go nc.pingLoop()
	return nil
}

// Reconnect 断线后用上次的 Token 重新连接
func (nc *NetworkClient) Reconnect() error {
	token := ""
	if nc.welcome != nil {
		token = nc.welcome.Token
	}
	nc.Close()
	return nc.Connect(token)
}

func (nc *NetworkClient) dial() (net.Conn, error) {
	switch nc.proto {
	case "", "tcp":
		return net.DialTimeout("tcp", nc.serverAddr, connectTimeout)
	case "kcp":
		conn, err := kcp.DialWithOptions(nc.serverAddr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		conn.SetStreamMode(true)
		conn.SetNoDelay(1, 10, 2, 1)
		return conn, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", nc.proto)
	}
}

// Close 关闭连接并等待收发协程结束
func (nc *NetworkClient) Close() {
	if nc.cancel == nil {
		return
	}
	nc.connected.Store(false)
	nc.cancel()
	if nc.conn != nil {
		nc.conn.Close()
	}
	nc.wg.Wait()
	nc.cancel = nil
	log.Debug("网络客户端已关闭")
}

// IsConnected 检查是否已连接
func (nc *NetworkClient) IsConnected() bool {
	return nc.connected.Load()
}

// Welcome 最近一次握手响应
func (nc *NetworkClient) Welcome() *protocol.Welcome {
	return nc.welcome
}

// RTT 最近一次心跳往返时间
func (nc *NetworkClient) RTT() time.Duration {
	return time.Duration(nc.rtt.Load()) * time.Millisecond
}

// Err 非阻塞读取连接错误
func (nc *NetworkClient) Err() error {
	if nc.errChan == nil {
		return nil
	}
	select {
	case err := <-nc.errChan:
		return err
	default:
		return nil
	}
}

// ========== 消息接收 ==========

// receiveLoop 接收循环
func (nc *NetworkClient) receiveLoop() {
	defer nc.wg.Done()
	defer nc.connected.Store(false)

	for {
		data, err := protocol.ReadFrame(nc.conn, protocol.MaxOutboundFrame)
		if err != nil {
			select {
			case <-nc.ctx.Done():
			default:
				if errors.Is(err, io.EOF) {
					err = errors.New("服务器关闭了连接")
				}
				nc.reportError(fmt.Errorf("读取数据失败: %w", err))
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		if err := nc.handleMessage(data); err != nil {
			log.Warn("处理消息失败", "err", err)
		}
	}
}

func (nc *NetworkClient) reportError(err error) {
	select {
	case nc.errChan <- err:
	default:
	}
}

// handleMessage 处理接收到的消息
func (nc *NetworkClient) handleMessage(data []byte) error {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeSnapshot:
		snap, err := protocol.ParseSnapshot(pkt)
		if err != nil {
			nc.dropped.Store(true)
			return err
		}
		select {
		case nc.snapshotChan <- snap:
		default:
			// 队列满，丢弃的增量只能靠关键帧弥补
			nc.dropped.Store(true)
		}

	case protocol.MessageTypeWelcome:
		w, err := protocol.ParseWelcome(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.welcomeChan <- w:
		default:
		}

	case protocol.MessageTypePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return err
		}
		return nc.sendPacket(protocol.NewPongPacket(ping.ClientTime, time.Now().UnixMilli(), 0))

	case protocol.MessageTypePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return err
		}
		if pong.ClientTime > 0 {
			nc.rtt.Store(time.Now().UnixMilli() - pong.ClientTime)
		}

	case protocol.MessageTypeError:
		msg, err := protocol.ParseError(pkt)
		if err != nil {
			return err
		}
		nc.reportError(fmt.Errorf("服务器拒绝: %s", msg.Message))

	default:
		return fmt.Errorf("未知消息类型: %s", pkt.Type)
	}

	return nil
}

// ========== 消息发送 ==========

// sendLoop 发送循环
func (nc *NetworkClient) sendLoop() {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.ctx.Done():
			return

		case data := <-nc.sendChan:
			_ = nc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := protocol.WriteFrame(nc.conn, data); err != nil {
				nc.reportError(fmt.Errorf("发送数据失败: %w", err))
				nc.connected.Store(false)
				return
			}
		}
	}
}

func (nc *NetworkClient) pingLoop() {
	defer nc.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case <-ticker.C:
			_ = nc.sendPacket(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

// sendPacket 发送消息
func (nc *NetworkClient) sendPacket(pkt *protocol.Packet) error {
	if !nc.IsConnected() {
		return ErrNotConnected
	}
	select {
	case nc.sendChan <- protocol.MarshalPacket(pkt):
		return nil
	default:
		return errors.New("发送队列满")
	}
}

// ========== 输入 ==========

// SendInput 发送一帧输入并返回序号，requestKeyframe 要求服务器下发完整地形
func (nc *NetworkClient) SendInput(in core.Input, requestKeyframe bool) uint32 {
	nc.inputSeq++
	seq := nc.inputSeq

	msg := protocol.CoreInputToProto(in, seq)
	msg.RequestKeyframe = requestKeyframe
	if err := nc.sendPacket(protocol.NewInputPacket(msg)); err != nil && !errors.Is(err, ErrNotConnected) {
		log.Warn("发送输入失败", "seq", seq, "err", err)
	}
	return seq
}

// ========== 状态接收 ==========

// ReceiveSnapshots 按到达顺序取出所有待处理的快照（非阻塞）
func (nc *NetworkClient) ReceiveSnapshots() []*protocol.Snapshot {
	var out []*protocol.Snapshot
	for {
		select {
		case s := <-nc.snapshotChan:
			out = append(out, s)
		default:
			return out
		}
	}
}

// TakeDropped 返回并清除快照丢弃标记
func (nc *NetworkClient) TakeDropped() bool {
	return nc.dropped.Swap(false)
}
