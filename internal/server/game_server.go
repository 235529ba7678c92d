package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"missiledefence/pkg/protocol"
)

// GameServer 游戏服务器：每个连接拥有独立的一局游戏
type GameServer struct {
	cfg     AppConfig
	manager *SessionManager

	// 网络
	listener ServerListener
	http     *http.Server

	// 控制
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
	ready    chan struct{}
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg AppConfig) *GameServer {
	cfg = cfg.Sanitize()
	ctx, cancel := context.WithCancel(context.Background())

	return &GameServer{
		cfg:      cfg,
		manager:  NewSessionManager(ctx, cfg),
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
		ready:    make(chan struct{}),
	}
}

// Start 启动服务器，阻塞直到 Shutdown
func (s *GameServer) Start() error {
	listener, err := newListener(s.cfg.Transport, s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.listener = listener

	log.Info("服务器监听中", "addr", listener.Addr(), "transport", s.cfg.Transport, "tps", s.cfg.TickRate)

	if s.cfg.WSAddr != "" {
		wsListener, err := net.Listen("tcp", s.cfg.WSAddr)
		if err != nil {
			listener.Close()
			return fmt.Errorf("WebSocket 监听失败: %w", err)
		}
		s.http = &http.Server{Handler: s.wsHandler(), ReadHeaderTimeout: 5 * time.Second}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.http.Serve(wsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("WebSocket 服务异常退出", "err", err)
			}
		}()
		log.Info("WebSocket 入口", "addr", wsListener.Addr())
	}

	s.manager.Run()

	// 启动连接接受循环
	s.wg.Add(1)
	go s.acceptLoop()

	close(s.ready)

	// 等待关闭信号
	<-s.shutdown
	return nil
}

// Ready 监听完成后可读
func (s *GameServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr 实际监听地址，Start 之前为 nil
func (s *GameServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown 优雅关闭服务器
func (s *GameServer) Shutdown() {
	s.once.Do(func() {
		log.Info("正在关闭服务器...")

		// 取消上下文
		s.cancel()

		// 关闭监听器
		if s.listener != nil {
			s.listener.Close()
		}
		if s.http != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = s.http.Shutdown(ctx)
			cancel()
		}

		s.manager.Shutdown()

		// 关闭 shutdown 通道
		close(s.shutdown)

		// 等待所有 goroutine 结束
		s.wg.Wait()

		log.Info("服务器已关闭")
	})
}

// acceptLoop 接受客户端连接
func (s *GameServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				log.Debug("停止接受新连接")
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("接受连接失败", "err", err)
			continue
		}

		log.Info("新连接", "remote", conn.RemoteAddr())
		s.serve(newStreamTransport(conn), protocol.ProtoCodec{})
	}
}

// serve 为传输层连接启动处理协程
func (s *GameServer) serve(t Transport, codec protocol.Codec) {
	select {
	case <-s.ctx.Done():
		_ = t.Close()
		return
	default:
	}

	connection := NewConnection(t, codec, s)
	s.wg.Add(1)
	go connection.Handle(s.ctx, &s.wg)
}

// handleHello 处理握手：新建或恢复会话
func (s *GameServer) handleHello(conn *Connection, hello *HelloEvent) error {
	_, err := s.manager.Open(conn, hello)
	return err
}

// Sessions 当前会话统计
func (s *GameServer) Sessions() []SessionStats {
	return s.manager.Stats()
}
