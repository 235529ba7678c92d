package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"missiledefence/pkg/core"
	"missiledefence/pkg/protocol"
)

// ErrSessionClosed 会话已关闭
var ErrSessionClosed = errors.New("会话已关闭")

// Session 一局独立的游戏。会话协程独占 game，输入通过通道送达，
// 每帧最多应用一次最新输入，然后把快照推送给当前连接。
// 连接断开后会话暂停并保留，直到在有效期内被恢复或被清理。
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	id       string
	seed     int64
	game     *core.Game
	tickRate int
	logger   *log.Logger

	// 以下字段只在 Run 协程内访问
	conn         *Connection
	pending      *protocol.Input
	lastInputSeq uint32
	keyframe     bool

	tick          atomic.Uint64
	detachedSince atomic.Int64 // UnixNano，0 表示有连接

	attachCh chan attachRequest
	detachCh chan *Connection
	inputCh  chan *protocol.Input
	done     chan struct{}
}

type attachRequest struct {
	conn    *Connection
	welcome *protocol.Welcome
	respCh  chan error
}

// NewSession 创建会话，创建时处于断线状态，等待第一次 Attach
func NewSession(parent context.Context, id string, cfg core.Config, tickRate int) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		ctx:      ctx,
		cancel:   cancel,
		id:       id,
		seed:     cfg.Seed,
		game:     core.NewGame(cfg, nil, nil),
		tickRate: tickRate,
		logger:   log.With("session", id),
		attachCh: make(chan attachRequest),
		detachCh: make(chan *Connection, 4),
		inputCh:  make(chan *protocol.Input, 256),
		done:     make(chan struct{}),
	}
	s.detachedSince.Store(time.Now().UnixNano())
	return s
}

// ID 会话 ID
func (s *Session) ID() string { return s.id }

// Seed 会话使用的随机种子
func (s *Session) Seed() int64 { return s.seed }

// Tick 最近一次推进后的帧号
func (s *Session) Tick() uint64 { return s.tick.Load() }

// DetachedFor 断线持续时间，有连接时返回 0
func (s *Session) DetachedFor(now time.Time) time.Duration {
	since := s.detachedSince.Load()
	if since == 0 {
		return 0
	}
	return now.Sub(time.Unix(0, since))
}

// Done 会话循环退出后可读
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run 会话主循环
func (s *Session) Run(wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(s.done)

	ticker := time.NewTicker(time.Second / time.Duration(s.tickRate))
	defer ticker.Stop()

	s.logger.Debug("会话循环启动", "tps", s.tickRate, "seed", s.seed)

	for {
		select {
		case <-s.ctx.Done():
			if s.conn != nil {
				s.conn.CloseWithoutNotify()
				s.conn = nil
			}
			s.logger.Debug("会话循环停止")
			return

		case req := <-s.attachCh:
			req.respCh <- s.handleAttach(req)

		case conn := <-s.detachCh:
			s.handleDetach(conn)

		case in := <-s.inputCh:
			s.handleInput(in)

		case <-ticker.C:
			s.step()
		}
	}
}

// Shutdown 关闭会话
func (s *Session) Shutdown() {
	s.cancel()
}

// Attach 把连接绑定到会话并发送握手响应，之前的连接被替换
func (s *Session) Attach(conn *Connection, welcome *protocol.Welcome) error {
	respCh := make(chan error, 1)

	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	case s.attachCh <- attachRequest{conn: conn, welcome: welcome, respCh: respCh}:
	}

	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	case err := <-respCh:
		return err
	}
}

// Detach 连接断开时调用，会话进入断线保留状态
func (s *Session) Detach(conn *Connection) {
	select {
	case <-s.ctx.Done():
	case s.detachCh <- conn:
	}
}

// EnqueueInput 把输入交给会话协程
func (s *Session) EnqueueInput(in *protocol.Input) {
	select {
	case <-s.ctx.Done():
	case s.inputCh <- in:
	}
}

func (s *Session) handleAttach(req attachRequest) error {
	if err := req.conn.SendPacket(protocol.MessageTypeWelcome, req.welcome); err != nil {
		return fmt.Errorf("发送握手响应失败: %w", err)
	}

	if old := s.conn; old != nil && old != req.conn {
		s.logger.Info("连接被替换", "old", old.transport.RemoteAddr())
		old.CloseWithoutNotify()
	}

	req.conn.bind(s)
	s.conn = req.conn
	s.pending = nil
	s.lastInputSeq = 0
	s.keyframe = true
	s.detachedSince.Store(0)

	s.logger.Info("连接已绑定", "remote", req.conn.transport.RemoteAddr(), "resumed", req.welcome.Resumed)
	return nil
}

func (s *Session) handleDetach(conn *Connection) {
	if s.conn != conn {
		return
	}
	s.conn = nil
	s.pending = nil
	s.detachedSince.Store(time.Now().UnixNano())
	s.logger.Info("连接断开，会话暂停", "tick", s.game.TickCount, "score", s.game.Score)
}

// handleInput 合并同一帧内的多条输入：瞄准和按住状态取最新，一次性动作取并集
func (s *Session) handleInput(in *protocol.Input) {
	if in == nil || s.conn == nil {
		return
	}
	if in.Seq != 0 && in.Seq <= s.lastInputSeq {
		return
	}
	s.lastInputSeq = in.Seq

	if prev := s.pending; prev != nil {
		merged := *in
		merged.Fire = merged.Fire || prev.Fire
		merged.ToggleAutoAim = merged.ToggleAutoAim != prev.ToggleAutoAim
		merged.Reset = merged.Reset || prev.Reset
		merged.BoostShield = merged.BoostShield || prev.BoostShield
		merged.RequestKeyframe = merged.RequestKeyframe || prev.RequestKeyframe
		in = &merged
	}
	s.pending = in
}

// step 推进一帧并推送快照。没有连接时暂停。
func (s *Session) step() {
	if s.conn == nil {
		return
	}

	if in := s.pending; in != nil {
		s.pending = nil
		if in.RequestKeyframe {
			s.keyframe = true
		}
		core.ApplyInput(s.game, protocol.ProtoInputToCore(in))
	}

	s.game.Tick()
	s.tick.Store(s.game.TickCount)

	snap := s.game.Snapshot(s.keyframe)
	err := s.conn.SendPacket(protocol.MessageTypeSnapshot, protocol.CoreSnapshotToProto(snap, s.lastInputSeq))
	switch {
	case err == nil:
		s.keyframe = false
	case errors.Is(err, ErrSendQueueFull):
		// 丢掉的增量无法补发，下一帧改发关键帧
		s.keyframe = true
		s.logger.Warn("发送队列满，丢弃快照", "tick", snap.Tick)
	case errors.Is(err, ErrConnectionClosed):
		s.keyframe = true
	default:
		s.keyframe = true
		s.logger.Error("发送快照失败", "tick", snap.Tick, "err", err)
	}
}

// SessionStats 会话统计信息
type SessionStats struct {
	ID       string
	Tick     uint64
	Attached bool
	Detached time.Duration
}

func (s *Session) stats(now time.Time) SessionStats {
	d := s.DetachedFor(now)
	return SessionStats{ID: s.id, Tick: s.Tick(), Attached: s.detachedSince.Load() == 0, Detached: d}
}
