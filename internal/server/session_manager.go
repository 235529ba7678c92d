package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"missiledefence/pkg/protocol"
)

// ErrServerFull 会话数达到上限
var ErrServerFull = errors.New("服务器已满")

// SessionManager 管理所有会话：创建、凭 Token 恢复、清理过期的断线会话
type SessionManager struct {
	ctx    context.Context
	cfg    AppConfig
	signer *TokenSigner

	sessions     map[string]*Session // 会话 ID -> 会话
	sessionMutex sync.RWMutex        // 保护 sessions map
	nextID       atomic.Uint64
	seedSource   func() int64

	wg       sync.WaitGroup
	shutdown chan struct{}
	stopOnce sync.Once

	cleanupInterval time.Duration
}

// NewSessionManager 创建新的会话管理器
func NewSessionManager(ctx context.Context, cfg AppConfig) *SessionManager {
	interval := cfg.SessionTTL / 4
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &SessionManager{
		ctx:             ctx,
		cfg:             cfg,
		signer:          NewTokenSigner(cfg.JWTSecret, cfg.SessionTTL),
		sessions:        make(map[string]*Session),
		seedSource:      func() int64 { return time.Now().UnixNano() },
		shutdown:        make(chan struct{}),
		cleanupInterval: interval,
	}
}

// Run 启动清理协程
func (m *SessionManager) Run() {
	m.wg.Add(1)
	go m.cleanupLoop()
}

// cleanupLoop 定期清理过期的断线会话
func (m *SessionManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.shutdown:
			return
		case now := <-ticker.C:
			m.cleanupExpired(now)
		}
	}
}

// cleanupExpired 关闭断线超过有效期的会话，返回清理数量
func (m *SessionManager) cleanupExpired(now time.Time) int {
	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.DetachedFor(now) > m.cfg.SessionTTL {
			log.Info("清理过期会话", "session", id, "tick", s.Tick())
			s.Shutdown()
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Open 为握手的连接绑定会话。Token 有效且会话仍在时恢复，否则新建。
func (m *SessionManager) Open(conn *Connection, hello *HelloEvent) (*Session, error) {
	if hello != nil && hello.Token != "" {
		s, err := m.resume(hello.Token)
		if err == nil {
			if err := m.attach(s, conn, true); err != nil {
				return nil, err
			}
			return s, nil
		}
		log.Info("无法恢复会话，创建新会话", "remote", conn.transport.RemoteAddr(), "reason", err)
	}

	s, err := m.create()
	if err != nil {
		return nil, err
	}
	if err := m.attach(s, conn, false); err != nil {
		m.remove(s.ID())
		return nil, err
	}

	name := ""
	if hello != nil {
		name = hello.Name
	}
	log.Info("创建会话", "session", s.ID(), "name", name, "seed", s.Seed(), "remote", conn.transport.RemoteAddr())
	return s, nil
}

func (m *SessionManager) resume(token string) (*Session, error) {
	id, err := m.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("会话 %s 不存在", id)
	}
	return s, nil
}

func (m *SessionManager) create() (*Session, error) {
	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		return nil, fmt.Errorf("%w (%d/%d)", ErrServerFull, len(m.sessions), m.cfg.MaxSessions)
	}

	gameCfg := m.cfg.Game
	if gameCfg.Seed == 0 {
		gameCfg.Seed = m.seedSource()
	}

	id := "s" + strconv.FormatUint(m.nextID.Add(1), 10)
	s := NewSession(m.ctx, id, gameCfg, m.cfg.TickRate)
	m.sessions[id] = s

	// 启动会话循环
	m.wg.Add(1)
	go s.Run(&m.wg)

	return s, nil
}

func (m *SessionManager) attach(s *Session, conn *Connection, resumed bool) error {
	token, err := m.signer.Generate(s.ID())
	if err != nil {
		return fmt.Errorf("生成 Token 失败: %w", err)
	}

	gameCfg := m.cfg.Game
	welcome := &protocol.Welcome{
		SessionID: s.ID(),
		Token:     token,
		TPS:       int32(m.cfg.TickRate),
		Width:     int32(gameCfg.Width),
		Height:    int32(gameCfg.Height),
		Resumed:   resumed,
		Seed:      s.Seed(),
	}
	return s.Attach(conn, welcome)
}

func (m *SessionManager) remove(id string) {
	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Shutdown()
		delete(m.sessions, id)
	}
}

// Get 按 ID 查找会话
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count 当前会话数
func (m *SessionManager) Count() int {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	return len(m.sessions)
}

// Stats 所有会话的统计信息，按 ID 排序
func (m *SessionManager) Stats() []SessionStats {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()

	now := time.Now()
	stats := make([]SessionStats, 0, len(m.sessions))
	for _, s := range m.sessions {
		stats = append(stats, s.stats(now))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ID < stats[j].ID })
	return stats
}

// Shutdown 关闭所有会话并等待会话循环结束
func (m *SessionManager) Shutdown() {
	m.stopOnce.Do(func() { close(m.shutdown) })

	m.sessionMutex.Lock()
	log.Info("关闭会话", "count", len(m.sessions))
	for id, s := range m.sessions {
		s.Shutdown()
		delete(m.sessions, id)
	}
	m.sessionMutex.Unlock()

	m.wg.Wait()
}
