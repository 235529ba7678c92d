package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"missiledefence/pkg/protocol"
)

func testConfig() AppConfig {
	cfg := DefaultAppConfig()
	cfg.TickRate = 120
	cfg.JWTSecret = "test-secret"
	cfg.Game.Seed = 42
	cfg.Game.SpawnThreshold = 0
	cfg.Game.SpawnGrowth = 0
	return cfg
}

func newTestServer(t *testing.T, cfg AppConfig) *GameServer {
	t.Helper()
	srv := NewGameServer(cfg)
	srv.manager.Run()
	t.Cleanup(srv.Shutdown)
	return srv
}

type pipeClient struct {
	t    *testing.T
	conn net.Conn
}

func dialPipe(t *testing.T, srv *GameServer) *pipeClient {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	srv.serve(newStreamTransport(serverSide), protocol.ProtoCodec{})
	t.Cleanup(func() { clientSide.Close() })
	return &pipeClient{t: t, conn: clientSide}
}

func (c *pipeClient) send(pkt *protocol.Packet) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := protocol.WriteFrame(c.conn, protocol.MarshalPacket(pkt)); err != nil {
		c.t.Fatalf("send %s: %v", pkt.Type, err)
	}
}

// next 读取下一个指定类型的包，跳过心跳
func (c *pipeClient) next(want protocol.MessageType) *protocol.Packet {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_ = c.conn.SetReadDeadline(deadline)
		data, err := protocol.ReadFrame(c.conn, protocol.MaxOutboundFrame)
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", want, err)
		}
		pkt, err := protocol.UnmarshalPacket(data)
		if err != nil {
			c.t.Fatalf("decode: %v", err)
		}
		if pkt.Type == want {
			return pkt
		}
		if pkt.Type == protocol.MessageTypeError {
			msg, _ := protocol.ParseError(pkt)
			c.t.Fatalf("server error while waiting for %s: %s", want, msg.Message)
		}
	}
}

func (c *pipeClient) hello(token string) *protocol.Welcome {
	c.t.Helper()
	c.send(protocol.NewHelloPacket("pilot", token))
	w, err := protocol.ParseWelcome(c.next(protocol.MessageTypeWelcome))
	if err != nil {
		c.t.Fatalf("welcome: %v", err)
	}
	return w
}

func (c *pipeClient) snapshot() *protocol.Snapshot {
	c.t.Helper()
	s, err := protocol.ParseSnapshot(c.next(protocol.MessageTypeSnapshot))
	if err != nil {
		c.t.Fatalf("snapshot: %v", err)
	}
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHelloStartsSessionWithKeyframe(t *testing.T) {
	cfg := testConfig()
	srv := newTestServer(t, cfg)
	client := dialPipe(t, srv)

	w := client.hello("")
	if w.SessionID == "" || w.Token == "" || w.Resumed {
		t.Fatalf("unexpected welcome %+v", w)
	}
	if w.TPS != int32(cfg.TickRate) || w.Width != int32(cfg.Game.Width) || w.Height != int32(cfg.Game.Height) || w.Seed != 42 {
		t.Fatalf("welcome does not describe the game: %+v", w)
	}

	first := client.snapshot()
	if len(first.Terrain) == 0 || !first.Reset {
		t.Fatalf("first snapshot should be a reset keyframe")
	}
	cells, err := protocol.UnpackBits(first.Terrain, cfg.Game.Width*cfg.Game.Height)
	if err != nil {
		t.Fatalf("unpack terrain: %v", err)
	}
	occupied := 0
	for _, c := range cells {
		if c {
			occupied++
		}
	}
	if occupied == 0 {
		t.Fatalf("keyframe carries an empty city")
	}

	second := client.snapshot()
	if len(second.Terrain) != 0 {
		t.Fatalf("second snapshot should be a delta")
	}
	if second.Tick <= first.Tick {
		t.Fatalf("ticks should advance: %d then %d", first.Tick, second.Tick)
	}
	if srv.manager.Count() != 1 {
		t.Fatalf("sessions: got %d", srv.manager.Count())
	}
}

func TestInputIsAppliedAndAcknowledged(t *testing.T) {
	srv := newTestServer(t, testConfig())
	client := dialPipe(t, srv)
	client.hello("")
	client.snapshot()

	client.send(protocol.NewInputPacket(&protocol.Input{Seq: 1, ToggleAutoAim: true}))
	for i := 0; ; i++ {
		s := client.snapshot()
		if s.LastInputSeq == 1 {
			if !s.AutoAim {
				t.Fatalf("acknowledged input did not toggle auto-aim")
			}
			break
		}
		if i > 60 {
			t.Fatalf("input never acknowledged")
		}
	}

	client.send(protocol.NewInputPacket(&protocol.Input{Seq: 2, RequestKeyframe: true}))
	for i := 0; ; i++ {
		s := client.snapshot()
		if s.LastInputSeq == 2 {
			if len(s.Terrain) == 0 {
				t.Fatalf("keyframe request ignored")
			}
			break
		}
		if i > 60 {
			t.Fatalf("keyframe request never acknowledged")
		}
	}
}

func TestPingIsAnswered(t *testing.T) {
	srv := newTestServer(t, testConfig())
	client := dialPipe(t, srv)

	client.send(protocol.NewPingPacket(1234))
	pong, err := protocol.ParsePong(client.next(protocol.MessageTypePong))
	if err != nil {
		t.Fatalf("pong: %v", err)
	}
	if pong.ClientTime != 1234 || pong.ServerTime == 0 || pong.ServerTick != 0 {
		t.Fatalf("unexpected pong before hello: %+v", pong)
	}
}

func TestResumeDetachedSession(t *testing.T) {
	srv := newTestServer(t, testConfig())

	first := dialPipe(t, srv)
	w := first.hello("")
	seen := first.snapshot().Tick
	first.conn.Close()

	waitFor(t, "detach", func() bool {
		stats := srv.Sessions()
		return len(stats) == 1 && !stats[0].Attached
	})
	s, ok := srv.manager.Get(w.SessionID)
	if !ok {
		t.Fatalf("detached session was dropped")
	}
	paused := s.Tick()
	time.Sleep(50 * time.Millisecond)
	if s.Tick() != paused {
		t.Fatalf("detached session kept ticking")
	}

	second := dialPipe(t, srv)
	rw := second.hello(w.Token)
	if !rw.Resumed || rw.SessionID != w.SessionID || rw.Seed != w.Seed {
		t.Fatalf("expected resume of %s, got %+v", w.SessionID, rw)
	}
	snap := second.snapshot()
	if len(snap.Terrain) == 0 {
		t.Fatalf("resumed connection must start with a keyframe")
	}
	if snap.Tick <= seen {
		t.Fatalf("resumed session restarted: tick %d after %d", snap.Tick, seen)
	}
	if srv.manager.Count() != 1 {
		t.Fatalf("resume should not create a session")
	}
}

func TestInvalidTokenStartsFreshSession(t *testing.T) {
	srv := newTestServer(t, testConfig())
	client := dialPipe(t, srv)
	w := client.hello("bogus")
	if w.Resumed {
		t.Fatalf("bogus token resumed a session")
	}
	if srv.manager.Count() != 1 {
		t.Fatalf("sessions: got %d", srv.manager.Count())
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	cfg := testConfig()
	cfg.SessionTTL = time.Minute
	m := NewSessionManager(context.Background(), cfg)
	defer m.Shutdown()

	s, err := m.create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now()
	if n := m.cleanupExpired(now); n != 0 {
		t.Fatalf("fresh session cleaned up")
	}
	if n := m.cleanupExpired(now.Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expired session not cleaned up, removed %d", n)
	}
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session loop did not stop")
	}
	if m.Count() != 0 {
		t.Fatalf("sessions left: %d", m.Count())
	}
}

func TestSessionLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	m := NewSessionManager(context.Background(), cfg)
	defer m.Shutdown()

	if _, err := m.create(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.create(); !errors.Is(err, ErrServerFull) {
		t.Fatalf("want ErrServerFull, got %v", err)
	}
}

func TestSeedIsResolvedPerSession(t *testing.T) {
	cfg := testConfig()
	cfg.Game.Seed = 0
	m := NewSessionManager(context.Background(), cfg)
	defer m.Shutdown()
	m.seedSource = func() int64 { return 99 }

	s, err := m.create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Seed() != 99 {
		t.Fatalf("seed: got %d", s.Seed())
	}
}

func TestInputMerging(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewSession(ctx, "t", testConfig().Game, 30)
	s.conn = &Connection{}

	s.handleInput(&protocol.Input{Seq: 1, Fire: true, ToggleAutoAim: true, AimX: 1})
	s.handleInput(&protocol.Input{Seq: 2, BoostShield: true, AimX: 2})
	s.handleInput(&protocol.Input{Seq: 2, Reset: true})

	p := s.pending
	if p == nil {
		t.Fatalf("no pending input")
	}
	if p.Seq != 2 || p.AimX != 2 {
		t.Fatalf("latest aim should win: %+v", p)
	}
	if !p.Fire || !p.ToggleAutoAim || !p.BoostShield {
		t.Fatalf("one-shot actions lost: %+v", p)
	}
	if p.Reset {
		t.Fatalf("stale sequence number was applied")
	}

	s.handleInput(&protocol.Input{Seq: 3, ToggleAutoAim: true})
	if s.pending.ToggleAutoAim {
		t.Fatalf("two toggles in one tick should cancel out")
	}
}

func TestDecodeUnknownPacket(t *testing.T) {
	data := protocol.MarshalPacket(protocol.NewPacket(protocol.MessageTypeSnapshot, &protocol.Snapshot{}))
	ev, err := DecodePacket(protocol.ProtoCodec{}, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != EventUnknown {
		t.Fatalf("server should not accept snapshots, got %v", ev.Kind)
	}
}
