package client

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"missiledefence/pkg/ai"
	"missiledefence/pkg/core"
	"missiledefence/pkg/protocol"
)

const (
	reconnectInterval = 2 * time.Second
	keyframeRetry     = time.Second
)

// NetworkGameClient 联机模式：服务器运行模拟，本地只负责输入和绘制
type NetworkGameClient struct {
	network *NetworkClient
	view    *View
	pilot   *ai.AIController

	lastTick        uint64
	needKeyframe    bool
	keyframeAskedAt time.Time
	reconnectAt     time.Time

	now func() time.Time
}

// NewNetworkGameClient 用已完成握手的连接创建联机游戏
func NewNetworkGameClient(nc *NetworkClient) *NetworkGameClient {
	w := nc.Welcome()
	width, height, seed := core.ScreenWidth, core.ScreenHeight, int64(0)
	if w != nil {
		width, height, seed = int(w.Width), int(w.Height), w.Seed
	}
	return &NetworkGameClient{
		network: nc,
		view:    NewView(width, height, seed),
		now:     time.Now,
	}
}

// SetAutopilot 由自动驾驶生成输入。服务器不下发物理参数，预测使用默认值。
func (ngc *NetworkGameClient) SetAutopilot(pilot *ai.AIController) {
	ngc.pilot = pilot
}

// Update 同步快照、发送本帧输入
func (ngc *NetworkGameClient) Update() error {
	cmd := ReadCommand()
	if cmd.Quit {
		ngc.network.Close()
		return ebiten.Termination
	}
	if cmd.Screenshot {
		ngc.view.RequestScreenshot()
	}
	ngc.step(cmd.Input)
	ngc.view.Update()
	return nil
}

func (ngc *NetworkGameClient) step(in core.Input) {
	if err := ngc.network.Err(); err != nil {
		log.Warn("连接异常", "err", err)
	}
	if !ngc.network.IsConnected() {
		ngc.tryReconnect()
		return
	}

	ngc.sync()
	if ngc.pilot != nil {
		in = ngc.pilot.Decide(ngc.view.Snapshot(), core.DefaultConfig().Physics)
	}
	ngc.network.SendInput(in, ngc.wantKeyframe())
}

// sync 按顺序应用所有到达的快照，发现缺口时标记需要关键帧
func (ngc *NetworkGameClient) sync() {
	for _, ps := range ngc.network.ReceiveSnapshots() {
		s, err := protocol.ProtoSnapshotToCore(ps)
		if err != nil {
			log.Warn("快照无效", "tick", ps.Tick, "err", err)
			ngc.needKeyframe = true
			continue
		}
		if !s.Keyframe() && ngc.lastTick != 0 && s.Tick != ngc.lastTick+1 {
			ngc.needKeyframe = true
		}
		if !ngc.view.Apply(s) {
			ngc.needKeyframe = true
		}
		if s.Keyframe() {
			ngc.needKeyframe = false
		}
		ngc.lastTick = s.Tick
	}
	if ngc.network.TakeDropped() {
		ngc.needKeyframe = true
	}
}

// wantKeyframe 关键帧请求每秒最多重发一次
func (ngc *NetworkGameClient) wantKeyframe() bool {
	if !ngc.needKeyframe {
		return false
	}
	now := ngc.now()
	if now.Sub(ngc.keyframeAskedAt) < keyframeRetry {
		return false
	}
	ngc.keyframeAskedAt = now
	return true
}

func (ngc *NetworkGameClient) tryReconnect() {
	now := ngc.now()
	if now.Before(ngc.reconnectAt) {
		return
	}
	ngc.reconnectAt = now.Add(reconnectInterval)

	if err := ngc.network.Reconnect(); err != nil {
		log.Warn("重连失败", "err", err)
		return
	}
	ngc.lastTick = 0
	ngc.needKeyframe = false
	ngc.keyframeAskedAt = time.Time{}
}

// Draw 绘制游戏画面
func (ngc *NetworkGameClient) Draw(screen *ebiten.Image) {
	ngc.view.Draw(screen, ngc.statusText())
}

func (ngc *NetworkGameClient) statusText() string {
	if !ngc.network.IsConnected() {
		return "RECONNECTING..."
	}
	session := ""
	if w := ngc.network.Welcome(); w != nil {
		session = w.SessionID
	}
	return fmt.Sprintf("%s  RTT %dms", session, ngc.network.RTT().Milliseconds())
}

// Layout 设置屏幕布局
func (ngc *NetworkGameClient) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ngc.view.Layout(outsideWidth, outsideHeight)
}
