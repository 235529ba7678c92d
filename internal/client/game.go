package client

import (
	"github.com/hajimehoshi/ebiten/v2"

	"missiledefence/pkg/ai"
	"missiledefence/pkg/core"
)

// Game 本地模式（Ebiten 游戏循环）：在进程内运行模拟，每次 Update 推进一帧
type Game struct {
	coreGame *core.Game
	view     *View
	pilot    *ai.AIController
}

// NewGame 创建本地游戏
func NewGame(cfg core.Config) *Game {
	coreGame := core.NewGame(cfg, nil, nil)
	g := &Game{
		coreGame: coreGame,
		view:     NewView(cfg.Width, cfg.Height, cfg.Seed),
	}
	g.view.Apply(coreGame.Snapshot(true))
	return g
}

// Core 返回模拟状态
func (g *Game) Core() *core.Game {
	return g.coreGame
}

// SetAutopilot 由自动驾驶代替鼠标键盘操作加农炮，nil 恢复手动
func (g *Game) SetAutopilot(pilot *ai.AIController) {
	g.pilot = pilot
}

// Update 读取输入、推进一帧、更新画面
func (g *Game) Update() error {
	cmd := ReadCommand()
	if cmd.Quit {
		return ebiten.Termination
	}
	if cmd.Screenshot {
		g.view.RequestScreenshot()
	}
	g.step(g.decide(cmd.Input))
	return nil
}

// decide 自动驾驶开启时忽略手动输入
func (g *Game) decide(manual core.Input) core.Input {
	if g.pilot == nil {
		return manual
	}
	return g.pilot.Decide(g.view.Snapshot(), g.coreGame.Config.Physics)
}

func (g *Game) step(in core.Input) {
	core.ApplyInput(g.coreGame, in)
	g.coreGame.Tick()
	g.view.Apply(g.coreGame.Snapshot(false))
	g.view.Update()
}

// Draw 绘制游戏画面
func (g *Game) Draw(screen *ebiten.Image) {
	g.view.Draw(screen, "")
}

// Layout 设置屏幕布局
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.view.Layout(outsideWidth, outsideHeight)
}
