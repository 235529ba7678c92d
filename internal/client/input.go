package client

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"missiledefence/pkg/core"
)

// rawInput 一帧采集到的原始按键状态
type rawInput struct {
	CursorX, CursorY int
	MouseDown        bool // 左键按住
	MouseJustDown    bool // 左键本帧按下
	AutoAimKey       bool // A
	ResetKey         bool // R
	BoostKey         bool // D
	ScreenshotKey    bool // S
	QuitKey          bool // Q / Esc
}

// Command 一帧的玩家指令
type Command struct {
	Input      core.Input
	Quit       bool
	Screenshot bool
}

// pollInput 从 ebiten 采集原始输入
func pollInput() rawInput {
	x, y := ebiten.CursorPosition()
	return rawInput{
		CursorX:       x,
		CursorY:       y,
		MouseDown:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		MouseJustDown: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		AutoAimKey:    inpututil.IsKeyJustPressed(ebiten.KeyA),
		ResetKey:      inpututil.IsKeyJustPressed(ebiten.KeyR),
		BoostKey:      inpututil.IsKeyJustPressed(ebiten.KeyD),
		ScreenshotKey: inpututil.IsKeyJustPressed(ebiten.KeyS),
		QuitKey:       inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}
}

// mapInput 把原始输入映射为指令。按键均为边沿触发，开火同时支持点按和按住。
func mapInput(raw rawInput) Command {
	return Command{
		Input: core.Input{
			Aim:           core.Vec2{X: float64(raw.CursorX), Y: float64(raw.CursorY)},
			Fire:          raw.MouseJustDown,
			FireHeld:      raw.MouseDown,
			ToggleAutoAim: raw.AutoAimKey,
			Reset:         raw.ResetKey,
			BoostShield:   raw.BoostKey,
		},
		Quit:       raw.QuitKey,
		Screenshot: raw.ScreenshotKey,
	}
}

// ReadCommand 读取本帧指令
func ReadCommand() Command {
	return mapInput(pollInput())
}
