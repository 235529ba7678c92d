package client

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"missiledefence/pkg/core"
)

// DrawCannon 绘制炮管和炮座，被摧毁后不绘制
func DrawCannon(screen *ebiten.Image, c core.CannonView) {
	if c.Destroyed {
		return
	}
	tip := c.Base.Add(c.Direction.Scale(c.Length))
	vector.StrokeLine(screen,
		float32(c.Base.X), float32(c.Base.Y), float32(tip.X), float32(tip.Y),
		4, cannonColor, true)
	vector.FillCircle(screen, float32(c.Base.X), float32(c.Base.Y), 2, cannonColor, true)
}
