package client

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"missiledefence/pkg/core"
)

// DrawProjectile 绘制弹体：由暗到亮、由细到粗的尾迹，爆炸时绘制渐变色的爆炸圆
func DrawProjectile(screen *ebiten.Image, p core.ProjectileView) {
	info := GetKindInfo(p.Kind)

	n := len(p.Trail)
	for i := 1; i < n; i++ {
		// 越靠近前端越亮越粗
		ratio := float64(i+1) / float64(n)
		width := trailWidth(i+1, n, p.DrawRadius)
		if width < 1 {
			continue
		}
		from, to := p.Trail[i-1], p.Trail[i]
		vector.StrokeLine(screen,
			float32(int(from.X)), float32(int(from.Y)),
			float32(int(to.X)), float32(int(to.Y)),
			width, grad(info.TailColor, info.FrontColor, ratio), false)
	}

	if p.Exploding && p.BlastRadius > 0 {
		vector.FillCircle(screen,
			float32(int(p.Pos.X)), float32(int(p.Pos.Y)), float32(int(p.BlastRadius)),
			grad(info.BlastStart, info.BlastEnd, p.Progress), true)
	}
}

// trailWidth 第 i 段（从 1 开始计数）尾迹的线宽，取整
func trailWidth(i, n int, drawRadius float64) float32 {
	if n == 0 {
		return 0
	}
	return float32(int(float64(i) * drawRadius / float64(n)))
}
