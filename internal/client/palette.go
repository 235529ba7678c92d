package client

import (
	"image/color"

	"missiledefence/pkg/core"
)

// KindInfo 弹体的渲染配色
type KindInfo struct {
	Kind       core.Kind
	Name       string
	TailColor  color.RGBA // 尾迹末端
	FrontColor color.RGBA // 尾迹前端
	BlastStart color.RGBA // 爆炸初期
	BlastEnd   color.RGBA // 爆炸末期
}

// GetKindInfo 获取弹体配色
func GetKindInfo(kind core.Kind) KindInfo {
	switch kind {
	case core.KindCannonShot:
		return KindInfo{
			Kind:       core.KindCannonShot,
			Name:       "炮弹",
			TailColor:  color.RGBA{20, 20, 100, 255},
			FrontColor: color.RGBA{100, 120, 200, 255},
			BlastStart: color.RGBA{150, 180, 255, 255},
			BlastEnd:   color.RGBA{50, 60, 200, 255},
		}
	case core.KindSupportCollapse:
		return KindInfo{
			Kind:       core.KindSupportCollapse,
			Name:       "炮座坍塌",
			TailColor:  color.RGBA{20, 20, 100, 255},
			FrontColor: color.RGBA{250, 250, 250, 255},
			BlastStart: color.RGBA{100, 200, 150, 255},
			BlastEnd:   color.RGBA{20, 50, 20, 255},
		}
	default:
		return KindInfo{
			Kind:       core.KindMissile,
			Name:       "导弹",
			TailColor:  color.RGBA{20, 20, 100, 255},
			FrontColor: color.RGBA{250, 250, 250, 255},
			BlastStart: color.RGBA{255, 255, 0, 255},
			BlastEnd:   color.RGBA{255, 0, 0, 255},
		}
	}
}

var (
	buildingColor   = color.RGBA{0, 0, 10, 255}
	cannonColor     = color.RGBA{100, 200, 100, 255}
	shieldEdgeColor = color.RGBA{255, 120, 255, 255}
	shieldFillColor = color.RGBA{200, 50, 200, 255}
	skyTopColor     = color.RGBA{0, 0, 20, 255}
	hudColor        = color.RGBA{255, 255, 255, 255}
	warnColor       = color.RGBA{255, 120, 120, 255}
)

// grad 在 a、b 之间线性插值，p 取值 [0,1]，结果不透明
func grad(a, b color.RGBA, p float64) color.RGBA {
	p = clamp01(p)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-p) + float64(y)*p)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// withAlpha 返回预乘 alpha 后的颜色
func withAlpha(c color.RGBA, alpha int) color.RGBA {
	alpha = max(0, min(255, alpha))
	scale := func(v uint8) uint8 { return uint8(int(v) * alpha / 255) }
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), uint8(alpha)}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
