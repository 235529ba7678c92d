package client

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"missiledefence/pkg/core"
)

var hudFont = text.NewGoXFace(basicfont.Face7x13)

func drawText(screen *ebiten.Image, x, y int, msg string, clr color.Color) {
	options := &text.DrawOptions{}
	options.GeoM.Translate(float64(x), float64(y))
	options.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, hudFont, options)
}

// formatScore 分数固定 8 位
func formatScore(score int64) string {
	return fmt.Sprintf("%08d", score)
}

// statusLine 右上角状态：自动瞄准、护盾、城市剩余
func statusLine(s *core.Snapshot) string {
	mode := "MANUAL"
	if s.AutoAim {
		mode = "AUTO"
	}
	shield := "OFF"
	if s.Shield.Online {
		shield = fmt.Sprintf("%d", s.Shield.Health)
	}
	return fmt.Sprintf("%s  SHIELD %s  CITY %3.0f%%", mode, shield, s.CityLeft*100)
}

// DrawHUD 绘制分数和状态，extra 为附加信息（如网络延迟）
func DrawHUD(screen *ebiten.Image, s *core.Snapshot, extra string) {
	if s == nil {
		return
	}
	drawText(screen, 30, 30, formatScore(s.Score), hudColor)

	status := statusLine(s)
	drawText(screen, s.Width-len(status)*7-16, 30, status, hudColor)

	if s.Cannon.Destroyed {
		drawText(screen, 30, 50, "CANNON LOST", warnColor)
	}
	if extra != "" {
		drawText(screen, 30, s.Height-12, extra, hudColor)
	}
}
