package client

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"missiledefence/pkg/core"
)

const (
	ellipseSegments = 96
	shieldBorder    = 4
)

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// shieldOpacity 护盾透明度随生命值增加，上限 150
func shieldOpacity(health int) int {
	return min(150, 20+health*3)
}

// DrawShield 绘制护盾：亮色边框加半透明填充，受击时边框变亮
func DrawShield(screen *ebiten.Image, s core.ShieldView) {
	if !s.Online {
		return
	}
	opacity := shieldOpacity(s.Health)
	edge := shieldEdgeColor
	edge.A = uint8(min(255, opacity+s.Brightness))
	fill := shieldFillColor
	fill.A = uint8(opacity)

	cx, cy := float32(s.Center.X), float32(s.Center.Y)
	rx, ry := float32(s.HalfWidth), float32(s.HalfHeight)
	drawEllipseRing(screen, cx, cy, rx, ry, shieldBorder, edge)
	drawEllipse(screen, cx, cy, rx-shieldBorder, ry-shieldBorder, fill)
}

func vertexColor(c color.RGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

// drawEllipse 用三角扇填充椭圆
func drawEllipse(dst *ebiten.Image, cx, cy, rx, ry float32, c color.RGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	r, g, b, a := vertexColor(c)
	vs := make([]ebiten.Vertex, 0, ellipseSegments+1)
	is := make([]uint16, 0, ellipseSegments*3)

	vs = append(vs, ebiten.Vertex{DstX: cx, DstY: cy, SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a})
	for i := 0; i < ellipseSegments; i++ {
		theta := 2 * math.Pi * float64(i) / ellipseSegments
		vs = append(vs, ebiten.Vertex{
			DstX:   cx + rx*float32(math.Cos(theta)),
			DstY:   cy + ry*float32(math.Sin(theta)),
			SrcX:   1,
			SrcY:   1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
		next := uint16(1 + (i+1)%ellipseSegments)
		is = append(is, 0, uint16(1+i), next)
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawEllipseRing 绘制宽度为 border 的椭圆环
func drawEllipseRing(dst *ebiten.Image, cx, cy, rx, ry, border float32, c color.RGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	r, g, b, a := vertexColor(c)
	vs := make([]ebiten.Vertex, 0, ellipseSegments*2)
	is := make([]uint16, 0, ellipseSegments*6)

	inRX, inRY := max(0, rx-border), max(0, ry-border)
	for i := 0; i < ellipseSegments; i++ {
		theta := 2 * math.Pi * float64(i) / ellipseSegments
		cos, sin := float32(math.Cos(theta)), float32(math.Sin(theta))
		vs = append(vs,
			ebiten.Vertex{DstX: cx + rx*cos, DstY: cy + ry*sin, SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
			ebiten.Vertex{DstX: cx + inRX*cos, DstY: cy + inRY*sin, SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		)
		o0, i0 := uint16(2*i), uint16(2*i+1)
		o1, i1 := uint16(2*((i+1)%ellipseSegments)), uint16(2*((i+1)%ellipseSegments)+1)
		is = append(is, o0, i0, o1, o1, i0, i1)
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
