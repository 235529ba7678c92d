package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"missiledefence/pkg/core"
)

// TerrainRenderer 维护客户端的地形副本和对应的像素缓冲。
// 关键帧整体替换，增量帧只改动变化的格子。
type TerrainRenderer struct {
	width, height int
	cells         []bool
	pix           []byte // RGBA，空格子透明
	color         color.RGBA
	hasBase       bool
	dirty         bool
	image         *ebiten.Image
}

// NewTerrainRenderer 创建地形渲染器
func NewTerrainRenderer(c color.RGBA) *TerrainRenderer {
	return &TerrainRenderer{color: c}
}

// HasBase 是否已经收到过关键帧。没有关键帧时增量无法使用。
func (t *TerrainRenderer) HasBase() bool {
	return t.hasBase
}

// Apply 合并快照中的地形信息，返回增量是否被接受
func (t *TerrainRenderer) Apply(snap *core.Snapshot) bool {
	if snap.Keyframe() {
		t.resize(snap.Width, snap.Height)
		t.cells = snap.ApplyTerrain(t.cells)
		for i, occupied := range t.cells {
			t.setPixel(i, occupied)
		}
		t.hasBase = true
		t.dirty = true
		return true
	}

	if !t.hasBase || snap.Width != t.width || snap.Height != t.height {
		return false
	}
	for _, c := range snap.TerrainChanges {
		if c.X < 0 || c.X >= t.width || c.Y < 0 || c.Y >= t.height {
			continue
		}
		i := c.Y*t.width + c.X
		t.cells[i] = c.Occupied
		t.setPixel(i, c.Occupied)
		t.dirty = true
	}
	return true
}

// Occupied 查询格子，越界为空
func (t *TerrainRenderer) Occupied(x, y int) bool {
	if x < 0 || x >= t.width || y < 0 || y >= t.height || t.cells == nil {
		return false
	}
	return t.cells[y*t.width+x]
}

func (t *TerrainRenderer) resize(w, h int) {
	if w == t.width && h == t.height && t.cells != nil {
		return
	}
	t.width, t.height = w, h
	t.cells = make([]bool, w*h)
	t.pix = make([]byte, 4*w*h)
	t.image = nil
}

func (t *TerrainRenderer) setPixel(i int, occupied bool) {
	p := t.pix[4*i : 4*i+4]
	if occupied {
		p[0], p[1], p[2], p[3] = t.color.R, t.color.G, t.color.B, t.color.A
	} else {
		p[0], p[1], p[2], p[3] = 0, 0, 0, 0
	}
}

// Draw 绘制地形
func (t *TerrainRenderer) Draw(screen *ebiten.Image) {
	if !t.hasBase {
		return
	}
	if t.image == nil {
		t.image = ebiten.NewImage(t.width, t.height)
		t.dirty = true
	}
	if t.dirty {
		t.image.WritePixels(t.pix)
		t.dirty = false
	}
	screen.DrawImage(t.image, nil)
}
