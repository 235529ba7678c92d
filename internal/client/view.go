package client

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"missiledefence/pkg/core"
)

// View 根据快照绘制整个画面，本地和联机模式共用
type View struct {
	width, height int
	background    *Background
	terrain       *TerrainRenderer
	snapshot      *core.Snapshot

	screenshotDir     string
	screenshotPending bool
}

// NewView 创建画面，seed 只影响背景装饰
func NewView(width, height int, seed int64) *View {
	return &View{
		width:         width,
		height:        height,
		background:    NewBackground(width, height, seed),
		terrain:       NewTerrainRenderer(buildingColor),
		screenshotDir: ".",
	}
}

// Apply 接收新快照，返回 false 表示增量缺少基准地形，需要关键帧
func (v *View) Apply(s *core.Snapshot) bool {
	if s == nil {
		return true
	}
	if s.Width != v.width || s.Height != v.height {
		v.width, v.height = s.Width, s.Height
		v.background = NewBackground(s.Width, s.Height, time.Now().UnixNano())
	}
	v.snapshot = s
	return v.terrain.Apply(s)
}

// Snapshot 最近一次应用的快照
func (v *View) Snapshot() *core.Snapshot {
	return v.snapshot
}

// Update 推进装饰动画
func (v *View) Update() {
	v.background.Update()
}

// RequestScreenshot 在下一次绘制后保存截图
func (v *View) RequestScreenshot() {
	v.screenshotPending = true
}

// Draw 按背景、地形、护盾、弹体、加农炮、HUD 的顺序绘制
func (v *View) Draw(screen *ebiten.Image, extra string) {
	v.background.Draw(screen)
	v.terrain.Draw(screen)

	if s := v.snapshot; s != nil {
		DrawShield(screen, s.Shield)
		for _, p := range s.Projectiles {
			DrawProjectile(screen, p)
		}
		DrawCannon(screen, s.Cannon)
		DrawHUD(screen, s, extra)
	}

	if v.screenshotPending {
		v.screenshotPending = false
		path, err := v.saveScreenshot(screen)
		if err != nil {
			log.Error("保存截图失败", "err", err)
		} else {
			log.Info("截图已保存", "path", path)
		}
	}
}

// Layout 逻辑分辨率与模拟分辨率一致
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

func (v *View) saveScreenshot(screen *ebiten.Image) (string, error) {
	b := screen.Bounds()
	img := image.NewRGBA(b)
	screen.ReadPixels(img.Pix)

	name := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(v.screenshotDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, nil
}
