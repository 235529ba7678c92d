package client

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const starCount = 400

type star struct {
	x, y          float32
	phase         float64
	rate          float64
	minBrightness float64
	maxBrightness float64
}

func (s *star) brightness() float64 {
	b := s.minBrightness + (s.maxBrightness-s.minBrightness)*(math.Sin(s.phase)+1)/2
	return math.Min(b, 1)
}

// Background 竖直渐变的夜空和闪烁的星星，纯装饰，不参与模拟
type Background struct {
	width, height int
	bottom        color.RGBA
	stars         []star
	rng           *rand.Rand
	sky           *ebiten.Image
}

// NewBackground 随机生成地平线颜色和星星
func NewBackground(width, height int, seed int64) *Background {
	rng := rand.New(rand.NewSource(seed))
	b := &Background{width: width, height: height, rng: rng}
	b.bottom = randomHorizon(rng)

	b.stars = make([]star, starCount)
	for i := range b.stars {
		y := rng.Float64() * float64(height)
		// 越靠近地平线越暗
		maxB := math.Min(1, 0.2+1.2*rng.Float64()*(1-y/float64(height)))
		b.stars[i] = star{
			x:             float32(rng.Float64() * float64(width)),
			y:             float32(y),
			phase:         rng.Float64() * 2 * math.Pi,
			rate:          0.03 + rng.Float64()*0.07,
			minBrightness: rng.Float64() * maxB,
			maxBrightness: maxB,
		}
	}
	return b
}

// randomHorizon 随机地平线颜色，保证足够亮以衬出建筑
func randomHorizon(rng *rand.Rand) color.RGBA {
	for {
		r := math.Max(0, -100+rng.Float64()*200)
		g := math.Max(0, -100+rng.Float64()*150)
		b := math.Max(0, -100+rng.Float64()*300)
		if r+g+b >= 120 {
			return color.RGBA{uint8(r), uint8(g), uint8(min(b, 255)), 255}
		}
	}
}

// Update 星星闪烁
func (b *Background) Update() {
	for i := range b.stars {
		b.stars[i].phase += b.rng.Float64() * b.stars[i].rate
	}
}

// Draw 绘制天空和星星
func (b *Background) Draw(screen *ebiten.Image) {
	if b.sky == nil {
		b.sky = ebiten.NewImage(b.width, b.height)
		for y := 0; y < b.height; y++ {
			c := grad(skyTopColor, b.bottom, float64(y)/float64(max(1, b.height-1)))
			vector.DrawFilledRect(b.sky, 0, float32(y), float32(b.width), 1, c, false)
		}
	}
	screen.DrawImage(b.sky, nil)

	for i := range b.stars {
		s := &b.stars[i]
		c := withAlpha(color.RGBA{255, 255, 255, 255}, int(255*s.brightness()))
		vector.DrawFilledRect(screen, s.x, s.y, 1, 1, c, false)
	}
}
