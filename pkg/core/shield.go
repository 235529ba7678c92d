package core

// ShieldDome 城市上方的椭圆护盾，命中一次消耗一点生命
type ShieldDome struct {
	Center     Vec2
	HalfWidth  float64
	HalfHeight float64
	Health     int
	Brightness int // 命中闪光，每帧衰减
}

// NewShieldDome 按屏幕尺寸创建护盾：宽为屏幕的 4/5，露出地面的高度为屏幕的 1/3，
// 椭圆下半部分埋在屏幕底部以下。
func NewShieldDome(width, height, health int) *ShieldDome {
	sizeW := width * 4 / 5
	sizeH := height / 3
	left := (width - sizeW) / 2
	right := (width + sizeW) / 2
	top := height - sizeH
	bottom := height + sizeH*2

	return &ShieldDome{
		Center:     Vec2{X: float64(left+right) / 2, Y: float64(top+bottom) / 2},
		HalfWidth:  float64(right-left) / 2,
		HalfHeight: float64(bottom-top) / 2,
		Health:     max(0, health),
	}
}

// Online 护盾是否仍然有效
func (s *ShieldDome) Online() bool {
	return s.Health > 0
}

// Contains 纯几何判断：点是否在椭圆内（含边界）
func (s *ShieldDome) Contains(p Vec2) bool {
	if s.HalfWidth <= 0 || s.HalfHeight <= 0 {
		return false
	}
	dx := (p.X - s.Center.X) / s.HalfWidth
	dy := (p.Y - s.Center.Y) / s.HalfHeight
	return dx*dx+dy*dy <= 1
}

// CollisionCheck 带副作用的碰撞查询：命中时扣除一点生命并触发闪光。
// 每次逻辑碰撞测试只能调用一次。
func (s *ShieldDome) CollisionCheck(p Vec2) bool {
	if !s.Online() {
		return false
	}
	if !s.Contains(p) {
		return false
	}

	s.Brightness = min(s.Brightness+ShieldFlashStep, ShieldFlashMax)
	s.Health--
	assert(s.Health >= 0, "shield health went negative: %d", s.Health)
	return true
}

// Tick 每帧衰减闪光
func (s *ShieldDome) Tick() {
	if s.Brightness > 0 {
		s.Brightness--
	}
}

// Boost 外部补充护盾生命（唯一能让离线护盾恢复的途径之一）
func (s *ShieldDome) Boost(amount int) {
	if amount > 0 {
		s.Health += amount
	}
}
