package core

import "math"

// Cannon 防御加农炮（纯逻辑，不包含渲染）
// 时间单位为帧
type Cannon struct {
	Base      Vec2    // 炮座位置，同时是支撑检测点
	Target    Vec2    // 当前瞄准点
	Direction Vec2    // 炮管方向（单位向量，永远不朝下）
	Length    float64 // 炮管长度，也是坍塌爆炸的半径

	TicksSinceFiring int
	Destroyed        bool
}

// NewCannon 创建加农炮
func NewCannon(base Vec2) *Cannon {
	c := &Cannon{
		Base:   base,
		Target: Vec2{X: 100, Y: -100},
		Length: CannonLength,
	}
	c.updateDirection()
	return c
}

// AimDirection 计算从炮座指向目标的单位向量，且不允许朝下：
// 若指向地面，竖直分量清零，水平分量取原符号的单位值（正好竖直朝下时取 -1）。
func AimDirection(base, target Vec2) Vec2 {
	dir := target.Sub(base).Normalize()
	if dir.Y > 0 {
		dir.Y = 0
		if dir.X == 0 {
			dir.X = -1
		} else {
			dir.X = math.Copysign(1, dir.X)
		}
	}
	return dir
}

// AimAt 设置瞄准点并更新炮管方向
func (c *Cannon) AimAt(target Vec2) {
	c.Target = target
	c.updateDirection()
}

func (c *Cannon) updateDirection() {
	c.Direction = AimDirection(c.Base, c.Target)
}

// CanFire 装填完成且未被摧毁
func (c *Cannon) CanFire() bool {
	return c.TicksSinceFiring > CannonReloadFrames && !c.Destroyed
}

// Fire 向目标发射三枚扇形分布的炮弹，不能开火时返回 nil
func (c *Cannon) Fire(target Vec2) []*Projectile {
	if !c.CanFire() {
		return nil
	}

	c.AimAt(target)
	c.TicksSinceFiring = 0

	velocity := c.Direction.Scale(CannonMissileSpeed)
	shots := make([]*Projectile, 0, 3)
	for _, theta := range []float64{-CannonSpreadRadians, 0, CannonSpreadRadians} {
		shots = append(shots, NewCannonShot(c.Base, velocity.Rotate(theta)))
	}
	return shots
}

// Update 每帧更新：累计装填时间并检查支撑。
// 炮座下方的地形被炸空时永久摧毁，并返回一枚坍塌爆炸；否则返回 nil。
func (c *Cannon) Update(terrain *TerrainGrid) *Projectile {
	c.TicksSinceFiring++

	if c.Destroyed {
		return nil
	}
	if terrain.OccupiedAt(c.Base) {
		return nil
	}

	c.Destroyed = true
	return NewSupportCollapse(c.Base, c.Length)
}
