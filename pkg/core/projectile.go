package core

import "math"

// Physics 所有弹体共享的物理常量
type Physics struct {
	AirResistance float64 `json:"airResistance"`
	Gravity       float64 `json:"gravity"`
	Wind          float64 `json:"wind"`
}

// DefaultPhysics 返回默认物理常量
func DefaultPhysics() Physics {
	return Physics{
		AirResistance: DefaultAirResistance,
		Gravity:       DefaultGravity,
		Wind:          DefaultWind,
	}
}

// Projectile 弹体（纯逻辑结构，不包含渲染）
// 进攻导弹、加农炮弹和坍塌爆炸共用同一结构，只有常量和 CannonFire 标记不同。
type Projectile struct {
	ID    uint64
	Kind  Kind
	Phase Phase

	Pos Vec2
	Vel Vec2

	Radius     float64 // 碰撞半径（爆炸时为当前爆炸半径）
	DrawRadius float64

	BlastRadius    float64
	BlastTicks     int
	BlastTicksDone int

	Trail       []Vec2 // 最近的飞行轨迹，最旧的在前
	TrailLength int

	InvulnerableTicks int // 剩余免碰撞帧数
	GrowthTicks       int // 剩余半径增长帧数
	CannonFire        bool
}

// NewMissile 创建进攻导弹，爆炸半径为绘制半径的 5 倍
func NewMissile(pos, vel Vec2, drawRadius float64) *Projectile {
	blast := drawRadius * MissileBlastFactor
	return &Projectile{
		Kind:        KindMissile,
		Pos:         pos,
		Vel:         vel,
		Radius:      drawRadius,
		DrawRadius:  drawRadius,
		BlastRadius: blast,
		BlastTicks:  blastTicksFor(blast),
		TrailLength: TrailLength,
	}
}

// NewCannonShot 创建加农炮弹：初始半径为 0，发射后逐帧增大，并有短暂的免碰撞期
func NewCannonShot(pos, vel Vec2) *Projectile {
	return &Projectile{
		Kind:              KindCannonShot,
		Pos:               pos,
		Vel:               vel,
		BlastRadius:       CannonShotBlast,
		BlastTicks:        CannonShotBlastTicks,
		TrailLength:       TrailLength,
		InvulnerableTicks: CannonShotShielded,
		GrowthTicks:       CannonShotGrowth,
		CannonFire:        true,
	}
}

// NewSupportCollapse 创建炮座坍塌爆炸：直接处于爆炸状态，没有轨迹也不再飞行
func NewSupportCollapse(pos Vec2, blastRadius float64) *Projectile {
	return &Projectile{
		Kind:        KindSupportCollapse,
		Phase:       PhaseExploding,
		Pos:         pos,
		BlastRadius: blastRadius,
		BlastTicks:  CollapseBlastTicks,
	}
}

// blastTicksFor 爆炸持续帧数约为爆炸半径的 4/3
func blastTicksFor(blastRadius float64) int {
	return int(blastRadius*4) / 3
}

// Exploding 是否处于爆炸阶段
func (p *Projectile) Exploding() bool {
	return p.Phase == PhaseExploding
}

// Explode 进入爆炸阶段，返回是否是首次进入
func (p *Projectile) Explode() bool {
	if p.Phase == PhaseExploding {
		return false
	}
	p.Phase = PhaseExploding
	return true
}

// ExplosionProgress 爆炸进度（可能超过 1，渲染端自行截断）
func (p *Projectile) ExplosionProgress() float64 {
	if p.BlastTicks <= 0 {
		return 1
	}
	return float64(p.BlastTicksDone) / float64(p.BlastTicks)
}

// CurrentBlastRadius 当前爆炸半径，最后一帧不会超过 BlastRadius
func (p *Projectile) CurrentBlastRadius() float64 {
	return p.BlastRadius * math.Min(1, p.ExplosionProgress())
}

// Advance 推进一帧：飞行阶段做运动积分与碰撞检测，爆炸阶段持续炸毁地形
func (p *Projectile) Advance(physics Physics, terrain *TerrainGrid, resolver *Resolver) {
	if p.GrowthTicks > 0 {
		p.GrowthTicks--
		p.DrawRadius += 0.5
		p.Radius += 0.5
	}

	if p.Exploding() {
		p.BlastTicksDone++
		p.Radius = p.CurrentBlastRadius()
		terrain.DestroyCircle(p.Pos, p.Radius)
		return
	}

	p.integrate(physics)

	if p.InvulnerableTicks > 0 {
		p.InvulnerableTicks--
		return
	}
	if resolver != nil {
		resolver.Resolve(p)
	}
}

// integrate 位置积分、施加风力与重力、空气阻力，并记录轨迹
func (p *Projectile) integrate(physics Physics) {
	p.Pos = p.Pos.Add(p.Vel)
	p.Vel.X += physics.Wind
	p.Vel.Y += physics.Gravity
	p.Vel = p.Vel.Scale(physics.AirResistance)

	if p.TrailLength <= 0 {
		return
	}
	p.Trail = append(p.Trail, p.Pos)
	if over := len(p.Trail) - p.TrailLength; over > 0 {
		p.Trail = append(p.Trail[:0], p.Trail[over:]...)
	}
}

// IsGarbage 是否应当从模拟中移除：爆炸结束，或飞出屏幕且继续远离
func (p *Projectile) IsGarbage(width, height int) bool {
	if p.Exploding() {
		return p.BlastTicksDone > p.BlastTicks
	}

	w, h := float64(width), float64(height)
	switch {
	case p.Pos.Y > h+p.BlastRadius+p.DrawRadius: // 掉出屏幕底部
		return true
	case p.Pos.X > w+OffscreenMargin && p.Vel.X > 0:
		return true
	case p.Pos.X < -OffscreenMargin && p.Vel.X < 0:
		return true
	case p.Pos.Y < -OffscreenMargin && p.Vel.Y < 0:
		return true
	}
	return false
}
