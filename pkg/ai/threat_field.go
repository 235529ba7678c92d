package ai

import (
	"math"
	"sort"

	"missiledefence/pkg/core"
)

const (
	// 落点在加农炮附近时威胁加倍
	cannonGuardRadius = 40.0
	cannonWeight      = 2.0
	cityWeight        = 1.0
	// 护盾在线时落点在护盾下方的导弹威胁减半
	shieldedFactor = 0.5
)

// Threat 一枚来袭导弹的预测结果
type Threat struct {
	ID       uint64
	Pos      core.Vec2
	Vel      core.Vec2
	ImpactX  float64
	ImpactIn int         // 距离落入城市带的帧数
	Level    float64     // 越大越危险
	Path     []core.Vec2 // Path[i] 为 i+1 帧后的位置
}

// PositionAt 预测 t 帧后的位置，超出预测范围时返回最后一个点
func (t *Threat) PositionAt(frames int) core.Vec2 {
	if frames <= 0 || len(t.Path) == 0 {
		return t.Pos
	}
	if frames > len(t.Path) {
		return t.Path[len(t.Path)-1]
	}
	return t.Path[frames-1]
}

// ThreatField 根据快照预测每枚导弹的轨迹和落点
type ThreatField struct {
	Threats []Threat // 按 Level 从高到低
}

// EstimateVelocity 用轨迹最后两点反推当前速度，轨迹不足两点时返回 false
func EstimateVelocity(p core.ProjectileView, physics core.Physics) (core.Vec2, bool) {
	n := len(p.Trail)
	if n < 2 {
		return core.Vec2{}, false
	}
	d := p.Trail[n-1].Sub(p.Trail[n-2])
	d.X += physics.Wind
	d.Y += physics.Gravity
	return d.Scale(physics.AirResistance), true
}

// Update 重新计算威胁
func (tf *ThreatField) Update(snap *core.Snapshot, physics core.Physics, horizon int) {
	tf.Threats = tf.Threats[:0]
	if snap == nil {
		return
	}

	w := float64(snap.Width)
	cityTop := float64(snap.Height - core.CityBandRows)

	for _, p := range snap.Projectiles {
		if p.Kind != core.KindMissile || p.Exploding {
			continue
		}
		vel, ok := EstimateVelocity(p, physics)
		if !ok {
			continue
		}

		threat := Threat{ID: p.ID, Pos: p.Pos, Vel: vel, ImpactIn: -1}
		pos, v := p.Pos, vel
		for i := 1; i <= horizon; i++ {
			pos = pos.Add(v)
			v.X += physics.Wind
			v.Y += physics.Gravity
			v = v.Scale(physics.AirResistance)
			threat.Path = append(threat.Path, pos)
			if pos.Y >= cityTop {
				threat.ImpactX = pos.X
				threat.ImpactIn = i
				break
			}
		}
		if threat.ImpactIn < 0 || threat.ImpactX < 0 || threat.ImpactX >= w {
			// 预测范围内不会落在城市上
			continue
		}

		weight := cityWeight
		if math.Abs(threat.ImpactX-snap.Cannon.Base.X) <= cannonGuardRadius {
			weight = cannonWeight
		}
		if shielded(snap.Shield, threat.ImpactX) {
			weight *= shieldedFactor
		}
		threat.Level = weight / float64(1+threat.ImpactIn)
		tf.Threats = append(tf.Threats, threat)
	}

	sort.SliceStable(tf.Threats, func(i, j int) bool {
		return tf.Threats[i].Level > tf.Threats[j].Level
	})
}

// Most 最危险的导弹
func (tf *ThreatField) Most() *Threat {
	if len(tf.Threats) == 0 {
		return nil
	}
	return &tf.Threats[0]
}

func shielded(s core.ShieldView, x float64) bool {
	return s.Online && math.Abs(x-s.Center.X) < s.HalfWidth
}

// Intercept 计算炮弹与导弹相遇的瞄准点。
// 炮弹近似为匀速直线，找到第一个炮弹飞行时间不超过导弹到达时间的预测点。
func Intercept(base core.Vec2, t *Threat) (core.Vec2, bool) {
	for i := 1; i <= len(t.Path); i++ {
		p := t.PositionAt(i)
		if p.Y >= base.Y {
			break
		}
		if p.Sub(base).Len()/core.CannonMissileSpeed <= float64(i) {
			return p, true
		}
	}
	return core.Vec2{}, false
}
