package core

// HitKind 碰撞结果类型
type HitKind uint8

const (
	HitNone HitKind = iota
	HitShield
	HitTerrain
	HitProjectile
)

// String 返回碰撞类型的字符串表示
func (h HitKind) String() string {
	switch h {
	case HitNone:
		return "none"
	case HitShield:
		return "shield"
	case HitTerrain:
		return "terrain"
	case HitProjectile:
		return "projectile"
	}
	return "unknown"
}

// Resolver 碰撞裁决器：沿速度方向扫掠采样，依次检测护盾、地形与其他弹体。
// 只在一帧内借用地形、护盾和空间索引。
type Resolver struct {
	Terrain *TerrainGrid
	Shield  *ShieldDome
	Index   *SpatialIndex

	points int64         // 本帧累计得分，由模拟循环取走
	buf    []*Projectile // 邻居查询复用的缓冲区
}

// SweepSamples 返回从 pos 到 pos+vel（含两端）均匀分布的采样点
func SweepSamples(pos, vel Vec2) [CollisionSamples]Vec2 {
	var out [CollisionSamples]Vec2
	end := pos.Add(vel)
	for i := range out {
		out[i] = pos.Lerp(end, float64(i)/float64(CollisionSamples-1))
	}
	return out
}

// Resolve 对一枚飞行中的弹体做连续碰撞检测。
// 最早命中的采样点生效；同一采样点内护盾优先于地形，地形优先于弹体。
func (r *Resolver) Resolve(p *Projectile) HitKind {
	if p.Exploding() {
		return HitNone
	}

	for _, sample := range SweepSamples(p.Pos, p.Vel) {
		if !p.CannonFire && r.Shield != nil && r.Shield.CollisionCheck(sample) {
			p.Pos = sample // 不要打进护盾内部
			p.Explode()
			return HitShield
		}

		if r.Terrain != nil && r.Terrain.OccupiedAt(sample) {
			p.Pos = sample
			p.Explode()
			return HitTerrain
		}

		if r.Index != nil && r.collideProjectiles(p, sample) {
			return HitProjectile
		}
	}
	return HitNone
}

// collideProjectiles 检测采样点处与邻近弹体的圆形重叠。
// 两枚防御弹之间不会相撞；只有首次被引爆的进攻弹体计分。
func (r *Resolver) collideProjectiles(p *Projectile, sample Vec2) bool {
	r.buf = r.Index.Nearby(sample, r.buf[:0])
	for _, q := range r.buf {
		if q == p || (p.CannonFire && q.CannonFire) {
			continue
		}

		radiusSum := p.Radius + q.Radius
		if sample.Sub(q.Pos).LenSq() > radiusSum*radiusSum {
			continue
		}

		if p.Explode() && !p.CannonFire {
			r.points += HitScore
		}
		if q.Explode() && !q.CannonFire {
			r.points += HitScore
		}
		return true
	}
	return false
}

// TakePoints 取走本帧累计的得分
func (r *Resolver) TakePoints() int64 {
	pts := r.points
	r.points = 0
	return pts
}
