package core

// ProjectileView 弹体的只读视图（渲染与网络同步使用）
type ProjectileView struct {
	ID          uint64
	Kind        Kind
	Pos         Vec2
	DrawRadius  float64
	Exploding   bool
	BlastRadius float64 // 当前爆炸半径
	Progress    float64 // 爆炸进度，已截断到 [0,1]
	Trail       []Vec2
}

// ShieldView 护盾的只读视图
type ShieldView struct {
	Center     Vec2
	HalfWidth  float64
	HalfHeight float64
	Online     bool
	Health     int
	Brightness int
}

// CannonView 加农炮的只读视图
type CannonView struct {
	Base      Vec2
	Direction Vec2
	Length    float64
	Destroyed bool
}

// Snapshot 某一帧结束时的完整可观测状态。
// Terrain 只在关键帧携带完整地形，其余帧只携带 TerrainChanges。
type Snapshot struct {
	Tick     uint64
	Width    int
	Height   int
	Score    int64
	AutoAim  bool
	CityLeft float64
	Reset    bool // 上次快照之后游戏被重开过

	Projectiles []ProjectileView
	Shield      ShieldView
	Cannon      CannonView

	Terrain        []bool
	TerrainChanges []CellChange
}

// Keyframe 是否携带完整地形
func (s *Snapshot) Keyframe() bool {
	return len(s.Terrain) > 0
}

// Snapshot 生成当前状态的快照。full 为 true 或地形刚被替换时携带完整地形。
func (g *Game) Snapshot(full bool) *Snapshot {
	snap := &Snapshot{
		Tick:     g.TickCount,
		Width:    g.Config.Width,
		Height:   g.Config.Height,
		Score:    g.Score,
		AutoAim:  g.AutoAim,
		CityLeft: g.CityRemaining(),
		Shield: ShieldView{
			Center:     g.Shield.Center,
			HalfWidth:  g.Shield.HalfWidth,
			HalfHeight: g.Shield.HalfHeight,
			Online:     g.Shield.Online(),
			Health:     g.Shield.Health,
			Brightness: g.Shield.Brightness,
		},
		Cannon: CannonView{
			Base:      g.Cannon.Base,
			Direction: g.Cannon.Direction,
			Length:    g.Cannon.Length,
			Destroyed: g.Cannon.Destroyed,
		},
	}

	snap.Projectiles = make([]ProjectileView, 0, len(g.Projectiles))
	for _, p := range g.Projectiles {
		snap.Projectiles = append(snap.Projectiles, viewOf(p))
	}

	if full || g.keyframe {
		snap.Terrain = g.Terrain.Bitmap()
		snap.Reset = g.keyframe
		g.keyframe = false
	} else {
		changes := g.Terrain.Changes()
		snap.TerrainChanges = make([]CellChange, len(changes))
		copy(snap.TerrainChanges, changes)
	}
	return snap
}

func viewOf(p *Projectile) ProjectileView {
	v := ProjectileView{
		ID:         p.ID,
		Kind:       p.Kind,
		Pos:        p.Pos,
		DrawRadius: p.DrawRadius,
		Exploding:  p.Exploding(),
	}
	if v.Exploding {
		v.BlastRadius = p.CurrentBlastRadius()
		v.Progress = min(1, p.ExplosionProgress())
	}
	if len(p.Trail) > 0 {
		v.Trail = make([]Vec2, len(p.Trail))
		copy(v.Trail, p.Trail)
	}
	return v
}

// ApplyTerrain 把快照中的地形信息合并到 cells（行优先）。
// 关键帧直接替换；增量帧逐个写入变化，越界的变化被忽略。
// 返回合并后的网格，cells 尺寸不符时重新分配。
func (s *Snapshot) ApplyTerrain(cells []bool) []bool {
	if s.Keyframe() {
		if len(cells) != len(s.Terrain) {
			cells = make([]bool, len(s.Terrain))
		}
		copy(cells, s.Terrain)
		return cells
	}

	if len(cells) != s.Width*s.Height {
		cells = make([]bool, s.Width*s.Height)
	}
	for _, c := range s.TerrainChanges {
		if c.X < 0 || c.X >= s.Width || c.Y < 0 || c.Y >= s.Height {
			continue
		}
		cells[c.Y*s.Width+c.X] = c.Occupied
	}
	return cells
}
