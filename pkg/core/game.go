package core

// Config 模拟配置
type Config struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Physics        Physics `json:"physics"`
	ShieldHealth   int     `json:"shieldHealth"`
	SpawnThreshold float64 `json:"spawnThreshold"` // 每帧期望生成的导弹数的初始值
	SpawnGrowth    float64 `json:"spawnGrowth"`    // 每帧阈值增长量
	AutoReset      bool    `json:"autoReset"`      // 城市基本被摧毁时自动重开
	Seed           int64   `json:"seed"`           // 0 表示按时间播种
}

// DefaultConfig 返回默认模拟配置
func DefaultConfig() Config {
	return Config{
		Width:          ScreenWidth,
		Height:         ScreenHeight,
		Physics:        DefaultPhysics(),
		ShieldHealth:   DefaultShieldHealth,
		SpawnThreshold: DefaultSpawnThreshold,
		SpawnGrowth:    DefaultSpawnGrowth,
		AutoReset:      true,
	}
}

// Game 游戏状态（纯逻辑，不包含渲染），单线程按帧推进
type Game struct {
	Config Config

	Terrain     *TerrainGrid
	Shield      *ShieldDome
	Cannon      *Cannon
	Projectiles []*Projectile
	Score       int64
	TickCount   uint64
	AutoAim     bool

	rng      Rand
	source   TerrainSource
	index    *SpatialIndex
	resolver Resolver

	threshold   float64
	nextID      uint64
	initialCity int  // 重开时底部城市的占据格子数
	keyframe    bool // 地形被整体替换，下一次快照需要携带完整地形
}

// NewGame 创建新游戏。rng 为 nil 时按 cfg.Seed 创建，source 为 nil 时使用城市生成器。
func NewGame(cfg Config, rng Rand, source TerrainSource) *Game {
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	if source == nil {
		source = CityGenerator{}
	}

	g := &Game{
		Config: cfg,
		rng:    rng,
		source: source,
		index:  NewSpatialIndex(SpatialCellSize),
	}
	g.Reset()
	return g
}

// Reset 重新初始化全部状态：新地形、加农炮、护盾，清空弹体，分数归零
func (g *Game) Reset() {
	w, h := g.Config.Width, g.Config.Height

	g.Terrain = NewTerrainGrid(w, h, g.source.Silhouette(w, h, g.rng))
	g.Shield = NewShieldDome(w, h, g.Config.ShieldHealth)
	g.Cannon = NewCannon(Vec2{X: float64(w / 2), Y: float64(h - CannonBaseOffset)})
	g.Projectiles = make([]*Projectile, 0)
	g.Score = 0
	g.threshold = g.Config.SpawnThreshold
	g.initialCity = g.Terrain.CountRows(h - CityBandRows)
	g.keyframe = true

	g.resolver = Resolver{
		Terrain: g.Terrain,
		Shield:  g.Shield,
		Index:   g.index,
	}
}

// AddProjectile 分配 ID 并加入模拟
func (g *Game) AddProjectile(p *Projectile) {
	g.nextID++
	p.ID = g.nextID
	g.Projectiles = append(g.Projectiles, p)
}

// Tick 推进一帧：
// 重建空间索引 → 推进全部弹体 → 地形压实 → 加农炮 → 清理 → 生成新导弹 → 周期结算
func (g *Game) Tick() {
	g.TickCount++
	g.Terrain.ResetChanges()
	g.Shield.Tick()

	g.index.Rebuild(g.Projectiles)
	for _, p := range g.Projectiles {
		p.Advance(g.Config.Physics, g.Terrain, &g.resolver)
	}
	g.Score += g.resolver.TakePoints()

	g.Terrain.CompactStep()

	if collapse := g.Cannon.Update(g.Terrain); collapse != nil {
		g.AddProjectile(collapse)
	}

	g.cull()
	g.spawn()
	g.bookkeeping()
}

// cull 移除已成为垃圾的弹体
func (g *Game) cull() {
	keep := g.Projectiles[:0]
	for _, p := range g.Projectiles {
		if !p.IsGarbage(g.Config.Width, g.Config.Height) {
			keep = append(keep, p)
		}
	}
	clear(g.Projectiles[len(keep):])
	g.Projectiles = keep
}

// spawn 按逐渐升高的阈值随机生成导弹
func (g *Game) spawn() {
	g.threshold += g.Config.SpawnGrowth

	m := g.threshold
	for m > 0 {
		m -= g.rng.Float64()
		if m > 0 {
			g.AddProjectile(g.newFallingMissile())
		}
	}
}

// newFallingMissile 在屏幕上方随机位置生成导弹，并预先飞行到接近屏幕顶端
func (g *Game) newFallingMissile() *Projectile {
	w := float64(g.Config.Width)
	pos := Vec2{X: uniform(g.rng, -SpawnSideMargin, w+SpawnSideMargin), Y: SpawnY}
	vel := Vec2{X: uniform(g.rng, -3, 3), Y: uniform(g.rng, 2, 7)}
	draw := float64(int(uniform(g.rng, MissileMinDraw, MissileMaxDraw)))

	p := NewMissile(pos, vel, draw)
	for i := 0; i < SpawnSettleMaxSteps && p.Pos.Y < SpawnSettleY; i++ {
		p.integrate(g.Config.Physics)
	}
	return p
}

// bookkeeping 周期结算：城市基本被摧毁时重开，否则发放存活奖励
func (g *Game) bookkeeping() {
	if g.TickCount%BookkeepingFrames != 0 {
		return
	}

	if g.Config.AutoReset && g.initialCity > 0 {
		remaining := g.Terrain.CountRows(g.Config.Height - CityBandRows)
		if float64(remaining)/float64(g.initialCity) < ResetRatio {
			g.Reset()
		}
	}
	g.Score += SurvivalScore
}

// CityRemaining 底部城市剩余比例（0-1）
func (g *Game) CityRemaining() float64 {
	if g.initialCity == 0 {
		return 0
	}
	return float64(g.Terrain.CountRows(g.Config.Height-CityBandRows)) / float64(g.initialCity)
}

// SpawnThreshold 当前刷怪阈值
func (g *Game) SpawnThreshold() float64 {
	return g.threshold
}
