package core

// 屏幕与地形配置
const (
	ScreenWidth  = 640
	ScreenHeight = 480
)

// 模拟帧率（核心没有时钟，由调用方按此节奏调用 Tick）
const (
	TPS          = 30
	FrameSeconds = 1.0 / TPS
)

// 物理常量（所有弹体共享）
const (
	DefaultAirResistance = 0.999
	DefaultGravity       = 0.05
	DefaultWind          = 0.0
)

// 碰撞配置
const (
	SpatialCellSize  = 50.0 // 空间索引格子边长
	CollisionSamples = 11   // 每帧沿速度方向的采样点数（含两端）
	HitScore         = 200  // 击毁一枚进攻导弹的得分
)

// 导弹配置
const (
	TrailLength         = 10
	MissileMinDraw      = 2
	MissileMaxDraw      = 7 // 不含
	MissileBlastFactor  = 5 // 爆炸半径 = 绘制半径 * 5
	OffscreenMargin     = 200.0
	SpawnY              = -50.0
	SpawnSettleY        = -20.0
	SpawnSettleMaxSteps = 100
	SpawnSideMargin     = 500.0
)

// 加农炮配置（帧为单位）
const (
	CannonLength         = 30.0
	CannonBaseOffset     = 99 // 炮座距离屏幕底部的行数
	CannonReloadFrames   = 8
	CannonMissileSpeed   = 20.0
	CannonSpreadRadians  = 0.08
	CannonShotBlast      = 20.0
	CannonShotBlastTicks = 12
	CannonShotGrowth     = 30 // 发射后半径增长的帧数，每帧 +0.5
	CannonShotShielded   = 6  // 发射后免碰撞的帧数
	CollapseBlastTicks   = 30
)

// 护盾配置
const (
	DefaultShieldHealth = 2
	ShieldBoostAmount   = 20
	ShieldFlashStep     = 30
	ShieldFlashMax      = 70
)

// 刷怪与结算配置
const (
	DefaultSpawnThreshold = 0.01
	DefaultSpawnGrowth    = 0.0001
	BookkeepingFrames     = 30  // 每 30 帧结算一次
	SurvivalScore         = 100 // 每次结算的存活奖励
	ResetRatio            = 0.2 // 城市剩余比例低于该值时重开
	CityBandRows          = 100 // 统计城市剩余量的底部行数
	AutoAimSafetyRows     = 300 // 自动瞄准只选择 H-300 以上的目标
	AutoAimLeadFrames     = 4
)
