package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"missiledefence/pkg/core"
)

const (
	DefaultAddr        = ":8080"
	DefaultTransport   = "tcp"
	DefaultTickRate    = core.TPS
	DefaultSessionTTL  = 5 * time.Minute
	DefaultInputRate   = 90 // 每秒最多接受的上行帧数
	DefaultInputBurst  = 30
	DefaultMaxSessions = 64

	jwtSecretEnv     = "MISSILE_JWT_SECRET"
	defaultJWTSecret = "missiledefence-dev-secret-change-in-production"
)

// AppConfig 服务器配置
type AppConfig struct {
	Addr        string
	Transport   string // tcp 或 kcp
	WSAddr      string // 为空时不启动 WebSocket 入口
	TickRate    int
	SessionTTL  time.Duration
	JWTSecret   string
	InputRate   float64
	InputBurst  int
	MaxSessions int
	Game        core.Config
}

// DefaultAppConfig 返回默认配置，JWT 密钥优先读取环境变量
func DefaultAppConfig() AppConfig {
	secret := os.Getenv(jwtSecretEnv)
	if secret == "" {
		secret = defaultJWTSecret
	}
	return AppConfig{
		Addr:        DefaultAddr,
		Transport:   DefaultTransport,
		TickRate:    DefaultTickRate,
		SessionTTL:  DefaultSessionTTL,
		JWTSecret:   secret,
		InputRate:   DefaultInputRate,
		InputBurst:  DefaultInputBurst,
		MaxSessions: DefaultMaxSessions,
		Game:        core.DefaultConfig(),
	}
}

// TickDuration 每帧时长
func (c AppConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

type physicsConfig struct {
	AirResistance *float64 `json:"airResistance"`
	Gravity       *float64 `json:"gravity"`
	Wind          *float64 `json:"wind"`
}

type gameConfig struct {
	Width          *int           `json:"width"`
	Height         *int           `json:"height"`
	Physics        *physicsConfig `json:"physics"`
	ShieldHealth   *int           `json:"shieldHealth"`
	SpawnThreshold *float64       `json:"spawnThreshold"`
	SpawnGrowth    *float64       `json:"spawnGrowth"`
	AutoReset      *bool          `json:"autoReset"`
	Seed           *int64         `json:"seed"`
}

type fileConfig struct {
	Addr        *string     `json:"addr"`
	Transport   *string     `json:"transport"`
	WSAddr      *string     `json:"wsAddr"`
	TickRate    *int        `json:"tickRate"`
	SessionTTL  *string     `json:"sessionTTL"` // time.ParseDuration 格式，如 "5m"
	JWTSecret   *string     `json:"jwtSecret"`
	InputRate   *float64    `json:"inputRate"`
	InputBurst  *int        `json:"inputBurst"`
	MaxSessions *int        `json:"maxSessions"`
	Game        *gameConfig `json:"game"`
}

// LoadConfig 从 JSON 文件合并配置，文件中缺失的键保留 base 的值。
// path 为空或文件不存在时直接返回 base。
func LoadConfig(path string, base AppConfig) (AppConfig, error) {
	if path == "" {
		return base.Sanitize(), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return base.Sanitize(), nil
		}
		return base.Sanitize(), fmt.Errorf("read config %q: %w", cleanPath, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base.Sanitize(), fmt.Errorf("parse config %q: %w", cleanPath, err)
	}
	merged, err := mergeConfig(base, &cfg)
	if err != nil {
		return base.Sanitize(), fmt.Errorf("config %q: %w", cleanPath, err)
	}
	return merged.Sanitize(), nil
}

func mergeConfig(base AppConfig, cfg *fileConfig) (AppConfig, error) {
	if cfg.Addr != nil {
		base.Addr = *cfg.Addr
	}
	if cfg.Transport != nil {
		base.Transport = *cfg.Transport
	}
	if cfg.WSAddr != nil {
		base.WSAddr = *cfg.WSAddr
	}
	if cfg.TickRate != nil {
		base.TickRate = *cfg.TickRate
	}
	if cfg.SessionTTL != nil {
		ttl, err := time.ParseDuration(*cfg.SessionTTL)
		if err != nil {
			return base, fmt.Errorf("sessionTTL: %w", err)
		}
		base.SessionTTL = ttl
	}
	if cfg.JWTSecret != nil {
		base.JWTSecret = *cfg.JWTSecret
	}
	if cfg.InputRate != nil {
		base.InputRate = *cfg.InputRate
	}
	if cfg.InputBurst != nil {
		base.InputBurst = *cfg.InputBurst
	}
	if cfg.MaxSessions != nil {
		base.MaxSessions = *cfg.MaxSessions
	}
	base.Game = mergeGameConfig(base.Game, cfg.Game)
	return base, nil
}

func mergeGameConfig(base core.Config, cfg *gameConfig) core.Config {
	if cfg == nil {
		return base
	}
	if cfg.Width != nil {
		base.Width = *cfg.Width
	}
	if cfg.Height != nil {
		base.Height = *cfg.Height
	}
	if p := cfg.Physics; p != nil {
		if p.AirResistance != nil {
			base.Physics.AirResistance = *p.AirResistance
		}
		if p.Gravity != nil {
			base.Physics.Gravity = *p.Gravity
		}
		if p.Wind != nil {
			base.Physics.Wind = *p.Wind
		}
	}
	if cfg.ShieldHealth != nil {
		base.ShieldHealth = *cfg.ShieldHealth
	}
	if cfg.SpawnThreshold != nil {
		base.SpawnThreshold = *cfg.SpawnThreshold
	}
	if cfg.SpawnGrowth != nil {
		base.SpawnGrowth = *cfg.SpawnGrowth
	}
	if cfg.AutoReset != nil {
		base.AutoReset = *cfg.AutoReset
	}
	if cfg.Seed != nil {
		base.Seed = *cfg.Seed
	}
	return base
}

// Overrides 命令行覆盖项，nil 表示未指定
type Overrides struct {
	Addr      *string
	Transport *string
	WSAddr    *string
	TickRate  *int
	Seed      *int64
}

// Apply 将命令行覆盖项应用到配置
func (o Overrides) Apply(base AppConfig) AppConfig {
	if o.Addr != nil {
		base.Addr = *o.Addr
	}
	if o.Transport != nil {
		base.Transport = *o.Transport
	}
	if o.WSAddr != nil {
		base.WSAddr = *o.WSAddr
	}
	if o.TickRate != nil {
		base.TickRate = *o.TickRate
	}
	if o.Seed != nil {
		base.Game.Seed = *o.Seed
	}
	return base.Sanitize()
}

// Sanitize 将非法值回退为默认值
func (c AppConfig) Sanitize() AppConfig {
	def := DefaultAppConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Transport != "tcp" && c.Transport != "kcp" {
		c.Transport = def.Transport
	}
	if c.TickRate <= 0 || c.TickRate > 240 {
		c.TickRate = def.TickRate
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.JWTSecret == "" {
		c.JWTSecret = def.JWTSecret
	}
	if c.InputRate <= 0 {
		c.InputRate = def.InputRate
	}
	if c.InputBurst <= 0 {
		c.InputBurst = def.InputBurst
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = def.MaxSessions
	}

	g := &c.Game
	// 城市底部 100 行和炮座需要足够的高度
	if g.Width < 100 || g.Height < 200 {
		g.Width, g.Height = def.Game.Width, def.Game.Height
	}
	if g.ShieldHealth < 0 {
		g.ShieldHealth = def.Game.ShieldHealth
	}
	if g.SpawnThreshold < 0 {
		g.SpawnThreshold = def.Game.SpawnThreshold
	}
	if g.SpawnGrowth < 0 {
		g.SpawnGrowth = def.Game.SpawnGrowth
	}
	if g.Physics.AirResistance <= 0 || g.Physics.AirResistance > 1 {
		g.Physics.AirResistance = def.Game.Physics.AirResistance
	}
	return c
}
