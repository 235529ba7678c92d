// Package ai 为加农炮提供自动驾驶：预测来袭导弹的落点，挑选最危险且能拦截的目标开火。
// 只读取 core.Snapshot，因此本地模式和联机模式都可以使用。
package ai

import (
	"math/rand"

	"missiledefence/pkg/ai/bt"
	"missiledefence/pkg/core"
)

// 失误时瞄准点的最大偏移
const mistakeJitter = 30.0

type AIController struct {
	rnd    *rand.Rand
	config *AIConfig

	thinkIntervalFrames int
	thinkCounter        int
	cachedInput         core.Input
	hasThought          bool
	lastCannonLost      bool

	blackboard Blackboard
	tree       bt.Node[*Blackboard]
	threats    ThreatField
}

// NewAIController 创建自动驾驶，使用默认配置（普通难度）
func NewAIController(seed int64) *AIController {
	return NewAIControllerWithConfig(seed, &AIConfigNormal)
}

// NewAIControllerWithConfig 创建自动驾驶，使用指定配置
func NewAIControllerWithConfig(seed int64, config *AIConfig) *AIController {
	if config == nil {
		config = &AIConfigNormal
	}
	rnd := rand.New(rand.NewSource(seed))

	controller := &AIController{
		rnd:                 rnd,
		config:              config,
		thinkIntervalFrames: max(1, config.ThinkIntervalFrames),
		tree:                newTree(),
	}
	controller.blackboard = Blackboard{
		Threats: &controller.threats,
		Config:  config,
	}
	return controller
}

// Decide 根据快照给出本帧输入。两次思考之间沿用上次的瞄准和按住开火，边沿触发的按键只发送一次。
func (c *AIController) Decide(snap *core.Snapshot, physics core.Physics) core.Input {
	if snap == nil {
		return core.Input{}
	}

	force := snap.Reset || snap.Cannon.Destroyed != c.lastCannonLost
	c.lastCannonLost = snap.Cannon.Destroyed

	c.thinkCounter++
	if !force && c.hasThought && c.thinkCounter < c.thinkIntervalFrames {
		return holdInput(c.cachedInput)
	}
	c.thinkCounter = 0
	c.hasThought = true

	c.blackboard.ResetFrame(snap, physics)
	c.threats.Update(snap, physics, c.config.HorizonFrames)
	_ = c.tree.Tick(&c.blackboard)

	next := c.blackboard.NextInput
	if c.config.MistakeRate > 0 && c.rnd.Float64() < c.config.MistakeRate {
		switch c.rnd.Intn(2) {
		case 0:
			// 什么都不做
			next = core.Input{Aim: next.Aim}
		case 1:
			// 手抖
			next.Aim.X += (c.rnd.Float64()*2 - 1) * mistakeJitter
			next.Aim.Y += (c.rnd.Float64()*2 - 1) * mistakeJitter
		}
	}

	c.cachedInput = next
	return next
}

// Threats 最近一次思考得到的威胁列表
func (c *AIController) Threats() []Threat {
	return c.threats.Threats
}

// GetConfig 获取当前配置
func (c *AIController) GetConfig() *AIConfig {
	return c.config
}

// SetConfig 设置新配置
func (c *AIController) SetConfig(config *AIConfig) {
	if config == nil {
		return
	}
	c.config = config
	c.blackboard.Config = config
	c.thinkIntervalFrames = max(1, config.ThinkIntervalFrames)
}

func holdInput(in core.Input) core.Input {
	return core.Input{Aim: in.Aim, FireHeld: in.FireHeld}
}
