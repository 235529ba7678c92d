package ai

import (
	"missiledefence/pkg/core"
)

// Blackboard 行为树共享的数据
type Blackboard struct {
	Snapshot *core.Snapshot
	Physics  core.Physics
	Threats  *ThreatField
	Config   *AIConfig

	Target    *Threat
	NextInput core.Input

	// 上一次瞄准点，待机时从这里缓慢回正
	LastAim core.Vec2
	HasAim  bool
}

// ResetFrame 每次思考前清空本帧结果
func (bb *Blackboard) ResetFrame(snap *core.Snapshot, physics core.Physics) {
	bb.Snapshot = snap
	bb.Physics = physics
	bb.Target = nil
	bb.NextInput = core.Input{}
	// 重开一局后直接回到待机位置
	if snap.Reset {
		bb.HasAim = false
	}
}
