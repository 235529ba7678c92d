package ai

import (
	"missiledefence/pkg/ai/bt"
	"missiledefence/pkg/core"
)

const (
	// 待机瞄准点位于炮座正上方
	idleAimHeight = 200.0
	// 每次思考向待机点靠拢的比例
	idleEase = 0.25
)

// ========== 生存 ==========

func condCannonLost(bb *Blackboard) bool {
	return bb.Config.ResetWhenCannonLost && bb.Snapshot.Cannon.Destroyed
}

func actReset(bb *Blackboard) bt.Status {
	bb.NextInput.Reset = true
	return bt.StatusSuccess
}

func condShieldWeak(bb *Blackboard) bool {
	s := bb.Snapshot.Shield
	return bb.Config.BoostShieldBelow > 0 && s.Online && s.Health < bb.Config.BoostShieldBelow
}

func actBoostShield(bb *Blackboard) bt.Status {
	bb.NextInput.BoostShield = true
	return bt.StatusSuccess
}

// ========== 攻击 ==========

func condHasThreat(bb *Blackboard) bool {
	return !bb.Snapshot.Cannon.Destroyed && len(bb.Threats.Threats) > 0
}

// actPickTarget 选择第一个能拦截的威胁
func actPickTarget(bb *Blackboard) bt.Status {
	base := bb.Snapshot.Cannon.Base
	for i := range bb.Threats.Threats {
		t := &bb.Threats.Threats[i]
		if _, ok := Intercept(base, t); ok {
			bb.Target = t
			return bt.StatusSuccess
		}
	}
	return bt.StatusFailure
}

func actAim(bb *Blackboard) bt.Status {
	if bb.Target == nil {
		return bt.StatusFailure
	}
	aim, ok := Intercept(bb.Snapshot.Cannon.Base, bb.Target)
	if !ok {
		return bt.StatusFailure
	}
	setAim(bb, aim)
	return bt.StatusSuccess
}

func actFire(bb *Blackboard) bt.Status {
	bb.NextInput.Fire = true
	bb.NextInput.FireHeld = true
	return bt.StatusSuccess
}

// ========== 待机 ==========

func actIdle(bb *Blackboard) bt.Status {
	base := bb.Snapshot.Cannon.Base
	idle := core.Vec2{X: base.X, Y: base.Y - idleAimHeight}
	if bb.HasAim {
		idle = bb.LastAim.Lerp(idle, idleEase)
	}
	setAim(bb, idle)
	return bt.StatusSuccess
}

func setAim(bb *Blackboard, aim core.Vec2) {
	bb.NextInput.Aim = aim
	bb.LastAim = aim
	bb.HasAim = true
}

func succeed(*Blackboard) bt.Status { return bt.StatusSuccess }

// newTree 构建行为树：先处理生存（可选），再攻击，无目标时待机
func newTree() bt.Node[*Blackboard] {
	type (
		seq  = bt.Sequence[*Blackboard]
		sel  = bt.Selector[*Blackboard]
		cond = bt.Condition[*Blackboard]
		act  = bt.Action[*Blackboard]
	)

	survival := &sel{Children: []bt.Node[*Blackboard]{
		&seq{Children: []bt.Node[*Blackboard]{
			&cond{Check: condCannonLost},
			&act{Do: actReset},
		}},
		&seq{Children: []bt.Node[*Blackboard]{
			&cond{Check: condShieldWeak},
			&act{Do: actBoostShield},
		}},
		&act{Do: succeed},
	}}

	engage := &sel{Children: []bt.Node[*Blackboard]{
		&seq{Children: []bt.Node[*Blackboard]{
			&cond{Check: condHasThreat},
			&act{Do: actPickTarget},
			&act{Do: actAim},
			&act{Do: actFire},
		}},
		&act{Do: actIdle},
	}}

	return &seq{Children: []bt.Node[*Blackboard]{survival, engage}}
}
