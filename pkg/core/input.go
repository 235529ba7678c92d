package core

// Input 表示一帧内玩家的输入
type Input struct {
	Aim           Vec2 // 瞄准点（手动模式下炮管跟随）
	Fire          bool // 本帧按下开火
	FireHeld      bool // 持续按住开火
	ToggleAutoAim bool
	Reset         bool
	BoostShield   bool
}

// ApplyInput 将一帧的输入应用到游戏，返回本帧是否开火。
// 必须在 Tick 之前调用，每帧至多一次。
func ApplyInput(game *Game, input Input) bool {
	if game == nil {
		return false
	}

	if input.Reset {
		game.Reset()
	}
	if input.ToggleAutoAim {
		game.AutoAim = !game.AutoAim
	}
	if input.BoostShield {
		game.Shield.Boost(ShieldBoostAmount)
	}

	if !game.AutoAim {
		game.Cannon.AimAt(input.Aim)
	}

	// 有弹体贴近炮座时不开火，避免炸到自己
	if game.threatNearCannon() {
		return false
	}

	if game.AutoAim {
		if !game.Cannon.CanFire() {
			return false
		}
		target, ok := game.pickAutoTarget()
		if !ok {
			return false
		}
		return game.fireAt(target)
	}

	if input.Fire || input.FireHeld {
		return game.fireAt(input.Aim)
	}
	return false
}

// threatNearCannon 是否有弹体位于其自身半径范围内贴近炮座
func (g *Game) threatNearCannon() bool {
	for _, p := range g.Projectiles {
		if p.Pos.Sub(g.Cannon.Base).LenSq() < p.Radius*p.Radius {
			return true
		}
	}
	return false
}

// pickAutoTarget 从有效目标中随机挑选一个，返回其提前量位置
func (g *Game) pickAutoTarget() (Vec2, bool) {
	w := float64(g.Config.Width)
	safety := float64(g.Config.Height - AutoAimSafetyRows)

	candidates := make([]*Projectile, 0, len(g.Projectiles))
	for _, p := range g.Projectiles {
		if p.CannonFire || p.Exploding() || p.Vel.Y <= 0 {
			continue
		}
		if p.Pos.X <= 0 || p.Pos.X >= w || p.Pos.Y <= 0 || p.Pos.Y >= safety {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return Vec2{}, false
	}

	target := candidates[g.rng.Intn(len(candidates))]
	return target.Pos.Add(target.Vel.Scale(AutoAimLeadFrames)), true
}

func (g *Game) fireAt(target Vec2) bool {
	shots := g.Cannon.Fire(target)
	for _, shot := range shots {
		g.AddProjectile(shot)
	}
	return len(shots) > 0
}
