package core

// Kind 弹体种类，只影响常量与配色，不影响状态机
type Kind uint8

const (
	KindMissile         Kind = iota // 从天而降的进攻导弹
	KindCannonShot                  // 加农炮发射的防御弹
	KindSupportCollapse             // 炮座失去支撑后的坍塌爆炸
)

// String 返回弹体种类的字符串表示
func (k Kind) String() string {
	switch k {
	case KindMissile:
		return "missile"
	case KindCannonShot:
		return "cannon-shot"
	case KindSupportCollapse:
		return "support-collapse"
	}
	return "unknown"
}

// Phase 弹体生命周期阶段。Garbage 不单独存储，由 IsGarbage 计算。
type Phase uint8

const (
	PhaseFlying Phase = iota
	PhaseExploding
)

// String 返回阶段的字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseFlying:
		return "flying"
	case PhaseExploding:
		return "exploding"
	}
	return "unknown"
}
