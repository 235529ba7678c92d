package ai

// AIConfig 定义自动驾驶的行为参数
type AIConfig struct {
	// ThinkIntervalFrames 思考间隔（帧），值越小反应越快
	ThinkIntervalFrames int

	// MistakeRate 随机失误率 (0.0-1.0)
	MistakeRate float64

	// HorizonFrames 预测导弹轨迹的最大帧数
	HorizonFrames int

	// BoostShieldBelow 护盾生命低于该值时补充护盾，0 表示从不补充
	BoostShieldBelow int

	// ResetWhenCannonLost 加农炮被毁后是否重开
	ResetWhenCannonLost bool
}

// 预设配置：普通难度
var AIConfigNormal = AIConfig{
	ThinkIntervalFrames: 6,    // 0.2s
	MistakeRate:         0.05, // 5% 失误率
	HorizonFrames:       120,
	BoostShieldBelow:    0,
	ResetWhenCannonLost: false,
}

// 预设配置：困难难度
var AIConfigHard = AIConfig{
	ThinkIntervalFrames: 1,
	MistakeRate:         0.0, // 无失误
	HorizonFrames:       240,
	BoostShieldBelow:    3,
	ResetWhenCannonLost: true,
}
