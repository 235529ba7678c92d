package core

import (
	"math/rand"
	"time"
)

// Rand 模拟使用的随机源，*rand.Rand 满足该接口。测试中可以注入固定序列。
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand 使用指定种子创建随机源，seed 为 0 时使用当前时间
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform 返回 [lo, hi) 区间内的均匀随机数
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
