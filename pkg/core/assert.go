package core

import "fmt"

// assert 检查模拟内部不变量。只有 simdebug 构建下才会 panic，生产构建中为空操作。
func assert(cond bool, format string, args ...any) {
	if !debugAssertions || cond {
		return
	}
	panic("core: invariant violated: " + fmt.Sprintf(format, args...))
}
