package core

import (
	"cmp"
	"slices"
)

// GridPos 格子坐标（通用类型）
type GridPos struct {
	X, Y int
}

// CellChange 地形变化记录（用于渲染端同步）
type CellChange struct {
	X, Y     int
	Occupied bool
}

// TerrainGrid 可破坏的地形占据网格（核心逻辑，不包含渲染）
// 坐标系与屏幕一致：x 向右，y 向下，第 0 行在最上方。
type TerrainGrid struct {
	Width  int
	Height int

	cells   []bool
	dirty   map[GridPos]struct{} // 本帧被炸空、尚未下落结算的格子
	changes []CellChange         // 自上次 ResetChanges 以来的全部变化
	order   []GridPos            // CompactStep 的遍历缓冲
}

// NewTerrainGrid 使用给定的占据轮廓（行优先）创建地形
func NewTerrainGrid(width, height int, silhouette []bool) *TerrainGrid {
	assert(width > 0 && height > 0, "terrain size %dx%d", width, height)
	assert(len(silhouette) == width*height, "silhouette has %d cells, want %d", len(silhouette), width*height)

	t := &TerrainGrid{
		Width:  width,
		Height: height,
		cells:  make([]bool, width*height),
		dirty:  make(map[GridPos]struct{}),
	}
	copy(t.cells, silhouette)
	return t
}

func (t *TerrainGrid) inBounds(x, y int) bool {
	return x >= 0 && x < t.Width && y >= 0 && y < t.Height
}

// Occupied 获取指定格子是否被占据，越界返回 false
func (t *TerrainGrid) Occupied(x, y int) bool {
	if !t.inBounds(x, y) {
		return false
	}
	return t.cells[y*t.Width+x]
}

// OccupiedAt 按浮点坐标（截断取整）查询占据状态
func (t *TerrainGrid) OccupiedAt(p Vec2) bool {
	return t.Occupied(int(p.X), int(p.Y))
}

// set 修改格子并记录变化，越界写入被忽略
func (t *TerrainGrid) set(x, y int, occupied bool) {
	if !t.inBounds(x, y) {
		return
	}
	idx := y*t.Width + x
	if t.cells[idx] == occupied {
		return
	}
	t.cells[idx] = occupied
	t.changes = append(t.changes, CellChange{X: x, Y: y, Occupied: occupied})
}

// DestroyCircle 炸毁圆内（严格小于半径）的全部地形，被炸空的格子加入脏集合
func (t *TerrainGrid) DestroyCircle(center Vec2, radius float64) {
	if radius <= 0 {
		return
	}

	xMin := max(0, int(center.X-radius))
	xMax := min(t.Width, int(center.X+radius+1))
	yMin := max(0, int(center.Y-radius))
	yMax := min(t.Height, int(center.Y+radius+1))
	radiusSq := radius * radius

	for x := xMin; x < xMax; x++ {
		for y := yMin; y < yMax; y++ {
			dx := center.X - float64(x)
			dy := center.Y - float64(y)
			if dx*dx+dy*dy >= radiusSq {
				continue
			}
			if t.Occupied(x, y) {
				t.set(x, y, false)
				t.dirty[GridPos{X: x, Y: y}] = struct{}{}
			}
		}
	}
}

// CompactStep 执行一帧的重力压实：
// 每个脏格子上方连续的占据段整体下移一格，段顶空出，脏格子被填满。
// 若脏格子正下方仍为空，则把下方格子推迟到下一帧处理，
// 同时加入本轮忽略集合，避免同一帧内连续下落两格。
// 脏格子按从上到下、从左到右的固定顺序处理，相同种子的运行结果一致。
func (t *TerrainGrid) CompactStep() {
	t.compact(t.sortedDirty())
}

// sortedDirty 把脏格子按 Y 升序、X 升序写入遍历缓冲
func (t *TerrainGrid) sortedDirty() []GridPos {
	t.order = t.order[:0]
	for pos := range t.dirty {
		t.order = append(t.order, pos)
	}
	slices.SortFunc(t.order, func(a, b GridPos) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return t.order
}

// compact 按给定顺序处理脏格子。顺序只影响结算所需的帧数，不影响最终地形。
func (t *TerrainGrid) compact(order []GridPos) {
	ignore := make(map[GridPos]struct{})
	next := make(map[GridPos]struct{})

	for _, pos := range order {
		assert(t.inBounds(pos.X, pos.Y), "dirty cell %v out of bounds", pos)
		assert(!t.Occupied(pos.X, pos.Y), "dirty cell %v is occupied", pos)

		if _, skip := ignore[pos]; skip {
			next[pos] = struct{}{}
			continue
		}

		top := pos.Y - 1
		falling := false
		for top >= 0 && t.Occupied(pos.X, top) {
			top--
			falling = true
		}
		if !falling {
			continue
		}

		t.set(pos.X, top+1, false)
		t.set(pos.X, pos.Y, true)

		below := GridPos{X: pos.X, Y: pos.Y + 1}
		if below.Y < t.Height && !t.Occupied(below.X, below.Y) {
			next[below] = struct{}{}
			ignore[below] = struct{}{}
		}
	}

	t.dirty = next
}

// Dirty 返回当前脏格子（副本，顺序不定）
func (t *TerrainGrid) Dirty() []GridPos {
	out := make([]GridPos, 0, len(t.dirty))
	for pos := range t.dirty {
		out = append(out, pos)
	}
	return out
}

// IsDirty 检查格子是否在脏集合中
func (t *TerrainGrid) IsDirty(x, y int) bool {
	_, ok := t.dirty[GridPos{X: x, Y: y}]
	return ok
}

// Changes 返回自上次 ResetChanges 以来的地形变化（按发生顺序）
func (t *TerrainGrid) Changes() []CellChange {
	return t.changes
}

// ResetChanges 清空变化记录，由模拟循环在每帧开始时调用
func (t *TerrainGrid) ResetChanges() {
	t.changes = t.changes[:0]
}

// Bitmap 返回完整的占据网格副本（行优先）
func (t *TerrainGrid) Bitmap() []bool {
	out := make([]bool, len(t.cells))
	copy(out, t.cells)
	return out
}

// CountRows 统计 [fromRow, Height) 行内被占据的格子数
func (t *TerrainGrid) CountRows(fromRow int) int {
	fromRow = min(max(0, fromRow), t.Height)
	count := 0
	for _, occupied := range t.cells[fromRow*t.Width:] {
		if occupied {
			count++
		}
	}
	return count
}
