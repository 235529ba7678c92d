package core

import "math"

// SpatialIndex 均匀网格哈希，用于弹体之间的粗筛。
// 每帧从当前位置完整重建，不做增量更新。
type SpatialIndex struct {
	cellSize float64
	cells    map[GridPos][]*Projectile
}

// NewSpatialIndex 创建空间索引，cellSize 非正时使用默认值
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = SpatialCellSize
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[GridPos][]*Projectile),
	}
}

// CellFor 返回位置所在的格子
func (s *SpatialIndex) CellFor(p Vec2) GridPos {
	return GridPos{
		X: int(math.Floor(p.X / s.cellSize)),
		Y: int(math.Floor(p.Y / s.cellSize)),
	}
}

// Rebuild 清空并按当前位置重新插入全部弹体
func (s *SpatialIndex) Rebuild(projectiles []*Projectile) {
	clear(s.cells)
	for _, p := range projectiles {
		cell := s.CellFor(p.Pos)
		s.cells[cell] = append(s.cells[cell], p)
	}
}

// Nearby 把位置周围 3x3 格子内的弹体追加到 buf 并返回
func (s *SpatialIndex) Nearby(p Vec2, buf []*Projectile) []*Projectile {
	origin := s.CellFor(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			buf = append(buf, s.cells[GridPos{X: origin.X + dx, Y: origin.Y + dy}]...)
		}
	}
	return buf
}

// Len 返回索引中的弹体数量
func (s *SpatialIndex) Len() int {
	n := 0
	for _, list := range s.cells {
		n += len(list)
	}
	return n
}
