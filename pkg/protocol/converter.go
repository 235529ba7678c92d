package protocol

import (
	"fmt"

	"missiledefence/pkg/core"
)

// ========== Kind 转换 ==========

// Proto: MISSILE=1, CANNON_SHOT=2, SUPPORT_COLLAPSE=3
// Core:  KindMissile=0, KindCannonShot=1, KindSupportCollapse=2
// 需要 +1 / -1 转换

// CoreKindToProto 将 core.Kind 转换为 ProjectileKind
func CoreKindToProto(k core.Kind) ProjectileKind {
	return ProjectileKind(k + 1)
}

// ProtoKindToCore 将 ProjectileKind 转换为 core.Kind，未指定时按导弹处理
func ProtoKindToCore(k ProjectileKind) core.Kind {
	if k <= ProjectileKindUnspecified || k > ProjectileKindSupportCollapse {
		return core.KindMissile
	}
	return core.Kind(k - 1)
}

// ========== Vec 转换 ==========

func vecToProto(v core.Vec2) Vec {
	return Vec{X: v.X, Y: v.Y}
}

func vecToCore(v Vec) core.Vec2 {
	return core.Vec2{X: v.X, Y: v.Y}
}

// ========== Input 转换 ==========

// CoreInputToProto 将 core.Input 转换为 Input
func CoreInputToProto(in core.Input, seq uint32) *Input {
	return &Input{
		Seq:           seq,
		AimX:          in.Aim.X,
		AimY:          in.Aim.Y,
		Fire:          in.Fire,
		FireHeld:      in.FireHeld,
		ToggleAutoAim: in.ToggleAutoAim,
		Reset:         in.Reset,
		BoostShield:   in.BoostShield,
	}
}

// ProtoInputToCore 将 Input 转换为 core.Input
func ProtoInputToCore(in *Input) core.Input {
	if in == nil {
		return core.Input{}
	}
	return core.Input{
		Aim:           core.Vec2{X: in.AimX, Y: in.AimY},
		Fire:          in.Fire,
		FireHeld:      in.FireHeld,
		ToggleAutoAim: in.ToggleAutoAim,
		Reset:         in.Reset,
		BoostShield:   in.BoostShield,
	}
}

// ========== Projectile 转换 ==========

// CoreProjectileToProto 将 core.ProjectileView 转换为 ProjectileState
func CoreProjectileToProto(p core.ProjectileView) ProjectileState {
	out := ProjectileState{
		ID:          p.ID,
		Kind:        CoreKindToProto(p.Kind),
		Pos:         vecToProto(p.Pos),
		DrawRadius:  p.DrawRadius,
		Exploding:   p.Exploding,
		BlastRadius: p.BlastRadius,
		Progress:    p.Progress,
	}
	if len(p.Trail) > 0 {
		out.Trail = make([]Vec, len(p.Trail))
		for i, v := range p.Trail {
			out.Trail[i] = vecToProto(v)
		}
	}
	return out
}

// ProtoProjectileToCore 将 ProjectileState 转换为 core.ProjectileView
func ProtoProjectileToCore(p ProjectileState) core.ProjectileView {
	out := core.ProjectileView{
		ID:          p.ID,
		Kind:        ProtoKindToCore(p.Kind),
		Pos:         vecToCore(p.Pos),
		DrawRadius:  p.DrawRadius,
		Exploding:   p.Exploding,
		BlastRadius: p.BlastRadius,
		Progress:    p.Progress,
	}
	if len(p.Trail) > 0 {
		out.Trail = make([]core.Vec2, len(p.Trail))
		for i, v := range p.Trail {
			out.Trail[i] = vecToCore(v)
		}
	}
	return out
}

// ========== Snapshot 转换 ==========

// CoreSnapshotToProto 将 core.Snapshot 转换为 Snapshot，完整地形按位打包
func CoreSnapshotToProto(s *core.Snapshot, lastInputSeq uint32) *Snapshot {
	if s == nil {
		return nil
	}

	out := &Snapshot{
		Tick:     s.Tick,
		Score:    s.Score,
		AutoAim:  s.AutoAim,
		CityLeft: s.CityLeft,
		Reset:    s.Reset,
		Width:    int32(s.Width),
		Height:   int32(s.Height),
		Shield: ShieldState{
			Center:     vecToProto(s.Shield.Center),
			HalfWidth:  s.Shield.HalfWidth,
			HalfHeight: s.Shield.HalfHeight,
			Online:     s.Shield.Online,
			Health:     int32(s.Shield.Health),
			Brightness: int32(s.Shield.Brightness),
		},
		Cannon: CannonState{
			Base:      vecToProto(s.Cannon.Base),
			Direction: vecToProto(s.Cannon.Direction),
			Length:    s.Cannon.Length,
			Destroyed: s.Cannon.Destroyed,
		},
		LastInputSeq: lastInputSeq,
	}

	out.Projectiles = make([]ProjectileState, 0, len(s.Projectiles))
	for _, p := range s.Projectiles {
		out.Projectiles = append(out.Projectiles, CoreProjectileToProto(p))
	}

	if s.Keyframe() {
		out.Terrain = PackBits(s.Terrain)
	}
	if len(s.TerrainChanges) > 0 {
		out.Changes = make([]CellChange, len(s.TerrainChanges))
		for i, c := range s.TerrainChanges {
			out.Changes[i] = CellChange{X: int32(c.X), Y: int32(c.Y), Occupied: c.Occupied}
		}
	}
	return out
}

// ProtoSnapshotToCore 将 Snapshot 转换为 core.Snapshot
func ProtoSnapshotToCore(s *Snapshot) (*core.Snapshot, error) {
	if s == nil {
		return nil, nil
	}
	if s.Width < 0 || s.Height < 0 {
		return nil, fmt.Errorf("protocol: bad snapshot size %dx%d", s.Width, s.Height)
	}

	out := &core.Snapshot{
		Tick:     s.Tick,
		Width:    int(s.Width),
		Height:   int(s.Height),
		Score:    s.Score,
		AutoAim:  s.AutoAim,
		CityLeft: s.CityLeft,
		Reset:    s.Reset,
		Shield: core.ShieldView{
			Center:     vecToCore(s.Shield.Center),
			HalfWidth:  s.Shield.HalfWidth,
			HalfHeight: s.Shield.HalfHeight,
			Online:     s.Shield.Online,
			Health:     int(s.Shield.Health),
			Brightness: int(s.Shield.Brightness),
		},
		Cannon: core.CannonView{
			Base:      vecToCore(s.Cannon.Base),
			Direction: vecToCore(s.Cannon.Direction),
			Length:    s.Cannon.Length,
			Destroyed: s.Cannon.Destroyed,
		},
	}

	out.Projectiles = make([]core.ProjectileView, 0, len(s.Projectiles))
	for _, p := range s.Projectiles {
		out.Projectiles = append(out.Projectiles, ProtoProjectileToCore(p))
	}

	if len(s.Terrain) > 0 {
		cells, err := UnpackBits(s.Terrain, out.Width*out.Height)
		if err != nil {
			return nil, err
		}
		out.Terrain = cells
	}
	if len(s.Changes) > 0 {
		out.TerrainChanges = make([]core.CellChange, len(s.Changes))
		for i, c := range s.Changes {
			out.TerrainChanges[i] = core.CellChange{X: int(c.X), Y: int(c.Y), Occupied: c.Occupied}
		}
	}
	return out, nil
}
