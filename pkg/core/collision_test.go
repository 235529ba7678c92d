package core

import "testing"

func newResolver(terrain *TerrainGrid, shield *ShieldDome, projectiles ...*Projectile) *Resolver {
	index := NewSpatialIndex(SpatialCellSize)
	index.Rebuild(projectiles)
	return &Resolver{Terrain: terrain, Shield: shield, Index: index}
}

func TestSweepSamplesInclusive(t *testing.T) {
	samples := SweepSamples(Vec2{X: 10, Y: 0}, Vec2{X: 20, Y: -10})
	if samples[0] != (Vec2{X: 10, Y: 0}) {
		t.Fatalf("first sample should be the start, got %v", samples[0])
	}
	if samples[CollisionSamples-1] != (Vec2{X: 30, Y: -10}) {
		t.Fatalf("last sample should be the end, got %v", samples[CollisionSamples-1])
	}
	if samples[5] != (Vec2{X: 20, Y: -5}) {
		t.Fatalf("middle sample: got %v", samples[5])
	}
}

func TestShieldTakesPriorityOverTerrain(t *testing.T) {
	terrain := solidTerrain(640, 480)
	shield := NewShieldDome(640, 480, 2)
	m := NewMissile(Vec2{X: 320, Y: 400}, Vec2{}, 2)
	r := newResolver(terrain, shield, m)

	if hit := r.Resolve(m); hit != HitShield {
		t.Fatalf("want shield hit, got %v", hit)
	}
	if shield.Health != 1 {
		t.Fatalf("shield health should drop to 1, got %d", shield.Health)
	}
	if !m.Exploding() {
		t.Fatalf("missile should be exploding")
	}
}

func TestDefensiveShotIgnoresShield(t *testing.T) {
	terrain := solidTerrain(640, 480)
	shield := NewShieldDome(640, 480, 2)
	shot := NewCannonShot(Vec2{X: 320, Y: 400}, Vec2{})
	r := newResolver(terrain, shield, shot)

	if hit := r.Resolve(shot); hit != HitTerrain {
		t.Fatalf("want terrain hit, got %v", hit)
	}
	if shield.Health != 2 {
		t.Fatalf("defensive shot must not touch the shield, health %d", shield.Health)
	}
}

func TestSweptHitOnThinWall(t *testing.T) {
	terrain := emptyTerrain(100, 100)
	for y := 0; y < 100; y++ {
		terrain.set(50, y, true)
	}

	m := NewMissile(Vec2{X: 40, Y: 50}, Vec2{X: 20}, 2)
	r := newResolver(terrain, nil, m)

	if hit := r.Resolve(m); hit != HitTerrain {
		t.Fatalf("fast missile should not tunnel through the wall, got %v", hit)
	}
	if m.Pos != (Vec2{X: 50, Y: 50}) {
		t.Fatalf("position should snap to the first colliding sample, got %v", m.Pos)
	}
}

func TestOffensivePairScoresOnce(t *testing.T) {
	a := NewMissile(Vec2{X: 100, Y: 100}, Vec2{}, 2)
	b := NewMissile(Vec2{X: 103, Y: 100}, Vec2{}, 2)
	r := newResolver(emptyTerrain(640, 480), nil, a, b)

	if hit := r.Resolve(a); hit != HitProjectile {
		t.Fatalf("want projectile hit, got %v", hit)
	}
	if !a.Exploding() || !b.Exploding() {
		t.Fatalf("both missiles should be exploding")
	}
	if hit := r.Resolve(b); hit != HitNone {
		t.Fatalf("exploding projectile is not resolved again, got %v", hit)
	}
	if pts := r.TakePoints(); pts != 2*HitScore {
		t.Fatalf("want %d points, got %d", 2*HitScore, pts)
	}
	if pts := r.TakePoints(); pts != 0 {
		t.Fatalf("points should be taken only once, got %d", pts)
	}
}

func TestDefensivePairNeverCollides(t *testing.T) {
	a := NewCannonShot(Vec2{X: 100, Y: 100}, Vec2{})
	b := NewCannonShot(Vec2{X: 101, Y: 100}, Vec2{})
	a.Radius, b.Radius = 5, 5
	r := newResolver(emptyTerrain(640, 480), nil, a, b)

	if hit := r.Resolve(a); hit != HitNone {
		t.Fatalf("defensive shots must pass through each other, got %v", hit)
	}
	if a.Exploding() || b.Exploding() {
		t.Fatalf("no defensive shot should explode")
	}
}

func TestDefensiveHitScoresOnlyOffensiveSide(t *testing.T) {
	shot := NewCannonShot(Vec2{X: 100, Y: 100}, Vec2{})
	shot.Radius = 5
	m := NewMissile(Vec2{X: 104, Y: 100}, Vec2{}, 2)
	r := newResolver(emptyTerrain(640, 480), nil, shot, m)

	if hit := r.Resolve(shot); hit != HitProjectile {
		t.Fatalf("want projectile hit, got %v", hit)
	}
	if !shot.Exploding() || !m.Exploding() {
		t.Fatalf("both sides should be exploding")
	}
	if pts := r.TakePoints(); pts != HitScore {
		t.Fatalf("want %d points, got %d", HitScore, pts)
	}
}

func TestExplosionChainDoesNotRescore(t *testing.T) {
	blast := NewMissile(Vec2{X: 100, Y: 100}, Vec2{}, 2)
	blast.Explode()
	blast.Radius = 10
	m := NewMissile(Vec2{X: 108, Y: 100}, Vec2{}, 2)
	r := newResolver(emptyTerrain(640, 480), nil, blast, m)

	if hit := r.Resolve(m); hit != HitProjectile {
		t.Fatalf("missile flying into an explosion should collide, got %v", hit)
	}
	if pts := r.TakePoints(); pts != HitScore {
		t.Fatalf("only the newly exploding missile scores, got %d", pts)
	}
}

func TestEarliestSampleWins(t *testing.T) {
	terrain := emptyTerrain(100, 100)
	terrain.set(20, 50, true)
	other := NewMissile(Vec2{X: 14, Y: 50}, Vec2{}, 1)
	m := NewMissile(Vec2{X: 10, Y: 50}, Vec2{X: 20}, 2)
	r := newResolver(terrain, nil, m, other)

	if hit := r.Resolve(m); hit != HitProjectile {
		t.Fatalf("projectile lies before the wall along the sweep, got %v", hit)
	}
	if m.Pos != (Vec2{X: 10, Y: 50}) {
		t.Fatalf("projectile hits keep the current position, got %v", m.Pos)
	}
}

func TestSpatialIndexNeighbourhood(t *testing.T) {
	near := NewMissile(Vec2{X: 60, Y: 60}, Vec2{}, 2)
	diagonal := NewMissile(Vec2{X: 149, Y: 149}, Vec2{}, 2)
	far := NewMissile(Vec2{X: 160, Y: 60}, Vec2{}, 2)
	negative := NewMissile(Vec2{X: -1, Y: -1}, Vec2{}, 2)

	index := NewSpatialIndex(0)
	index.Rebuild([]*Projectile{near, diagonal, far, negative})
	if index.Len() != 4 {
		t.Fatalf("index should hold 4 projectiles, got %d", index.Len())
	}
	if got := index.CellFor(negative.Pos); got != (GridPos{X: -1, Y: -1}) {
		t.Fatalf("negative coordinates should floor, got %v", got)
	}

	found := map[*Projectile]bool{}
	for _, p := range index.Nearby(Vec2{X: 75, Y: 75}, nil) {
		found[p] = true
	}
	if !found[near] || !found[diagonal] {
		t.Fatalf("3x3 neighbourhood missed a projectile: %v", found)
	}
	if found[far] || found[negative] {
		t.Fatalf("projectiles two cells away should not be candidates")
	}

	around := index.Nearby(Vec2{X: 10, Y: 10}, nil)
	if len(around) != 2 {
		t.Fatalf("origin neighbourhood should hold near and negative, got %d", len(around))
	}

	index.Rebuild(nil)
	if index.Len() != 0 || len(index.Nearby(Vec2{X: 75, Y: 75}, nil)) != 0 {
		t.Fatalf("rebuild should drop stale entries")
	}
}
