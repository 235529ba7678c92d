package core

import (
	"math"
	"testing"
)

func TestAimDirectionNeverPointsDown(t *testing.T) {
	base := Vec2{X: 100, Y: 100}
	cases := []struct {
		name   string
		target Vec2
		want   Vec2
	}{
		{"straight up", Vec2{X: 100, Y: 0}, Vec2{X: 0, Y: -1}},
		{"down right", Vec2{X: 150, Y: 150}, Vec2{X: 1, Y: 0}},
		{"down left", Vec2{X: 50, Y: 200}, Vec2{X: -1, Y: 0}},
		{"straight down", Vec2{X: 100, Y: 200}, Vec2{X: -1, Y: 0}},
		{"level", Vec2{X: 200, Y: 100}, Vec2{X: 1, Y: 0}},
	}
	for _, tc := range cases {
		if got := AimDirection(base, tc.target); got != tc.want {
			t.Errorf("%s: AimDirection = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCannonFireSpread(t *testing.T) {
	c := NewCannon(Vec2{X: 320, Y: 381})
	if shots := c.Fire(Vec2{X: 320, Y: 0}); shots != nil {
		t.Fatalf("fresh cannon is still reloading")
	}

	c.TicksSinceFiring = CannonReloadFrames + 1
	shots := c.Fire(Vec2{X: 320, Y: 0})
	if len(shots) != 3 {
		t.Fatalf("want 3 shots, got %d", len(shots))
	}
	for i, s := range shots {
		if !s.CannonFire || s.Kind != KindCannonShot {
			t.Errorf("shot %d is not defensive: %+v", i, s)
		}
		if math.Abs(s.Vel.Len()-CannonMissileSpeed) > 1e-9 {
			t.Errorf("shot %d speed %v", i, s.Vel.Len())
		}
		if s.Pos != c.Base {
			t.Errorf("shot %d should start at the base", i)
		}
	}
	if shots[1].Vel != (Vec2{X: 0, Y: -CannonMissileSpeed}) {
		t.Fatalf("middle shot should fly along the barrel, got %v", shots[1].Vel)
	}
	angle := math.Atan2(shots[2].Vel.Y, shots[2].Vel.X) - math.Atan2(shots[0].Vel.Y, shots[0].Vel.X)
	if math.Abs(angle-2*CannonSpreadRadians) > 1e-9 {
		t.Fatalf("outer shots should be %v rad apart, got %v", 2*CannonSpreadRadians, angle)
	}

	if c.TicksSinceFiring != 0 {
		t.Fatalf("firing should reset the reload counter")
	}
	if c.Fire(Vec2{X: 320, Y: 0}) != nil {
		t.Fatalf("cannon fired again without reloading")
	}
}

func TestCannonReloadBoundary(t *testing.T) {
	c := NewCannon(Vec2{X: 10, Y: 10})
	c.TicksSinceFiring = CannonReloadFrames
	if c.CanFire() {
		t.Fatalf("cannon must wait strictly more than %d ticks", CannonReloadFrames)
	}
	c.TicksSinceFiring++
	if !c.CanFire() {
		t.Fatalf("cannon should be ready")
	}
}

func TestCannonLosesSupport(t *testing.T) {
	terrain := solidTerrain(40, 40)
	c := NewCannon(Vec2{X: 20, Y: 20})

	if collapse := c.Update(terrain); collapse != nil || c.Destroyed {
		t.Fatalf("supported cannon must not collapse")
	}

	terrain.DestroyCircle(Vec2{X: 20, Y: 20}, 3)
	collapse := c.Update(terrain)
	if collapse == nil || !c.Destroyed {
		t.Fatalf("cannon should collapse once the base cell is empty")
	}
	if collapse.Kind != KindSupportCollapse || !collapse.Exploding() || collapse.BlastRadius != c.Length {
		t.Fatalf("unexpected collapse explosion %+v", collapse)
	}

	if again := c.Update(solidTerrain(40, 40)); again != nil {
		t.Fatalf("collapse is spawned only once")
	}
	if !c.Destroyed {
		t.Fatalf("destroyed cannon must not recover without a reset")
	}

	c.TicksSinceFiring = 100
	if c.CanFire() {
		t.Fatalf("destroyed cannon must not fire")
	}
}
