package core

import "testing"

func TestShieldGeometry(t *testing.T) {
	s := NewShieldDome(640, 480, 2)
	if s.Center != (Vec2{X: 320, Y: 560}) {
		t.Fatalf("center: got %v", s.Center)
	}
	if s.HalfWidth != 256 || s.HalfHeight != 240 {
		t.Fatalf("half axes: got %v x %v", s.HalfWidth, s.HalfHeight)
	}

	cases := []struct {
		p    Vec2
		want bool
	}{
		{Vec2{X: 320, Y: 330}, true},
		{Vec2{X: 320, Y: 320}, true}, // apex, on the boundary
		{Vec2{X: 320, Y: 310}, false},
		{Vec2{X: 70, Y: 560}, true},
		{Vec2{X: 60, Y: 560}, false},
		{Vec2{X: 100, Y: 330}, false},
	}
	for _, tc := range cases {
		if got := s.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestShieldExhaustion(t *testing.T) {
	s := NewShieldDome(640, 480, 2)
	inside := Vec2{X: 320, Y: 400}

	for i := 0; i < 2; i++ {
		if !s.CollisionCheck(inside) {
			t.Fatalf("hit %d should register", i)
		}
	}
	if s.Online() || s.Health != 0 {
		t.Fatalf("shield should be offline with zero health, got %d", s.Health)
	}
	for i := 0; i < 5; i++ {
		if s.CollisionCheck(inside) {
			t.Fatalf("offline shield must not collide")
		}
	}
	if s.Health != 0 {
		t.Fatalf("health went negative: %d", s.Health)
	}

	s.Boost(ShieldBoostAmount)
	if !s.Online() || s.Health != ShieldBoostAmount {
		t.Fatalf("boost should bring the shield back online, health %d", s.Health)
	}
}

func TestShieldMissDoesNotConsumeHealth(t *testing.T) {
	s := NewShieldDome(640, 480, 2)
	if s.CollisionCheck(Vec2{X: 10, Y: 10}) {
		t.Fatalf("point far above the dome should miss")
	}
	if s.Health != 2 || s.Brightness != 0 {
		t.Fatalf("miss changed the shield: health %d brightness %d", s.Health, s.Brightness)
	}
}

func TestShieldBrightnessCapAndDecay(t *testing.T) {
	s := NewShieldDome(640, 480, 10)
	inside := Vec2{X: 320, Y: 400}

	want := []int{30, 60, 70, 70}
	for i, w := range want {
		s.CollisionCheck(inside)
		if s.Brightness != w {
			t.Fatalf("after hit %d brightness %d, want %d", i+1, s.Brightness, w)
		}
	}

	for i := 0; i < 75; i++ {
		s.Tick()
	}
	if s.Brightness != 0 {
		t.Fatalf("brightness should decay to zero, got %d", s.Brightness)
	}
}

func TestShieldNegativeHealthClamped(t *testing.T) {
	s := NewShieldDome(640, 480, -3)
	if s.Online() || s.Health != 0 {
		t.Fatalf("negative health should start offline at zero, got %d", s.Health)
	}
	s.Boost(-5)
	if s.Health != 0 {
		t.Fatalf("negative boost must be ignored")
	}
}
