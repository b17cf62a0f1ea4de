package joint

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// TestPulleyJointEqualRatioHoldsBothStationary checks that with a 1:1
// ratio and equal masses, two bodies falling at the same speed are brought
// to rest by a single velocity solve: the shared cable has no slack to
// give on either side, so neither body may fall.
func TestPulleyJointEqualRatioHoldsBothStationary(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: -1, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewPulleyJoint(a, b,
		math2.Vector2{X: -1, Y: 1}, math2.Vector2{X: 1, Y: 1},
		math2.Vector2{X: -1, Y: 0}, math2.Vector2{X: 1, Y: 0},
		1)

	a.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})
	b.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)

	if math.Abs(a.LinearVelocity().Y) > 1e-9 {
		t.Errorf("bodyA vertical velocity = %v, want 0", a.LinearVelocity().Y)
	}
	if math.Abs(b.LinearVelocity().Y) > 1e-9 {
		t.Errorf("bodyB vertical velocity = %v, want 0", b.LinearVelocity().Y)
	}
}

// TestPulleyJointUnequalRatioTipsBalance checks that lowering the ratio
// below 1 breaks the symmetry: bodyA (the heavier-leverage side) is pulled
// upward while bodyB keeps descending, rather than both resolving to rest.
func TestPulleyJointUnequalRatioTipsBalance(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: -1, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewPulleyJoint(a, b,
		math2.Vector2{X: -1, Y: 1}, math2.Vector2{X: 1, Y: 1},
		math2.Vector2{X: -1, Y: 0}, math2.Vector2{X: 1, Y: 0},
		1)
	j.SetRatio(0.5)

	a.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})
	b.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)

	if a.LinearVelocity().Y <= 0 {
		t.Errorf("bodyA vertical velocity = %v, want > 0", a.LinearVelocity().Y)
	}
	if b.LinearVelocity().Y >= 0 {
		t.Errorf("bodyB vertical velocity = %v, want < 0", b.LinearVelocity().Y)
	}
}

// TestPulleyJointSlackAppliesNoImpulse checks that with slack mode enabled
// and the cable shorter than its constant, the joint leaves velocity
// untouched.
func TestPulleyJointSlackAppliesNoImpulse(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: -1, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewPulleyJoint(a, b,
		math2.Vector2{X: -1, Y: 5}, math2.Vector2{X: 1, Y: 5},
		math2.Vector2{X: -1, Y: 0}, math2.Vector2{X: 1, Y: 0},
		1)
	j.SetSlackEnabled(true)

	// Teleport both bodies toward their pulleys so the cable is well short
	// of the constant computed at construction.
	a.SetTransform(math2.Transform{Position: math2.Vector2{X: -1, Y: 3}, Rotation: *math2.Identity()})
	b.SetTransform(math2.Transform{Position: math2.Vector2{X: 1, Y: 3}, Rotation: *math2.Identity()})

	a.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})
	b.SetLinearVelocity(math2.Vector2{X: 0, Y: -1})

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)

	if math.Abs(a.LinearVelocity().Y+1) > 1e-9 || math.Abs(b.LinearVelocity().Y+1) > 1e-9 {
		t.Errorf("velocity changed while slack: a=%v b=%v, want both unchanged at -1", a.LinearVelocity().Y, b.LinearVelocity().Y)
	}
}

// TestPulleyJointShiftMovesGroundAnchors checks that Shift translates both
// fixed ground anchors, the joint's only world-space state besides the
// bodies themselves.
func TestPulleyJointShiftMovesGroundAnchors(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: -1, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewPulleyJoint(a, b,
		math2.Vector2{X: -1, Y: 1}, math2.Vector2{X: 1, Y: 1},
		math2.Vector2{X: -1, Y: 0}, math2.Vector2{X: 1, Y: 0},
		1)

	j.Shift(math2.Vector2{X: 2, Y: 3})

	wantA := math2.Vector2{X: 1, Y: 4}
	wantB := math2.Vector2{X: 3, Y: 4}
	if math.Abs(j.groundAnchorA.X-wantA.X) > 1e-9 || math.Abs(j.groundAnchorA.Y-wantA.Y) > 1e-9 {
		t.Errorf("groundAnchorA after shift = %+v, want %+v", j.groundAnchorA, wantA)
	}
	if math.Abs(j.groundAnchorB.X-wantB.X) > 1e-9 || math.Abs(j.groundAnchorB.Y-wantB.Y) > 1e-9 {
		t.Errorf("groundAnchorB after shift = %+v, want %+v", j.groundAnchorB, wantB)
	}
}
