package joint

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

func dynamicCircleBody(pos math2.Vector2) *body.Body {
	b := body.NewBody(pos, 0)
	b.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))
	return b
}

// TestDistanceJointPositionConstraintConverges checks that repeated
// position iterations pull two bodies pushed apart back to the joint's
// rest length, within the configured linear tolerance.
func TestDistanceJointPositionConstraintConverges(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 2, Y: 0})

	j := NewDistanceJoint(a, b, math2.Vector2{X: 0, Y: 0}, math2.Vector2{X: 2, Y: 0})

	// Pull bodyB further away than the rest length.
	b.SetTransform(math2.Transform{Position: math2.Vector2{X: 3, Y: 0}, Rotation: *math2.Identity()})

	cfg := settings.NewSettings()
	var ok bool
	for i := 0; i < cfg.PositionIterations*4; i++ {
		ok = j.SolvePositionConstraints(cfg)
		if ok {
			break
		}
	}

	if !ok {
		t.Fatal("distance joint position constraint did not converge within tolerance")
	}

	gotLength := ptrVec(b.Position()).DistanceTo(ptrVec(a.Position()))
	if math.Abs(gotLength-j.RestLength()) > cfg.LinearTolerance+1e-9 {
		t.Errorf("separation = %v, want %v +/- tolerance", gotLength, j.RestLength())
	}
}

func ptrVec(v math2.Vector2) *math2.Vector2 { return &v }

// TestDistanceJointStretchesToRestLengthAgainstAnchor checks that an
// immovable bodyA and a rest length far beyond the bodies' initial
// separation converge, over repeated position-iteration passes clamped by
// MaxLinearCorrection, to exactly the rest length.
func TestDistanceJointStretchesToRestLengthAgainstAnchor(t *testing.T) {
	a := body.NewBody(math2.Vector2{X: 0, Y: 0}, 0)
	a.SetMass(body.NewMass(body.Infinite, 0, 0, math2.Vector2{}))
	b := dynamicCircleBody(math2.Vector2{X: 0, Y: 2})

	j := NewDistanceJoint(a, b, math2.Vector2{X: 0, Y: 0}, math2.Vector2{X: 0, Y: 2})
	if err := j.SetRestLength(10); err != nil {
		t.Fatalf("SetRestLength: %v", err)
	}

	cfg := settings.NewSettings()
	cfg.MaxLinearCorrection = 0.2
	cfg.PositionIterations = 10

	var ok bool
	for step := 0; step < 4; step++ {
		for i := 0; i < cfg.PositionIterations; i++ {
			ok = j.SolvePositionConstraints(cfg)
		}
	}
	_ = ok

	gotLength := ptrVec(b.Position()).DistanceTo(ptrVec(a.Position()))
	if math.Abs(gotLength-10.0) > 1e-5 {
		t.Errorf("separation after 4 steps = %v, want 10.0 +/- 1e-5", gotLength)
	}
}

// TestDistanceJointWarmStartConservesMomentum checks that applying
// a joint impulse via WarmStart moves both bodies' velocities symmetrically
// (equal and opposite along the joint axis for equal masses), the basic
// Newton's-third-law invariant every two-body constraint must preserve.
func TestDistanceJointWarmStartConservesMomentum(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 2, Y: 0})
	j := NewDistanceJoint(a, b, math2.Vector2{X: 0, Y: 0}, math2.Vector2{X: 2, Y: 0})

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.impulse = 1.0
	j.WarmStart()

	totalMomentum := a.LinearVelocity()
	totalMomentum.Add(ptrVec(b.LinearVelocity()))
	if math.Abs(totalMomentum.X) > 1e-9 || math.Abs(totalMomentum.Y) > 1e-9 {
		t.Errorf("equal-mass warm start should conserve total momentum, got %+v", totalMomentum)
	}
}
