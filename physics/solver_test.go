package physics

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// TestContactSolverReversesHeadOnVelocity checks the core restitution
// invariant: a dynamic body closing on a static wall with restitution 1
// leaves the contact with its closing speed exactly reversed.
func TestContactSolverReversesHeadOnVelocity(t *testing.T) {
	wall := body.NewBody(math2.Vector2{X: 0, Y: 0}, 0) // static: default infinite mass
	ball := body.NewBody(math2.Vector2{X: 1, Y: 0}, 0)
	ball.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))
	ball.SetLinearVelocity(math2.Vector2{X: -5, Y: 0})

	c := &ContactConstraint{
		BodyA:               wall,
		BodyB:               ball,
		Normal:              math2.Vector2{X: 1, Y: 0},
		Tangent:             math2.Vector2{X: 0, Y: 1},
		Size:                1,
		Enabled:             true,
		Restitution:         1,
		RestitutionVelocity: 0,
	}
	c.Points[0] = SolvableContact{Point: math2.Vector2{X: 0.5, Y: 0}}

	cfg := settings.NewSettings()
	solver := NewContactSolver()
	solver.InitializeContacts([]*ContactConstraint{c}, cfg)
	solver.SolveVelocity([]*ContactConstraint{c}, 1)

	if math.Abs(ball.LinearVelocity().X-5) > 1e-9 {
		t.Errorf("ball.Vx = %v, want 5 (fully reversed)", ball.LinearVelocity().X)
	}
	if wall.LinearVelocity().X != 0 {
		t.Errorf("a static wall must never gain velocity, got %v", wall.LinearVelocity().X)
	}
}

// TestContactSolverInelasticCollisionStopsBody checks that a restitution-0
// collision brings the closing velocity to zero rather than bouncing.
func TestContactSolverInelasticCollisionStopsBody(t *testing.T) {
	wall := body.NewBody(math2.Vector2{X: 0, Y: 0}, 0)
	ball := body.NewBody(math2.Vector2{X: 1, Y: 0}, 0)
	ball.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))
	ball.SetLinearVelocity(math2.Vector2{X: -5, Y: 0})

	c := &ContactConstraint{
		BodyA:       wall,
		BodyB:       ball,
		Normal:      math2.Vector2{X: 1, Y: 0},
		Tangent:     math2.Vector2{X: 0, Y: 1},
		Size:        1,
		Enabled:     true,
		Restitution: 0,
	}
	c.Points[0] = SolvableContact{Point: math2.Vector2{X: 0.5, Y: 0}}

	cfg := settings.NewSettings()
	solver := NewContactSolver()
	solver.InitializeContacts([]*ContactConstraint{c}, cfg)
	for i := 0; i < 4; i++ {
		solver.SolveVelocity([]*ContactConstraint{c}, 1)
	}

	if ball.LinearVelocity().X < -1e-9 {
		t.Errorf("ball.Vx = %v, should not still be approaching the wall", ball.LinearVelocity().X)
	}
}

// TestContactSolverWarmStartReappliesImpulse checks that WarmStart applies
// the previously accumulated normal impulse before any velocity iteration
// runs, giving the solver a head start instead of resolving from zero.
func TestContactSolverWarmStartReappliesImpulse(t *testing.T) {
	wall := body.NewBody(math2.Vector2{X: 0, Y: 0}, 0)
	ball := body.NewBody(math2.Vector2{X: 1, Y: 0}, 0)
	ball.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))

	c := &ContactConstraint{
		BodyA:   wall,
		BodyB:   ball,
		Normal:  math2.Vector2{X: 1, Y: 0},
		Tangent: math2.Vector2{X: 0, Y: 1},
		Size:    1,
		Enabled: true,
	}
	c.Points[0] = SolvableContact{Point: math2.Vector2{X: 0.5, Y: 0}, Jn: 3}

	solver := NewContactSolver()
	solver.WarmStart([]*ContactConstraint{c})

	if math.Abs(ball.LinearVelocity().X-3) > 1e-9 {
		t.Errorf("ball.Vx after warm start = %v, want 3 (accumulated impulse / mass)", ball.LinearVelocity().X)
	}
}
