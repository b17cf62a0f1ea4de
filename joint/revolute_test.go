package joint

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

func infiniteInertiaBody(pos math2.Vector2) *body.Body {
	b := body.NewBody(pos, 0)
	// Finite mass but infinite inertia (FixedAngularVelocity).
	b.SetMass(body.NewMass(body.FixedAngularVelocity, 1, 0, math2.Vector2{}))
	return b
}

// TestRevoluteJointMotorRejectsDoubleInfiniteInertia checks that enabling
// the motor between two bodies that both have infinite inertia is reported
// as an invalid-state error at constraint init rather than silently
// producing an unsolvable (divide by zero) constraint.
func TestRevoluteJointMotorRejectsDoubleInfiniteInertia(t *testing.T) {
	a := infiniteInertiaBody(math2.Vector2{X: 0, Y: 0})
	b := infiniteInertiaBody(math2.Vector2{X: 1, Y: 0})

	j := NewRevoluteJoint(a, b, math2.Vector2{X: 0.5, Y: 0})
	j.SetMotorEnabled(true)

	cfg := settings.NewSettings()
	err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg)

	if err == nil {
		t.Fatal("expected an error for a motorized joint between two infinite-inertia bodies")
	}
	if !perr.Is(err, perr.KindInvalidState) {
		t.Errorf("expected KindInvalidState, got %v", err)
	}
}

// TestRevoluteJointMotorAllowsOneFiniteInertiaBody checks the motor is
// solvable as soon as at least one body can actually rotate.
func TestRevoluteJointMotorAllowsOneFiniteInertiaBody(t *testing.T) {
	a := infiniteInertiaBody(math2.Vector2{X: 0, Y: 0})
	b := body.NewBody(math2.Vector2{X: 1, Y: 0}, 0)
	b.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))

	j := NewRevoluteJoint(a, b, math2.Vector2{X: 0.5, Y: 0})
	j.SetMotorEnabled(true)

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

// TestRevoluteJointWithoutMotorNeverErrors checks that an un-motorized
// joint between two infinite-inertia bodies (a rigid strut between two
// fixed walls) is a no-op, not an error: only a motor needs torque
// capacity from at least one side.
func TestRevoluteJointWithoutMotorNeverErrors(t *testing.T) {
	a := infiniteInertiaBody(math2.Vector2{X: 0, Y: 0})
	b := infiniteInertiaBody(math2.Vector2{X: 1, Y: 0})

	j := NewRevoluteJoint(a, b, math2.Vector2{X: 0.5, Y: 0})
	cfg := settings.NewSettings()

	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("expected no error without a motor, got %v", err)
	}
}

// TestRevoluteJointLimitImpulseClearAsymmetry pins down the deliberate
// asymmetry in the limit-state update at init: entering the lower limit
// clears the accumulated limit impulse immediately, but entering the upper
// limit leaves it intact for one step and clears it only when the state
// was already AT_UPPER on the previous step.
func TestRevoluteJointLimitImpulseClearAsymmetry(t *testing.T) {
	cfg := settings.NewSettings()

	newLimitedJoint := func(angle float64) (*body.Body, *RevoluteJoint) {
		a := body.NewBody(math2.Vector2{}, 0)
		a.SetMass(body.NewMass(body.Infinite, 0, 0, math2.Vector2{}))
		b := body.NewBody(math2.Vector2{}, 0)
		b.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))
		j := NewRevoluteJoint(a, b, math2.Vector2{})
		if err := j.SetLimits(math2.DegToRad(-30), math2.DegToRad(30)); err != nil {
			t.Fatalf("SetLimits: %v", err)
		}
		j.SetLimitEnabled(true)

		var xf math2.Transform
		xf.Rotation.Set(angle)
		b.SetTransform(xf)
		return b, j
	}

	// Upper side: impulse survives the first init past the limit.
	_, ju := newLimitedJoint(math2.DegToRad(45))
	ju.impulse[2] = 1.5
	if err := ju.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	if ju.limitState != LimitAtUpper {
		t.Fatalf("limitState = %v, want LimitAtUpper", ju.limitState)
	}
	if ju.impulse[2] != 1.5 {
		t.Errorf("upper-limit impulse = %v after first entry, want 1.5 kept", ju.impulse[2])
	}
	if err := ju.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	if ju.impulse[2] != 0 {
		t.Errorf("upper-limit impulse = %v while staying at the limit, want cleared", ju.impulse[2])
	}

	// Lower side: impulse is cleared on first entry.
	_, jl := newLimitedJoint(math2.DegToRad(-45))
	jl.impulse[2] = 1.5
	if err := jl.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	if jl.limitState != LimitAtLower {
		t.Fatalf("limitState = %v, want LimitAtLower", jl.limitState)
	}
	if jl.impulse[2] != 0 {
		t.Errorf("lower-limit impulse = %v after first entry, want cleared", jl.impulse[2])
	}
}

// TestRevoluteJointMotorStopsAtUpperLimit checks that a motor driving
// steadily toward an enabled upper angle limit settles exactly at that
// limit: the joint angle stops at the bound, the relative angular velocity
// comes to rest, and the motor's own impulse saturates at maxMotorTorque*dt
// rather than quietly giving up its drive.
func TestRevoluteJointMotorStopsAtUpperLimit(t *testing.T) {
	anchor := math2.Vector2{X: 0, Y: 2}
	a := body.NewBody(anchor, 0)
	a.SetMass(body.NewMass(body.Infinite, 0, 0, math2.Vector2{}))
	b := body.NewBody(anchor, 0)
	b.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))

	j := NewRevoluteJoint(a, b, anchor)
	j.SetMotorEnabled(true)
	j.SetMotorSpeed(math2.DegToRad(20))
	if err := j.SetMaxMotorTorque(1000); err != nil {
		t.Fatalf("SetMaxMotorTorque: %v", err)
	}
	if err := j.SetLimits(math2.DegToRad(-30), math2.DegToRad(30)); err != nil {
		t.Fatalf("SetLimits: %v", err)
	}
	j.SetLimitEnabled(true)

	cfg := settings.NewSettings()
	dt, invDt := cfg.StepFrequency, 1/cfg.StepFrequency
	for i := 0; i < 100; i++ {
		if err := j.InitializeConstraints(dt, invDt, cfg); err != nil {
			t.Fatalf("InitializeConstraints: %v", err)
		}
		j.WarmStart()
		for it := 0; it < cfg.VelocityIterations; it++ {
			j.SolveVelocityConstraints(dt, invDt)
		}
		b.IntegratePosition(dt, cfg.MaxTranslation, cfg.MaxRotation)
		j.SolvePositionConstraints(cfg)
	}

	wantAngle := math2.DegToRad(30)
	if got := j.jointAngle(); math.Abs(got-wantAngle) > 1e-2 {
		t.Errorf("joint angle = %v rad, want ~%v rad (upper limit)", got, wantAngle)
	}
	if got := b.AngularVelocity() - a.AngularVelocity(); math.Abs(got) > 1e-2 {
		t.Errorf("relative angular velocity = %v, want ~0 once parked at the limit", got)
	}

	maxMotorImpulse := j.maxMotorTorque * dt
	if math.Abs(j.motorImpulse)+1e-9 < maxMotorImpulse {
		t.Errorf("motor impulse %v did not saturate at maxMotorTorque*dt = %v", j.motorImpulse, maxMotorImpulse)
	}
}
