package joint

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// TestFrictionJointDampsRelativeVelocity checks that repeated velocity
// solves brake both the relative point velocity and the relative angular
// velocity toward zero, the brake's only equilibrium.
func TestFrictionJointDampsRelativeVelocity(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewFrictionJoint(a, b, math2.Vector2{X: 0.5, Y: 0})
	if err := j.SetMaxForce(1e6); err != nil {
		t.Fatalf("SetMaxForce: %v", err)
	}
	if err := j.SetMaxTorque(1e6); err != nil {
		t.Fatalf("SetMaxTorque: %v", err)
	}

	b.SetLinearVelocity(math2.Vector2{X: 0, Y: 3})
	b.SetAngularVelocity(2)

	cfg := settings.NewSettings()
	for i := 0; i < 30; i++ {
		if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
			t.Fatalf("InitializeConstraints: %v", err)
		}
		j.WarmStart()
		j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)
	}

	if got := b.AngularVelocity() - a.AngularVelocity(); math.Abs(got) > 1e-6 {
		t.Errorf("relative angular velocity did not converge to zero: %v", got)
	}

	pointVelA := anchorPointVelocity(a, &j.rA)
	pointVelB := anchorPointVelocity(b, &j.rB)
	if math.Abs(pointVelA.Y-pointVelB.Y) > 1e-3 {
		t.Errorf("relative point velocity did not converge: vA=%+v vB=%+v", pointVelA, pointVelB)
	}
}

// TestFrictionJointSetMaxForceRejectsNegative checks the non-negative
// max-force InvalidArgument condition.
func TestFrictionJointSetMaxForceRejectsNegative(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewFrictionJoint(a, b, math2.Vector2{X: 0.5, Y: 0})

	if err := j.SetMaxForce(-1); err == nil {
		t.Error("expected an error for a negative max force")
	}
}

// TestFrictionJointSetMaxTorqueRejectsNegative checks the non-negative
// max-torque InvalidArgument condition.
func TestFrictionJointSetMaxTorqueRejectsNegative(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewFrictionJoint(a, b, math2.Vector2{X: 0.5, Y: 0})

	if err := j.SetMaxTorque(-1); err == nil {
		t.Error("expected an error for a negative max torque")
	}
}

// TestFrictionJointMaxTorqueClampsImpulse checks that a small maxTorque
// caps the accumulated angular impulse to maxTorque*dt, letting a large
// relative spin bleed off gradually rather than stopping in one step.
func TestFrictionJointMaxTorqueClampsImpulse(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewFrictionJoint(a, b, math2.Vector2{X: 0.5, Y: 0})
	if err := j.SetMaxTorque(0.01); err != nil {
		t.Fatalf("SetMaxTorque: %v", err)
	}

	b.SetAngularVelocity(50)

	cfg := settings.NewSettings()
	dt, invDt := cfg.StepFrequency, 1/cfg.StepFrequency
	if err := j.InitializeConstraints(dt, invDt, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(dt, invDt)

	maxImpulse := j.maxTorque * dt
	if got := math.Abs(j.angularImpulse); got > maxImpulse+1e-9 {
		t.Errorf("angular impulse %v exceeds maxTorque*dt = %v", got, maxImpulse)
	}
}
