package joint

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// TestMotorJointDrivesTowardOffset checks that repeated velocity solves
// accelerate bodyB toward bodyA's position plus the configured linear
// offset, the joint's only equilibrium.
func TestMotorJointDrivesTowardOffset(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	j := NewMotorJoint(a, b)
	j.SetLinearOffset(math2.Vector2{X: 5, Y: 0})
	if err := j.SetMaxForce(1000); err != nil {
		t.Fatalf("SetMaxForce: %v", err)
	}

	cfg := settings.NewSettings()
	for i := 0; i < 30; i++ {
		if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
			t.Fatalf("InitializeConstraints: %v", err)
		}
		j.WarmStart()
		j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)
		b.IntegratePosition(cfg.StepFrequency, cfg.MaxTranslation, cfg.MaxRotation)
	}

	if b.Position().X <= 0 {
		t.Errorf("motor should have driven bodyB toward the offset target, got X = %v", b.Position().X)
	}
}

// TestMotorJointSetMaxForceRejectsNegative checks the non-negative max-force
// InvalidArgument condition.
func TestMotorJointSetMaxForceRejectsNegative(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewMotorJoint(a, b)

	if err := j.SetMaxForce(-1); err == nil {
		t.Error("expected an error for a negative max force")
	}
}

// TestMotorJointSetMaxTorqueRejectsNegative checks the non-negative
// max-torque InvalidArgument condition.
func TestMotorJointSetMaxTorqueRejectsNegative(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewMotorJoint(a, b)

	if err := j.SetMaxTorque(-1); err == nil {
		t.Error("expected an error for a negative max torque")
	}
}

// TestMotorJointMaxForceClampsImpulse checks that a small maxForce caps the
// accumulated linear impulse magnitude to maxForce*dt.
func TestMotorJointMaxForceClampsImpulse(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	j := NewMotorJoint(a, b)
	j.SetLinearOffset(math2.Vector2{X: 1000, Y: 0})
	if err := j.SetMaxForce(1); err != nil {
		t.Fatalf("SetMaxForce: %v", err)
	}

	cfg := settings.NewSettings()
	dt, invDt := cfg.StepFrequency, 1/cfg.StepFrequency
	if err := j.InitializeConstraints(dt, invDt, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(dt, invDt)

	maxImpulse := j.maxForce * dt
	if got := j.linearImpulse.Length(); got > maxImpulse+1e-9 {
		t.Errorf("accumulated linear impulse %v exceeds maxForce*dt = %v", got, maxImpulse)
	}
}

// TestMotorJointAngularOffsetDrivesRelativeAngularVelocity checks that a
// nonzero angular offset produces a nonzero corrective angular velocity
// once at least one body can rotate.
func TestMotorJointAngularOffsetDrivesRelativeAngularVelocity(t *testing.T) {
	a := dynamicCircleBody(math2.Vector2{X: 0, Y: 0})
	b := dynamicCircleBody(math2.Vector2{X: 1, Y: 0})
	j := NewMotorJoint(a, b)
	j.SetAngularOffset(math2.DegToRad(45))
	if err := j.SetMaxTorque(1000); err != nil {
		t.Fatalf("SetMaxTorque: %v", err)
	}

	cfg := settings.NewSettings()
	if err := j.InitializeConstraints(cfg.StepFrequency, 1/cfg.StepFrequency, cfg); err != nil {
		t.Fatalf("InitializeConstraints: %v", err)
	}
	j.WarmStart()
	j.SolveVelocityConstraints(cfg.StepFrequency, 1/cfg.StepFrequency)

	if math.Abs(b.AngularVelocity()-a.AngularVelocity()) < 1e-9 {
		t.Error("a nonzero angular offset should produce a nonzero corrective relative angular velocity")
	}
}
