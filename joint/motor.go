package joint

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// MotorJoint drives bodyB toward a target linear offset and angular offset
// relative to bodyA, each clamped by a maximum force/torque and smoothed
// by a correction factor, without anchors of its own — it acts directly
// between the two centers of mass (a character controller's "move toward"
// joint).
type MotorJoint struct {
	baseJoint

	linearOffset  math2.Vector2
	angularOffset float64

	correctionFactor float64
	maxForce         float64
	maxTorque        float64

	linearError   math2.Vector2
	angularError  float64
	k             math2.Matrix22
	axialMass     float64

	linearImpulse  math2.Vector2
	angularImpulse float64
}

// NewMotorJoint drives bodyB toward bodyA's position/angle plus a linear and
// an angular offset, both initialised from the bodies' current relative pose
// (change them with SetLinearOffset and SetAngularOffset).
func NewMotorJoint(bodyA, bodyB *body.Body) *MotorJoint {

	j := &MotorJoint{baseJoint: newBaseJoint(bodyA, bodyB, true), correctionFactor: 0.3, maxForce: 1, maxTorque: 1}
	j.linearOffset = bodyA.GetLocalPoint(bodyB.Position())
	j.angularOffset = bodyB.Angle() - bodyA.Angle()
	return j
}

func (j *MotorJoint) SetLinearOffset(v math2.Vector2) {
	j.linearOffset = v
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *MotorJoint) SetAngularOffset(a float64) {
	j.angularOffset = a
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

// SetMaxForce caps the joint's linear impulse magnitude per unit time.
// Must be non-negative.
func (j *MotorJoint) SetMaxForce(f float64) error {
	if f < 0 {
		return perr.InvalidArgument("motor joint: max force must be non-negative")
	}
	j.maxForce = f
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

// SetMaxTorque caps the joint's angular impulse magnitude per unit time.
// Must be non-negative.
func (j *MotorJoint) SetMaxTorque(t float64) error {
	if t < 0 {
		return perr.InvalidArgument("motor joint: max torque must be non-negative")
	}
	j.maxTorque = t
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *MotorJoint) SetCorrectionFactor(f float64) {
	j.correctionFactor = f
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

func (j *MotorJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	worldOffset := j.bodyA.GetWorldVector(j.linearOffset)

	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	j.linearError = *math2.NewVec2().SubVectors(&centerB, &centerA)
	j.linearError.Sub(&worldOffset)
	j.angularError = j.bodyB.Angle() - j.bodyA.Angle() - j.angularOffset

	k11 := invMassA + invMassB
	k12 := 0.0
	k22 := invMassA + invMassB
	j.k = math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	sumInvI := invIA + invIB
	if sumInvI > 0 {
		j.axialMass = 1 / sumInvI
	}
	return nil
}

func (j *MotorJoint) WarmStart() {

	invMassA := j.bodyA.Mass().InvMass()
	invMassB := j.bodyB.Mass().InvMass()
	invIA := j.bodyA.Mass().InvInertia()
	invIB := j.bodyB.Mass().InvInertia()

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&j.linearImpulse, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*j.angularImpulse)

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&j.linearImpulse, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*j.angularImpulse)
}

func (j *MotorJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	wA, wB := j.bodyA.AngularVelocity(), j.bodyB.AngularVelocity()
	vA, vB := j.bodyA.LinearVelocity(), j.bodyB.LinearVelocity()

	if j.axialMass > 0 {
		cdot := wB - wA + j.correctionFactor*invDt*j.angularError
		impulse := -j.axialMass * cdot
		oldImpulse := j.angularImpulse
		maxImpulse := j.maxTorque * dt
		j.angularImpulse = math2.Clamp(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.angularImpulse - oldImpulse
		wA -= invIA * impulse
		wB += invIB * impulse
	}

	cdot := *math2.NewVec2().SubVectors(&vB, &vA)
	biased := j.linearError
	biased.Scale(j.correctionFactor * invDt)
	cdot.Add(&biased)
	negCdot := *cdot.Clone().Negate()

	impulse := j.k.Solve(&negCdot)

	oldImpulse := j.linearImpulse
	j.linearImpulse.Add(impulse)
	maxImpulse := j.maxForce * dt
	if j.linearImpulse.LengthSq() > maxImpulse*maxImpulse && j.linearImpulse.Length() > 0 {
		j.linearImpulse.Scale(maxImpulse / j.linearImpulse.Length())
	}
	applied := *math2.NewVec2().SubVectors(&j.linearImpulse, &oldImpulse)

	vA.AddScaled(&applied, -invMassA)
	vB.AddScaled(&applied, invMassB)

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

// SolvePositionConstraints is a no-op: the motor corrects its error
// through the velocity bias term (correctionFactor) rather than an NGS pass.
func (j *MotorJoint) SolvePositionConstraints(cfg *settings.Settings) bool { return true }

func (j *MotorJoint) Shift(delta math2.Vector2) {}

func (j *MotorJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.linearImpulse.Clone().Scale(invDt)
}
func (j *MotorJoint) ReactionTorque(invDt float64) float64 { return j.angularImpulse * invDt }
