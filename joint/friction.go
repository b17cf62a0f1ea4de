package joint

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// FrictionJoint damps relative linear and angular velocity between two
// bodies toward zero, bounded by a maximum force and torque, without
// maintaining any particular relative position — a brake, not a spring.
type FrictionJoint struct {
	baseJoint

	maxForce  float64
	maxTorque float64

	localAnchorA, localAnchorB math2.Vector2

	rA, rB         math2.Vector2
	k              math2.Matrix22
	angularMass    float64
	linearImpulse  math2.Vector2
	angularImpulse float64
}

// NewFrictionJoint brakes relative motion between bodyA and bodyB about
// the given world anchor.
func NewFrictionJoint(bodyA, bodyB *body.Body, anchor math2.Vector2) *FrictionJoint {

	j := &FrictionJoint{baseJoint: newBaseJoint(bodyA, bodyB, true)}
	j.localAnchorA = bodyA.GetLocalPoint(anchor)
	j.localAnchorB = bodyB.GetLocalPoint(anchor)
	return j
}

// SetMaxForce caps the brake's linear impulse magnitude per unit time.
// Must be non-negative.
func (j *FrictionJoint) SetMaxForce(f float64) error {
	if f < 0 {
		return perr.InvalidArgument("friction joint: max force must be non-negative")
	}
	j.maxForce = f
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

// SetMaxTorque caps the brake's angular impulse magnitude per unit time.
// Must be non-negative.
func (j *FrictionJoint) SetMaxTorque(t float64) error {
	if t < 0 {
		return perr.InvalidArgument("friction joint: max torque must be non-negative")
	}
	j.maxTorque = t
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

func (j *FrictionJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	j.rA = *math2.NewVec2().SubVectors(&anchorA, &centerA)
	j.rB = *math2.NewVec2().SubVectors(&anchorB, &centerB)

	k11 := invMassA + invMassB + invIA*j.rA.Y*j.rA.Y + invIB*j.rB.Y*j.rB.Y
	k12 := -invIA*j.rA.X*j.rA.Y - invIB*j.rB.X*j.rB.Y
	k22 := invMassA + invMassB + invIA*j.rA.X*j.rA.X + invIB*j.rB.X*j.rB.X
	j.k = math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	sumInvI := invIA + invIB
	if sumInvI > 0 {
		j.angularMass = 1 / sumInvI
	}
	return nil
}

func (j *FrictionJoint) WarmStart() {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&j.linearImpulse, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*(j.rA.Cross(&j.linearImpulse)+j.angularImpulse))

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&j.linearImpulse, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*(j.rB.Cross(&j.linearImpulse)+j.angularImpulse))
}

func (j *FrictionJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()

	if j.angularMass > 0 {
		cdot := wB - wA
		impulse := -j.angularMass * cdot
		oldImpulse := j.angularImpulse
		maxImpulse := j.maxTorque * dt
		j.angularImpulse = math2.Clamp(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.angularImpulse - oldImpulse
		wA -= invIA * impulse
		wB += invIB * impulse
	}

	pointVelA := *math2.CrossScalar(wA, &j.rA)
	pointVelA.Add(&vA)
	pointVelB := *math2.CrossScalar(wB, &j.rB)
	pointVelB.Add(&vB)
	cdot := *math2.NewVec2().SubVectors(&pointVelB, &pointVelA)
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
	wA -= invIA * j.rA.Cross(&applied)
	vB.AddScaled(&applied, invMassB)
	wB += invIB * j.rB.Cross(&applied)

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

// SolvePositionConstraints is a no-op: a friction joint has no target
// position to correct toward.
func (j *FrictionJoint) SolvePositionConstraints(cfg *settings.Settings) bool { return true }

func (j *FrictionJoint) Shift(delta math2.Vector2) {}

func (j *FrictionJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.linearImpulse.Clone().Scale(invDt)
}
func (j *FrictionJoint) ReactionTorque(invDt float64) float64 { return j.angularImpulse * invDt }
