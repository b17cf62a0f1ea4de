package joint

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// PinJoint anchors a single body to a fixed world point through a soft
// spring, pulling the body's anchor point toward the target with the
// given frequency and damping ratio (the frequency is always positive;
// there is no rigid mode).
type PinJoint struct {
	bodyA *body.Body

	localAnchor  math2.Vector2
	target       math2.Vector2
	frequency    float64
	dampingRatio float64
	maxForce     float64

	rA      math2.Vector2
	k       math2.Matrix22
	gamma   float64
	bias    math2.Vector2
	impulse math2.Vector2

	userData interface{}
}

// NewPinJoint anchors b's local point (expressed in world space as
// anchor) to target.
func NewPinJoint(b *body.Body, anchor, target math2.Vector2) *PinJoint {

	j := &PinJoint{bodyA: b, target: target, frequency: 8, dampingRatio: 1, maxForce: 1e9}
	j.localAnchor = b.GetLocalPoint(anchor)
	return j
}

func (j *PinJoint) BodyA() *body.Body       { return j.bodyA }
func (j *PinJoint) BodyB() *body.Body       { return j.bodyA }
func (j *PinJoint) IsCollisionAllowed() bool { return true }

func (j *PinJoint) SetTarget(t math2.Vector2) {
	j.target = t
	j.bodyA.WakeUp()
}
func (j *PinJoint) Target() math2.Vector2 { return j.target }

// SetFrequency sets the pin spring's frequency in Hz. Must be positive: a
// pin joint is a soft constraint and has no rigid (frequency == 0) mode.
func (j *PinJoint) SetFrequency(hz float64) error {
	if hz <= 0 {
		return perr.InvalidArgument("pin joint: frequency must be positive")
	}
	j.frequency = hz
	j.bodyA.WakeUp()
	return nil
}
func (j *PinJoint) Frequency() float64 { return j.frequency }

// SetDampingRatio sets the spring's damping ratio, in [0,1].
func (j *PinJoint) SetDampingRatio(ratio float64) error {
	if ratio < 0 || ratio > 1 {
		return perr.InvalidArgument("pin joint: damping ratio must be in [0,1]")
	}
	j.dampingRatio = ratio
	j.bodyA.WakeUp()
	return nil
}
func (j *PinJoint) DampingRatio() float64 { return j.dampingRatio }

// SetMaxForce caps the pin's impulse magnitude per unit time. Must be
// non-negative.
func (j *PinJoint) SetMaxForce(f float64) error {
	if f < 0 {
		return perr.InvalidArgument("pin joint: max force must be non-negative")
	}
	j.maxForce = f
	j.bodyA.WakeUp()
	return nil
}
func (j *PinJoint) MaxForce() float64 { return j.maxForce }

func (j *PinJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMass, invI := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()

	anchor := j.bodyA.GetWorldPoint(j.localAnchor)
	center := j.bodyA.WorldCenter()
	j.rA = *math2.NewVec2().SubVectors(&anchor, &center)

	k11 := invMass + invI*j.rA.Y*j.rA.Y
	k12 := -invI * j.rA.X * j.rA.Y
	k22 := invMass + invI*j.rA.X*j.rA.X
	kMat := math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	omega := 2 * math2.Pi * j.frequency
	d := 2 * invMassToMassApprox(invMass) * j.dampingRatio * omega
	kSpring := invMassToMassApprox(invMass) * omega * omega
	h := dt
	j.gamma = h * (d + h*kSpring)
	if j.gamma != 0 {
		j.gamma = 1 / j.gamma
	}
	beta := h * kSpring * j.gamma

	kMat.A11 += j.gamma
	kMat.A22 += j.gamma
	j.k = kMat

	c := *math2.NewVec2().SubVectors(&anchor, &j.target)
	j.bias = *c.Clone().Scale(beta)
	return nil
}

// invMassToMassApprox recovers an approximate point mass from an inverse
// mass for spring-constant scaling; returns 0 for a non-dynamic body so
// the spring contributes nothing.
func invMassToMassApprox(invMass float64) float64 {
	if invMass <= 0 {
		return 0
	}
	return 1 / invMass
}

func (j *PinJoint) WarmStart() {

	invMass, invI := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	v := j.bodyA.LinearVelocity()
	v.AddScaled(&j.impulse, invMass)
	j.bodyA.SetLinearVelocity(v)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() + invI*j.rA.Cross(&j.impulse))
}

func (j *PinJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMass, invI := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()

	v, w := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	cdot := *math2.CrossScalar(w, &j.rA)
	cdot.Add(&v)
	cdot.Add(&j.bias)
	cdot.AddScaled(&j.impulse, j.gamma)
	cdot.Negate()

	impulse := j.k.Solve(&cdot)

	oldImpulse := j.impulse
	j.impulse.Add(impulse)
	maxImpulse := j.maxForce * dt
	if j.impulse.LengthSq() > maxImpulse*maxImpulse && j.impulse.Length() > 0 {
		j.impulse.Scale(maxImpulse / j.impulse.Length())
	}
	applied := *math2.NewVec2().SubVectors(&j.impulse, &oldImpulse)

	v.AddScaled(&applied, invMass)
	w += invI * j.rA.Cross(&applied)
	j.bodyA.SetLinearVelocity(v)
	j.bodyA.SetAngularVelocity(w)
}

// SolvePositionConstraints is a no-op: a spring-backed pin has no rigid
// position constraint to correct.
func (j *PinJoint) SolvePositionConstraints(cfg *settings.Settings) bool { return true }

func (j *PinJoint) Shift(delta math2.Vector2) { j.target.Add(&delta) }

func (j *PinJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.impulse.Clone().Scale(invDt)
}
func (j *PinJoint) ReactionTorque(invDt float64) float64 { return 0 }

func (j *PinJoint) UserData() interface{}     { return j.userData }
func (j *PinJoint) SetUserData(v interface{}) { j.userData = v }
