package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// WheelJoint restricts bodyB to slide along an axis fixed in bodyA (the
// suspension direction) while leaving its rotation free, with an optional
// soft spring along the axis and an optional angular motor that drives the
// wheel's spin directly.
type WheelJoint struct {
	baseJoint

	localAnchorA, localAnchorB math2.Vector2
	localAxisA                 math2.Vector2

	springEnabled  bool
	frequency      float64
	dampingRatio   float64
	maxSpringForce float64 // 0 means unclamped.

	motorEnabled   bool
	motorSpeed     float64
	maxMotorTorque float64

	axis, perp     math2.Vector2
	s1, s2, a1, a2 float64
	perpMass       float64
	springMass     float64
	motorMass      float64

	perpImpulse   float64
	springImpulse float64
	motorImpulse  float64
	gamma         float64
	bias          float64
}

// NewWheelJoint slides bodyB relative to bodyA along axis, anchored at the
// given world point.
func NewWheelJoint(bodyA, bodyB *body.Body, anchor, axis math2.Vector2) *WheelJoint {

	j := &WheelJoint{baseJoint: newBaseJoint(bodyA, bodyB, false), frequency: 2, dampingRatio: 0.7}
	j.localAnchorA = bodyA.GetLocalPoint(anchor)
	j.localAnchorB = bodyB.GetLocalPoint(anchor)
	j.localAxisA = bodyA.GetLocalVector(*axis.Clone().Normalize())
	return j
}

func (j *WheelJoint) SetSpringEnabled(enabled bool) {
	j.springEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

// SetFrequency sets the suspension spring's frequency in Hz. Must be positive.
func (j *WheelJoint) SetFrequency(hz float64) error {
	if hz <= 0 {
		return perr.InvalidArgument("wheel joint: frequency must be positive")
	}
	j.frequency = hz
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

// SetDampingRatio sets the suspension spring's damping ratio, in [0,1].
func (j *WheelJoint) SetDampingRatio(ratio float64) error {
	if ratio < 0 || ratio > 1 {
		return perr.InvalidArgument("wheel joint: damping ratio must be in [0,1]")
	}
	j.dampingRatio = ratio
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

// SetMaxSpringForce caps the suspension spring's impulse magnitude per unit
// time; zero (the default) leaves it unclamped. Must be non-negative.
func (j *WheelJoint) SetMaxSpringForce(f float64) error {
	if f < 0 {
		return perr.InvalidArgument("wheel joint: max spring force must be non-negative")
	}
	j.maxSpringForce = f
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

func (j *WheelJoint) SetMotorEnabled(enabled bool) {
	j.motorEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *WheelJoint) SetMotorSpeed(speed float64) {
	j.motorSpeed = speed
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

// SetMaxMotorTorque caps the motor's impulse magnitude per unit time. Must
// be non-negative.
func (j *WheelJoint) SetMaxMotorTorque(t float64) error {
	if t < 0 {
		return perr.InvalidArgument("wheel joint: max motor torque must be non-negative")
	}
	j.maxMotorTorque = t
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

func (j *WheelJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)
	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)

	j.axis = j.bodyA.GetWorldVector(j.localAxisA)
	j.perp = *j.axis.Clone().Perp()

	dPlusRA := *math2.NewVec2().AddVectors(&d, &rA)
	j.s1 = dPlusRA.Cross(&j.perp)
	j.s2 = rB.Cross(&j.perp)
	j.a1 = dPlusRA.Cross(&j.axis)
	j.a2 = rB.Cross(&j.axis)

	kPerp := invMassA + invMassB + invIA*j.s1*j.s1 + invIB*j.s2*j.s2
	if kPerp > 0 {
		j.perpMass = 1 / kPerp
	}

	kAxial := invMassA + invMassB + invIA*j.a1*j.a1 + invIB*j.a2*j.a2
	j.gamma = 0
	j.bias = 0
	if j.springEnabled && j.frequency > 0 && kAxial > 0 {
		j.springMass = 1 / kAxial
		translation := d.Dot(&j.axis)
		omega := 2 * math2.Pi * j.frequency
		c := 2 * j.springMass * j.dampingRatio * omega
		k2 := j.springMass * omega * omega
		h := dt
		j.gamma = h * (c + h*k2)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = translation * h * k2 * j.gamma
		if kAxial+j.gamma > 0 {
			j.springMass = 1 / (kAxial + j.gamma)
		}
	} else {
		j.springImpulse = 0
	}

	kMotor := invIA + invIB
	if kMotor > 0 {
		j.motorMass = 1 / kMotor
	}
	if !j.motorEnabled {
		j.motorImpulse = 0
	}
	return nil
}

func (j *WheelJoint) WarmStart() {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	axial := j.springImpulse
	p := *math2.NewVec2().AddVectors(
		j.perp.Clone().Scale(j.perpImpulse),
		j.axis.Clone().Scale(axial),
	)
	lA := j.perpImpulse*j.s1 + axial*j.a1 + j.motorImpulse
	lB := j.perpImpulse*j.s2 + axial*j.a2 + j.motorImpulse

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&p, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*lA)

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&p, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*lB)
}

func (j *WheelJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()

	if j.motorEnabled {
		cdot := wB - wA - j.motorSpeed
		impulse := -j.motorMass * cdot
		old := j.motorImpulse
		maxImpulse := j.maxMotorTorque * dt
		j.motorImpulse = math2.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		wA -= invIA * impulse
		wB += invIB * impulse
	}

	if j.springEnabled {
		cdot := j.axis.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.a2*wB - j.a1*wA
		impulse := -j.springMass * (cdot + j.bias + j.gamma*j.springImpulse)
		j.springImpulse += impulse
		if j.maxSpringForce > 0 {
			maxImpulse := j.maxSpringForce * dt
			clamped := math2.Clamp(j.springImpulse, -maxImpulse, maxImpulse)
			impulse += clamped - j.springImpulse
			j.springImpulse = clamped
		}

		p := *j.axis.Clone().Scale(impulse)
		vA.AddScaled(&p, -invMassA)
		wA -= invIA * j.a1 * impulse
		vB.AddScaled(&p, invMassB)
		wB += invIB * j.a2 * impulse
	}

	cdot := j.perp.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.s2*wB - j.s1*wA
	impulse := -j.perpMass * cdot
	j.perpImpulse += impulse

	p := *j.perp.Clone().Scale(impulse)
	vA.AddScaled(&p, -invMassA)
	wA -= invIA * j.s1 * impulse
	vB.AddScaled(&p, invMassB)
	wB += invIB * j.s2 * impulse

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *WheelJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)
	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)

	axis := j.bodyA.GetWorldVector(j.localAxisA)
	perp := *axis.Clone().Perp()

	dPlusRA := *math2.NewVec2().AddVectors(&d, &rA)
	s1 := dPlusRA.Cross(&perp)
	s2 := rB.Cross(&perp)

	c := perp.Dot(&d)
	k := invMassA + invMassB + invIA*s1*s1 + invIB*s2*s2
	if k <= 0 {
		return true
	}
	impulse := -c / k

	p := *perp.Clone().Scale(impulse)
	lA := impulse * s1
	lB := impulse * s2

	j.bodyA.ApplyPositionCorrection(*p.Clone().Scale(-invMassA), -invIA*lA)
	j.bodyB.ApplyPositionCorrection(*p.Clone().Scale(invMassB), invIB*lB)

	return math.Abs(c) <= cfg.LinearTolerance
}

func (j *WheelJoint) Shift(delta math2.Vector2) {}

func (j *WheelJoint) ReactionForce(invDt float64) math2.Vector2 {
	p := *j.perp.Clone().Scale(j.perpImpulse)
	a := *j.axis.Clone().Scale(j.springImpulse)
	return *p.Add(&a).Scale(invDt)
}

func (j *WheelJoint) ReactionTorque(invDt float64) float64 { return j.motorImpulse * invDt }
