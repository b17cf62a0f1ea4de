package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// PrismaticJoint restricts the relative motion of two bodies to sliding
// along a single fixed axis (a piston), removing the perpendicular
// translation and all relative rotation, with an optional sliding limit
// and an optional motor that drives the slide at a target speed.
type PrismaticJoint struct {
	baseJoint

	localAnchorA, localAnchorB math2.Vector2
	localAxisA                 math2.Vector2
	referenceAngle             float64

	limitEnabled bool
	lowerLimit   float64
	upperLimit   float64

	motorEnabled  bool
	motorSpeed    float64
	maxMotorForce float64

	axis, perp     math2.Vector2
	s1, s2, a1, a2 float64
	k              math2.Matrix22
	axialMass      float64

	impulse      math2.Vector2 // perpendicular, angular
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64
	limitState   LimitState
}

// NewPrismaticJoint slides bodyB relative to bodyA along axis (a
// world-space direction), anchored at the given world point.
func NewPrismaticJoint(bodyA, bodyB *body.Body, anchor, axis math2.Vector2) *PrismaticJoint {

	j := &PrismaticJoint{baseJoint: newBaseJoint(bodyA, bodyB, false)}
	j.localAnchorA = bodyA.GetLocalPoint(anchor)
	j.localAnchorB = bodyB.GetLocalPoint(anchor)
	j.localAxisA = bodyA.GetLocalVector(*axis.Clone().Normalize())
	j.referenceAngle = bodyB.Angle() - bodyA.Angle()
	return j
}

func (j *PrismaticJoint) SetLimitEnabled(enabled bool) {
	j.limitEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *PrismaticJoint) IsLimitEnabled() bool { return j.limitEnabled }

// SetLimits sets the joint's sliding limits. Returns InvalidArgument if
// lower > upper.
func (j *PrismaticJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return perr.InvalidArgument("prismatic joint: lower limit must not exceed upper limit")
	}
	j.lowerLimit = lower
	j.upperLimit = upper
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

func (j *PrismaticJoint) SetMotorEnabled(enabled bool) {
	j.motorEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *PrismaticJoint) IsMotorEnabled() bool { return j.motorEnabled }
func (j *PrismaticJoint) SetMotorSpeed(speed float64) {
	j.motorSpeed = speed
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

// SetMaxMotorForce caps the motor's impulse magnitude per unit time. Must
// be non-negative.
func (j *PrismaticJoint) SetMaxMotorForce(f float64) error {
	if f < 0 {
		return perr.InvalidArgument("prismatic joint: max motor force must be non-negative")
	}
	j.maxMotorForce = f
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

func (j *PrismaticJoint) translation() float64 {

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)
	axis := j.bodyA.GetWorldVector(j.localAxisA)
	return d.Dot(&axis)
}

func (j *PrismaticJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

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

	k11 := invMassA + invMassB + invIA*j.s1*j.s1 + invIB*j.s2*j.s2
	k12 := invIA*j.s1 + invIB*j.s2
	k22 := invIA + invIB
	if k22 == 0 {
		k22 = 1
	}
	j.k = math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	axialK := invMassA + invMassB + invIA*j.a1*j.a1 + invIB*j.a2*j.a2
	if axialK > 0 {
		j.axialMass = 1 / axialK
	}

	if j.limitEnabled {
		j.limitState = computeLimitState(d.Dot(&j.axis), j.lowerLimit, j.upperLimit, 0.005)
	} else {
		j.limitState = LimitInactive
		j.lowerImpulse = 0
		j.upperImpulse = 0
	}
	if !j.motorEnabled {
		j.motorImpulse = 0
	}
	return nil
}

func (j *PrismaticJoint) axialForce() float64 {
	return j.motorImpulse + j.lowerImpulse - j.upperImpulse
}

func (j *PrismaticJoint) WarmStart() {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	axial := j.axialForce()
	p := *math2.NewVec2().AddVectors(
		ptrScale(&j.perp, j.impulse.X),
		ptrScale(&j.axis, axial),
	)
	lA := j.impulse.X*j.s1 + j.impulse.Y + axial*j.a1
	lB := j.impulse.X*j.s2 + j.impulse.Y + axial*j.a2

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&p, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*lA)

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&p, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*lB)
}

func ptrScale(v *math2.Vector2, s float64) *math2.Vector2 { return v.Clone().Scale(s) }

func (j *PrismaticJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	wA, wB := j.bodyA.AngularVelocity(), j.bodyB.AngularVelocity()
	vA, vB := j.bodyA.LinearVelocity(), j.bodyB.LinearVelocity()

	if j.motorEnabled && j.limitState != LimitEqual {
		cdot := j.axis.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.a2*wB - j.a1*wA - j.motorSpeed
		impulse := -j.axialMass * cdot
		old := j.motorImpulse
		maxImpulse := j.maxMotorForce * dt
		j.motorImpulse = math2.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old

		p := *j.axis.Clone().Scale(impulse)
		vA.AddScaled(&p, -invMassA)
		wA -= invIA * j.a1 * impulse
		vB.AddScaled(&p, invMassB)
		wB += invIB * j.a2 * impulse
	}

	if j.limitEnabled {
		translation := j.translation()

		if j.limitState == LimitAtLower || j.limitState == LimitEqual {
			c := translation - j.lowerLimit
			cdot := j.axis.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.a2*wB - j.a1*wA
			bias := math.Max(c, 0) * invDt * 0.2
			impulse := -j.axialMass * (cdot + bias)
			newImp := math.Max(j.lowerImpulse+impulse, 0)
			impulse = newImp - j.lowerImpulse
			j.lowerImpulse = newImp

			p := *j.axis.Clone().Scale(impulse)
			vA.AddScaled(&p, -invMassA)
			wA -= invIA * j.a1 * impulse
			vB.AddScaled(&p, invMassB)
			wB += invIB * j.a2 * impulse
		}

		if j.limitState == LimitAtUpper || j.limitState == LimitEqual {
			c := j.upperLimit - translation
			cdot := -(j.axis.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.a2*wB - j.a1*wA)
			bias := math.Max(c, 0) * invDt * 0.2
			impulse := -j.axialMass * (cdot + bias)
			newImp := math.Max(j.upperImpulse+impulse, 0)
			impulse = newImp - j.upperImpulse
			j.upperImpulse = newImp

			p := *j.axis.Clone().Scale(-impulse)
			vA.AddScaled(&p, -invMassA)
			wA -= invIA * j.a1 * -impulse
			vB.AddScaled(&p, invMassB)
			wB += invIB * j.a2 * -impulse
		}
	}

	cdot := math2.Vector2{
		X: j.perp.Dot(math2.NewVec2().SubVectors(&vB, &vA)) + j.s2*wB - j.s1*wA,
		Y: wB - wA,
	}
	negCdot := *cdot.Clone().Negate()
	impulse := j.k.Solve(&negCdot)
	j.impulse.Add(impulse)

	p := *j.perp.Clone().Scale(impulse.X)
	lA := impulse.X*j.s1 + impulse.Y
	lB := impulse.X*j.s2 + impulse.Y

	vA.AddScaled(&p, -invMassA)
	wA -= invIA * lA
	vB.AddScaled(&p, invMassB)
	wB += invIB * lB

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *PrismaticJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

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

	perpError := perp.Dot(&d)
	angleError := j.bodyB.Angle() - j.bodyA.Angle() - j.referenceAngle

	k11 := invMassA + invMassB + invIA*s1*s1 + invIB*s2*s2
	k12 := invIA*s1 + invIB*s2
	k22 := invIA + invIB
	if k22 == 0 {
		k22 = 1
	}
	k := math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	c := math2.Vector2{X: perpError, Y: angleError}
	negC := *c.Clone().Negate()
	impulse := k.Solve(&negC)

	p := *perp.Clone().Scale(impulse.X)
	lA := impulse.X*s1 + impulse.Y
	lB := impulse.X*s2 + impulse.Y

	j.bodyA.ApplyPositionCorrection(*p.Clone().Scale(-invMassA), -invIA*lA)
	j.bodyB.ApplyPositionCorrection(*p.Clone().Scale(invMassB), invIB*lB)

	return math.Abs(perpError) <= cfg.LinearTolerance && math.Abs(angleError) <= cfg.AngularTolerance
}

func (j *PrismaticJoint) Shift(delta math2.Vector2) {}

func (j *PrismaticJoint) ReactionForce(invDt float64) math2.Vector2 {
	p := *j.perp.Clone().Scale(j.impulse.X)
	a := *j.axis.Clone().Scale(j.axialForce())
	return *p.Add(&a).Scale(invDt)
}

func (j *PrismaticJoint) ReactionTorque(invDt float64) float64 { return j.impulse.Y * invDt }
