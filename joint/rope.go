package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// RopeJoint bounds the distance between two anchors, like a taut cable: an
// upper limit pulls the bodies together once they separate past maxLength,
// and an independent lower limit pushes them apart once they close past
// minLength (a strut rather than a rope, from the other side). Either limit
// may be enabled on its own; the joint never applies force while the
// separation sits strictly between whichever limits are active.
type RopeJoint struct {
	baseJoint

	localAnchorA, localAnchorB math2.Vector2

	minLength  float64
	maxLength  float64
	minEnabled bool
	maxEnabled bool

	rA, rB    math2.Vector2
	axis      math2.Vector2
	axialMass float64

	lowerImpulse float64
	upperImpulse float64
	lowerActive  bool
	upperActive  bool
}

// NewRopeJoint connects bodyA and bodyB at the given world anchors,
// capping their separation at maxLength. The lower (minimum-separation)
// limit starts disabled; enable it with SetMinLength/SetMinLengthEnabled.
func NewRopeJoint(bodyA, bodyB *body.Body, anchorA, anchorB math2.Vector2, maxLength float64) *RopeJoint {

	j := &RopeJoint{baseJoint: newBaseJoint(bodyA, bodyB, false), maxLength: maxLength, maxEnabled: true}
	j.localAnchorA = bodyA.GetLocalPoint(anchorA)
	j.localAnchorB = bodyB.GetLocalPoint(anchorB)
	return j
}

// SetMaxLength sets the upper separation bound. Returns InvalidArgument if
// length is negative or below the current minimum.
func (j *RopeJoint) SetMaxLength(l float64) error {
	if l < 0 {
		return perr.InvalidArgument("rope joint: max length must be non-negative")
	}
	if j.minEnabled && l < j.minLength {
		return perr.InvalidArgument("rope joint: max length must not be below min length")
	}
	j.maxLength = l
	j.wake()
	return nil
}
func (j *RopeJoint) MaxLength() float64 { return j.maxLength }

// SetMaxLengthEnabled toggles the upper (maximum-separation) limit.
func (j *RopeJoint) SetMaxLengthEnabled(enabled bool) { j.maxEnabled = enabled; j.wake() }
func (j *RopeJoint) IsMaxLengthEnabled() bool         { return j.maxEnabled }

// SetMinLength sets the lower separation bound. Returns InvalidArgument if
// length is negative or above the current maximum.
func (j *RopeJoint) SetMinLength(l float64) error {
	if l < 0 {
		return perr.InvalidArgument("rope joint: min length must be non-negative")
	}
	if j.maxEnabled && l > j.maxLength {
		return perr.InvalidArgument("rope joint: min length must not exceed max length")
	}
	j.minLength = l
	j.wake()
	return nil
}
func (j *RopeJoint) MinLength() float64 { return j.minLength }

// SetMinLengthEnabled toggles the lower (minimum-separation) limit.
func (j *RopeJoint) SetMinLengthEnabled(enabled bool) { j.minEnabled = enabled; j.wake() }
func (j *RopeJoint) IsMinLengthEnabled() bool         { return j.minEnabled }

func (j *RopeJoint) wake() {
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}

func (j *RopeJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	j.rA = *math2.NewVec2().SubVectors(&anchorA, &centerA)
	j.rB = *math2.NewVec2().SubVectors(&anchorB, &centerB)

	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)
	length := d.Length()
	if length < math2.Epsilon {
		j.axis = math2.Vector2{X: 1, Y: 0}
	} else {
		j.axis = *d.Clone().Scale(1 / length)
	}

	j.upperActive = j.maxEnabled && length >= j.maxLength-cfg.LinearTolerance
	if !j.upperActive {
		j.upperImpulse = 0
	}
	j.lowerActive = j.minEnabled && length <= j.minLength+cfg.LinearTolerance
	if !j.lowerActive {
		j.lowerImpulse = 0
	}

	crA := j.rA.Cross(&j.axis)
	crB := j.rB.Cross(&j.axis)
	k := invMassA + invMassB + invIA*crA*crA + invIB*crB*crB
	if k > 0 {
		j.axialMass = 1 / k
	} else {
		j.axialMass = 0
	}
	return nil
}

func (j *RopeJoint) WarmStart() {

	if !j.upperActive && !j.lowerActive {
		return
	}
	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	total := j.lowerImpulse + j.upperImpulse
	p := *j.axis.Clone().Scale(total)
	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&p, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*j.rA.Cross(&p))

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&p, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*j.rB.Cross(&p))
}

func (j *RopeJoint) SolveVelocityConstraints(dt, invDt float64) {

	if !j.upperActive && !j.lowerActive {
		return
	}

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	relVelAlongAxis := func() float64 {
		vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
		vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()
		pointVelA := *math2.CrossScalar(wA, &j.rA)
		pointVelA.Add(&vA)
		pointVelB := *math2.CrossScalar(wB, &j.rB)
		pointVelB.Add(&vB)
		relVel := *math2.NewVec2().SubVectors(&pointVelB, &pointVelA)
		return j.axis.Dot(&relVel)
	}

	apply := func(impulse float64) {
		p := *j.axis.Clone().Scale(impulse)
		vA := j.bodyA.LinearVelocity()
		vA.AddScaled(&p, -invMassA)
		j.bodyA.SetLinearVelocity(vA)
		j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*j.rA.Cross(&p))

		vB := j.bodyB.LinearVelocity()
		vB.AddScaled(&p, invMassB)
		j.bodyB.SetLinearVelocity(vB)
		j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*j.rB.Cross(&p))
	}

	// Upper limit: distance must not exceed maxLength, so cdot must not be
	// positive; the accumulated impulse only ever pulls the bodies together
	// (clamped to <= 0).
	if j.upperActive {
		cdot := relVelAlongAxis()
		impulse := -j.axialMass * cdot
		newImp := math.Min(j.upperImpulse+impulse, 0)
		impulse = newImp - j.upperImpulse
		j.upperImpulse = newImp
		apply(impulse)
	}

	// Lower limit: distance must not fall below minLength, so cdot must not
	// be negative; the accumulated impulse only ever pushes the bodies
	// apart (clamped to >= 0).
	if j.lowerActive {
		cdot := relVelAlongAxis()
		impulse := -j.axialMass * cdot
		newImp := math.Max(j.lowerImpulse+impulse, 0)
		impulse = newImp - j.lowerImpulse
		j.lowerImpulse = newImp
		apply(impulse)
	}
}

func (j *RopeJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)

	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)
	length := d.Length()

	var c float64
	switch {
	case j.maxEnabled && length > j.maxLength:
		c = length - j.maxLength
	case j.minEnabled && length < j.minLength:
		c = length - j.minLength
	default:
		return true
	}

	axis := *d.Clone().Scale(1 / math.Max(length, math2.Epsilon))
	correction := math2.Clamp(c, -cfg.MaxLinearCorrection, cfg.MaxLinearCorrection)

	crA := rA.Cross(&axis)
	crB := rB.Cross(&axis)
	k := invMassA + invMassB + invIA*crA*crA + invIB*crB*crB
	if k <= 0 {
		return true
	}
	impulse := -correction / k

	p := *axis.Clone().Scale(impulse)
	j.bodyA.ApplyPositionCorrection(*p.Clone().Scale(-invMassA), -invIA*rA.Cross(&p))
	j.bodyB.ApplyPositionCorrection(*p.Clone().Scale(invMassB), invIB*rB.Cross(&p))

	return math.Abs(c) <= cfg.LinearTolerance
}

func (j *RopeJoint) Shift(delta math2.Vector2) {}

func (j *RopeJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.axis.Clone().Scale((j.lowerImpulse + j.upperImpulse) * invDt)
}

func (j *RopeJoint) ReactionTorque(invDt float64) float64 { return 0 }
