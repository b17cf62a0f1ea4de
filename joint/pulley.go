package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// PulleyJoint links two bodies over a pair of fixed ground anchors with a
// mechanical ratio: as bodyA's cable pays out, bodyB's is reeled in (and
// vice versa) so that lengthA + ratio*lengthB stays constant. With slack
// enabled, the combined length is only an upper bound: the joint applies no
// correction while the cable is slack (length < constant) and only ever
// pulls, never pushes, once it goes taut.
type PulleyJoint struct {
	baseJoint

	groundAnchorA, groundAnchorB math2.Vector2
	localAnchorA, localAnchorB   math2.Vector2
	ratio                        float64
	constant                     float64
	slackEnabled                 bool

	rA, rB       math2.Vector2
	axisA, axisB math2.Vector2
	mA, mB       float64 // per-chain effective mass contribution
	mass         float64
	impulse      float64
	active       bool // false only when slackEnabled and the cable is currently slack
}

// NewPulleyJoint connects bodyA and bodyB, each running a cable over its
// own fixed ground anchor, with the given mechanical ratio.
func NewPulleyJoint(bodyA, bodyB *body.Body, groundAnchorA, groundAnchorB, anchorA, anchorB math2.Vector2, ratio float64) *PulleyJoint {

	j := &PulleyJoint{baseJoint: newBaseJoint(bodyA, bodyB, true), ratio: ratio}
	j.groundAnchorA = groundAnchorA
	j.groundAnchorB = groundAnchorB
	j.localAnchorA = bodyA.GetLocalPoint(anchorA)
	j.localAnchorB = bodyB.GetLocalPoint(anchorB)

	lengthA := anchorA.DistanceTo(&groundAnchorA)
	lengthB := anchorB.DistanceTo(&groundAnchorB)
	j.constant = lengthA + ratio*lengthB
	return j
}

func (j *PulleyJoint) SetRatio(r float64) {
	j.ratio = r
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *PulleyJoint) Ratio() float64 { return j.ratio }

// SetSlackEnabled toggles slack behaviour: when true, the combined-length
// constraint only resists the cable growing past constant (an inequality,
// like a rope), and applies nothing while the cable is shorter than that
// (slack). When false (the default) the joint holds the combined length
// exactly at constant in both directions.
func (j *PulleyJoint) SetSlackEnabled(enabled bool) {
	j.slackEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *PulleyJoint) IsSlackEnabled() bool { return j.slackEnabled }

func (j *PulleyJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	j.rA = *math2.NewVec2().SubVectors(&anchorA, &centerA)
	j.rB = *math2.NewVec2().SubVectors(&anchorB, &centerB)

	dA := *math2.NewVec2().SubVectors(&anchorA, &j.groundAnchorA)
	dB := *math2.NewVec2().SubVectors(&anchorB, &j.groundAnchorB)
	lengthA := dA.Length()
	lengthB := dB.Length()

	if lengthA > 10*math2.Epsilon {
		j.axisA = *dA.Clone().Scale(1 / lengthA)
	} else {
		j.axisA = math2.Vector2{}
	}
	if lengthB > 10*math2.Epsilon {
		j.axisB = *dB.Clone().Scale(1 / lengthB)
	} else {
		j.axisB = math2.Vector2{}
	}

	crA := j.rA.Cross(&j.axisA)
	crB := j.rB.Cross(&j.axisB)
	j.mA = invMassA + invIA*crA*crA
	j.mB = invMassB + invIB*crB*crB

	k := j.mA + j.ratio*j.ratio*j.mB
	if k > 0 {
		j.mass = 1 / k
	}

	if j.slackEnabled {
		currentLength := lengthA + j.ratio*lengthB
		j.active = currentLength >= j.constant-cfg.LinearTolerance
		if !j.active {
			j.impulse = 0
		}
	} else {
		j.active = true
	}
	return nil
}

func (j *PulleyJoint) WarmStart() {

	if !j.active {
		return
	}

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	pA := *j.axisA.Clone().Scale(-j.impulse)
	pB := *j.axisB.Clone().Scale(-j.ratio * j.impulse)

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&pA, invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() + invIA*j.rA.Cross(&pA))

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&pB, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*j.rB.Cross(&pB))
}

func (j *PulleyJoint) SolveVelocityConstraints(dt, invDt float64) {

	if !j.active {
		return
	}

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()

	vpA := *math2.CrossScalar(wA, &j.rA)
	vpA.Add(&vA)
	vpB := *math2.CrossScalar(wB, &j.rB)
	vpB.Add(&vB)

	cdot := -j.axisA.Dot(&vpA) - j.ratio*j.axisB.Dot(&vpB)
	impulse := -j.mass * cdot
	if j.slackEnabled {
		// Slack mode is an inequality: the cable can only pull (impulse >= 0),
		// never push the anchors apart.
		newImp := math.Max(j.impulse+impulse, 0)
		impulse = newImp - j.impulse
		j.impulse = newImp
	} else {
		j.impulse += impulse
	}

	pA := *j.axisA.Clone().Scale(-impulse)
	pB := *j.axisB.Clone().Scale(-j.ratio * impulse)

	vA.AddScaled(&pA, invMassA)
	wA += invIA * j.rA.Cross(&pA)
	vB.AddScaled(&pB, invMassB)
	wB += invIB * j.rB.Cross(&pB)

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *PulleyJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)

	dA := *math2.NewVec2().SubVectors(&anchorA, &j.groundAnchorA)
	dB := *math2.NewVec2().SubVectors(&anchorB, &j.groundAnchorB)
	lengthA := dA.Length()
	lengthB := dB.Length()

	var axisA, axisB math2.Vector2
	if lengthA > 10*math2.Epsilon {
		axisA = *dA.Clone().Scale(1 / lengthA)
	}
	if lengthB > 10*math2.Epsilon {
		axisB = *dB.Clone().Scale(1 / lengthB)
	}

	c := j.constant - lengthA - j.ratio*lengthB

	if j.slackEnabled && c >= -cfg.LinearTolerance {
		// Cable is slack (length <= constant): nothing to correct.
		return true
	}

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	crA := rA.Cross(&axisA)
	crB := rB.Cross(&axisB)
	mA := invMassA + invIA*crA*crA
	mB := invMassB + invIB*crB*crB
	k := mA + j.ratio*j.ratio*mB
	if k <= 0 {
		return true
	}
	impulse := -c / k

	pA := *axisA.Clone().Scale(-impulse)
	pB := *axisB.Clone().Scale(-j.ratio * impulse)

	j.bodyA.ApplyPositionCorrection(*pA.Clone().Scale(invMassA), invIA*rA.Cross(&pA))
	j.bodyB.ApplyPositionCorrection(*pB.Clone().Scale(invMassB), invIB*rB.Cross(&pB))

	return math.Abs(c) <= cfg.LinearTolerance
}

func (j *PulleyJoint) Shift(delta math2.Vector2) {
	j.groundAnchorA.Add(&delta)
	j.groundAnchorB.Add(&delta)
}

func (j *PulleyJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.axisB.Clone().Scale(-j.ratio * j.impulse * invDt)
}
func (j *PulleyJoint) ReactionTorque(invDt float64) float64 { return 0 }
