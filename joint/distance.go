package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// DistanceJoint holds two anchor points a fixed distance apart, optionally
// as a soft spring (frequency/dampingRatio) rather than a rigid rod.
type DistanceJoint struct {
	baseJoint

	localAnchorA, localAnchorB math2.Vector2
	restLength                 float64

	springEnabled bool
	frequency     float64
	dampingRatio  float64

	rA, rB    math2.Vector2
	axis      math2.Vector2
	axialMass float64
	gamma     float64
	bias      float64
	impulse   float64
}

// NewDistanceJoint connects bodyA and bodyB at the given world anchors,
// fixing their separation to the anchors' current distance.
func NewDistanceJoint(bodyA, bodyB *body.Body, anchorA, anchorB math2.Vector2) *DistanceJoint {

	j := &DistanceJoint{baseJoint: newBaseJoint(bodyA, bodyB, false)}
	j.localAnchorA = bodyA.GetLocalPoint(anchorA)
	j.localAnchorB = bodyB.GetLocalPoint(anchorB)
	j.restLength = anchorB.DistanceTo(&anchorA)
	return j
}

// SetRestLength sets the distance the joint holds its anchors apart. Must
// be non-negative.
func (j *DistanceJoint) SetRestLength(l float64) error {
	if l < 0 {
		return perr.InvalidArgument("distance joint: rest length must be non-negative")
	}
	j.restLength = l
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *DistanceJoint) RestLength() float64 { return j.restLength }

func (j *DistanceJoint) SetSpringEnabled(enabled bool) {
	j.springEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *DistanceJoint) IsSpringEnabled() bool { return j.springEnabled }

// SetFrequency sets the spring's frequency in Hz. Must be positive.
func (j *DistanceJoint) SetFrequency(hz float64) error {
	if hz <= 0 {
		return perr.InvalidArgument("distance joint: frequency must be positive")
	}
	j.frequency = hz
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *DistanceJoint) Frequency() float64 { return j.frequency }

// SetDampingRatio sets the spring's damping ratio, in [0,1].
func (j *DistanceJoint) SetDampingRatio(ratio float64) error {
	if ratio < 0 || ratio > 1 {
		return perr.InvalidArgument("distance joint: damping ratio must be in [0,1]")
	}
	j.dampingRatio = ratio
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *DistanceJoint) DampingRatio() float64 { return j.dampingRatio }

func (j *DistanceJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

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

	crA := j.rA.Cross(&j.axis)
	crB := j.rB.Cross(&j.axis)
	k := invMassA + invMassB + invIA*crA*crA + invIB*crB*crB
	if k > 0 {
		j.axialMass = 1 / k
	} else {
		j.axialMass = 0
	}

	j.gamma = 0
	j.bias = 0
	if j.springEnabled && j.frequency > 0 {
		omega := 2 * math2.Pi * j.frequency
		c := 2 * j.axialMass * j.dampingRatio * omega // damping coefficient
		k2 := j.axialMass * omega * omega
		h := dt
		j.gamma = h * (c + h*k2)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = (length - j.restLength) * h * k2 * j.gamma
		if k+j.gamma > 0 {
			j.axialMass = 1 / (k + j.gamma)
		} else {
			j.axialMass = 0
		}
	}
	return nil
}

func (j *DistanceJoint) WarmStart() {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	p := *j.axis.Clone().Scale(j.impulse)

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&p, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*j.rA.Cross(&p))

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&p, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*j.rB.Cross(&p))
}

func (j *DistanceJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()

	pointVelA := *math2.CrossScalar(wA, &j.rA)
	pointVelA.Add(&vA)
	pointVelB := *math2.CrossScalar(wB, &j.rB)
	pointVelB.Add(&vB)
	relVel := *math2.NewVec2().SubVectors(&pointVelB, &pointVelA)
	cdot := j.axis.Dot(&relVel)

	impulse := -j.axialMass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	p := *j.axis.Clone().Scale(impulse)
	vA.AddScaled(&p, -invMassA)
	wA -= invIA * j.rA.Cross(&p)
	vB.AddScaled(&p, invMassB)
	wB += invIB * j.rB.Cross(&p)

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *DistanceJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	if j.springEnabled {
		return true
	}

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)

	d := *math2.NewVec2().SubVectors(&anchorB, &anchorA)
	length := d.Length()
	var axis math2.Vector2
	if length < math2.Epsilon {
		axis = math2.Vector2{X: 1, Y: 0}
	} else {
		axis = *d.Clone().Scale(1 / length)
	}

	c := math2.Clamp(length-j.restLength, -cfg.MaxLinearCorrection, cfg.MaxLinearCorrection)

	crA := rA.Cross(&axis)
	crB := rB.Cross(&axis)
	k := invMassA + invMassB + invIA*crA*crA + invIB*crB*crB
	if k <= 0 {
		return true
	}
	impulse := -c / k

	p := *axis.Clone().Scale(impulse)
	j.bodyA.ApplyPositionCorrection(*p.Clone().Scale(-invMassA), -invIA*rA.Cross(&p))
	j.bodyB.ApplyPositionCorrection(*p.Clone().Scale(invMassB), invIB*rB.Cross(&p))

	return math.Abs(length-j.restLength) <= cfg.LinearTolerance
}

func (j *DistanceJoint) Shift(delta math2.Vector2) {}

func (j *DistanceJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *j.axis.Clone().Scale(j.impulse * invDt)
}

func (j *DistanceJoint) ReactionTorque(invDt float64) float64 { return 0 }
