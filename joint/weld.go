package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// WeldJoint fuses two bodies at a shared anchor point, removing the
// translational degrees of freedom with a rigid 2x2 point-to-point solve.
// The rotational degree of freedom is rigid by default (a combined 3x3
// solve with the point constraint) but may instead be driven as a soft
// angular spring (frequency + damping ratio, optionally capped by a
// maximum spring torque), in which case the point and angle constraints
// are solved separately.
type WeldJoint struct {
	baseJoint

	localAnchorA, localAnchorB math2.Vector2
	referenceAngle             float64

	springEnabled   bool
	frequency       float64
	dampingRatio    float64
	maxSpringTorque float64 // 0 means unclamped.

	rA, rB  math2.Vector2
	mass    math2.Mat33    // rigid mode (springEnabled == false)
	k2      math2.Matrix22 // soft mode: point-to-point block only
	impulse [3]float64     // x, y, angular (angular unused in soft mode)

	gamma         float64
	bias          float64
	angularMass   float64
	springImpulse float64
}

// NewWeldJoint rigidly welds bodyA and bodyB at the given world anchor,
// preserving their current relative angle.
func NewWeldJoint(bodyA, bodyB *body.Body, anchor math2.Vector2) *WeldJoint {

	j := &WeldJoint{baseJoint: newBaseJoint(bodyA, bodyB, false)}
	j.localAnchorA = bodyA.GetLocalPoint(anchor)
	j.localAnchorB = bodyB.GetLocalPoint(anchor)
	j.referenceAngle = bodyB.Angle() - bodyA.Angle()
	return j
}

// SetSpringEnabled toggles the soft angular spring. Disabled (the default)
// means the two bodies are held at a fixed relative angle exactly.
func (j *WeldJoint) SetSpringEnabled(enabled bool) {
	j.springEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *WeldJoint) IsSpringEnabled() bool { return j.springEnabled }

// SetFrequency sets the angular spring's frequency in Hz. Must be positive
// for the spring to have any effect once enabled.
func (j *WeldJoint) SetFrequency(hz float64) error {
	if hz <= 0 {
		return perr.InvalidArgument("weld joint: frequency must be positive")
	}
	j.frequency = hz
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *WeldJoint) Frequency() float64 { return j.frequency }

// SetDampingRatio sets the angular spring's damping ratio, in [0,1].
func (j *WeldJoint) SetDampingRatio(ratio float64) error {
	if ratio < 0 || ratio > 1 {
		return perr.InvalidArgument("weld joint: damping ratio must be in [0,1]")
	}
	j.dampingRatio = ratio
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *WeldJoint) DampingRatio() float64 { return j.dampingRatio }

// SetMaxSpringTorque caps the magnitude of the soft angular spring's
// impulse per unit time; zero (the default) leaves it unclamped. Must be
// non-negative.
func (j *WeldJoint) SetMaxSpringTorque(torque float64) error {
	if torque < 0 {
		return perr.InvalidArgument("weld joint: max spring torque must be non-negative")
	}
	j.maxSpringTorque = torque
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}
func (j *WeldJoint) MaxSpringTorque() float64 { return j.maxSpringTorque }

func (j *WeldJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	j.rA = *math2.NewVec2().SubVectors(&anchorA, &centerA)
	j.rB = *math2.NewVec2().SubVectors(&anchorB, &centerB)

	invM := invMassA + invMassB
	invI := invIA + invIB

	if j.springEnabled && j.frequency > 0 {
		if invI > 0 {
			j.angularMass = 1 / invI
		} else {
			j.angularMass = 0
		}

		omega := 2 * math2.Pi * j.frequency
		c := 2 * j.angularMass * j.dampingRatio * omega
		k2 := j.angularMass * omega * omega
		h := dt
		j.gamma = h * (c + h*k2)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		angleError := j.bodyB.Angle() - j.bodyA.Angle() - j.referenceAngle
		j.bias = angleError * h * k2 * j.gamma
		if invI+j.gamma > 0 {
			j.angularMass = 1 / (invI + j.gamma)
		} else {
			j.angularMass = 0
		}

		j.k2 = math2.Matrix22{
			A11: invM + invIA*j.rA.Y*j.rA.Y + invIB*j.rB.Y*j.rB.Y,
			A12: -invIA*j.rA.X*j.rA.Y - invIB*j.rB.X*j.rB.Y,
			A21: -invIA*j.rA.X*j.rA.Y - invIB*j.rB.X*j.rB.Y,
			A22: invM + invIA*j.rA.X*j.rA.X + invIB*j.rB.X*j.rB.X,
		}
	} else {
		j.gamma = 0
		j.bias = 0
		j.springImpulse = 0

		j.mass = math2.Mat33{
			invM + invIA*j.rA.Y*j.rA.Y + invIB*j.rB.Y*j.rB.Y,
			-invIA*j.rA.X*j.rA.Y - invIB*j.rB.X*j.rB.Y,
			-invIA*j.rA.Y - invIB*j.rB.Y,

			-invIA*j.rA.X*j.rA.Y - invIB*j.rB.X*j.rB.Y,
			invM + invIA*j.rA.X*j.rA.X + invIB*j.rB.X*j.rB.X,
			invIA*j.rA.X + invIB*j.rB.X,

			-invIA*j.rA.Y - invIB*j.rB.Y,
			invIA*j.rA.X + invIB*j.rB.X,
			invI,
		}
	}
	return nil
}

func (j *WeldJoint) WarmStart() {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	p := math2.Vector2{X: j.impulse[0], Y: j.impulse[1]}
	angular := j.impulse[2]
	if j.springEnabled && j.frequency > 0 {
		angular = j.springImpulse
	}

	vA := j.bodyA.LinearVelocity()
	vA.AddScaled(&p, -invMassA)
	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*(j.rA.Cross(&p)+angular))

	vB := j.bodyB.LinearVelocity()
	vB.AddScaled(&p, invMassB)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*(j.rB.Cross(&p)+angular))
}

func (j *WeldJoint) SolveVelocityConstraints(dt, invDt float64) {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	if j.springEnabled && j.frequency > 0 {
		cdotAngular := j.bodyB.AngularVelocity() - j.bodyA.AngularVelocity()
		impulse := -j.angularMass * (cdotAngular + j.bias + j.gamma*j.springImpulse)
		j.springImpulse += impulse
		if j.maxSpringTorque > 0 {
			maxImpulse := j.maxSpringTorque * dt
			clamped := math2.Clamp(j.springImpulse, -maxImpulse, maxImpulse)
			impulse += clamped - j.springImpulse
			j.springImpulse = clamped
		}
		j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*impulse)
		j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*impulse)

		vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
		vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()
		pointVelA := *math2.CrossScalar(wA, &j.rA)
		pointVelA.Add(&vA)
		pointVelB := *math2.CrossScalar(wB, &j.rB)
		pointVelB.Add(&vB)
		cdotLinear := *math2.NewVec2().SubVectors(&pointVelB, &pointVelA)
		negCdot := *cdotLinear.Clone().Negate()

		p := j.k2.Solve(&negCdot)
		j.impulse[0] += p.X
		j.impulse[1] += p.Y

		vA.AddScaled(p, -invMassA)
		wA -= invIA * j.rA.Cross(p)
		vB.AddScaled(p, invMassB)
		wB += invIB * j.rB.Cross(p)

		j.bodyA.SetLinearVelocity(vA)
		j.bodyA.SetAngularVelocity(wA)
		j.bodyB.SetLinearVelocity(vB)
		j.bodyB.SetAngularVelocity(wB)
		return
	}

	vA, wA := j.bodyA.LinearVelocity(), j.bodyA.AngularVelocity()
	vB, wB := j.bodyB.LinearVelocity(), j.bodyB.AngularVelocity()

	cdotAngular := wB - wA

	pointVelA := *math2.CrossScalar(wA, &j.rA)
	pointVelA.Add(&vA)
	pointVelB := *math2.CrossScalar(wB, &j.rB)
	pointVelB.Add(&vB)
	cdotLinear := *math2.NewVec2().SubVectors(&pointVelB, &pointVelA)

	x, y, z := math2.SolveMat33(&j.mass, -cdotLinear.X, -cdotLinear.Y, -cdotAngular)
	j.impulse[0] += x
	j.impulse[1] += y
	j.impulse[2] += z

	p := math2.Vector2{X: x, Y: y}
	vA.AddScaled(&p, -invMassA)
	wA -= invIA * (j.rA.Cross(&p) + z)
	vB.AddScaled(&p, invMassB)
	wB += invIB * (j.rB.Cross(&p) + z)

	j.bodyA.SetLinearVelocity(vA)
	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetLinearVelocity(vB)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *WeldJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	invMassA, invIA := j.bodyA.Mass().InvMass(), j.bodyA.Mass().InvInertia()
	invMassB, invIB := j.bodyB.Mass().InvMass(), j.bodyB.Mass().InvInertia()

	anchorA := j.bodyA.GetWorldPoint(j.localAnchorA)
	anchorB := j.bodyB.GetWorldPoint(j.localAnchorB)
	centerA, centerB := j.bodyA.WorldCenter(), j.bodyB.WorldCenter()
	rA := *math2.NewVec2().SubVectors(&anchorA, &centerA)
	rB := *math2.NewVec2().SubVectors(&anchorB, &centerB)

	angleError := 0.0
	if !j.springEnabled {
		angleError = j.bodyB.Angle() - j.bodyA.Angle() - j.referenceAngle
		invI := invIA + invIB
		if invI > 0 {
			correction := math2.Clamp(angleError, -cfg.MaxAngularCorrection, cfg.MaxAngularCorrection)
			lambda := -correction / invI
			j.bodyA.ApplyPositionCorrection(math2.Vector2{}, -invIA*lambda)
			j.bodyB.ApplyPositionCorrection(math2.Vector2{}, invIB*lambda)
		}
	}

	c := *math2.NewVec2().SubVectors(&anchorB, &anchorA)
	positionError := c.Length()

	k11 := invMassA + invMassB + invIA*rA.Y*rA.Y + invIB*rB.Y*rB.Y
	k12 := -invIA*rA.X*rA.Y - invIB*rB.X*rB.Y
	k22 := invMassA + invMassB + invIA*rA.X*rA.X + invIB*rB.X*rB.X
	k := math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	negC := *c.Clone().Negate()
	impulse := k.Solve(&negC)

	j.bodyA.ApplyPositionCorrection(*impulse.Clone().Scale(-invMassA), -invIA*rA.Cross(impulse))
	j.bodyB.ApplyPositionCorrection(*impulse.Clone().Scale(invMassB), invIB*rB.Cross(impulse))

	return positionError <= cfg.LinearTolerance && math.Abs(angleError) <= cfg.AngularTolerance
}

func (j *WeldJoint) Shift(delta math2.Vector2) {}

func (j *WeldJoint) ReactionForce(invDt float64) math2.Vector2 {
	return *(&math2.Vector2{X: j.impulse[0], Y: j.impulse[1]}).Scale(invDt)
}

func (j *WeldJoint) ReactionTorque(invDt float64) float64 {
	if j.springEnabled && j.frequency > 0 {
		return j.springImpulse * invDt
	}
	return j.impulse[2] * invDt
}
