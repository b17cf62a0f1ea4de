package joint

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
)

// AngleJoint constrains the relative angle between two bodies to a fixed
// offset, optionally clamped to a [lower, upper] range and optionally
// geared by a ratio (so bodyA's angle tracks ratio*bodyB's angle plus the
// reference offset, rather than tracking it 1:1).
type AngleJoint struct {
	baseJoint

	referenceAngle float64
	ratio          float64

	limitEnabled bool
	lowerLimit   float64
	upperLimit   float64

	limitState LimitState

	invK      float64 // Effective mass inverse for the geared (ratio-weighted) constraint.
	invKLimit float64 // Effective mass inverse for the limit branches: ratio is disabled there.

	impulse  float64
	lowerImp float64
	upperImp float64
}

// NewAngleJoint creates an angle joint holding bodyA's angle at
// ratio*bodyB.Angle() + referenceAngle. A ratio of 1 is the common case of
// keeping a fixed relative angle.
func NewAngleJoint(bodyA, bodyB *body.Body) *AngleJoint {

	j := &AngleJoint{baseJoint: newBaseJoint(bodyA, bodyB, false), ratio: 1}
	j.referenceAngle = bodyA.Angle() - bodyB.Angle()
	return j
}

func (j *AngleJoint) SetReferenceAngle(angle float64) {
	j.referenceAngle = angle
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *AngleJoint) ReferenceAngle() float64 { return j.referenceAngle }

func (j *AngleJoint) SetRatio(ratio float64) {
	j.ratio = ratio
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *AngleJoint) Ratio() float64 { return j.ratio }

func (j *AngleJoint) SetLimitEnabled(enabled bool) {
	j.limitEnabled = enabled
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
}
func (j *AngleJoint) IsLimitEnabled() bool { return j.limitEnabled }

// SetLimits sets the joint's angular limits. Returns InvalidArgument if
// lower > upper.
func (j *AngleJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return perr.InvalidArgument("angle joint: lower limit must not exceed upper limit")
	}
	j.lowerLimit = lower
	j.upperLimit = upper
	j.bodyA.WakeUp()
	j.bodyB.WakeUp()
	return nil
}

// relativeAngle is C = theta1 - ratio*theta2 (body1 = bodyA, body2 = bodyB),
// the position-level form of the geared velocity constraint
// C' = omega1 - ratio*omega2.
func (j *AngleJoint) relativeAngle() float64 {
	return j.bodyA.Angle() - j.ratio*j.bodyB.Angle()
}

func (j *AngleJoint) InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error {

	invIA, invIB := j.bodyA.Mass().InvInertia(), j.bodyB.Mass().InvInertia()

	k := invIA + j.ratio*j.ratio*invIB
	if k > 0 {
		j.invK = 1 / k
	} else {
		j.invK = 0
	}

	kLimit := invIA + invIB
	if kLimit > 0 {
		j.invKLimit = 1 / kLimit
	} else {
		j.invKLimit = 0
	}

	if j.limitEnabled {
		angle := j.relativeAngle() - j.referenceAngle
		j.limitState = computeLimitState(angle, j.lowerLimit, j.upperLimit, 0.005)
	} else {
		j.limitState = LimitInactive
	}
	return nil
}

func (j *AngleJoint) WarmStart() {

	invIA, invIB := j.bodyA.Mass().InvInertia(), j.bodyB.Mass().InvInertia()
	wA := j.bodyA.AngularVelocity()
	wB := j.bodyB.AngularVelocity()

	wA += invIA * j.impulse
	wB -= invIB * j.ratio * j.impulse

	limitTotal := j.lowerImp - j.upperImp
	wA += invIA * limitTotal
	wB -= invIB * limitTotal

	j.bodyA.SetAngularVelocity(wA)
	j.bodyB.SetAngularVelocity(wB)
}

func (j *AngleJoint) SolveVelocityConstraints(dt, invDt float64) {

	invIA, invIB := j.bodyA.Mass().InvInertia(), j.bodyB.Mass().InvInertia()

	if j.limitEnabled {
		angle := j.relativeAngle() - j.referenceAngle

		// Limit branches disable the ratio: the constraint reduces to the
		// plain relative angular rate, with effective mass I1^-1 + I2^-1.
		if j.limitState == LimitAtLower || j.limitState == LimitEqual {
			cdot := j.bodyA.AngularVelocity() - j.bodyB.AngularVelocity()
			c := angle - j.lowerLimit
			bias := math.Max(c, 0) * invDt * 0.2
			lambda := -j.invKLimit * (cdot + bias)
			newImp := math.Max(j.lowerImp+lambda, 0)
			lambda = newImp - j.lowerImp
			j.lowerImp = newImp
			j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() + invIA*lambda)
			j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() - invIB*lambda)
		}
		if j.limitState == LimitAtUpper || j.limitState == LimitEqual {
			cdot := j.bodyB.AngularVelocity() - j.bodyA.AngularVelocity()
			c := j.upperLimit - angle
			bias := math.Max(c, 0) * invDt * 0.2
			lambda := -j.invKLimit * (cdot + bias)
			newImp := math.Max(j.upperImp+lambda, 0)
			lambda = newImp - j.upperImp
			j.upperImp = newImp
			j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() - invIA*lambda)
			j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() + invIB*lambda)
		}
		if j.limitState != LimitInactive {
			return
		}
	}

	cdot := j.bodyA.AngularVelocity() - j.ratio*j.bodyB.AngularVelocity()
	lambda := -j.invK * cdot
	j.impulse += lambda
	j.bodyA.SetAngularVelocity(j.bodyA.AngularVelocity() + invIA*lambda)
	j.bodyB.SetAngularVelocity(j.bodyB.AngularVelocity() - invIB*j.ratio*lambda)
}

func (j *AngleJoint) SolvePositionConstraints(cfg *settings.Settings) bool {

	invIA, invIB := j.bodyA.Mass().InvInertia(), j.bodyB.Mass().InvInertia()
	angle := j.relativeAngle() - j.referenceAngle

	if j.limitEnabled {
		var c float64
		switch {
		case angle < j.lowerLimit:
			c = angle - j.lowerLimit
		case angle > j.upperLimit:
			c = angle - j.upperLimit
		default:
			return true
		}
		// Limit branches disable the ratio, matching the velocity solve.
		correction := math2.Clamp(c, -cfg.MaxAngularCorrection, cfg.MaxAngularCorrection)
		lambda := -correction * j.invKLimit
		j.bodyA.ApplyPositionCorrection(math2.Vector2{}, invIA*lambda)
		j.bodyB.ApplyPositionCorrection(math2.Vector2{}, -invIB*lambda)
		return math.Abs(c) <= cfg.AngularTolerance
	}

	correction := math2.Clamp(angle, -cfg.MaxAngularCorrection, cfg.MaxAngularCorrection)
	lambda := -correction * j.invK
	j.bodyA.ApplyPositionCorrection(math2.Vector2{}, invIA*lambda)
	j.bodyB.ApplyPositionCorrection(math2.Vector2{}, -invIB*j.ratio*lambda)

	return math.Abs(angle) <= cfg.AngularTolerance
}

// Shift is a no-op: an angle joint holds no world-space anchor state.
func (j *AngleJoint) Shift(delta math2.Vector2) {}

func (j *AngleJoint) ReactionForce(invDt float64) math2.Vector2 { return math2.Vector2{} }
func (j *AngleJoint) ReactionTorque(invDt float64) float64 {
	return (j.impulse + j.lowerImp - j.upperImp) * invDt
}
