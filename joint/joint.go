// Package joint implements the constraint types that tie pairs of bodies
// (or a single body to a fixed world point) together: point-to-point,
// angular, prismatic and spring constraints, each solved as part of the
// same sequential-impulse pass that resolves contacts. A joint never holds
// a reference to the world or to other joints; it only knows its own
// bodies, exactly like a Body knows nothing of the constraints that act on
// it.
package joint

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// LimitState classifies which side, if any, of a joint's optional
// lower/upper limit is currently active.
type LimitState int

const (
	LimitInactive LimitState = iota
	LimitAtLower
	LimitAtUpper
	LimitEqual
)

// Joint is the common contract every constraint type satisfies so the
// solver can treat them uniformly within an island, without knowing their
// concrete kind.
type Joint interface {
	BodyA() *body.Body
	BodyB() *body.Body
	IsCollisionAllowed() bool

	// InitializeConstraints computes effective masses, anchor arms and bias
	// terms for the step ahead of warm starting. Called once per step.
	// Returns a KindInvalidState error (see package perr) if the joint's
	// current configuration cannot be solved, e.g. a motorized revolute
	// joint between two bodies that both have infinite inertia.
	InitializeConstraints(dt, invDt float64, cfg *settings.Settings) error

	// WarmStart re-applies the impulses accumulated on the previous step.
	WarmStart()

	// SolveVelocityConstraints runs one velocity-iteration pass.
	SolveVelocityConstraints(dt, invDt float64)

	// SolvePositionConstraints runs one NGS position-iteration pass and
	// reports whether the joint is within tolerance.
	SolvePositionConstraints(cfg *settings.Settings) bool

	// Shift translates any world-space anchor state by delta, used when the
	// world recenters its coordinate origin.
	Shift(delta math2.Vector2)

	ReactionForce(invDt float64) math2.Vector2
	ReactionTorque(invDt float64) float64

	UserData() interface{}
	SetUserData(v interface{})
}

// baseJoint holds the state common to every joint implementation: the two
// connected bodies, whether they're still allowed to collide with each
// other through the contact system, and an opaque user data slot.
type baseJoint struct {
	bodyA, bodyB     *body.Body
	collisionAllowed bool
	userData         interface{}
}

func newBaseJoint(bodyA, bodyB *body.Body, collisionAllowed bool) baseJoint {

	return baseJoint{bodyA: bodyA, bodyB: bodyB, collisionAllowed: collisionAllowed}
}

func (j *baseJoint) BodyA() *body.Body         { return j.bodyA }
func (j *baseJoint) BodyB() *body.Body         { return j.bodyB }
func (j *baseJoint) IsCollisionAllowed() bool  { return j.collisionAllowed }
func (j *baseJoint) UserData() interface{}     { return j.userData }
func (j *baseJoint) SetUserData(v interface{}) { j.userData = v }

// computeLimitState decides the active side of a lower/upper limit pair
// given the current coordinate value. When lower and upper are equal the
// joint is always pinned (LimitEqual); otherwise it's active at whichever
// side the coordinate has reached or crossed, within linearSlop tolerance.
func computeLimitState(value, lower, upper, slop float64) LimitState {

	if upper-lower < 2*slop {
		return LimitEqual
	}
	if value <= lower+slop {
		return LimitAtLower
	}
	if value >= upper-slop {
		return LimitAtUpper
	}
	return LimitInactive
}
