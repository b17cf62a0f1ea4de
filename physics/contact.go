package physics

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
)

// SolvableContact is a single point of a ContactConstraint: its world
// position, penetration depth, the stable identity used to match it across
// steps for warm starting, and the accumulated impulses and per-point
// effective masses the velocity solver iterates on.
type SolvableContact struct {
	Point math2.Vector2
	Depth float64
	ID    uint32

	Jn float64 // Accumulated normal impulse.
	Jt float64 // Accumulated tangent (friction) impulse.

	Vb float64 // Restitution bias velocity target.

	InvKn float64 // 1 / normal effective mass.
	InvKt float64 // 1 / tangent effective mass.

	rA, rB math2.Vector2 // Arm vectors from each body's center of mass to Point, computed at init.

	localAnchorA, localAnchorB math2.Vector2 // Point relative to each body's center of mass, in that body's rotation frame, fixed at init for position-solver separation tracking.

	Ignored bool // True if dropped this step due to an ill-conditioned two-point block.
}

// ContactConstraint is the set of solvable contacts produced by a single
// colliding fixture pair, together with the mixed material coefficients and
// shared normal/tangent basis.
type ContactConstraint struct {
	BodyA, BodyB       *body.Body
	FixtureA, FixtureB *body.Fixture

	Normal  math2.Vector2
	Tangent math2.Vector2

	Points [2]SolvableContact
	Size   int // 1 or 2 valid entries in Points.

	Friction            float64
	Restitution         float64
	RestitutionVelocity float64

	Sensor  bool
	Enabled bool

	K math2.Matrix22 // 2x2 block effective-mass matrix, valid when Size == 2 and neither point is Ignored.

	key pairKey
}

// pairKey identifies a fixture pair for persistence across steps,
// independent of which body in the pair is "A" or "B".
type pairKey struct {
	bodyA, bodyB       int
	fixtureA, fixtureB int
}

func makePairKey(bodyA, bodyB *body.Body, fixtureA, fixtureB *body.Fixture) pairKey {

	return pairKey{
		bodyA:    bodyA.Handle(),
		bodyB:    bodyB.Handle(),
		fixtureA: fixtureA.Index(),
		fixtureB: fixtureB.Index(),
	}
}

// ActivePoints returns the non-ignored solvable contacts.
func (c *ContactConstraint) ActivePoints() []*SolvableContact {

	out := make([]*SolvableContact, 0, c.Size)
	for i := 0; i < c.Size; i++ {
		if !c.Points[i].Ignored {
			out = append(out, &c.Points[i])
		}
	}
	return out
}
