package physics

import (
	"math"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
)

// ManifoldPoint is a single point of contact between two fixtures, as
// produced by an external manifold solver (clipping algorithm).
type ManifoldPoint struct {
	Point math2.Vector2 // World-space contact point.
	Depth float64       // Penetration depth at this point.
	ID    uint32         // Stable feature-pair identity, used for warm-start matching across steps.
}

// Manifold is the narrow-phase result for a single colliding pair: a shared
// contact normal (from body A to body B) and one or two contact points.
type Manifold struct {
	Normal math2.Vector2
	Points []ManifoldPoint
}

// Penetration is the opaque result of NarrowphaseDetector.Detect, consumed
// only by ManifoldSolver.GetManifold.
type Penetration interface{}

// NarrowphaseDetector reports whether two placed fixtures overlap and, if
// so, an opaque penetration descriptor a ManifoldSolver can turn into
// contact points. This engine never implements it directly — GJK/EPA style
// algorithms live outside this specification.
type NarrowphaseDetector interface {
	Detect(shapeA body.Shape, txA math2.Transform, shapeB body.Shape, txB math2.Transform) (Penetration, bool)
}

// ManifoldSolver turns a Penetration into a full contact Manifold (e.g. by
// clipping incident/reference edges). External collaborator.
type ManifoldSolver interface {
	GetManifold(pen Penetration, shapeA body.Shape, txA math2.Transform, shapeB body.Shape, txB math2.Transform) Manifold
}

// BroadphasePair is a candidate colliding pair of fixtures reported by the
// broad-phase, pending narrow-phase confirmation.
type BroadphasePair struct {
	BodyA, BodyB       *body.Body
	FixtureA, FixtureB *body.Fixture
}

// BroadphaseDetector maintains spatial structure over bodies and reports
// candidate collision pairs, AABB queries and raycasts. External collaborator.
type BroadphaseDetector interface {
	Add(b *body.Body)
	Remove(b *body.Body)
	Update(b *body.Body)
	FindPairs() []BroadphasePair
	QueryAABB(aabb body.AABB) []*body.Body
}

// TOI is a conservative-advancement result: the earliest fraction of the
// step, in (0, 1], at which two bodies' swept fixtures first touch.
type TOI struct {
	Fraction float64
	Found    bool
}

// TimeOfImpactDetector finds the earliest time of impact between two
// bodies' motion over the current step, for continuous collision. External
// collaborator.
type TimeOfImpactDetector interface {
	GetTimeOfImpact(bodyA *body.Body, sweepA math2.Transform, bodyB *body.Body, sweepB math2.Transform) TOI
}

// ValueMixer combines two fixtures' physical coefficients into the value
// used by the contact constraint. Implementers may substitute another
// mixing policy but must preserve DefaultMixer's defaults when unconfigured.
type ValueMixer interface {
	MixFriction(frictionA, frictionB float64) float64
	MixRestitution(restitutionA, restitutionB float64) float64
	MixRestitutionVelocity(vA, vB float64) float64
}

// DefaultMixer implements the library defaults: friction as the geometric
// mean, restitution and restitution-velocity as the maximum of the two
// inputs.
type DefaultMixer struct{}

func (DefaultMixer) MixFriction(a, b float64) float64 {

	v := a * b
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

func (DefaultMixer) MixRestitution(a, b float64) float64 {

	if a > b {
		return a
	}
	return b
}

func (DefaultMixer) MixRestitutionVelocity(a, b float64) float64 {

	if a > b {
		return a
	}
	return b
}
