package physics

import (
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// ContactSolver runs the sequential-impulse velocity iterations and the
// non-linear Gauss-Seidel position iterations over a set of contact
// constraints belonging to a single island.
type ContactSolver struct{}

// NewContactSolver returns a ready-to-use contact solver. It is stateless
// between calls; all per-contact working state lives on the
// ContactConstraint/SolvableContact values themselves.
func NewContactSolver() *ContactSolver { return &ContactSolver{} }

// InitializeContacts computes the fixed-for-the-step effective masses,
// anchor arms and restitution bias velocity for every contact point, ahead
// of warm starting and iteration.
func (s *ContactSolver) InitializeContacts(contacts []*ContactConstraint, cfg *settings.Settings) {

	for _, c := range contacts {
		invMassA, invIA := c.BodyA.Mass().InvMass(), c.BodyA.Mass().InvInertia()
		invMassB, invIB := c.BodyB.Mass().InvMass(), c.BodyB.Mass().InvInertia()

		centerA, centerB := c.BodyA.WorldCenter(), c.BodyB.WorldCenter()
		rotA, rotB := c.BodyA.Transform().Rotation, c.BodyB.Transform().Rotation

		for i := 0; i < c.Size; i++ {
			p := &c.Points[i]
			p.rA = *math2.NewVec2().SubVectors(&p.Point, &centerA)
			p.rB = *math2.NewVec2().SubVectors(&p.Point, &centerB)
			p.localAnchorA = *rotA.InvRotateVector(&p.rA)
			p.localAnchorB = *rotB.InvRotateVector(&p.rB)

			rnA := p.rA.Cross(&c.Normal)
			rnB := p.rB.Cross(&c.Normal)
			kNormal := invMassA + invMassB + invIA*rnA*rnA + invIB*rnB*rnB
			if kNormal > 0 {
				p.InvKn = 1 / kNormal
			}

			rtA := p.rA.Cross(&c.Tangent)
			rtB := p.rB.Cross(&c.Tangent)
			kTangent := invMassA + invMassB + invIA*rtA*rtA + invIB*rtB*rtB
			if kTangent > 0 {
				p.InvKt = 1 / kTangent
			}

			vn := relativeVelocity(c, p).Dot(&c.Normal)
			if vn < -c.RestitutionVelocity {
				p.Vb = -c.Restitution * vn
			} else {
				p.Vb = 0
			}
		}

		if c.Size == 2 {
			s.buildBlock(c, invMassA, invIA, invMassB, invIB)
		}
	}
}

func (s *ContactSolver) buildBlock(c *ContactConstraint, invMassA, invIA, invMassB, invIB float64) {

	p1, p2 := &c.Points[0], &c.Points[1]
	rn1A, rn1B := p1.rA.Cross(&c.Normal), p1.rB.Cross(&c.Normal)
	rn2A, rn2B := p2.rA.Cross(&c.Normal), p2.rB.Cross(&c.Normal)

	k11 := invMassA + invMassB + invIA*rn1A*rn1A + invIB*rn1B*rn1B
	k22 := invMassA + invMassB + invIA*rn2A*rn2A + invIB*rn2B*rn2B
	k12 := invMassA + invMassB + invIA*rn1A*rn2A + invIB*rn1B*rn2B

	c.K = math2.Matrix22{A11: k11, A12: k12, A21: k12, A22: k22}

	// A block is ill-conditioned when the two points are nearly coincident
	// along the normal direction (k12^2 close to k11*k22); in that case drop
	// the shallower point from the block solve and solve the other alone,
	// reordering so the active point is always index 0.
	const maxConditionNumber = 100.0
	if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
		p1.Ignored = false
		p2.Ignored = false
		return
	}

	if p1.Depth >= p2.Depth {
		p1.Ignored = false
		p2.Ignored = true
	} else {
		c.Points[0], c.Points[1] = c.Points[1], c.Points[0]
		c.Points[0].Ignored = false
		c.Points[1].Ignored = true
	}
}

// WarmStart re-applies each contact point's impulse carried over from the
// previous step before the first velocity iteration.
func (s *ContactSolver) WarmStart(contacts []*ContactConstraint) {

	for _, c := range contacts {
		for i := 0; i < c.Size; i++ {
			p := &c.Points[i]
			impulse := c.Normal
			impulse.Scale(p.Jn)
			tangentImpulse := c.Tangent
			tangentImpulse.Scale(p.Jt)
			impulse.Add(&tangentImpulse)
			applyContactImpulse(c, p, &impulse)
		}
	}
}

// SolveVelocity runs the requested number of velocity iterations: friction
// first (bounded by the previous iteration's normal impulse), then the
// normal impulse, using the two-point block solve when the manifold is
// well-conditioned.
func (s *ContactSolver) SolveVelocity(contacts []*ContactConstraint, iterations int) {

	for iter := 0; iter < iterations; iter++ {
		for _, c := range contacts {
			s.solveFriction(c)
			if c.Size == 2 && !c.Points[0].Ignored && !c.Points[1].Ignored {
				s.solveBlockNormal(c)
			} else {
				s.solveSequentialNormal(c)
			}
		}
	}
}

func (s *ContactSolver) solveFriction(c *ContactConstraint) {

	for i := 0; i < c.Size; i++ {
		p := &c.Points[i]
		vt := relativeVelocity(c, p).Dot(&c.Tangent)
		lambda := -p.InvKt * vt

		maxFriction := c.Friction * p.Jn
		newImpulse := math2.Clamp(p.Jt+lambda, -maxFriction, maxFriction)
		lambda = newImpulse - p.Jt
		p.Jt = newImpulse

		impulse := c.Tangent
		impulse.Scale(lambda)
		applyContactImpulse(c, p, &impulse)
	}
}

func (s *ContactSolver) solveSequentialNormal(c *ContactConstraint) {

	for i := 0; i < c.Size; i++ {
		p := &c.Points[i]
		if p.Ignored {
			continue
		}
		vn := relativeVelocity(c, p).Dot(&c.Normal)
		lambda := -p.InvKn * (vn - p.Vb)

		newImpulse := p.Jn + lambda
		if newImpulse < 0 {
			newImpulse = 0
		}
		lambda = newImpulse - p.Jn
		p.Jn = newImpulse

		impulse := c.Normal
		impulse.Scale(lambda)
		applyContactImpulse(c, p, &impulse)
	}
}

// solveBlockNormal solves the coupled 2x2 normal LCP by trying, in turn,
// the four feasible sign patterns (both active, point 1 only, point 2
// only, both inactive), accepting the first whose resulting impulses and
// post-solve velocities are consistent with the complementarity conditions.
func (s *ContactSolver) solveBlockNormal(c *ContactConstraint) {

	p1, p2 := &c.Points[0], &c.Points[1]

	vn1 := relativeVelocity(c, p1).Dot(&c.Normal)
	vn2 := relativeVelocity(c, p2).Dot(&c.Normal)

	// Right-hand side relative to the current accumulated impulses: we are
	// solving for the *new* total impulse x such that K*x = -(v - bias),
	// where v already reflects p1.Jn/p2.Jn applied.
	rhs := math2.Vector2{X: -(vn1 - p1.Vb), Y: -(vn2 - p2.Vb)}
	rhs.X += c.K.A11*p1.Jn + c.K.A12*p2.Jn
	rhs.Y += c.K.A21*p1.Jn + c.K.A22*p2.Jn

	// Case 1: both points active.
	if x := c.K.Solve(&rhs); x.X >= 0 && x.Y >= 0 {
		s.applyBlockSolution(c, p1, p2, x.X, x.Y)
		return
	}

	// Case 2: only point 1 active (x2 = 0).
	if c.K.A11 > 0 {
		x1 := rhs.X / c.K.A11
		if x1 >= 0 {
			vn2New := c.K.A21*x1 - rhs.Y
			if vn2New >= 0 {
				s.applyBlockSolution(c, p1, p2, x1, 0)
				return
			}
		}
	}

	// Case 3: only point 2 active (x1 = 0).
	if c.K.A22 > 0 {
		x2 := rhs.Y / c.K.A22
		if x2 >= 0 {
			vn1New := c.K.A12*x2 - rhs.X
			if vn1New >= 0 {
				s.applyBlockSolution(c, p1, p2, 0, x2)
				return
			}
		}
	}

	// Case 4: neither point active.
	s.applyBlockSolution(c, p1, p2, 0, 0)
}

func (s *ContactSolver) applyBlockSolution(c *ContactConstraint, p1, p2 *SolvableContact, x1, x2 float64) {

	d1 := x1 - p1.Jn
	d2 := x2 - p2.Jn
	p1.Jn = x1
	p2.Jn = x2

	impulse1 := c.Normal
	impulse1.Scale(d1)
	applyContactImpulse(c, p1, &impulse1)

	impulse2 := c.Normal
	impulse2.Scale(d2)
	applyContactImpulse(c, p2, &impulse2)
}

// SolvePosition runs non-linear Gauss-Seidel position correction: each
// iteration recomputes the true geometric separation from the fixed local
// anchors and nudges positions directly, bypassing velocity. Returns true
// if every contact is within linear tolerance, allowing the caller to stop
// early.
func (s *ContactSolver) SolvePosition(contacts []*ContactConstraint, iterations int, cfg *settings.Settings) bool {

	for iter := 0; iter < iterations; iter++ {
		minSeparation := 0.0

		for _, c := range contacts {
			invMassA, invIA := c.BodyA.Mass().InvMass(), c.BodyA.Mass().InvInertia()
			invMassB, invIB := c.BodyB.Mass().InvMass(), c.BodyB.Mass().InvInertia()
			centerA, centerB := c.BodyA.WorldCenter(), c.BodyB.WorldCenter()
			rotA, rotB := c.BodyA.Transform().Rotation, c.BodyB.Transform().Rotation

			for i := 0; i < c.Size; i++ {
				p := &c.Points[i]
				if p.Ignored {
					continue
				}

				rA := rotA.RotateVector(&p.localAnchorA)
				rB := rotB.RotateVector(&p.localAnchorB)
				pointA := *math2.NewVec2().AddVectors(&centerA, rA)
				pointB := *math2.NewVec2().AddVectors(&centerB, rB)

				separation := math2.NewVec2().SubVectors(&pointB, &pointA).Dot(&c.Normal) - p.Depth
				if separation < minSeparation {
					minSeparation = separation
				}

				correction := math2.Clamp(cfg.Baumgarte*(separation+cfg.LinearTolerance), -cfg.MaxLinearCorrection, 0)

				rnA := rA.Cross(&c.Normal)
				rnB := rB.Cross(&c.Normal)
				kNormal := invMassA + invMassB + invIA*rnA*rnA + invIB*rnB*rnB
				if kNormal <= 0 {
					continue
				}
				lambda := -correction / kNormal

				impulse := c.Normal
				impulse.Scale(lambda)

				dA := *impulse.Clone().Scale(-invMassA)
				c.BodyA.ApplyPositionCorrection(dA, -invIA*rA.Cross(&impulse))

				dB := *impulse.Clone().Scale(invMassB)
				c.BodyB.ApplyPositionCorrection(dB, invIB*rB.Cross(&impulse))
			}
		}

		if minSeparation > -3*cfg.LinearTolerance {
			return true
		}
	}
	return false
}

// relativeVelocity returns the velocity of body B's material point minus
// body A's material point at the contact, along no particular axis (the
// caller projects it onto normal or tangent).
func relativeVelocity(c *ContactConstraint, p *SolvableContact) *math2.Vector2 {

	vA := c.BodyA.LinearVelocity()
	wA := c.BodyA.AngularVelocity()
	vB := c.BodyB.LinearVelocity()
	wB := c.BodyB.AngularVelocity()

	pointVelA := *math2.CrossScalar(wA, &p.rA)
	pointVelA.Add(&vA)

	pointVelB := *math2.CrossScalar(wB, &p.rB)
	pointVelB.Add(&vB)

	return math2.NewVec2().SubVectors(&pointVelB, &pointVelA)
}

// applyContactImpulse applies impulse to body B and its negation to body A
// at their respective anchor arms, updating each body's velocity and
// waking it (both are already awake within a solving island).
func applyContactImpulse(c *ContactConstraint, p *SolvableContact, impulse *math2.Vector2) {

	invMassA, invIA := c.BodyA.Mass().InvMass(), c.BodyA.Mass().InvInertia()
	invMassB, invIB := c.BodyB.Mass().InvMass(), c.BodyB.Mass().InvInertia()

	vA := c.BodyA.LinearVelocity()
	wA := c.BodyA.AngularVelocity()
	vA.AddScaled(impulse, -invMassA)
	wA -= invIA * p.rA.Cross(impulse)
	c.BodyA.SetLinearVelocity(vA)
	c.BodyA.SetAngularVelocity(wA)

	vB := c.BodyB.LinearVelocity()
	wB := c.BodyB.AngularVelocity()
	vB.AddScaled(impulse, invMassB)
	wB += invIB * p.rB.Cross(impulse)
	c.BodyB.SetLinearVelocity(vB)
	c.BodyB.SetAngularVelocity(wB)
}
