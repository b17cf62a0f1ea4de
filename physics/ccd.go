package physics

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/settings"
)

// solveCCD implements the continuous-collision substep described in the
// step contract: for every candidate body selected by the configured
// ContinuousMode, find the earliest time of impact against any other body
// this step, advance both bodies to that pose, and resolve the resulting
// one-shot contact with a single velocity iteration and position fix. This
// prevents a fast-moving body from tunnelling through thin geometry between
// two discrete steps.
func (w *World) solveCCD(cfg *settings.Settings) {

	if w.toiDetector == nil {
		return
	}

	var candidates []*body.Body
	for _, b := range w.bodies {
		if b == nil || !b.IsEnabled() || !b.IsDynamic() {
			continue
		}
		switch cfg.ContinuousMode {
		case settings.CCDAll:
			candidates = append(candidates, b)
		case settings.CCDBulletsOnly:
			if b.IsBullet() {
				candidates = append(candidates, b)
			}
		}
	}

	toiListeners := w.listeners.snapshotTOI()

	for _, a := range candidates {
		var other *body.Body
		best := TOI{}

		for _, b := range w.bodies {
			if b == nil || b == a {
				continue
			}
			if skipPair(toiListeners, a, b) {
				continue
			}
			toi := w.toiDetector.GetTimeOfImpact(a, a.Transform(), b, b.Transform())
			if !toi.Found || toi.Fraction <= 0 || toi.Fraction > 1 {
				continue
			}
			if other == nil || toi.Fraction < best.Fraction {
				best = toi
				other = b
			}
		}

		if other == nil {
			continue
		}
		w.advanceToImpact(a, other, best.Fraction, cfg)
	}
}

// skipPair reports whether any registered TimeOfImpactListener vetoes the
// pair for this step's CCD pass.
func skipPair(listeners []TimeOfImpactListener, a, b *body.Body) bool {

	for _, l := range listeners {
		if !l.Collide(a, b) {
			return true
		}
	}
	return false
}

// advanceToImpact moves both bodies to their pose at fraction t of this
// step's sweep, generates a manifold there, and resolves it as a one-shot
// contact constraint: a single velocity iteration followed by a single
// position correction, bypassing the island solver and warm-start cache
// entirely since the contact exists for this step alone.
func (w *World) advanceToImpact(a, b *body.Body, t float64, cfg *settings.Settings) {

	a.SetCurrentTransform(interpolateTransform(a.PreviousTransform(), a.Transform(), t))
	b.SetCurrentTransform(interpolateTransform(b.PreviousTransform(), b.Transform(), t))

	if w.narrowphase == nil || w.manifoldSolver == nil {
		return
	}

	c := w.buildCCDConstraint(a, b)
	if c == nil {
		return
	}

	solver := NewContactSolver()
	solver.InitializeContacts([]*ContactConstraint{c}, cfg)
	solver.SolveVelocity([]*ContactConstraint{c}, 1)
	solver.SolvePosition([]*ContactConstraint{c}, 1, cfg)
}

// buildCCDConstraint runs narrow-phase detection over every non-sensor
// fixture pair between a and b at their current (TOI) poses and returns a
// ContactConstraint for the first pair that actually overlaps, or nil if
// none do (a conservative-advancement false positive).
func (w *World) buildCCDConstraint(a, b *body.Body) *ContactConstraint {

	for _, fa := range a.Fixtures() {
		if fa.IsSensor {
			continue
		}
		for _, fb := range b.Fixtures() {
			if fb.IsSensor || !fa.Filter.ShouldCollide(fb.Filter) {
				continue
			}

			pen, ok := w.narrowphase.Detect(fa.Shape, a.Transform(), fb.Shape, b.Transform())
			if !ok {
				continue
			}
			m := w.manifoldSolver.GetManifold(pen, fa.Shape, a.Transform(), fb.Shape, b.Transform())
			if len(m.Points) == 0 {
				continue
			}

			c := &ContactConstraint{
				BodyA:               a,
				BodyB:               b,
				FixtureA:            fa,
				FixtureB:            fb,
				Normal:              m.Normal,
				Tangent:             *m.Normal.Clone().Perp(),
				Enabled:             true,
				Friction:            w.mixer.MixFriction(fa.Friction, fb.Friction),
				Restitution:         w.mixer.MixRestitution(fa.Restitution, fb.Restitution),
				RestitutionVelocity: w.settings.RestitutionVelocity,
			}
			c.Size = len(m.Points)
			if c.Size > 2 {
				c.Size = 2
			}
			for i := 0; i < c.Size; i++ {
				c.Points[i] = SolvableContact{Point: m.Points[i].Point, Depth: m.Points[i].Depth, ID: m.Points[i].ID}
			}
			return c
		}
	}
	return nil
}

// interpolateTransform linearly blends position and angle between from and
// to at fraction t in [0, 1]. Angle interpolation takes the direct
// arithmetic path rather than the shortest-angular-path: the rotation delta
// within a single step is already bounded by Settings.MaxRotation, so the
// two can never be more than that small angle apart.
func interpolateTransform(from, to math2.Transform, t float64) math2.Transform {

	pos := math2.Vector2{
		X: from.Position.X + (to.Position.X-from.Position.X)*t,
		Y: from.Position.Y + (to.Position.Y-from.Position.Y)*t,
	}
	angle := from.Rotation.Angle() + (to.Rotation.Angle()-from.Rotation.Angle())*t

	var xf math2.Transform
	xf.Position = pos
	xf.Rotation.Set(angle)
	return xf
}
