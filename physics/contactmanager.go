package physics

// ContactManager owns the manifold-point persistence cache: it matches each
// step's freshly detected manifolds against the previous step's solved
// contacts by (body, fixture) pair identity, carries warm-start impulses
// forward for matched points, and fires begin/persist/end notifications.
type ContactManager struct {
	mixer             ValueMixer
	warmStartDistance float64

	previous map[pairKey]*ContactConstraint
}

// NewContactManager creates a manager using the given coefficient mixer and
// warm-start matching distance (Settings.WarmStartDistance).
func NewContactManager(mixer ValueMixer, warmStartDistance float64) *ContactManager {

	return &ContactManager{
		mixer:             mixer,
		warmStartDistance: warmStartDistance,
		previous:          make(map[pairKey]*ContactConstraint),
	}
}

// Update runs narrow-phase detection over the broad-phase's candidate
// pairs, matches the resulting manifolds against last step's cache, and
// returns every live (non-sensor) constraint for the solver to consume.
// Sensor constraints still fire their lifecycle events but are excluded
// from the returned slice.
func (cm *ContactManager) Update(
	pairs []BroadphasePair,
	narrowphase NarrowphaseDetector,
	manifoldSolver ManifoldSolver,
	defaultRestitutionVelocity float64,
	listeners []ContactListener,
) []*ContactConstraint {

	next := make(map[pairKey]*ContactConstraint, len(pairs))
	var solvable []*ContactConstraint

	for _, pair := range pairs {
		if !pair.FixtureA.Filter.ShouldCollide(pair.FixtureB.Filter) {
			continue
		}

		pen, ok := narrowphase.Detect(pair.FixtureA.Shape, pair.BodyA.Transform(), pair.FixtureB.Shape, pair.BodyB.Transform())
		key := makePairKey(pair.BodyA, pair.BodyB, pair.FixtureA, pair.FixtureB)

		// A pair that stops overlapping (or yields an empty manifold) never
		// enters next, so the final sweep over the previous cache fires its
		// end events.
		if !ok {
			continue
		}

		manifold := manifoldSolver.GetManifold(pen, pair.FixtureA.Shape, pair.BodyA.Transform(), pair.FixtureB.Shape, pair.BodyB.Transform())
		if len(manifold.Points) == 0 {
			continue
		}

		c := cm.buildConstraint(pair, manifold, defaultRestitutionVelocity)
		c.key = key

		old, hasOld := cm.previous[key]
		suppressed := false
		matchedOld := make([]bool, 0)
		if hasOld {
			matchedOld = make([]bool, old.Size)
		}

		for i := 0; i < c.Size; i++ {
			np := &c.Points[i]
			matched := false
			if hasOld {
				for j := 0; j < old.Size; j++ {
					if matchedOld[j] {
						continue
					}
					op := &old.Points[j]
					if op.ID == np.ID || np.Point.DistanceToSquared(&op.Point) <= cm.warmStartDistance*cm.warmStartDistance {
						np.Jn = op.Jn
						np.Jt = op.Jt
						matched = true
						matchedOld[j] = true
						if !fireListeners(listeners, func(l ContactListener) bool { return l.Persist(c, np) }) {
							suppressed = true
						}
						break
					}
				}
			}
			if !matched {
				if !fireListeners(listeners, func(l ContactListener) bool { return l.Begin(c, np) }) {
					suppressed = true
				}
			}
		}

		if hasOld {
			for j := 0; j < old.Size; j++ {
				if !matchedOld[j] {
					cm.fireEndPoint(old, &old.Points[j], listeners)
				}
			}
		}

		if suppressed {
			for i := range c.Points {
				c.Points[i].Jn = 0
				c.Points[i].Jt = 0
			}
			c.Enabled = false
		}

		next[key] = c
		if c.Sensor {
			fireSensed(c, listeners)
		} else if c.Enabled {
			solvable = append(solvable, c)
		}
	}

	// Anything that was live last step but produced no pair this step has ended.
	for key, old := range cm.previous {
		if _, stillThere := next[key]; !stillThere {
			cm.fireEnd(old, listeners)
		}
	}

	cm.previous = next

	return solvable
}

// RemoveBody drops every cached constraint touching the given body slot,
// returning the dropped constraints so the caller can notify destruction
// listeners. Without this, a removed body's contacts would linger in the
// cache until the next Update sweep.
func (cm *ContactManager) RemoveBody(handle int) []*ContactConstraint {

	var dropped []*ContactConstraint
	for key, c := range cm.previous {
		if key.bodyA == handle || key.bodyB == handle {
			dropped = append(dropped, c)
			delete(cm.previous, key)
		}
	}
	return dropped
}

func (cm *ContactManager) buildConstraint(pair BroadphasePair, m Manifold, defaultRestV float64) *ContactConstraint {

	c := &ContactConstraint{
		BodyA:    pair.BodyA,
		BodyB:    pair.BodyB,
		FixtureA: pair.FixtureA,
		FixtureB: pair.FixtureB,
		Normal:   m.Normal,
		Tangent:  *m.Normal.Clone().Perp(),
		Enabled:  true,
		Sensor:   pair.FixtureA.IsSensor || pair.FixtureB.IsSensor,
	}

	c.Friction = cm.mixer.MixFriction(pair.FixtureA.Friction, pair.FixtureB.Friction)
	c.Restitution = cm.mixer.MixRestitution(pair.FixtureA.Restitution, pair.FixtureB.Restitution)

	rvA, rvB := pair.FixtureA.RestitutionVelocity, pair.FixtureB.RestitutionVelocity
	if rvA < 0 {
		rvA = defaultRestV
	}
	if rvB < 0 {
		rvB = defaultRestV
	}
	c.RestitutionVelocity = cm.mixer.MixRestitutionVelocity(rvA, rvB)

	c.Size = len(m.Points)
	if c.Size > 2 {
		c.Size = 2
	}
	for i := 0; i < c.Size; i++ {
		c.Points[i] = SolvableContact{Point: m.Points[i].Point, Depth: m.Points[i].Depth, ID: m.Points[i].ID}
	}
	return c
}

func (cm *ContactManager) fireEnd(c *ContactConstraint, listeners []ContactListener) {

	for i := 0; i < c.Size; i++ {
		cm.fireEndPoint(c, &c.Points[i], listeners)
	}
}

func (cm *ContactManager) fireEndPoint(c *ContactConstraint, p *SolvableContact, listeners []ContactListener) {

	for _, l := range listeners {
		l.End(c, p)
	}
}

func fireListeners(listeners []ContactListener, f func(ContactListener) bool) bool {

	result := true
	for _, l := range listeners {
		if !f(l) {
			result = false
		}
	}
	return result
}

func fireSensed(c *ContactConstraint, listeners []ContactListener) {

	for _, l := range listeners {
		l.Sensed(c)
	}
}
