package physics

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/joint"
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
	"github.com/rigid2d/engine/settings"
	"github.com/rigid2d/engine/util/logger"
)

// defaultMaxSteps bounds the number of fixed steps a single Update call may
// perform when catching up on a large elapsed-time sample, preventing a
// debugger pause or a slow frame from triggering a "spiral of death".
const defaultMaxSteps = 10

// log is the package logger, a child of the default root logger.
var log = logger.New("PHYSICS", nil)

// World owns every body, joint, and piece of solver state belonging to one
// simulation and exposes the fixed-timestep orchestration described by the
// step contract: collect external forces, build islands, solve constraints,
// integrate, sleep, and run continuous collision for bullets.
//
// A World is not safe for concurrent use; callers running multiple worlds
// in parallel must ensure no Body, Joint, Settings, or listener is shared
// across worlds.
type World struct {
	bodies    []*body.Body
	freeSlots []int

	joints []joint.Joint

	gravity  math2.Vector2
	settings *settings.Settings
	mixer    ValueMixer

	broadphase     BroadphaseDetector
	narrowphase    NarrowphaseDetector
	manifoldSolver ManifoldSolver
	toiDetector    TimeOfImpactDetector

	contactManager *ContactManager
	islandSolver   *IslandSolver

	listeners listenerRegistry

	bounds    *body.AABB
	hasBounds bool

	prevDt      float64
	accumulator float64
}

// NewWorld creates an empty world with the given gravity and library default
// Settings. External collaborators (broad-phase, narrow-phase, manifold
// solver, TOI detector) must be attached with the corresponding setters
// before Step is first called with contacts or CCD in play; a world with no
// broad-phase simply never generates contacts, which is useful for
// joint-only tests.
func NewWorld(gravity math2.Vector2) *World {

	cfg := settings.NewSettings()
	mixer := DefaultMixer{}

	w := &World{
		gravity:      gravity,
		settings:     cfg,
		mixer:        mixer,
		islandSolver: NewIslandSolver(NewContactSolver()),
		prevDt:       cfg.StepFrequency,
	}
	w.contactManager = NewContactManager(mixer, cfg.WarmStartDistance)
	return w
}

// Gravity returns the world's gravity vector.
func (w *World) Gravity() math2.Vector2 { return w.gravity }

// SetGravity sets the world's gravity vector.
func (w *World) SetGravity(g math2.Vector2) { w.gravity = g }

// Settings returns the world's tunable settings.
func (w *World) Settings() *settings.Settings { return w.settings }

// SetSettings replaces the world's settings wholesale. Must not be nil.
func (w *World) SetSettings(cfg *settings.Settings) error {

	if cfg == nil {
		return perr.InvalidArgument("settings must not be nil")
	}
	w.settings = cfg
	return nil
}

// SetMixer replaces the coefficient mixer used to combine fixture friction,
// restitution and restitution-velocity across a contact.
func (w *World) SetMixer(m ValueMixer) error {

	if m == nil {
		return perr.InvalidArgument("mixer must not be nil")
	}
	w.mixer = m
	w.contactManager = NewContactManager(m, w.settings.WarmStartDistance)
	return nil
}

// SetBroadphase attaches the broad-phase collaborator used to produce
// candidate collision pairs. Every existing body is added to it.
func (w *World) SetBroadphase(bp BroadphaseDetector) error {

	if bp == nil {
		return perr.InvalidArgument("broadphase must not be nil")
	}
	w.broadphase = bp
	for _, b := range w.bodies {
		if b != nil {
			bp.Add(b)
		}
	}
	return nil
}

// SetNarrowphase attaches the narrow-phase penetration detector.
func (w *World) SetNarrowphase(np NarrowphaseDetector) error {

	if np == nil {
		return perr.InvalidArgument("narrowphase must not be nil")
	}
	w.narrowphase = np
	return nil
}

// SetManifoldSolver attaches the manifold (clipping) solver.
func (w *World) SetManifoldSolver(ms ManifoldSolver) error {

	if ms == nil {
		return perr.InvalidArgument("manifold solver must not be nil")
	}
	w.manifoldSolver = ms
	return nil
}

// SetTimeOfImpactDetector attaches the conservative-advancement TOI detector
// used by CCD. A world with no detector silently skips CCD regardless of
// the configured ContinuousMode.
func (w *World) SetTimeOfImpactDetector(toi TimeOfImpactDetector) error {

	if toi == nil {
		return perr.InvalidArgument("time of impact detector must not be nil")
	}
	w.toiDetector = toi
	return nil
}

// SetBounds installs a world-space AABB outside of which BoundsListener is
// notified. Passing nil disables bounds checking.
func (w *World) SetBounds(b *body.AABB) {

	w.bounds = b
	w.hasBounds = b != nil
}

// Bounds returns the currently configured bounds, or nil if none is set.
func (w *World) Bounds() *body.AABB { return w.bounds }

// AddBody adds a body to the world. Returns (true, nil) on success,
// (false, nil) if the body is already present (the call is ignored and
// nothing changes), or (false, err) if b is nil.
func (w *World) AddBody(b *body.Body) (bool, error) {

	if b == nil {
		return false, perr.InvalidArgument("body must not be nil")
	}
	for _, existing := range w.bodies {
		if existing == b {
			return false, nil
		}
	}

	var idx int
	if n := len(w.freeSlots); n > 0 {
		idx = w.freeSlots[n-1]
		w.freeSlots = w.freeSlots[:n-1]
		w.bodies[idx] = b
	} else {
		idx = len(w.bodies)
		w.bodies = append(w.bodies, b)
	}
	b.SetHandle(idx)

	if w.broadphase != nil {
		w.broadphase.Add(b)
	}
	return true, nil
}

// RemoveBody removes a body from the world and every joint attached to it.
// Returns false without mutating state if the body is not present.
func (w *World) RemoveBody(b *body.Body) bool {

	if b == nil {
		return false
	}
	idx := b.Handle()
	if idx < 0 || idx >= len(w.bodies) || w.bodies[idx] != b {
		return false
	}

	w.bodies[idx] = nil
	w.freeSlots = append(w.freeSlots, idx)

	if w.broadphase != nil {
		w.broadphase.Remove(b)
	}

	live := w.joints[:0]
	for _, j := range w.joints {
		if j.BodyA() == b || j.BodyB() == b {
			w.notifyJointDestroyed(j)
			continue
		}
		live = append(live, j)
	}
	w.joints = live

	for _, c := range w.contactManager.RemoveBody(idx) {
		for _, l := range w.listeners.snapshotDestruction() {
			l.ContactDestroyed(c)
		}
	}

	w.notifyBodyDestroyed(b)
	return true
}

// AddJoint adds a joint to the world. Returns an InvalidArgument error if
// either body is nil or both bodies are the same instance (a joint must
// relate two distinct bodies; a PinJoint, which binds one body to a world
// point and reports itself for both sides, is exempt).
func (w *World) AddJoint(j joint.Joint) (bool, error) {

	if j == nil {
		return false, perr.InvalidArgument("joint must not be nil")
	}
	if j.BodyA() == nil || j.BodyB() == nil {
		return false, perr.InvalidArgument("joint bodies must not be nil")
	}
	if _, pinned := j.(*joint.PinJoint); !pinned && j.BodyA() == j.BodyB() {
		return false, perr.InvalidArgument("joint cannot connect a body to itself")
	}
	for _, existing := range w.joints {
		if existing == j {
			return false, nil
		}
	}
	w.joints = append(w.joints, j)
	j.BodyA().WakeUp()
	j.BodyB().WakeUp()
	return true, nil
}

// RemoveJoint removes a joint from the world. Returns false without
// mutating state if the joint is not present.
func (w *World) RemoveJoint(j joint.Joint) bool {

	for i, existing := range w.joints {
		if existing == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			existing.BodyA().WakeUp()
			existing.BodyB().WakeUp()
			w.notifyJointDestroyed(existing)
			return true
		}
	}
	return false
}

// Bodies returns a snapshot slice of every live body in the world, in slot
// order, omitting removed slots.
func (w *World) Bodies() []*body.Body {

	out := make([]*body.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Joints returns a snapshot slice of every joint in the world.
func (w *World) Joints() []joint.Joint {

	out := make([]joint.Joint, len(w.joints))
	copy(out, w.joints)
	return out
}

// AddStepListener registers a StepListener.
func (w *World) AddStepListener(l StepListener) { w.listeners.addStep(l) }

// RemoveStepListener unregisters a StepListener. Returns true if found.
func (w *World) RemoveStepListener(l StepListener) bool { return w.listeners.removeStep(l) }

// AddContactListener registers a ContactListener.
func (w *World) AddContactListener(l ContactListener) { w.listeners.addContact(l) }

// RemoveContactListener unregisters a ContactListener. Returns true if found.
func (w *World) RemoveContactListener(l ContactListener) bool { return w.listeners.removeContact(l) }

// AddDestructionListener registers a DestructionListener.
func (w *World) AddDestructionListener(l DestructionListener) { w.listeners.addDestruction(l) }

// RemoveDestructionListener unregisters a DestructionListener. Returns true if found.
func (w *World) RemoveDestructionListener(l DestructionListener) bool {
	return w.listeners.removeDestruction(l)
}

// AddBoundsListener registers a BoundsListener.
func (w *World) AddBoundsListener(l BoundsListener) { w.listeners.addBounds(l) }

// RemoveBoundsListener unregisters a BoundsListener. Returns true if found.
func (w *World) RemoveBoundsListener(l BoundsListener) bool { return w.listeners.removeBounds(l) }

// AddTimeOfImpactListener registers a TimeOfImpactListener consulted before
// each CCD pair test.
func (w *World) AddTimeOfImpactListener(l TimeOfImpactListener) { w.listeners.addTOI(l) }

// RemoveTimeOfImpactListener unregisters a TimeOfImpactListener. Returns true if found.
func (w *World) RemoveTimeOfImpactListener(l TimeOfImpactListener) bool {
	return w.listeners.removeTOI(l)
}

// AddRaycastListener registers a RaycastListener.
func (w *World) AddRaycastListener(l RaycastListener) { w.listeners.addRaycast(l) }

// RemoveRaycastListener unregisters a RaycastListener. Returns true if found.
func (w *World) RemoveRaycastListener(l RaycastListener) bool { return w.listeners.removeRaycast(l) }

// RaycastListeners returns a snapshot of the registered raycast listeners,
// for hosts driving raycasts through the broad-phase collaborator.
func (w *World) RaycastListeners() []RaycastListener { return w.listeners.snapshotRaycast() }

// ShiftCoordinates translates every body's transform and every joint's
// world-space anchor state by delta, used to recenter the simulation's
// origin when bodies have drifted far from (0,0) (floating-origin games).
func (w *World) ShiftCoordinates(delta math2.Vector2) {

	for _, b := range w.bodies {
		if b == nil {
			continue
		}
		t := b.Transform()
		t.Position.Add(&delta)
		b.SetTransform(t)
	}
	for _, j := range w.joints {
		j.Shift(delta)
	}
}

// Step advances the simulation by count fixed steps of the given size, or
// of Settings.StepFrequency if dt is omitted. It returns the first error
// encountered; subsequent requested steps are not attempted once a step
// fails.
func (w *World) Step(count int, dt ...float64) error {

	stepDt := w.settings.StepFrequency
	if len(dt) > 0 {
		stepDt = dt[0]
	}
	for i := 0; i < count; i++ {
		if err := w.step(stepDt); err != nil {
			return err
		}
	}
	return nil
}

// Update accumulates real elapsed time and performs as many fixed steps of
// Settings.StepFrequency as are due, up to maxSteps (default
// defaultMaxSteps) in a single call. Zero or negative elapsed time performs
// no step and is not an error.
func (w *World) Update(elapsed float64, maxSteps ...int) error {

	if elapsed <= 0 {
		return nil
	}
	limit := defaultMaxSteps
	if len(maxSteps) > 0 {
		limit = maxSteps[0]
	}

	w.accumulator += elapsed
	dt := w.settings.StepFrequency
	steps := 0
	for w.accumulator >= dt && steps < limit {
		if err := w.step(dt); err != nil {
			return err
		}
		w.accumulator -= dt
		steps++
	}
	return nil
}

// step performs exactly one fixed-size simulation step, following the
// order in the step contract: begin-step notification, broad/narrow-phase
// contact update, velocity integration, island construction and solve,
// position integration, sleep, contact notifications, CCD, end-step
// notification.
func (w *World) step(dt float64) error {

	for _, l := range w.listeners.snapshotStep() {
		l.Begin(w)
	}

	ts := NewTimeStep(dt, w.prevDt)

	contactListeners := w.listeners.snapshotContact()
	var live []*ContactConstraint
	if w.broadphase != nil && w.narrowphase != nil && w.manifoldSolver != nil {
		for _, b := range w.bodies {
			if b != nil && b.IsEnabled() {
				w.broadphase.Update(b)
			}
		}
		pairs := w.broadphase.FindPairs()
		live = w.contactManager.Update(pairs, w.narrowphase, w.manifoldSolver, w.settings.RestitutionVelocity, contactListeners)
	}

	for _, c := range live {
		if c.Enabled {
			for _, l := range contactListeners {
				if !l.PreSolve(c) {
					c.Enabled = false
					break
				}
			}
		}
	}
	solvable := live[:0]
	for _, c := range live {
		if c.Enabled {
			solvable = append(solvable, c)
		}
	}

	for _, b := range w.bodies {
		if b != nil {
			b.IntegrateVelocity(w.gravity, dt)
		}
	}

	islands := BuildIslands(w.Bodies(), solvable, w.joints)

	var firstErr error
	for _, island := range islands {
		if _, err := w.islandSolver.Solve(island, ts, w.settings); err != nil {
			log.Error("island solve failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		w.updateSleep(island, dt)
	}

	for _, l := range w.listeners.snapshotStep() {
		l.UpdatePerformed(w)
	}

	for _, c := range solvable {
		for _, l := range contactListeners {
			l.PostSolve(c)
		}
	}

	for _, b := range w.bodies {
		if b != nil {
			b.ClearForces(dt)
		}
	}

	if w.toiDetector != nil && w.settings.ContinuousMode != settings.CCDNone {
		w.solveCCD(w.settings)
	}

	if w.hasBounds {
		for _, b := range w.bodies {
			if b == nil || !b.IsEnabled() {
				continue
			}
			if !w.inBounds(b) {
				for _, l := range w.listeners.snapshotBounds() {
					l.OutOfBounds(b)
				}
			}
		}
	}

	w.prevDt = dt

	for _, l := range w.listeners.snapshotStep() {
		l.End(w)
	}

	return firstErr
}

// updateSleep advances the at-rest dwell timer for every dynamic body in the
// island and, if every one of them has dwelt long enough and sleep is
// enabled both globally and per body, puts the whole island to sleep.
func (w *World) updateSleep(island *Island, dt float64) {

	if !w.settings.AtRestDetectionEnabled {
		return
	}

	allEligible := true
	for _, b := range island.Bodies {
		if !b.IsDynamic() {
			continue
		}
		b.UpdateAtRestTimer(dt, w.settings.AtRestLinearVelocity, w.settings.AtRestAngularVelocity)
		if !b.IsAtRestDetectionEnabled() || b.AtRestTime() < w.settings.AtRestTime {
			allEligible = false
		}
	}

	if !allEligible {
		return
	}
	for _, b := range island.Bodies {
		if b.IsDynamic() {
			b.Sleep()
		}
	}
}

func (w *World) inBounds(b *body.Body) bool {

	p := b.Position()
	return p.X >= w.bounds.Min.X && p.X <= w.bounds.Max.X &&
		p.Y >= w.bounds.Min.Y && p.Y <= w.bounds.Max.Y
}

func (w *World) notifyBodyDestroyed(b *body.Body) {

	for _, l := range w.listeners.snapshotDestruction() {
		l.BodyDestroyed(b)
	}
}

func (w *World) notifyJointDestroyed(j joint.Joint) {

	for _, l := range w.listeners.snapshotDestruction() {
		l.JointDestroyed(j)
	}
}
