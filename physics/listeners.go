package physics

import (
	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/joint"
	"github.com/rigid2d/engine/math2"
)

// StepListener observes the phases of a single world step.
type StepListener interface {
	Begin(w *World)
	UpdatePerformed(w *World)
	End(w *World)
}

// ContactListener observes contact lifecycle events. The boolean-returning
// methods are advisory: returning false from Begin or Persist suppresses
// the contact's impulses for the remainder of the step without removing it
// from the manifold cache.
type ContactListener interface {
	Begin(c *ContactConstraint, point *SolvableContact) bool
	Persist(c *ContactConstraint, point *SolvableContact) bool
	End(c *ContactConstraint, point *SolvableContact)
	PreSolve(c *ContactConstraint) bool
	PostSolve(c *ContactConstraint)
	Sensed(c *ContactConstraint)
}

// DestructionListener observes permanent removal of bodies, joints and contacts.
type DestructionListener interface {
	BodyDestroyed(b *body.Body)
	JointDestroyed(j joint.Joint)
	ContactDestroyed(c *ContactConstraint)
}

// BoundsListener is notified when a body leaves the world's configured bounds.
type BoundsListener interface {
	OutOfBounds(b *body.Body)
}

// TimeOfImpactListener filters candidate pairs before continuous-collision
// time-of-impact detection runs. Returning false skips the pair for this
// step without affecting the discrete solve.
type TimeOfImpactListener interface {
	Collide(bodyA, bodyB *body.Body) bool
}

// RaycastListener filters raycast hits. The engine itself performs no
// raycasts (that is the broad-phase collaborator's operation), but hosts
// driving raycasts through the broad-phase consult the world's registered
// raycast listeners with this interface.
type RaycastListener interface {
	Allow(start, end math2.Vector2, b *body.Body, f *body.Fixture) bool
}

// listenerRegistry is a typed multi-list per listener kind. Iteration
// always works over a snapshot slice taken at dispatch time, so a listener
// callback may itself add or remove listeners without corrupting the
// in-progress iteration.
type listenerRegistry struct {
	step        []StepListener
	contact     []ContactListener
	destruction []DestructionListener
	bounds      []BoundsListener
	toi         []TimeOfImpactListener
	raycast     []RaycastListener
}

func (r *listenerRegistry) addStep(l StepListener)               { r.step = append(r.step, l) }
func (r *listenerRegistry) addContact(l ContactListener)         { r.contact = append(r.contact, l) }
func (r *listenerRegistry) addDestruction(l DestructionListener) { r.destruction = append(r.destruction, l) }
func (r *listenerRegistry) addBounds(l BoundsListener)           { r.bounds = append(r.bounds, l) }
func (r *listenerRegistry) addTOI(l TimeOfImpactListener)        { r.toi = append(r.toi, l) }
func (r *listenerRegistry) addRaycast(l RaycastListener)         { r.raycast = append(r.raycast, l) }

func (r *listenerRegistry) removeStep(l StepListener) bool {
	for i, existing := range r.step {
		if existing == l {
			r.step = append(r.step[:i], r.step[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) removeContact(l ContactListener) bool {
	for i, existing := range r.contact {
		if existing == l {
			r.contact = append(r.contact[:i], r.contact[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) removeDestruction(l DestructionListener) bool {
	for i, existing := range r.destruction {
		if existing == l {
			r.destruction = append(r.destruction[:i], r.destruction[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) removeBounds(l BoundsListener) bool {
	for i, existing := range r.bounds {
		if existing == l {
			r.bounds = append(r.bounds[:i], r.bounds[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) removeTOI(l TimeOfImpactListener) bool {
	for i, existing := range r.toi {
		if existing == l {
			r.toi = append(r.toi[:i], r.toi[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) removeRaycast(l RaycastListener) bool {
	for i, existing := range r.raycast {
		if existing == l {
			r.raycast = append(r.raycast[:i], r.raycast[i+1:]...)
			return true
		}
	}
	return false
}

// snapshotStep copies the current step listeners so a mutation mid-dispatch
// cannot affect this dispatch's iteration.
func (r *listenerRegistry) snapshotStep() []StepListener {
	out := make([]StepListener, len(r.step))
	copy(out, r.step)
	return out
}

func (r *listenerRegistry) snapshotContact() []ContactListener {
	out := make([]ContactListener, len(r.contact))
	copy(out, r.contact)
	return out
}

func (r *listenerRegistry) snapshotBounds() []BoundsListener {
	out := make([]BoundsListener, len(r.bounds))
	copy(out, r.bounds)
	return out
}

func (r *listenerRegistry) snapshotDestruction() []DestructionListener {
	out := make([]DestructionListener, len(r.destruction))
	copy(out, r.destruction)
	return out
}

func (r *listenerRegistry) snapshotTOI() []TimeOfImpactListener {
	out := make([]TimeOfImpactListener, len(r.toi))
	copy(out, r.toi)
	return out
}

func (r *listenerRegistry) snapshotRaycast() []RaycastListener {
	out := make([]RaycastListener, len(r.raycast))
	copy(out, r.raycast)
	return out
}
