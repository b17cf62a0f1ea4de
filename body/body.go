// Package body defines the rigid body representation shared by every part
// of the simulation: its transform, velocities, accumulated forces, mass
// properties and fixtures. Bodies do not know about joints, contacts,
// islands or the world that owns them — those back-references are
// recomputed every step from the constraint graph (see the physics
// package), keeping a Body a plain, independently testable value.
package body

import (
	"github.com/rigid2d/engine/math2"
	"github.com/rigid2d/engine/physics/perr"
)

// Body represents a single rigid 2D entity: a transform, a pair of
// velocities, accumulated forces/torques, mass properties and an ordered
// list of fixtures.
type Body struct {
	handle int // Stable index into the owning World's body slot-map.

	transform     math2.Transform
	prevTransform math2.Transform

	linearVelocity  math2.Vector2
	angularVelocity float64

	force  math2.Vector2
	torque float64

	pendingForces  []pendingForce
	pendingTorques []pendingTorque

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	mass Mass

	fixtures []*Fixture

	enabled                bool
	bullet                 bool
	atRest                 bool
	atRestDetectionEnabled bool
	atRestTime             float64

	userData interface{}
}

// NewBody creates a Body at the given placement with library defaults:
// enabled, at-rest detection on, gravity scale 1, zero damping, and a
// Normal mass of zero (no fixtures yet — call ResetMass after adding
// fixtures, or SetMass directly for an analytically known body).
func NewBody(position math2.Vector2, angle float64) *Body {

	b := &Body{
		gravityScale:           1,
		enabled:                true,
		atRestDetectionEnabled: true,
	}
	b.transform.Position = position
	b.transform.Rotation.Set(angle)
	b.prevTransform = b.transform
	b.mass = NewMass(Infinite, 0, 0, math2.Vector2{})
	return b
}

// Handle returns this body's stable slot index within its owning World.
// It is undefined (and unused) before the body has been added to a World.
func (b *Body) Handle() int { return b.handle }

// SetHandle is called by World.AddBody to record the slot this body occupies.
func (b *Body) SetHandle(h int) { b.handle = h }

// Transform returns the current world transform.
func (b *Body) Transform() math2.Transform { return b.transform }

// SetTransform sets the current and previous transform directly (e.g. when
// the caller is teleporting the body rather than simulating it).
func (b *Body) SetTransform(t math2.Transform) {

	b.transform = t
	b.prevTransform = t
}

// PreviousTransform returns the transform from before the last position integration.
func (b *Body) PreviousTransform() math2.Transform { return b.prevTransform }

// SetCurrentTransform overwrites the live transform without touching the
// previous transform, used by continuous collision to advance a body to
// its time-of-impact pose mid-step without disturbing the sweep it was
// detected against.
func (b *Body) SetCurrentTransform(t math2.Transform) { b.transform = t }

// Position returns the world-space position of the center of gravity.
func (b *Body) Position() math2.Vector2 { return b.transform.Position }

// Angle returns the current orientation, in radians.
func (b *Body) Angle() float64 { return b.transform.Rotation.Angle() }

// LinearVelocity returns the current linear velocity.
func (b *Body) LinearVelocity() math2.Vector2 { return b.linearVelocity }

// SetLinearVelocity sets the linear velocity and wakes the body.
func (b *Body) SetLinearVelocity(v math2.Vector2) {

	b.linearVelocity = v
	b.WakeUp()
}

// AngularVelocity returns the current angular velocity, in rad/s.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// SetAngularVelocity sets the angular velocity and wakes the body.
func (b *Body) SetAngularVelocity(w float64) {

	b.angularVelocity = w
	b.WakeUp()
}

// Mass returns a pointer to this body's mass properties.
func (b *Body) Mass() *Mass { return &b.mass }

// SetMass replaces the mass properties outright (used when the caller
// already knows the analytic mass/inertia rather than deriving it from
// fixtures via ResetMass).
func (b *Body) SetMass(m Mass) { b.mass = m }

// IsDynamic reports whether this body has a finite inverse mass or inverse
// inertia and is therefore moved by the solver.
func (b *Body) IsDynamic() bool { return !b.mass.IsStatic() }

// IsEnabled reports whether this body currently participates in the simulation.
func (b *Body) IsEnabled() bool { return b.enabled }

// SetEnabled enables or disables this body.
func (b *Body) SetEnabled(enabled bool) { b.enabled = enabled }

// IsBullet reports whether this body is flagged for continuous collision detection.
func (b *Body) IsBullet() bool { return b.bullet }

// SetBullet sets the bullet flag.
func (b *Body) SetBullet(bullet bool) { b.bullet = bullet }

// IsAtRest reports whether this body is currently asleep.
func (b *Body) IsAtRest() bool { return b.atRest }

// IsAtRestDetectionEnabled reports whether this body may be put to sleep.
func (b *Body) IsAtRestDetectionEnabled() bool { return b.atRestDetectionEnabled }

// SetAtRestDetectionEnabled toggles whether this body may be put to sleep.
// Disabling it wakes the body immediately.
func (b *Body) SetAtRestDetectionEnabled(enabled bool) {

	b.atRestDetectionEnabled = enabled
	if !enabled {
		b.WakeUp()
	}
}

// AtRestTime returns the current at-rest dwell accumulator, or -1 for a
// static body (which is never sleepable).
func (b *Body) AtRestTime() float64 {

	if !b.IsDynamic() {
		return -1
	}
	return b.atRestTime
}

// LinearDamping returns the linear damping coefficient.
func (b *Body) LinearDamping() float64 { return b.linearDamping }

// SetLinearDamping sets the linear damping coefficient. Must be >= 0.
func (b *Body) SetLinearDamping(d float64) error {

	if d < 0 {
		return perr.InvalidArgument("linear damping must be >= 0")
	}
	b.linearDamping = d
	return nil
}

// AngularDamping returns the angular damping coefficient.
func (b *Body) AngularDamping() float64 { return b.angularDamping }

// SetAngularDamping sets the angular damping coefficient. Must be >= 0.
func (b *Body) SetAngularDamping(d float64) error {

	if d < 0 {
		return perr.InvalidArgument("angular damping must be >= 0")
	}
	b.angularDamping = d
	return nil
}

// GravityScale returns the per-body gravity multiplier (may be negative).
func (b *Body) GravityScale() float64 { return b.gravityScale }

// SetGravityScale sets the per-body gravity multiplier.
func (b *Body) SetGravityScale(s float64) { b.gravityScale = s }

// UserData returns the opaque user data slot.
func (b *Body) UserData() interface{} { return b.userData }

// SetUserData sets the opaque user data slot.
func (b *Body) SetUserData(v interface{}) { b.userData = v }

// Fixtures returns the ordered list of fixtures attached to this body.
func (b *Body) Fixtures() []*Fixture { return b.fixtures }

// AddFixture appends a fixture to this body. The caller should follow with
// ResetMass if the body's mass should be derived from its fixtures.
func (b *Body) AddFixture(f *Fixture) {

	f.index = len(b.fixtures)
	b.fixtures = append(b.fixtures, f)
}

// RemoveFixture removes a fixture by identity. Returns true if found.
func (b *Body) RemoveFixture(f *Fixture) bool {

	for i, existing := range b.fixtures {
		if existing == f {
			b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
			for j := i; j < len(b.fixtures); j++ {
				b.fixtures[j].index = j
			}
			return true
		}
	}
	return false
}

// ResetMass recomputes this body's mass, inertia and local center of mass
// by summing the contribution of every non-sensor fixture (via the
// externally supplied Shape.ComputeMass) and applying the parallel axis
// theorem to shift each fixture's inertia to the aggregate center of mass.
// A body with no mass-contributing fixtures becomes Infinite.
func (b *Body) ResetMass(massType MassType) {

	totalMass := 0.0
	center := math2.Vector2{}
	for _, f := range b.fixtures {
		if f.IsSensor || f.Density <= 0 {
			continue
		}
		md := f.Shape.ComputeMass(f.Density)
		totalMass += md.Mass
		center.AddScaled(&md.Center, md.Mass)
	}

	if totalMass > 0 {
		center.Scale(1 / totalMass)
	}

	inertia := 0.0
	for _, f := range b.fixtures {
		if f.IsSensor || f.Density <= 0 {
			continue
		}
		md := f.Shape.ComputeMass(f.Density)
		d := math2.NewVec2().SubVectors(&md.Center, &center)
		inertia += md.Inertia + md.Mass*d.LengthSq()
	}

	b.mass = NewMass(massType, totalMass, inertia, center)
}

// GetWorldPoint converts a local-space point to world space.
func (b *Body) GetWorldPoint(local math2.Vector2) math2.Vector2 {

	return *b.transform.TransformPoint(&local)
}

// GetLocalPoint converts a world-space point to local space.
func (b *Body) GetLocalPoint(world math2.Vector2) math2.Vector2 {

	return *b.transform.InvTransformPoint(&world)
}

// GetWorldVector rotates (without translating) a local-space vector to world space.
func (b *Body) GetWorldVector(local math2.Vector2) math2.Vector2 {

	return *b.transform.TransformVector(&local)
}

// GetLocalVector rotates (without translating) a world-space vector to local space.
func (b *Body) GetLocalVector(world math2.Vector2) math2.Vector2 {

	return *b.transform.InvTransformVector(&world)
}

// WorldCenter returns the world-space position of the center of mass.
func (b *Body) WorldCenter() math2.Vector2 {

	return b.GetWorldPoint(b.mass.Center())
}

// GetLinearVelocityAtPoint returns the instantaneous world velocity of the
// material point of the body coincident with the given world point.
func (b *Body) GetLinearVelocityAtPoint(worldPoint math2.Vector2) math2.Vector2 {

	r := math2.NewVec2().SubVectors(&worldPoint, ptr(b.WorldCenter()))
	v := math2.CrossScalar(b.angularVelocity, r)
	return *v.Add(&b.linearVelocity)
}

func ptr(v math2.Vector2) *math2.Vector2 { return &v }

// ApplyForce accumulates a world-space force applied at the center of mass.
// No-op on a static body.
func (b *Body) ApplyForce(f math2.Vector2) {

	if !b.IsDynamic() {
		return
	}
	b.force.Add(&f)
	b.WakeUp()
}

// ApplyForceAtPoint accumulates a world-space force applied at a world-space
// point, contributing both linear force and torque. No-op on a static body.
func (b *Body) ApplyForceAtPoint(f, worldPoint math2.Vector2) {

	if !b.IsDynamic() {
		return
	}
	b.force.Add(&f)
	r := math2.NewVec2().SubVectors(&worldPoint, ptr(b.WorldCenter()))
	b.torque += r.Cross(&f)
	b.WakeUp()
}

// ApplyTorque accumulates a torque about the center of mass. No-op on a static body.
func (b *Body) ApplyTorque(t float64) {

	if !b.IsDynamic() {
		return
	}
	b.torque += t
	b.WakeUp()
}

// AddPendingForce registers a time-bounded force source to be applied every
// step (in addition to ApplyForce) until it reports IsComplete.
func (b *Body) AddPendingForce(f Force) {

	b.pendingForces = append(b.pendingForces, pendingForce{force: f})
}

// AddPendingTorque registers a time-bounded torque source.
func (b *Body) AddPendingTorque(t Torque) {

	b.pendingTorques = append(b.pendingTorques, pendingTorque{torque: t})
}

// ApplyImpulse applies a world-space linear impulse at the center of mass,
// producing an instantaneous change in linear velocity. No-op on a static body.
func (b *Body) ApplyImpulse(impulse math2.Vector2) {

	if !b.IsDynamic() {
		return
	}
	b.linearVelocity.AddScaled(&impulse, b.mass.InvMass())
	b.WakeUp()
}

// ApplyImpulseAtPoint applies a world-space impulse at a world-space point,
// changing both linear and angular velocity. No-op on a static body.
func (b *Body) ApplyImpulseAtPoint(impulse, worldPoint math2.Vector2) {

	if !b.IsDynamic() {
		return
	}
	b.linearVelocity.AddScaled(&impulse, b.mass.InvMass())
	r := math2.NewVec2().SubVectors(&worldPoint, ptr(b.WorldCenter()))
	b.angularVelocity += b.mass.InvInertia() * r.Cross(&impulse)
	b.WakeUp()
}

// ApplyAngularImpulse applies an angular impulse, changing angular velocity only.
func (b *Body) ApplyAngularImpulse(impulse float64) {

	if !b.IsDynamic() {
		return
	}
	b.angularVelocity += b.mass.InvInertia() * impulse
	b.WakeUp()
}

// ClearForces zeroes the accumulated force and torque and discards any
// pending force/torque sources that have completed; called by the World at
// the end of every step.
func (b *Body) ClearForces(dt float64) {

	b.force = math2.Vector2{}
	b.torque = 0

	live := b.pendingForces[:0]
	for _, pf := range b.pendingForces {
		pf.elapsed += dt
		if !pf.force.IsComplete(pf.elapsed) {
			live = append(live, pf)
		}
	}
	b.pendingForces = live

	liveT := b.pendingTorques[:0]
	for _, pt := range b.pendingTorques {
		pt.elapsed += dt
		if !pt.torque.IsComplete(pt.elapsed) {
			liveT = append(liveT, pt)
		}
	}
	b.pendingTorques = liveT
}

// IntegrateVelocity applies gravity, accumulated and pending forces/torques,
// then damping, following Settings.StepFrequency-sized steps. Called once
// per step, before constraint solving, for every awake dynamic body.
func (b *Body) IntegrateVelocity(gravity math2.Vector2, dt float64) {

	if !b.IsDynamic() || b.atRest {
		return
	}

	totalForce := b.force
	for _, pf := range b.pendingForces {
		v := pf.force.Value()
		totalForce.Add(&v)
	}
	totalTorque := b.torque
	for _, pt := range b.pendingTorques {
		totalTorque += pt.torque.Value()
	}

	g := gravity
	g.Scale(b.gravityScale)

	invM := b.mass.InvMass()
	b.linearVelocity.X += (g.X + totalForce.X*invM) * dt
	b.linearVelocity.Y += (g.Y + totalForce.Y*invM) * dt
	b.angularVelocity += (totalTorque * b.mass.InvInertia()) * dt

	b.linearVelocity.Scale(1 / (1 + dt*b.linearDamping))
	b.angularVelocity *= 1 / (1 + dt*b.angularDamping)
}

// IntegratePosition advances position and orientation by the current
// velocities, clamping the per-step translation and rotation to the given
// limits so a single large impulse cannot tunnel the body in one step. The
// velocity itself is left untouched; only the applied position delta is
// clipped.
func (b *Body) IntegratePosition(dt, maxTranslation, maxRotation float64) {

	if !b.IsDynamic() || b.atRest {
		b.prevTransform = b.transform
		return
	}

	b.prevTransform = b.transform

	dx := math2.Vector2{X: b.linearVelocity.X * dt, Y: b.linearVelocity.Y * dt}
	if maxTranslation > 0 {
		if d2, max2 := dx.LengthSq(), maxTranslation*maxTranslation; d2 > max2 {
			dx.Scale(maxTranslation / dx.Length())
		}
	}

	dTheta := b.angularVelocity * dt
	if maxRotation > 0 {
		if dTheta > maxRotation {
			dTheta = maxRotation
		} else if dTheta < -maxRotation {
			dTheta = -maxRotation
		}
	}

	b.transform.Position.Add(&dx)
	b.transform.Rotation.Set(b.transform.Rotation.Angle() + dTheta)
}

// ApplyPositionCorrection nudges the transform directly (not through
// velocity) by a translation and rotation delta. Used by the position
// solver's pseudo-impulses and by joint position correction.
func (b *Body) ApplyPositionCorrection(dx math2.Vector2, dTheta float64) {

	if !b.IsDynamic() {
		return
	}
	b.transform.Position.Add(&dx)
	b.transform.Rotation.Set(b.transform.Rotation.Angle() + dTheta)
}

// WakeUp clears the at-rest flag and resets the dwell timer. Any setter
// that changes motion-affecting external state must call this.
func (b *Body) WakeUp() {

	b.atRest = false
	b.atRestTime = 0
}

// Sleep forces the body to sleep immediately: velocities, accumulated
// forces/torques and pending force/torque lists are all cleared.
func (b *Body) Sleep() {

	b.atRest = true
	b.linearVelocity = math2.Vector2{}
	b.angularVelocity = 0
	b.force = math2.Vector2{}
	b.torque = 0
	b.pendingForces = nil
	b.pendingTorques = nil
}

// UpdateAtRestTimer advances (or resets) the at-rest dwell timer for this
// step, following the sleep/linear/angular velocity thresholds in settings.
// Static bodies are left alone (AtRestTime always reports -1 for them).
func (b *Body) UpdateAtRestTimer(dt, linearVelLimit, angularVelLimit float64) {

	if !b.IsDynamic() {
		return
	}
	v2 := b.linearVelocity.LengthSq()
	w2 := b.angularVelocity * b.angularVelocity
	if v2 > linearVelLimit*linearVelLimit || w2 > angularVelLimit*angularVelLimit {
		b.atRestTime = 0
		return
	}
	b.atRestTime += dt
}
