package body

import "github.com/rigid2d/engine/math2"

// MassType classifies how a body's mass and inertia participate in the
// solver. "Infinite" always means the corresponding inverse is zero.
type MassType int

const (
	// Normal is a fully dynamic body: finite mass and finite inertia.
	Normal MassType = iota
	// Infinite is an immovable body: infinite mass and infinite inertia.
	// A body with zero mass and zero inertia is always treated as Infinite.
	Infinite
	// FixedLinearVelocity has infinite mass (does not translate under
	// force/impulse) but finite inertia (still rotates normally).
	FixedLinearVelocity
	// FixedAngularVelocity has finite mass (translates normally) but
	// infinite inertia (does not rotate under torque/impulse).
	FixedAngularVelocity
)

// Mass bundles a body's mass properties, keeping the inverses already
// computed so the hot solver loops never divide.
type Mass struct {
	Type MassType

	mass       float64
	invMass    float64
	inertia    float64
	invInertia float64
	center     math2.Vector2 // Local-space center of mass.
}

// NewMass builds a Mass of the given type from raw mass and inertia values.
// The inverses are derived here and re-derived whenever Type changes.
func NewMass(massType MassType, mass, inertia float64, center math2.Vector2) Mass {

	m := Mass{Type: massType, mass: mass, inertia: inertia, center: center}
	m.recompute()
	return m
}

func (m *Mass) recompute() {

	switch m.Type {
	case Infinite:
		m.invMass = 0
		m.invInertia = 0
	case FixedLinearVelocity:
		m.invMass = 0
		m.invInertia = safeInv(m.inertia)
	case FixedAngularVelocity:
		m.invMass = safeInv(m.mass)
		m.invInertia = 0
	default:
		m.invMass = safeInv(m.mass)
		m.invInertia = safeInv(m.inertia)
	}
	if m.invMass == 0 && m.invInertia == 0 {
		m.Type = Infinite
	}
}

func safeInv(v float64) float64 {

	if v <= 0 {
		return 0
	}
	return 1 / v
}

// SetType changes the mass classification and re-derives the inverses.
func (m *Mass) SetType(t MassType) {

	m.Type = t
	m.recompute()
}

// Mass returns the scalar mass.
func (m *Mass) Mass() float64 { return m.mass }

// InvMass returns the inverse scalar mass (0 for infinite mass).
func (m *Mass) InvMass() float64 { return m.invMass }

// Inertia returns the rotational inertia about the local center of mass.
func (m *Mass) Inertia() float64 { return m.inertia }

// InvInertia returns the inverse rotational inertia (0 for infinite inertia).
func (m *Mass) InvInertia() float64 { return m.invInertia }

// Center returns the local-space center of mass.
func (m *Mass) Center() math2.Vector2 { return m.center }

// IsStatic reports whether this mass behaves as static: both the inverse
// mass and the inverse inertia are zero.
func (m *Mass) IsStatic() bool {

	return m.invMass == 0 && m.invInertia == 0
}

// SetFromMassData sets mass, inertia and center of mass from computed mass
// data as given; the inertia is not shifted (applying the parallel axis
// theorem when aggregating multiple fixtures is the caller's
// responsibility — see Body.ResetMass).
func (m *Mass) SetFromMassData(mass, inertia float64, center math2.Vector2) {

	m.mass = mass
	m.inertia = inertia
	m.center = center
	m.recompute()
}
