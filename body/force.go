package body

import "github.com/rigid2d/engine/math2"

// Force is a time-bounded external linear force source (e.g. a wind gust,
// a thruster burning for a fixed duration). It is accumulated into the
// body's force every step until IsComplete reports true, at which point the
// world removes it from the body's pending list.
type Force interface {
	Value() math2.Vector2
	IsComplete(elapsed float64) bool
}

// Torque is the rotational analogue of Force.
type Torque interface {
	Value() float64
	IsComplete(elapsed float64) bool
}

// ConstantForce never completes; it behaves like a directly accumulated
// force but stays in the pending-force list, applied every step, until
// Body.Sleep empties that list.
type ConstantForce struct {
	F math2.Vector2
}

func (c *ConstantForce) Value() math2.Vector2            { return c.F }
func (c *ConstantForce) IsComplete(elapsed float64) bool { return false }

// TimedForce applies a constant force for a fixed duration.
type TimedForce struct {
	F        math2.Vector2
	Duration float64
}

func (t *TimedForce) Value() math2.Vector2 { return t.F }
func (t *TimedForce) IsComplete(elapsed float64) bool {
	return elapsed >= t.Duration
}

// ConstantTorque never completes.
type ConstantTorque struct {
	T float64
}

func (c *ConstantTorque) Value() float64                  { return c.T }
func (c *ConstantTorque) IsComplete(elapsed float64) bool { return false }

// TimedTorque applies a constant torque for a fixed duration.
type TimedTorque struct {
	T        float64
	Duration float64
}

func (t *TimedTorque) Value() float64 { return t.T }
func (t *TimedTorque) IsComplete(elapsed float64) bool {
	return elapsed >= t.Duration
}

type pendingForce struct {
	force   Force
	elapsed float64
}

type pendingTorque struct {
	torque  Torque
	elapsed float64
}
