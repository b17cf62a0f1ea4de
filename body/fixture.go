package body

// Fixture attaches a Shape to a Body with its own material and collision
// properties. A body may carry several fixtures (ordered, append-only).
type Fixture struct {
	Shape Shape

	Density             float64
	Friction            float64 // In [0, 1].
	Restitution         float64 // In [0, 1].
	RestitutionVelocity float64 // Minimum closing speed that makes this fixture bounce; <0 means "use the simulation default".
	IsSensor            bool
	Filter              Filter

	index int
}

// NewFixture creates a fixture with the library defaults (friction 0.2,
// restitution 0, a permissive filter) for the given shape and density.
func NewFixture(shape Shape, density float64) *Fixture {

	return &Fixture{
		Shape:               shape,
		Density:             density,
		Friction:            0.2,
		Restitution:         0,
		RestitutionVelocity: -1,
		Filter:              DefaultFilter(),
	}
}

// Index returns this fixture's position within its body's fixture list.
func (f *Fixture) Index() int {

	return f.index
}
