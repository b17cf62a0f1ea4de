package physics

// TimeStep carries the current and previous fixed-timestep size and their
// ratio. The ratio is computed but not read by the solvers: joints and
// contacts re-apply their warm-started impulses unscaled, even when the
// step size changes.
type TimeStep struct {
	Dt      float64 // Current step size.
	InvDt   float64 // 1/Dt, or 0 if Dt is 0.
	PrevDt  float64 // Step size used on the previous step.
	DtRatio float64 // Dt / PrevDt (1 when PrevDt is 0); not applied to warm-start impulses.
}

// NewTimeStep builds a TimeStep for the given step size, inheriting the
// previous step's size for ratio computation.
func NewTimeStep(dt, prevDt float64) TimeStep {

	ts := TimeStep{Dt: dt, PrevDt: prevDt}
	if dt > 0 {
		ts.InvDt = 1 / dt
	}
	if prevDt > 0 {
		ts.DtRatio = dt / prevDt
	} else {
		ts.DtRatio = 1
	}
	return ts
}
