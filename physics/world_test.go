package physics

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/body"
	"github.com/rigid2d/engine/joint"
	"github.com/rigid2d/engine/math2"
)

func newDynamicBody(pos math2.Vector2) *body.Body {
	b := body.NewBody(pos, 0)
	b.SetMass(body.NewMass(body.Normal, 1, 1, math2.Vector2{}))
	return b
}

func TestWorldAddBodyIgnoresDuplicate(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	b := newDynamicBody(math2.Vector2{})

	ok, err := w.AddBody(b)
	if !ok || err != nil {
		t.Fatalf("first add: ok=%v err=%v", ok, err)
	}

	ok, err = w.AddBody(b)
	if ok || err != nil {
		t.Fatalf("duplicate add should be (false, nil), got (%v, %v)", ok, err)
	}
	if len(w.Bodies()) != 1 {
		t.Errorf("body list should still have exactly 1 entry, got %d", len(w.Bodies()))
	}
}

func TestWorldAddBodyRejectsNil(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	if _, err := w.AddBody(nil); err == nil {
		t.Fatal("expected an error adding a nil body")
	}
}

func TestWorldRemoveBodyReturnsFalseForUnknown(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	b := newDynamicBody(math2.Vector2{})
	if w.RemoveBody(b) {
		t.Fatal("removing a body never added should return false")
	}
}

func TestWorldRemoveBodyDropsAttachedJoints(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	a := newDynamicBody(math2.Vector2{})
	b := newDynamicBody(math2.Vector2{X: 1})
	w.AddBody(a)
	w.AddBody(b)

	j := joint.NewDistanceJoint(a, b, a.Position(), b.Position())
	if _, err := w.AddJoint(j); err != nil {
		t.Fatalf("AddJoint: %v", err)
	}

	w.RemoveBody(a)

	if len(w.Joints()) != 0 {
		t.Errorf("removing a body should remove joints attached to it, got %d remaining", len(w.Joints()))
	}
}

func TestWorldAddJointRejectsSameBodyTwice(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	a := newDynamicBody(math2.Vector2{})
	j := joint.NewDistanceJoint(a, a, math2.Vector2{}, math2.Vector2{X: 1})

	if _, err := w.AddJoint(j); err == nil {
		t.Fatal("expected an error connecting a body to itself")
	}
}

// TestWorldStepFreeFall checks that a single body under gravity and no
// constraints accelerates correctly across several fixed steps, exercising
// the full Step pipeline with no broad-phase attached (so no contacts are
// ever generated).
func TestWorldStepFreeFall(t *testing.T) {
	w := NewWorld(math2.Vector2{X: 0, Y: -10})
	b := newDynamicBody(math2.Vector2{X: 0, Y: 10})
	w.AddBody(b)

	dt := w.Settings().StepFrequency
	steps := 30
	if err := w.Step(steps, dt); err != nil {
		t.Fatalf("Step: %v", err)
	}

	wantVy := -10 * dt * float64(steps)
	if math.Abs(b.LinearVelocity().Y-wantVy) > 1e-9 {
		t.Errorf("Vy = %v, want %v", b.LinearVelocity().Y, wantVy)
	}
	if b.Position().Y >= 10 {
		t.Errorf("body should have fallen below its start height, Y = %v", b.Position().Y)
	}
}

// TestWorldSleepsAtRestBody checks that a body with no velocity and no
// forces is put to sleep once it has dwelt below the velocity thresholds
// for AtRestTime.
func TestWorldSleepsAtRestBody(t *testing.T) {
	w := NewWorld(math2.Vector2{}) // zero gravity: the body never gains velocity
	b := newDynamicBody(math2.Vector2{})
	w.AddBody(b)

	dt := w.Settings().StepFrequency
	stepsNeeded := int(w.Settings().AtRestTime/dt) + 5

	if err := w.Step(stepsNeeded, dt); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if !b.IsAtRest() {
		t.Error("a motionless body should fall asleep after AtRestTime has elapsed")
	}
}

// TestWorldWakesSleepingBodyOnImpulse checks that a sleeping body receiving
// an applied impulse wakes immediately, rather than staying asleep until
// the next island-wide sleep re-evaluation.
func TestWorldWakesSleepingBodyOnImpulse(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	b := newDynamicBody(math2.Vector2{})
	w.AddBody(b)

	dt := w.Settings().StepFrequency
	stepsNeeded := int(w.Settings().AtRestTime/dt) + 5
	if err := w.Step(stepsNeeded, dt); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !b.IsAtRest() {
		t.Fatal("body should be asleep before the impulse is applied")
	}

	mass := 1 / b.Mass().InvMass()
	wakeSpeed := w.Settings().AtRestLinearVelocity * 2
	b.ApplyImpulse(math2.Vector2{X: mass * wakeSpeed, Y: 0})

	if b.IsAtRest() {
		t.Error("a sufficiently large applied impulse should wake a sleeping body")
	}
}

// TestWorldUpdateCapsStepsPerCall checks that Update never performs more
// than maxSteps fixed steps in a single call, even when handed a very
// large elapsed-time sample.
func TestWorldUpdateCapsStepsPerCall(t *testing.T) {
	w := NewWorld(math2.Vector2{X: 0, Y: -10})
	b := newDynamicBody(math2.Vector2{X: 0, Y: 1000})
	w.AddBody(b)

	dt := w.Settings().StepFrequency
	if err := w.Update(1000*dt, 5); err != nil {
		t.Fatalf("Update: %v", err)
	}

	wantVy := -10 * dt * 5
	if math.Abs(b.LinearVelocity().Y-wantVy) > 1e-9 {
		t.Errorf("after capped Update, Vy = %v, want exactly %d steps worth = %v", b.LinearVelocity().Y, 5, wantVy)
	}
}

type recordingStepListener struct {
	begins, ends int
}

func (r *recordingStepListener) Begin(w *World)           { r.begins++ }
func (r *recordingStepListener) UpdatePerformed(w *World) {}
func (r *recordingStepListener) End(w *World)             { r.ends++ }

func TestWorldStepListenerDispatch(t *testing.T) {
	w := NewWorld(math2.Vector2{})
	l := &recordingStepListener{}
	w.AddStepListener(l)

	if err := w.Step(3, w.Settings().StepFrequency); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if l.begins != 3 || l.ends != 3 {
		t.Errorf("got begins=%d ends=%d, want 3 and 3", l.begins, l.ends)
	}

	if !w.RemoveStepListener(l) {
		t.Error("RemoveStepListener should report true for a registered listener")
	}
	if err := w.Step(1, w.Settings().StepFrequency); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if l.begins != 3 {
		t.Error("listener should not be invoked after removal")
	}
}
