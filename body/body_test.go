package body

import (
	"math"
	"testing"

	"github.com/rigid2d/engine/math2"
)

const testEps = 1e-9

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= testEps
}

// circleShape is a minimal Shape used only to exercise mass aggregation;
// geometry itself is outside this package's responsibility.
type circleShape struct {
	radius float64
	center math2.Vector2
}

func (c circleShape) ComputeMass(density float64) MassData {
	area := math.Pi * c.radius * c.radius
	mass := density * area
	inertia := mass * (0.5 * c.radius * c.radius)
	return MassData{Mass: mass, Center: c.center, Inertia: inertia}
}

func (c circleShape) ComputeAABB(xf *math2.Transform) AABB {
	p := xf.TransformPoint(&c.center)
	r := math2.Vector2{X: c.radius, Y: c.radius}
	min := math2.Vector2{X: p.X - r.X, Y: p.Y - r.Y}
	max := math2.Vector2{X: p.X + r.X, Y: p.Y + r.Y}
	return AABB{Min: min, Max: max}
}

func TestNewBodyDefaultsToInfiniteMass(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	if b.IsDynamic() {
		t.Fatal("a freshly created body with no fixtures must be static (infinite mass)")
	}
}

func TestResetMassSingleFixture(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)

	wantMass := math.Pi
	if !almostEqual(b.Mass().Mass(), wantMass) {
		t.Errorf("Mass() = %v, want %v", b.Mass().Mass(), wantMass)
	}
	if !b.IsDynamic() {
		t.Error("body with a density fixture should be dynamic")
	}
}

func TestResetMassIgnoresSensors(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	f := NewFixture(circleShape{radius: 1}, 1)
	f.IsSensor = true
	b.AddFixture(f)
	b.ResetMass(Normal)

	if b.IsDynamic() {
		t.Fatal("a sensor-only body has no mass contribution and must remain static")
	}
}

// TestFreeFall reproduces the free-fall scenario: a dynamic body under
// gravity with no constraints gains exactly g*dt of velocity per fixed step
// and ends below its starting height after N steps.
func TestFreeFall(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)

	gravity := math2.Vector2{X: 0, Y: -10}
	dt := 1.0 / 60.0
	steps := 60

	for i := 0; i < steps; i++ {
		b.IntegrateVelocity(gravity, dt)
		b.IntegratePosition(dt, 0, 0)
	}

	wantVy := gravity.Y * dt * float64(steps)
	if !almostEqual(b.LinearVelocity().Y, wantVy) {
		t.Errorf("after %d steps, Vy = %v, want %v", steps, b.LinearVelocity().Y, wantVy)
	}
	if b.Position().Y >= 0 {
		t.Errorf("body should have fallen, Y = %v", b.Position().Y)
	}
}

func TestApplyImpulseAtPointAddsAngularVelocity(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)

	b.ApplyImpulseAtPoint(math2.Vector2{X: 0, Y: 1}, math2.Vector2{X: 1, Y: 0})

	if b.AngularVelocity() == 0 {
		t.Error("an off-center impulse must produce angular velocity")
	}
	if b.LinearVelocity().Y == 0 {
		t.Error("the impulse must also produce linear velocity")
	}
}

func TestStaticBodyIgnoresForcesAndImpulses(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0) // no fixtures: static

	b.ApplyForce(math2.Vector2{X: 100, Y: 0})
	b.ApplyImpulse(math2.Vector2{X: 100, Y: 0})
	b.IntegrateVelocity(math2.Vector2{X: 0, Y: -10}, 1.0/60.0)

	lv := b.LinearVelocity()
	if !lv.IsZero() {
		t.Fatalf("a static body must never move, got velocity %+v", b.LinearVelocity())
	}
}

func TestIntegratePositionClampsTranslation(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)
	b.SetLinearVelocity(math2.Vector2{X: 1000, Y: 0})

	b.IntegratePosition(1.0/60.0, 0.1, 0)

	if b.Position().X > 0.1+testEps {
		t.Fatalf("translation should be clamped to 0.1, got %v", b.Position().X)
	}
}

func TestSleepClearsVelocity(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)
	b.SetLinearVelocity(math2.Vector2{X: 5, Y: 0})

	b.Sleep()

	if !b.IsAtRest() {
		t.Error("Sleep() should mark the body at rest")
	}
	lv := b.LinearVelocity()
	if !lv.IsZero() {
		t.Error("Sleep() should zero linear velocity")
	}
}

func TestWakeUpResetsDwellTimer(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)

	b.UpdateAtRestTimer(1.0, 1.0, 1.0)
	if b.AtRestTime() == 0 {
		t.Fatal("dwell timer should have advanced")
	}

	b.WakeUp()
	if b.AtRestTime() != 0 {
		t.Errorf("WakeUp should reset the dwell timer, got %v", b.AtRestTime())
	}
}

func TestUpdateAtRestTimerResetsOnMotion(t *testing.T) {
	b := NewBody(math2.Vector2{}, 0)
	b.AddFixture(NewFixture(circleShape{radius: 1}, 1))
	b.ResetMass(Normal)

	b.UpdateAtRestTimer(1.0, 1.0, 1.0)
	b.SetLinearVelocity(math2.Vector2{X: 10, Y: 0})
	b.UpdateAtRestTimer(1.0, 1.0, 1.0)

	if b.AtRestTime() != 0 {
		t.Errorf("fast motion should reset the dwell timer to 0, got %v", b.AtRestTime())
	}
}
