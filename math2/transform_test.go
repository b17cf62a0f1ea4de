package math2

import "testing"

func TestTransformRoundTrip(t *testing.T) {
	xf := NewTransform()
	xf.Position = Vector2{X: 5, Y: -3}
	xf.Rotation.Set(Pi / 4)

	local := &Vector2{X: 2, Y: 0}
	world := xf.TransformPoint(local)
	back := xf.InvTransformPoint(world)

	if !almostEqual(back.X, local.X) || !almostEqual(back.Y, local.Y) {
		t.Fatalf("round trip = (%v, %v), want (%v, %v)", back.X, back.Y, local.X, local.Y)
	}
}

func TestTransformVectorIgnoresTranslation(t *testing.T) {
	xf := NewTransform()
	xf.Position = Vector2{X: 100, Y: 100}

	local := &Vector2{X: 1, Y: 0}
	world := xf.TransformVector(local)

	if !almostEqual(world.X, 1) || !almostEqual(world.Y, 0) {
		t.Fatalf("TransformVector = (%v, %v), want (1, 0) (translation must not apply)", world.X, world.Y)
	}
}

func TestRotMulIsComposition(t *testing.T) {
	q := NewRot(Pi / 2)
	r := NewRot(Pi / 2)
	composed := MulRot(q, r)

	if !almostEqual(composed.Angle(), Pi) {
		t.Fatalf("composed angle = %v, want Pi", composed.Angle())
	}
}
