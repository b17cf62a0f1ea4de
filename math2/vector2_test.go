package math2

import "testing"

const testEps = 1e-9

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= testEps
}

func TestVector2Add(t *testing.T) {
	v := NewVector2(1, 2)
	v.Add(NewVector2(3, 4))
	if !almostEqual(v.X, 4) || !almostEqual(v.Y, 6) {
		t.Fatalf("got (%v, %v), want (4, 6)", v.X, v.Y)
	}
}

func TestVector2DotCross(t *testing.T) {
	a := NewVector2(1, 0)
	b := NewVector2(0, 1)

	if got := a.Dot(b); !almostEqual(got, 0) {
		t.Errorf("Dot = %v, want 0", got)
	}
	if got := a.Cross(b); !almostEqual(got, 1) {
		t.Errorf("Cross = %v, want 1", got)
	}
}

func TestVector2Perp(t *testing.T) {
	v := NewVector2(1, 0)
	p := v.Perp()
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 1) {
		t.Fatalf("Perp = (%v, %v), want (0, 1)", p.X, p.Y)
	}
}

func TestVector2NormalizeZero(t *testing.T) {
	v := NewVec2()
	v.Normalize()
	if !v.IsZero() {
		t.Fatalf("normalizing the zero vector should leave it zero, got (%v, %v)", v.X, v.Y)
	}
}

func TestVector2Normalize(t *testing.T) {
	v := NewVector2(3, 4)
	v.Normalize()
	if !almostEqual(v.Length(), 1) {
		t.Fatalf("Length after Normalize = %v, want 1", v.Length())
	}
}

func TestCrossScalar(t *testing.T) {
	r := NewVector2(1, 0)
	v := CrossScalar(2, r)
	if !almostEqual(v.X, 0) || !almostEqual(v.Y, 2) {
		t.Fatalf("CrossScalar(2, (1,0)) = (%v, %v), want (0, 2)", v.X, v.Y)
	}
}

func TestClampAngleWraps(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{Pi, Pi},
		{Pi + 0.1, Pi + 0.1 - 2*Pi},
		{-Pi - 0.1, -Pi - 0.1 + 2*Pi},
	}
	for _, c := range cases {
		if got := ClampAngle(c.in); !almostEqual(got, c.want) {
			t.Errorf("ClampAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
