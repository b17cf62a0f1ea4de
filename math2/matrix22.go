package math2

// Matrix22 is a 2x2 matrix stored by column, used for small effective-mass
// blocks (e.g. the point-to-point part of a revolute joint, or the two
// simultaneous normal impulses of a two-point contact manifold).
type Matrix22 struct {
	A11, A12 float64
	A21, A22 float64
}

// NewMatrix22FromColumns builds a matrix from its columns col1, col2.
func NewMatrix22FromColumns(col1, col2 *Vector2) *Matrix22 {

	return &Matrix22{A11: col1.X, A21: col1.Y, A12: col2.X, A22: col2.Y}
}

// Determinant returns the determinant of this matrix.
func (m *Matrix22) Determinant() float64 {

	return m.A11*m.A22 - m.A12*m.A21
}

// Inverse returns the inverse of this matrix. If the determinant is exactly
// zero, the zero matrix is returned.
func (m *Matrix22) Inverse() *Matrix22 {

	det := m.Determinant()
	if det != 0 {
		det = 1 / det
	}
	return &Matrix22{
		A11: det * m.A22,
		A12: -det * m.A12,
		A21: -det * m.A21,
		A22: det * m.A11,
	}
}

// Solve solves Ax = b for x, using this matrix as A.
func (m *Matrix22) Solve(b *Vector2) *Vector2 {

	a11, a12, a21, a22 := m.A11, m.A12, m.A21, m.A22
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1 / det
	}
	return &Vector2{
		X: det * (a22*b.X - a12*b.Y),
		Y: det * (a11*b.Y - a21*b.X),
	}
}

// MulVector returns m*v.
func (m *Matrix22) MulVector(v *Vector2) *Vector2 {

	return &Vector2{
		X: m.A11*v.X + m.A12*v.Y,
		Y: m.A21*v.X + m.A22*v.Y,
	}
}

// Mat33 is a 3x3 matrix used for combined point-to-point + angular
// effective-mass solves (the revolute joint at a limit, the rigid weld).
type Mat33 [9]float64 // column-major: [0..2]=col0 [3..5]=col1 [6..8]=col2

// SolveMat33 solves Ax = b for the 3x3 system stored column-major in a.
func SolveMat33(a *Mat33, bx, by, bz float64) (x, y, z float64) {

	ex1 := [3]float64{a[0], a[1], a[2]}
	ex2 := [3]float64{a[3], a[4], a[5]}
	ex3 := [3]float64{a[6], a[7], a[8]}

	det := ex1[0]*(ex2[1]*ex3[2]-ex3[1]*ex2[2]) -
		ex2[0]*(ex1[1]*ex3[2]-ex3[1]*ex1[2]) +
		ex3[0]*(ex1[1]*ex2[2]-ex2[1]*ex1[2])
	if det != 0 {
		det = 1 / det
	}

	x = det * (bx*(ex2[1]*ex3[2]-ex3[1]*ex2[2]) -
		ex2[0]*(by*ex3[2]-ex3[1]*bz) +
		ex3[0]*(by*ex2[2]-ex2[1]*bz))

	y = det * (ex1[0]*(by*ex3[2]-ex3[1]*bz) -
		bx*(ex1[1]*ex3[2]-ex3[1]*ex1[2]) +
		ex3[0]*(ex1[1]*bz-by*ex1[2]))

	z = det * (ex1[0]*(ex2[1]*bz-by*ex2[2]) -
		ex2[0]*(ex1[1]*bz-by*ex1[2]) +
		bx*(ex1[1]*ex2[2]-ex2[1]*ex1[2]))

	return x, y, z
}
