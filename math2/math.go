package math2

import "math"

const Pi = math.Pi

// Epsilon is the smallest difference treated as non-zero by the solver's
// numerical guards (normalization, determinant checks, etc).
const Epsilon = 1.1920929e-7

// DegToRad converts a number from degrees to radians.
func DegToRad(degrees float64) float64 {

	return degrees * Pi / 180
}

// RadToDeg converts a number from radians to degrees.
func RadToDeg(radians float64) float64 {

	return radians * 180 / Pi
}

// Clamp clamps x to the closed interval [a, b].
func Clamp(x, a, b float64) float64 {

	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

// Sign returns -1, 0 or 1 depending on the sign of x.
func Sign(x float64) float64 {

	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// ClampAngle wraps the given angle (radians) to (-Pi, Pi].
func ClampAngle(angle float64) float64 {

	twoPi := 2 * Pi
	angle = math.Mod(angle, twoPi)
	if angle <= -Pi {
		angle += twoPi
	} else if angle > Pi {
		angle -= twoPi
	}
	return angle
}
