package utils

import (
	"math"

	"github.com/pkg/errors"
)

// Epsilon is the tolerance used when comparing floating point quantities produced by the engine.
const Epsilon = 1e-9

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiffDeg returns the signed shortest rotation, in degrees, that takes a1 onto a2.
// The result lies in (-180, 180].
func AngleDiffDeg(a1, a2 float64) float64 {
	diff := NormalizeDeg(a2 - a1)
	if diff > 180 {
		diff -= 360
	}
	return diff
}

// NormalizeDeg wraps an angle into [0, 360).
func NormalizeDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// Clamp bounds value to [low, high].
func Clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}

// ErrNoRealRoots is returned by SolveQuadratic when the discriminant is negative.
var ErrNoRealRoots = errors.New("quadratic has no real roots")

// SolveQuadratic returns the real roots of a·x² + b·x + c = 0 in ascending order. A degenerate
// (linear) equation returns its single root twice.
func SolveQuadratic(a, b, c float64) (float64, float64, error) {
	if math.Abs(a) < Epsilon {
		if math.Abs(b) < Epsilon {
			return 0, 0, ErrNoRealRoots
		}
		root := -c / b
		return root, root, nil
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		// Allow tangent roots that only miss because of rounding.
		if disc > -Epsilon*math.Max(1, b*b) {
			disc = 0
		} else {
			return 0, 0, ErrNoRealRoots
		}
	}
	sq := math.Sqrt(disc)
	// Avoid the catastrophic cancellation of the textbook formula.
	var q float64
	if b >= 0 {
		q = -0.5 * (b + sq)
	} else {
		q = -0.5 * (b - sq)
	}
	r1 := q / a
	r2 := r1
	if q != 0 {
		r2 = c / q
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return r1, r2, nil
}

// SmallestNonNegativeRoot returns the smallest root of a·x² + b·x + c = 0 that is not negative,
// allowing a slightly negative root to round up to zero.
func SmallestNonNegativeRoot(a, b, c float64) (float64, error) {
	r1, r2, err := SolveQuadratic(a, b, c)
	if err != nil {
		return 0, err
	}
	const slack = 1e-9
	switch {
	case r1 >= -slack:
		return math.Max(r1, 0), nil
	case r2 >= -slack:
		return math.Max(r2, 0), nil
	default:
		return 0, errors.Errorf("quadratic roots %g and %g are both negative", r1, r2)
	}
}
