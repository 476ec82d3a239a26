package spatialmath

import (
	"fmt"
	"math"
)

// Twist2d is a displacement along a constant-curvature arc, expressed in the starting frame:
// DX forward, DY to the left, DTheta counter-clockwise radians.
type Twist2d struct {
	DX     float64
	DY     float64
	DTheta float64
}

// Scaled returns the twist scaled by s.
func (t Twist2d) Scaled(s float64) Twist2d {
	return Twist2d{DX: t.DX * s, DY: t.DY * s, DTheta: t.DTheta * s}
}

// Norm returns the linear length of the twist. A pure rotation has norm zero.
func (t Twist2d) Norm() float64 {
	if t.DY == 0 {
		return math.Abs(t.DX)
	}
	return math.Hypot(t.DX, t.DY)
}

// Curvature returns dθ per unit length, or zero if the twist has no linear component.
func (t Twist2d) Curvature() float64 {
	n := t.Norm()
	if math.Abs(t.DTheta) < smallAngle || n < smallAngle {
		return 0
	}
	return t.DTheta / n
}

// Exceeds reports whether the absolute value of any component is larger than the given bound.
func (t Twist2d) Exceeds(maxDx, maxDy, maxDTheta float64) bool {
	return math.Abs(t.DX) > maxDx || math.Abs(t.DY) > maxDy || math.Abs(t.DTheta) > maxDTheta
}

func (t Twist2d) String() string {
	return fmt.Sprintf("twist(dx=%.4f, dy=%.4f, dθ=%.4f)", t.DX, t.DY, t.DTheta)
}
