// Package spatialmath defines the planar rotation, translation, pose and twist types the
// trajectory engine works in, along with the exponential and log maps between poses and twists.
package spatialmath

import (
	"fmt"
	"math"

	"go.viam.com/trajgen/utils"
)

// Rotation2d is a planar rotation stored as its cosine and sine so that composition never has to
// wrap angles.
type Rotation2d struct {
	cos float64
	sin float64
}

// NewRotation2d returns the rotation by theta radians.
func NewRotation2d(theta float64) Rotation2d {
	return Rotation2d{cos: math.Cos(theta), sin: math.Sin(theta)}
}

// NewRotation2dDegrees returns the rotation by deg degrees.
func NewRotation2dDegrees(deg float64) Rotation2d {
	return NewRotation2d(utils.DegToRad(deg))
}

// NewRotation2dFromVector returns the rotation pointing along (x, y). A zero vector yields the
// identity rotation.
func NewRotation2dFromVector(x, y float64) Rotation2d {
	n := math.Hypot(x, y)
	if n < 1e-12 {
		return Rotation2d{cos: 1}
	}
	return Rotation2d{cos: x / n, sin: y / n}
}

// Cos returns the cosine of the rotation.
func (r Rotation2d) Cos() float64 { return r.cos }

// Sin returns the sine of the rotation.
func (r Rotation2d) Sin() float64 { return r.sin }

// Radians returns the angle in (-π, π].
func (r Rotation2d) Radians() float64 {
	return math.Atan2(r.sin, r.cos)
}

// Degrees returns the angle in (-180, 180].
func (r Rotation2d) Degrees() float64 {
	return utils.RadToDeg(r.Radians())
}

// RotateBy composes two rotations.
func (r Rotation2d) RotateBy(other Rotation2d) Rotation2d {
	return Rotation2d{
		cos: r.cos*other.cos - r.sin*other.sin,
		sin: r.cos*other.sin + r.sin*other.cos,
	}
}

// Inverse returns the opposite rotation.
func (r Rotation2d) Inverse() Rotation2d {
	return Rotation2d{cos: r.cos, sin: -r.sin}
}

// DistanceTo returns the signed shortest angle, in radians, that rotates r onto other.
func (r Rotation2d) DistanceTo(other Rotation2d) float64 {
	return r.Inverse().RotateBy(other).Radians()
}

// Interpolate moves frac of the way from r to other along the shortest arc.
func (r Rotation2d) Interpolate(other Rotation2d, frac float64) Rotation2d {
	if frac <= 0 {
		return r
	}
	if frac >= 1 {
		return other
	}
	return r.RotateBy(NewRotation2d(r.DistanceTo(other) * frac))
}

func (r Rotation2d) String() string {
	return fmt.Sprintf("%.3f°", r.Degrees())
}
