package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Translation2d is a planar displacement.
type Translation2d struct {
	r2.Point
}

// NewTranslation2d returns the translation (x, y).
func NewTranslation2d(x, y float64) Translation2d {
	return Translation2d{r2.Point{X: x, Y: y}}
}

// Plus adds two translations.
func (t Translation2d) Plus(o Translation2d) Translation2d {
	return Translation2d{t.Add(o.Point)}
}

// Minus subtracts o from t.
func (t Translation2d) Minus(o Translation2d) Translation2d {
	return Translation2d{t.Sub(o.Point)}
}

// Times scales the translation.
func (t Translation2d) Times(s float64) Translation2d {
	return Translation2d{t.Mul(s)}
}

// Negate returns the opposite translation.
func (t Translation2d) Negate() Translation2d {
	return t.Times(-1)
}

// RotateBy rotates the translation about the origin.
func (t Translation2d) RotateBy(r Rotation2d) Translation2d {
	return NewTranslation2d(t.X*r.cos-t.Y*r.sin, t.X*r.sin+t.Y*r.cos)
}

// DistanceTo returns the Euclidean distance between t and o.
func (t Translation2d) DistanceTo(o Translation2d) float64 {
	return t.Sub(o.Point).Norm()
}

// Direction returns the rotation pointing along the translation.
func (t Translation2d) Direction() Rotation2d {
	return NewRotation2dFromVector(t.X, t.Y)
}

// Interpolate moves frac of the way from t to o.
func (t Translation2d) Interpolate(o Translation2d, frac float64) Translation2d {
	if frac <= 0 {
		return t
	}
	if frac >= 1 {
		return o
	}
	return t.Plus(o.Minus(t).Times(frac))
}

func (t Translation2d) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", t.X, t.Y)
}
