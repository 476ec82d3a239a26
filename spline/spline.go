// Package spline fits the quintic Hermite curves that join consecutive waypoints.
package spline

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajerr"
)

// TangentScale multiplies the waypoint separation to get the magnitude of the end tangents.
const TangentScale = 1.2

// minSeparation is the distance under which two waypoints are treated as coincident.
const minSeparation = 1e-6

// hermiteBasis maps [p0, p0', p0'', p1, p1', p1''] onto the coefficients [a5, a4, a3, a2, a1, a0]
// of a quintic polynomial.
var hermiteBasis = mat.NewDense(6, 6, []float64{
	-6, -3, -0.5, 6, -3, 0.5,
	15, 8, 1.5, -15, 7, -1,
	-10, -6, -1.5, 10, -4, 0.5,
	0, 0, 0.5, 0, 0, 0,
	0, 1, 0, 0, 0, 0,
	1, 0, 0, 0, 0, 0,
})

// quintic is a0 + a1 t + ... + a5 t^5, stored highest order first.
type quintic [6]float64

func fitQuintic(p0, d0, dd0, p1, d1, dd1 float64) quintic {
	var coeffs mat.VecDense
	coeffs.MulVec(hermiteBasis, mat.NewVecDense(6, []float64{p0, d0, dd0, p1, d1, dd1}))
	var q quintic
	for i := range q {
		q[i] = coeffs.AtVec(i)
	}
	return q
}

func (q quintic) value(t float64) float64 {
	return ((((q[0]*t+q[1])*t+q[2])*t+q[3])*t+q[4])*t + q[5]
}

func (q quintic) first(t float64) float64 {
	return (((5*q[0]*t+4*q[1])*t+3*q[2])*t+2*q[3])*t + q[4]
}

func (q quintic) second(t float64) float64 {
	return ((20*q[0]*t+12*q[1])*t+6*q[2])*t + 2*q[3]
}

// Pair is the X/Y quintic pair joining two waypoints. It is a pure function of the parameter
// t in [0, 1].
type Pair struct {
	x, y quintic
}

// NewPair fits a spline from start to end. The end tangents point along each pose's heading with
// magnitude TangentScale times the distance between the positions, and the second derivatives are
// zero at both ends.
func NewPair(start, end spatialmath.Pose2d) (*Pair, error) {
	dist := start.Translation.DistanceTo(end.Translation)
	if dist < minSeparation {
		return nil, trajerr.NewDegeneratePathError(
			"waypoints %v and %v coincide", start.Translation, end.Translation)
	}
	scale := TangentScale * dist
	return &Pair{
		x: fitQuintic(
			start.X(), start.Rotation.Cos()*scale, 0,
			end.X(), end.Rotation.Cos()*scale, 0,
		),
		y: fitQuintic(
			start.Y(), start.Rotation.Sin()*scale, 0,
			end.Y(), end.Rotation.Sin()*scale, 0,
		),
	}, nil
}

// Position returns the point at t.
func (p *Pair) Position(t float64) spatialmath.Translation2d {
	return spatialmath.NewTranslation2d(p.x.value(t), p.y.value(t))
}

// Velocity returns the first derivative with respect to t.
func (p *Pair) Velocity(t float64) (float64, float64) {
	return p.x.first(t), p.y.first(t)
}

// Heading returns the direction of travel at t.
func (p *Pair) Heading(t float64) spatialmath.Rotation2d {
	dx, dy := p.Velocity(t)
	return spatialmath.NewRotation2dFromVector(dx, dy)
}

// Curvature returns the signed curvature at t, positive when turning left.
func (p *Pair) Curvature(t float64) float64 {
	dx, dy := p.Velocity(t)
	ddx, ddy := p.x.second(t), p.y.second(t)
	speed2 := dx*dx + dy*dy
	if speed2 < 1e-18 {
		return 0
	}
	return (dx*ddy - ddx*dy) / (speed2 * math.Sqrt(speed2))
}

// Pose returns the position and heading at t.
func (p *Pair) Pose(t float64) spatialmath.Pose2d {
	return spatialmath.Pose2d{Translation: p.Position(t), Rotation: p.Heading(t)}
}
