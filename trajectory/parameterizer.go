package trajectory

import (
	"math"

	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/spline"
)

// initialIntervals is the number of equal parameter intervals each spline is split into before
// adaptive subdivision starts.
const initialIntervals = 4

// ParameterizedPoint is a pose along the spline chain plus the chassis rotation, the signed
// curvature and the index of the spline it came from.
type ParameterizedPoint struct {
	Pose      spatialmath.Pose2d
	Rotation  spatialmath.Rotation2d
	Curvature float64
	Segment   int
}

// ParameterizeOptions bound the pose change between consecutive parameterized points.
type ParameterizeOptions struct {
	MaxDx     float64
	MaxDy     float64
	MaxDTheta float64
	MaxDepth  int
}

// Parameterize converts the spline chain into a dense ordered pose sequence. rotations holds the
// chassis rotation at each waypoint, so it has len(splines)+1 entries; the chassis rotation of a
// point is interpolated by the spline parameter between the rotations at its spline's ends.
func Parameterize(splines []*spline.Pair, rotations []spatialmath.Rotation2d, opts ParameterizeOptions) []ParameterizedPoint {
	if len(splines) == 0 {
		return nil
	}
	var points []ParameterizedPoint
	add := func(seg int, s *spline.Pair, t float64) {
		rot := rotations[seg].Interpolate(rotations[seg+1], t)
		points = append(points, ParameterizedPoint{Pose: s.Pose(t), Rotation: rot, Segment: seg})
	}
	add(0, splines[0], 0)
	for seg, s := range splines {
		for k := 0; k < initialIntervals; k++ {
			t0 := float64(k) / initialIntervals
			t1 := float64(k+1) / initialIntervals
			subdivide(s, t0, t1, s.Pose(t0), s.Pose(t1), 0, opts, func(t float64) { add(seg, s, t) })
		}
	}
	fillCurvature(points)
	return points
}

// subdivide emits the end parameter of every accepted interval in (t0, t1], in order. It recurses
// while the twist between the interval endpoints exceeds any bound, up to opts.MaxDepth levels.
func subdivide(
	s *spline.Pair,
	t0, t1 float64,
	p0, p1 spatialmath.Pose2d,
	depth int,
	opts ParameterizeOptions,
	emit func(t float64),
) {
	twist := p1.RelativeTo(p0).Log()
	if depth >= opts.MaxDepth || !twist.Exceeds(opts.MaxDx, opts.MaxDy, opts.MaxDTheta) {
		emit(t1)
		return
	}
	mid := (t0 + t1) / 2
	pMid := s.Pose(mid)
	subdivide(s, t0, mid, p0, pMid, depth+1, opts, emit)
	subdivide(s, mid, t1, pMid, p1, depth+1, opts, emit)
}

// fillCurvature sets the signed curvature of every interior point from the circle through it and
// its two neighbours. The first and last points keep zero.
func fillCurvature(points []ParameterizedPoint) {
	for i := 1; i+1 < len(points); i++ {
		points[i].Curvature = threePointCurvature(
			points[i-1].Pose.Translation,
			points[i].Pose.Translation,
			points[i+1].Pose.Translation,
		)
	}
}

// threePointCurvature is the reciprocal circumradius of the triangle abc, positive when a→b→c
// turns left.
func threePointCurvature(a, b, c spatialmath.Translation2d) float64 {
	ab := a.DistanceTo(b)
	bc := b.DistanceTo(c)
	ca := c.DistanceTo(a)
	denom := ab * bc * ca
	if denom < 1e-18 {
		return 0
	}
	u := b.Minus(a)
	v := c.Minus(b)
	cross := u.X*v.Y - u.Y*v.X
	k := 2 * cross / denom
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0
	}
	return k
}
