package trajectory

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/utils"
)

// Point is one timed state. Acceleration is the constant acceleration from this point to the next
// one; the last point of a trajectory repeats the acceleration of the segment before it.
type Point struct {
	Pose         spatialmath.Pose2d
	Time         float64
	Position     float64
	Velocity     float64
	Acceleration float64
	Curvature    float64
	// Rotation is the chassis rotation. For tank robots it equals the heading.
	Rotation spatialmath.Rotation2d
	// RotationVelocity is in degrees/second.
	RotationVelocity float64
	Segment          int
}

// FieldNames lists the names accepted by Point.Field, in export order.
var FieldNames = []string{
	"time", "x", "y", "heading", "rotation", "rotvel", "position", "velocity", "acceleration", "curvature",
}

// Field returns the named scalar. Angles are in degrees.
func (p Point) Field(name string) (float64, error) {
	switch name {
	case "time":
		return p.Time, nil
	case "x":
		return p.Pose.X(), nil
	case "y":
		return p.Pose.Y(), nil
	case "heading":
		return p.Pose.Rotation.Degrees(), nil
	case "rotation":
		return p.Rotation.Degrees(), nil
	case "rotvel":
		return p.RotationVelocity, nil
	case "position":
		return p.Position, nil
	case "velocity":
		return p.Velocity, nil
	case "acceleration":
		return p.Acceleration, nil
	case "curvature":
		return p.Curvature, nil
	default:
		return 0, errors.Errorf("unknown trajectory field %q", name)
	}
}

// Trajectory is an ordered sequence of timed points with strictly increasing time.
type Trajectory struct {
	Name   string
	Points []Point
}

// Len returns the number of points.
func (t *Trajectory) Len() int {
	return len(t.Points)
}

// TotalTime returns the time of the last point.
func (t *Trajectory) TotalTime() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].Time
}

// Length returns the cumulative distance of the last point.
func (t *Trajectory) Length() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].Position
}

// Column returns the named field of every point.
func (t *Trajectory) Column(name string) ([]float64, error) {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		v, err := p.Field(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// StateAt returns the interpolated state at time tm, assuming constant acceleration between
// consecutive points. Times outside the trajectory clamp to its ends.
func (t *Trajectory) StateAt(tm float64) Point {
	pts := t.Points
	if len(pts) == 0 {
		return Point{}
	}
	if tm <= pts[0].Time {
		return pts[0]
	}
	last := pts[len(pts)-1]
	if tm >= last.Time {
		return last
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time > tm }) - 1
	return interpolateState(pts[i], pts[i+1], tm-pts[i].Time)
}

func interpolateState(p, q Point, tau float64) Point {
	dt := q.Time - p.Time
	a := p.Acceleration
	v := math.Max(0, p.Velocity+a*tau)
	s := utils.Clamp(p.Position+p.Velocity*tau+0.5*a*tau*tau, p.Position, q.Position)

	timeFrac := 0.0
	if dt > 0 {
		timeFrac = utils.Clamp(tau/dt, 0, 1)
	}
	frac := timeFrac
	if ds := q.Position - p.Position; ds > utils.Epsilon {
		frac = (s - p.Position) / ds
	}
	seg := p.Segment
	if frac >= 1 {
		seg = q.Segment
	}
	return Point{
		Pose:             p.Pose.Interpolate(q.Pose, frac),
		Time:             p.Time + tau,
		Position:         s,
		Velocity:         v,
		Acceleration:     a,
		Curvature:        utils.Lerp(p.Curvature, q.Curvature, frac),
		Rotation:         p.Rotation.Interpolate(q.Rotation, frac),
		RotationVelocity: utils.Lerp(p.RotationVelocity, q.RotationVelocity, timeFrac),
		Segment:          seg,
	}
}

// TimeForDistance returns the time at which the trajectory reaches cumulative distance d,
// solving the constant-acceleration motion of the containing segment.
func (t *Trajectory) TimeForDistance(d float64) float64 {
	pts := t.Points
	if len(pts) == 0 {
		return 0
	}
	if d <= pts[0].Position {
		return pts[0].Time
	}
	last := pts[len(pts)-1]
	if d >= last.Position {
		return last.Time
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Position > d }) - 1
	p, q := pts[i], pts[i+1]
	delta := d - p.Position
	maxTau := q.Time - p.Time
	if q.Position-p.Position < utils.Epsilon {
		return p.Time
	}
	tau, err := utils.SmallestNonNegativeRoot(0.5*p.Acceleration, p.Velocity, -delta)
	if err != nil {
		// Fall back to linear interpolation in distance.
		tau = maxTau * delta / (q.Position - p.Position)
	}
	return p.Time + utils.Clamp(tau, 0, maxTau)
}

// Resample returns a copy of the trajectory sampled every dt seconds, starting at time zero,
// with one final sample exactly at the total time.
func (t *Trajectory) Resample(name string, dt float64) (*Trajectory, error) {
	if !(dt > 0) {
		return nil, trajerr.NewValidationError("generator.time_step", "must be positive, got %g", dt)
	}
	if len(t.Points) < 2 {
		return nil, trajerr.NewDegeneratePathError("trajectory %q has %d points", t.Name, len(t.Points))
	}
	total := t.TotalTime()
	start := t.Points[0].Time
	n := int(math.Floor((total - start) / dt))
	out := make([]Point, 0, n+2)

	seg := 0
	for k := 0; k <= n; k++ {
		tm := start + float64(k)*dt
		if k > 0 && total-tm < utils.Epsilon {
			break
		}
		for seg+2 < len(t.Points) && t.Points[seg+1].Time <= tm {
			seg++
		}
		pt := interpolateState(t.Points[seg], t.Points[seg+1], tm-t.Points[seg].Time)
		pt.Time = tm
		out = append(out, pt)
	}
	out = append(out, t.Points[len(t.Points)-1])
	return &Trajectory{Name: name, Points: out}, nil
}
