package trajectory

import (
	"math"

	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/utils"
)

// boundaryVelocityTolerance is how far the first and last samples may miss the requested start
// and end velocities.
const boundaryVelocityTolerance = 1e-6

// ProfileParams bound the velocity profile of one path, in path units.
type ProfileParams struct {
	StartVelocity      float64
	EndVelocity        float64
	MaxVelocity        float64
	MaxAccel           float64
	MaxPatchIterations int
}

// constrainedState is a distance sample together with its working velocity and the acceleration
// range the solver may use when leaving it.
type constrainedState struct {
	sample   DistanceSample
	position float64
	velocity float64
	minAccel float64
	maxAccel float64
}

func (s *constrainedState) tighten(iv AccelInterval) {
	s.minAccel = math.Max(s.minAccel, iv.Min)
	s.maxAccel = math.Min(s.maxAccel, iv.Max)
}

// SolveVelocityProfile assigns the fastest velocity to every sample of view that respects params
// and constraints, then integrates time. The result is indexed by the samples of view, and each
// point's Acceleration is the constant acceleration from it to the next point.
func SolveVelocityProfile(
	view *DistanceView,
	constraints []Constraint,
	env Environment,
	params ProfileParams,
) (*Trajectory, error) {
	if view == nil || view.Len() < 2 {
		return nil, trajerr.NewDegeneratePathError("distance view has too few samples")
	}
	maxIter := params.MaxPatchIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxPatchIterations
	}

	states := make([]constrainedState, view.Len())
	for i := range states {
		s := view.At(i)
		states[i] = constrainedState{sample: s, position: s.Position}
	}
	if err := forwardPass(states, constraints, env, params, maxIter); err != nil {
		return nil, err
	}
	if err := backwardPass(states, constraints, env, params, maxIter); err != nil {
		return nil, err
	}
	if first := states[0].velocity; math.Abs(first-params.StartVelocity) > boundaryVelocityTolerance {
		return nil, trajerr.NewInfeasibleError("start velocity %g is not reachable, the profile starts at %g",
			params.StartVelocity, first)
	}
	if last := states[len(states)-1].velocity; math.Abs(last-params.EndVelocity) > boundaryVelocityTolerance {
		return nil, trajerr.NewInfeasibleError("end velocity %g is not reachable, the profile ends at %g",
			params.EndVelocity, last)
	}
	return integrate(states)
}

// windowCaps returns, per sample, the tightest distance-velocity cap whose open window overlaps
// the gap on either side of the sample. Capping both ends of every such gap keeps the velocity
// interpolated anywhere inside a window under its cap.
func windowCaps(states []constrainedState, constraints []Constraint) []float64 {
	caps := make([]float64, len(states))
	for i := range caps {
		caps[i] = math.Inf(1)
	}
	for _, c := range constraints {
		if c.Kind != ConstraintDistanceVelocity {
			continue
		}
		for i := range states {
			lo := states[max(i-1, 0)].position
			hi := states[min(i+1, len(states)-1)].position
			if math.Max(lo, c.After) < math.Min(hi, c.Before) {
				caps[i] = math.Min(caps[i], c.Velocity)
			}
		}
	}
	return caps
}

func limitsAt(cs *constrainedState, constraints []Constraint, env Environment, maxAccel float64) {
	cs.minAccel = -maxAccel
	cs.maxAccel = maxAccel
	state := ConstraintState{Position: cs.position, Curvature: cs.sample.Curvature}
	for _, c := range constraints {
		cs.tighten(c.MinMaxAccel(state, cs.velocity, env))
	}
}

// forwardPass limits every sample to the velocity reachable from its predecessor under the
// predecessor's maximum acceleration. When a sample's own acceleration ceiling is tighter than
// the acceleration actually used to reach it, the predecessor is patched and the sample retried.
func forwardPass(states []constrainedState, constraints []Constraint, env Environment, params ProfileParams, maxIter int) error {
	caps := windowCaps(states, constraints)
	pred := &constrainedState{
		position: 0,
		velocity: params.StartVelocity,
		minAccel: -params.MaxAccel,
		maxAccel: params.MaxAccel,
	}
	for i := range states {
		cs := &states[i]
		ds := cs.position - pred.position
		state := ConstraintState{Position: cs.position, Curvature: cs.sample.Curvature}
		converged := false
		for iter := 0; iter < maxIter; iter++ {
			reach := pred.velocity*pred.velocity + 2*pred.maxAccel*ds
			if reach < -utils.Epsilon {
				return trajerr.NewInfeasibleError("sample %d (position %g) is unreachable from its predecessor", i, cs.position)
			}
			v := math.Min(params.MaxVelocity, math.Sqrt(math.Max(reach, 0)))
			v = math.Min(v, caps[i])
			for _, c := range constraints {
				v = math.Min(v, c.MaxVelocity(state, env))
			}
			if math.IsNaN(v) || v < 0 {
				return trajerr.NewInfeasibleError("no valid velocity at sample %d (position %g)", i, cs.position)
			}
			cs.velocity = v
			limitsAt(cs, constraints, env, params.MaxAccel)
			if cs.minAccel > cs.maxAccel {
				return trajerr.NewInfeasibleError("empty acceleration range at sample %d (position %g)", i, cs.position)
			}
			if ds < utils.Epsilon {
				converged = true
				break
			}
			actual := (v*v - pred.velocity*pred.velocity) / (2 * ds)
			if cs.maxAccel < actual-utils.Epsilon {
				pred.maxAccel = cs.maxAccel
				continue
			}
			if actual > pred.minAccel+utils.Epsilon {
				pred.maxAccel = actual
			}
			converged = true
			break
		}
		if !converged {
			return trajerr.NewInfeasibleError("forward pass did not converge at sample %d after %d patches", i, maxIter)
		}
		pred = cs
	}
	return nil
}

// backwardPass walks from the end, lowering every velocity that cannot be braked down to its
// successor's velocity under the successor's minimum acceleration.
func backwardPass(states []constrainedState, constraints []Constraint, env Environment, params ProfileParams, maxIter int) error {
	last := states[len(states)-1]
	succ := &constrainedState{
		position: last.position,
		velocity: params.EndVelocity,
		minAccel: -params.MaxAccel,
		maxAccel: params.MaxAccel,
	}
	for i := len(states) - 1; i >= 0; i-- {
		cs := &states[i]
		ds := cs.position - succ.position
		state := ConstraintState{Position: cs.position, Curvature: cs.sample.Curvature}
		converged := false
		for iter := 0; iter < maxIter; iter++ {
			reach := succ.velocity*succ.velocity + 2*succ.minAccel*ds
			if reach < -utils.Epsilon {
				return trajerr.NewInfeasibleError("sample %d (position %g) cannot brake to its successor", i, cs.position)
			}
			v := math.Sqrt(math.Max(reach, 0))
			if math.IsNaN(v) {
				return trajerr.NewInfeasibleError("no valid velocity at sample %d (position %g)", i, cs.position)
			}
			if v >= cs.velocity {
				converged = true
				break
			}
			cs.velocity = v
			for _, c := range constraints {
				cs.tighten(c.MinMaxAccel(state, v, env))
			}
			if cs.minAccel > cs.maxAccel {
				return trajerr.NewInfeasibleError("empty acceleration range at sample %d (position %g)", i, cs.position)
			}
			if ds > -utils.Epsilon {
				converged = true
				break
			}
			actual := (v*v - succ.velocity*succ.velocity) / (2 * ds)
			if cs.minAccel > actual+utils.Epsilon {
				succ.minAccel = cs.minAccel
				continue
			}
			succ.minAccel = actual
			converged = true
			break
		}
		if !converged {
			return trajerr.NewInfeasibleError("backward pass did not converge at sample %d after %d patches", i, maxIter)
		}
		succ = cs
	}
	return nil
}

// integrate turns the solved velocities into timed points.
func integrate(states []constrainedState) (*Trajectory, error) {
	out := make([]Point, len(states))
	tm := 0.0
	for i, cs := range states {
		accel := 0.0
		if i > 0 {
			prev := states[i-1]
			ds := cs.position - prev.position
			if ds < utils.Epsilon {
				return nil, trajerr.NewNumericError(i, "zero-length step between samples %d and %d", i-1, i)
			}
			accel = (cs.velocity*cs.velocity - prev.velocity*prev.velocity) / (2 * ds)
			var dt float64
			switch {
			case math.Abs(accel) > utils.Epsilon:
				dt = (cs.velocity - prev.velocity) / accel
			case math.Abs(prev.velocity) > utils.Epsilon:
				dt = ds / prev.velocity
			default:
				return nil, trajerr.NewNumericError(i, "robot is stationary over a non-zero step")
			}
			if !(dt > 0) || math.IsInf(dt, 0) {
				return nil, trajerr.NewNumericError(i, "non-positive time step %g", dt)
			}
			tm += dt
			out[i-1].Acceleration = accel
		}
		out[i] = Point{
			Pose:         cs.sample.Pose,
			Time:         tm,
			Position:     cs.position,
			Velocity:     cs.velocity,
			Acceleration: accel,
			Curvature:    cs.sample.Curvature,
			Rotation:     cs.sample.Rotation,
			Segment:      cs.sample.Segment,
		}
	}
	return &Trajectory{Points: out}, nil
}
