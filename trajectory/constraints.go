package trajectory

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/trajgen/units"
)

// minCurvature is the curvature magnitude under which a path is treated as straight.
const minCurvature = 1e-4

// ConstraintKind names a constraint variant.
type ConstraintKind int

const (
	// ConstraintCentripetal caps velocity so the centripetal force stays under a limit.
	ConstraintCentripetal ConstraintKind = iota
	// ConstraintDistanceVelocity caps velocity inside an open arc-length window.
	ConstraintDistanceVelocity
	// ConstraintSegmentBudget caps both velocity and acceleration inside an arc-length window.
	ConstraintSegmentBudget
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintCentripetal:
		return "centripetal"
	case ConstraintDistanceVelocity:
		return "distancevelocity"
	case ConstraintSegmentBudget:
		return "segmentbudget"
	default:
		return fmt.Sprintf("constraint(%d)", int(k))
	}
}

// ParseConstraintKind returns the kind named s, matching the names used in path files.
func ParseConstraintKind(s string) (ConstraintKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "centripetal":
		return ConstraintCentripetal, nil
	case "distancevelocity", "distance_velocity":
		return ConstraintDistanceVelocity, nil
	case "segmentbudget", "segment_budget":
		return ConstraintSegmentBudget, nil
	default:
		return 0, errors.Errorf("unknown constraint type %q", s)
	}
}

// Constraint is a closed set of velocity and acceleration limits evaluated at a point of the
// path. Only the fields used by Kind are meaningful.
type Constraint struct {
	Kind ConstraintKind
	// MaxCentripetalForce is in newtons.
	MaxCentripetalForce float64
	// After and Before bound the window, in path units of cumulative distance.
	After  float64
	Before float64
	// Velocity and Accel are in path units per second (squared).
	Velocity float64
	Accel    float64
}

// NewCentripetalConstraint limits the centripetal force to maxForce newtons.
func NewCentripetalConstraint(maxForce float64) Constraint {
	return Constraint{Kind: ConstraintCentripetal, MaxCentripetalForce: maxForce}
}

// NewDistanceVelocityConstraint caps the velocity strictly between after and before.
func NewDistanceVelocityConstraint(after, before, velocity float64) Constraint {
	return Constraint{Kind: ConstraintDistanceVelocity, After: after, Before: before, Velocity: velocity}
}

// NewSegmentBudgetConstraint caps velocity at velocity and acceleration at ±accel for
// after <= position <= before.
func NewSegmentBudgetConstraint(after, before, velocity, accel float64) Constraint {
	return Constraint{Kind: ConstraintSegmentBudget, After: after, Before: before, Velocity: velocity, Accel: accel}
}

// ConstraintState is what a constraint sees of a path point.
type ConstraintState struct {
	Position  float64
	Curvature float64
}

// Environment carries the units and robot a constraint is evaluated against.
type Environment struct {
	PathUnits string
	Robot     RobotParams
}

// AccelInterval is a closed acceleration range.
type AccelInterval struct {
	Min float64
	Max float64
}

// Unconstrained is the acceleration range that excludes nothing.
var Unconstrained = AccelInterval{Min: math.Inf(-1), Max: math.Inf(1)}

// Validate checks the fields used by the constraint's kind.
func (c Constraint) Validate() error {
	switch c.Kind {
	case ConstraintCentripetal:
		if !(c.MaxCentripetalForce > 0) {
			return errors.Errorf("centripetal force must be positive, got %g", c.MaxCentripetalForce)
		}
	case ConstraintDistanceVelocity, ConstraintSegmentBudget:
		if !(c.After < c.Before) {
			return errors.Errorf("window after=%g must be before before=%g", c.After, c.Before)
		}
		if !(c.Velocity > 0) {
			return errors.Errorf("velocity must be positive, got %g", c.Velocity)
		}
		if c.Kind == ConstraintSegmentBudget && !(c.Accel > 0) {
			return errors.Errorf("acceleration must be positive, got %g", c.Accel)
		}
	default:
		return errors.Errorf("unknown constraint kind %d", int(c.Kind))
	}
	return nil
}

// MaxVelocity returns the velocity ceiling at state, or +Inf.
func (c Constraint) MaxVelocity(state ConstraintState, env Environment) float64 {
	switch c.Kind {
	case ConstraintCentripetal:
		if math.Abs(state.Curvature) < minCurvature {
			return math.Inf(1)
		}
		radius := units.MustLength(1/math.Abs(state.Curvature), env.PathUnits, units.Meters)
		v := math.Sqrt(c.MaxCentripetalForce * radius / env.Robot.MassKilograms())
		return units.MustLength(v, units.Meters, env.PathUnits)
	case ConstraintDistanceVelocity:
		if state.Position > c.After && state.Position < c.Before {
			return c.Velocity
		}
	case ConstraintSegmentBudget:
		if c.inWindow(state.Position) {
			return c.Velocity
		}
	}
	return math.Inf(1)
}

// MinMaxAccel returns the acceleration range allowed at state when travelling at velocity.
func (c Constraint) MinMaxAccel(state ConstraintState, velocity float64, env Environment) AccelInterval {
	if c.Kind == ConstraintSegmentBudget && c.inWindow(state.Position) {
		return AccelInterval{Min: -c.Accel, Max: c.Accel}
	}
	return Unconstrained
}

func (c Constraint) inWindow(pos float64) bool {
	const slack = 1e-9
	return pos >= c.After-slack && pos <= c.Before+slack
}

func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintCentripetal:
		return fmt.Sprintf("centripetal(max=%gN)", c.MaxCentripetalForce)
	case ConstraintDistanceVelocity:
		return fmt.Sprintf("distancevelocity(%g..%g, v=%g)", c.After, c.Before, c.Velocity)
	case ConstraintSegmentBudget:
		return fmt.Sprintf("segmentbudget(%g..%g, v=%g, a=%g)", c.After, c.Before, c.Velocity, c.Accel)
	default:
		return c.Kind.String()
	}
}
