package trajectory

import (
	"math"

	"go.uber.org/multierr"

	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/spline"
	"go.viam.com/trajgen/trajerr"
)

// MainTrajectory is the name of the chassis trajectory in every result.
const MainTrajectory = "main"

// Translation is the output of the translation pipeline.
type Translation struct {
	// View is the arc-length resampled path.
	View *DistanceView
	// Timed is the solved profile indexed by the samples of View.
	Timed *Trajectory
	// Main is Timed resampled at uniform time.
	Main *Trajectory
}

// Validate checks the path, robot and generator parameters together.
func Validate(path *Path, robot RobotParams, gen GeneratorParams) error {
	return trajerr.WrapValidation(multierr.Combine(
		path.Validate(),
		robot.Validate(),
		gen.Validate(),
	))
}

// Planner holds the geometry of one path so velocity profiles can be solved against it
// repeatedly with different extra constraints.
type Planner struct {
	Path  *Path
	Robot RobotParams
	// Gen is in path units.
	Gen  GeneratorParams
	View *DistanceView

	env     Environment
	profile ProfileParams
	logger  logging.Logger
}

// NewPlanner validates the inputs and builds the distance view of path. gen is in the robot's
// length units.
func NewPlanner(path *Path, robot RobotParams, gen GeneratorParams, logger logging.Logger) (*Planner, error) {
	if err := Validate(path, robot, gen); err != nil {
		return nil, err
	}
	pathGen, err := gen.InPathUnits(robot.LengthUnits, path.Units)
	if err != nil {
		return nil, err
	}
	view, err := BuildView(path, pathGen)
	if err != nil {
		return nil, err
	}
	logger.Debugw("resampled path by distance",
		"path", path.Name, "samples", view.Len(), "length", view.Length())
	return &Planner{
		Path:  path,
		Robot: robot,
		Gen:   pathGen,
		View:  view,
		env:   Environment{PathUnits: path.Units, Robot: robot},
		profile: ProfileParams{
			StartVelocity:      path.Params.StartVelocity,
			EndVelocity:        path.Params.EndVelocity,
			MaxVelocity:        math.Min(path.Params.MaxVelocity, robot.Length(robot.MaxVelocity, path.Units)),
			MaxAccel:           math.Min(path.Params.MaxAccel, robot.Length(robot.MaxAccel, path.Units)),
			MaxPatchIterations: gen.MaxPatchIterations,
		},
		logger: logger,
	}, nil
}

// Environment returns the environment the path's constraints are evaluated in.
func (p *Planner) Environment() Environment {
	return p.env
}

// Solve runs the velocity-profile solver with the path's constraints plus extra, and resamples
// the result at the generator's time step.
func (p *Planner) Solve(extra []Constraint) (*Translation, error) {
	constraints := make([]Constraint, 0, len(p.Path.Constraints)+len(extra))
	constraints = append(constraints, p.Path.Constraints...)
	constraints = append(constraints, extra...)
	timed, err := SolveVelocityProfile(p.View, constraints, p.env, p.profile)
	if err != nil {
		return nil, err
	}
	timed.Name = p.Path.Name
	if p.Robot.DriveType == DriveTank {
		for i := range timed.Points {
			timed.Points[i].Rotation = timed.Points[i].Pose.Rotation
		}
	}
	main, err := timed.Resample(MainTrajectory, p.Gen.TimeStep)
	if err != nil {
		return nil, err
	}
	p.logger.Debugw("solved velocity profile",
		"path", p.Path.Name, "constraints", len(constraints), "duration", timed.TotalTime(), "samples", main.Len())
	return &Translation{View: p.View, Timed: timed, Main: main}, nil
}

// BuildView runs spline fitting, parameterization and arc-length resampling for path. gen must
// already be in path units.
func BuildView(path *Path, gen GeneratorParams) (*DistanceView, error) {
	splines := make([]*spline.Pair, 0, path.Segments())
	rotations := make([]spatialmath.Rotation2d, len(path.Waypoints))
	for i, w := range path.Waypoints {
		rotations[i] = w.ChassisRotation()
		if i == 0 {
			continue
		}
		s, err := spline.NewPair(path.Waypoints[i-1].Pose(), w.Pose())
		if err != nil {
			return nil, err
		}
		splines = append(splines, s)
	}
	points := Parameterize(splines, rotations, ParameterizeOptions{
		MaxDx:     gen.MaxDx,
		MaxDy:     gen.MaxDy,
		MaxDTheta: gen.MaxDTheta,
		MaxDepth:  gen.MaxSubdivisionDepth,
	})
	return NewDistanceView(points, gen.DistStep, windowBreaks(path.Constraints)...)
}

// windowBreaks returns the window edges of constraints, so that the distance view samples them.
func windowBreaks(constraints []Constraint) []float64 {
	var out []float64
	for _, c := range constraints {
		if c.Kind == ConstraintDistanceVelocity || c.Kind == ConstraintSegmentBudget {
			out = append(out, c.After, c.Before)
		}
	}
	return out
}

// GenerateTranslation produces the chassis translation trajectory for path. extra constraints
// are applied on top of the path's own. gen is in the robot's length units.
func GenerateTranslation(
	path *Path,
	robot RobotParams,
	gen GeneratorParams,
	extra []Constraint,
	logger logging.Logger,
) (*Translation, error) {
	planner, err := NewPlanner(path, robot, gen, logger)
	if err != nil {
		return nil, err
	}
	return planner.Solve(extra)
}
