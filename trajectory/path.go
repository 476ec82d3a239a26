// Package trajectory turns a waypoint sequence into a time-parameterized trajectory: spline
// parameterization, arc-length resampling, constrained velocity profiling and uniform-time
// resampling.
package trajectory

import (
	"math"

	"go.uber.org/multierr"

	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/units"
)

// Waypoint is a user-placed anchor. Angles are in degrees; RotationVelocity in degrees/second.
type Waypoint struct {
	X                float64
	Y                float64
	Heading          float64
	Rotation         float64
	RotationVelocity float64
}

// Pose returns the waypoint position facing the travel heading.
func (w Waypoint) Pose() spatialmath.Pose2d {
	return spatialmath.Pose2d{
		Translation: spatialmath.NewTranslation2d(w.X, w.Y),
		Rotation:    spatialmath.NewRotation2dDegrees(w.Heading),
	}
}

// ChassisRotation returns the swerve chassis-rotation target.
func (w Waypoint) ChassisRotation() spatialmath.Rotation2d {
	return spatialmath.NewRotation2dDegrees(w.Rotation)
}

// DriveType selects between differential and holonomic drivetrains.
type DriveType string

const (
	// DriveTank is a differential drive; the chassis always faces the travel heading.
	DriveTank DriveType = "tank"
	// DriveSwerve is a holonomic drive with independent chassis rotation.
	DriveSwerve DriveType = "swerve"
)

// RobotParams describes the physical robot. Lengths and velocities are in LengthUnits (per
// second), Weight in WeightUnits.
type RobotParams struct {
	WheelbaseWidth  float64
	WheelbaseLength float64
	BumperWidth     float64
	BumperLength    float64
	Weight          float64
	MaxVelocity     float64
	MaxAccel        float64
	LengthUnits     string
	WeightUnits     string
	DriveType       DriveType
}

// Validate returns every problem with the robot description.
func (r RobotParams) Validate() error {
	var errs error
	if !units.IsLength(r.LengthUnits) {
		errs = multierr.Append(errs, trajerr.NewValidationError("robot.length_units", "unknown unit %q", r.LengthUnits))
	}
	if !units.IsWeight(r.WeightUnits) {
		errs = multierr.Append(errs, trajerr.NewValidationError("robot.weight_units", "unknown unit %q", r.WeightUnits))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"robot.weight", r.Weight},
		{"robot.max_velocity", r.MaxVelocity},
		{"robot.max_accel", r.MaxAccel},
	} {
		if !(f.value > 0) {
			errs = multierr.Append(errs, trajerr.NewValidationError(f.name, "must be positive, got %g", f.value))
		}
	}
	switch r.DriveType {
	case DriveTank:
	case DriveSwerve:
		if !(r.WheelbaseWidth > 0) || !(r.WheelbaseLength > 0) {
			errs = multierr.Append(errs, trajerr.NewValidationError("robot.wheelbase",
				"swerve robots need a positive wheelbase, got %gx%g", r.WheelbaseWidth, r.WheelbaseLength))
		}
	default:
		errs = multierr.Append(errs, trajerr.NewValidationError("robot.drive_type", "unknown drive type %q", r.DriveType))
	}
	return errs
}

// Length converts a robot length into the given units.
func (r RobotParams) Length(v float64, to string) float64 {
	return units.MustLength(v, r.LengthUnits, to)
}

// MassKilograms returns the robot weight in kilograms.
func (r RobotParams) MassKilograms() float64 {
	return units.MustWeight(r.Weight, r.WeightUnits, units.Kilograms)
}

// PathParameters are the velocity limits of one path, in path units.
type PathParameters struct {
	StartVelocity float64
	EndVelocity   float64
	MaxVelocity   float64
	MaxAccel      float64
}

// Validate returns every problem with the parameters.
func (p PathParameters) Validate() error {
	var errs error
	if !(p.MaxVelocity > 0) {
		errs = multierr.Append(errs, trajerr.NewValidationError("params.max_velocity", "must be positive, got %g", p.MaxVelocity))
	}
	if !(p.MaxAccel > 0) {
		errs = multierr.Append(errs, trajerr.NewValidationError("params.max_accel", "must be positive, got %g", p.MaxAccel))
	}
	if p.StartVelocity < 0 || p.StartVelocity > p.MaxVelocity {
		errs = multierr.Append(errs, trajerr.NewValidationError("params.start_velocity",
			"must be within [0, %g], got %g", p.MaxVelocity, p.StartVelocity))
	}
	if p.EndVelocity < 0 || p.EndVelocity > p.MaxVelocity {
		errs = multierr.Append(errs, trajerr.NewValidationError("params.end_velocity",
			"must be within [0, %g], got %g", p.MaxVelocity, p.EndVelocity))
	}
	return errs
}

// Path is one authored path. It owns its waypoints and constraints by value; editors refer to
// them by index.
type Path struct {
	Name        string
	Units       string
	Waypoints   []Waypoint
	Constraints []Constraint
	Params      PathParameters
}

// Validate returns every problem with the path.
func (p *Path) Validate() error {
	var errs error
	if !units.IsLength(p.Units) {
		errs = multierr.Append(errs, trajerr.NewValidationError("path.units", "unknown unit %q", p.Units))
	}
	if len(p.Waypoints) < 2 {
		errs = multierr.Append(errs, trajerr.NewValidationError("path.waypoints", "need at least 2, got %d", len(p.Waypoints)))
	}
	for i, w := range p.Waypoints {
		for _, v := range []float64{w.X, w.Y, w.Heading, w.Rotation, w.RotationVelocity} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = multierr.Append(errs, trajerr.NewValidationError("path.waypoints", "waypoint %d has a non-finite field", i))
				break
			}
		}
	}
	for i, c := range p.Constraints {
		if err := c.Validate(); err != nil {
			errs = multierr.Append(errs, trajerr.NewValidationError("path.constraints", "constraint %d: %v", i, err))
		}
	}
	return multierr.Append(errs, p.Params.Validate())
}

// Segments returns the number of inter-waypoint segments.
func (p *Path) Segments() int {
	if len(p.Waypoints) < 2 {
		return 0
	}
	return len(p.Waypoints) - 1
}
