// Package config reads request files: a robot, generator tuning, log levels and the paths to
// generate.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/trajgen/generator"
	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/swerve"
	"go.viam.com/trajgen/trajectory"
	"go.viam.com/trajgen/trajerr"
)

// Config is a decoded request file.
type Config struct {
	Robot     Robot                         `json:"robot"`
	Generator Generator                     `json:"generator"`
	Log       []logging.LoggerPatternConfig `json:"log,omitempty"`
	Paths     []Path                        `json:"paths"`

	// ConfigFilePath is where the config was read from, if anywhere.
	ConfigFilePath string `json:"-"`
}

// Robot describes the physical robot. Lengths are in LengthUnits and weight in WeightUnits.
type Robot struct {
	WheelbaseWidth  float64 `json:"wheelbase_width"`
	WheelbaseLength float64 `json:"wheelbase_length"`
	BumperWidth     float64 `json:"bumper_width"`
	BumperLength    float64 `json:"bumper_length"`
	Weight          float64 `json:"weight"`
	MaxVelocity     float64 `json:"max_velocity"`
	MaxAccel        float64 `json:"max_accel"`
	LengthUnits     string  `json:"length_units"`
	WeightUnits     string  `json:"weight_units"`
	DriveType       string  `json:"drive_type"`
}

// Params returns the robot as the engine sees it.
func (r Robot) Params() trajectory.RobotParams {
	return trajectory.RobotParams{
		WheelbaseWidth:  r.WheelbaseWidth,
		WheelbaseLength: r.WheelbaseLength,
		BumperWidth:     r.BumperWidth,
		BumperLength:    r.BumperLength,
		Weight:          r.Weight,
		MaxVelocity:     r.MaxVelocity,
		MaxAccel:        r.MaxAccel,
		LengthUnits:     r.LengthUnits,
		WeightUnits:     r.WeightUnits,
		DriveType:       trajectory.DriveType(strings.ToLower(r.DriveType)),
	}
}

// Generator tunes the engine. Lengths are in the robot's length units.
type Generator struct {
	DistStep            float64 `json:"dist_step"`
	TimeStep            float64 `json:"time_step"`
	MaxDx               float64 `json:"max_dx"`
	MaxDy               float64 `json:"max_dy"`
	MaxDTheta           float64 `json:"max_dtheta"`
	MaxSubdivisionDepth int     `json:"max_subdivision_depth,omitempty"`
	MaxPatchIterations  int     `json:"max_patch_iterations,omitempty"`

	RotationMode     string  `json:"rotation_mode,omitempty"`
	PercentStep      float64 `json:"percent_step,omitempty"`
	MaxAttempts      int     `json:"max_attempts,omitempty"`
	AttemptBudget    string  `json:"attempt_budget,omitempty"`
	EndSnapTolerance float64 `json:"end_snap_tolerance,omitempty"`

	// Workers bounds how many paths generate at once.
	Workers int `json:"workers,omitempty"`
}

// Params returns the translation tuning.
func (g Generator) Params() trajectory.GeneratorParams {
	return trajectory.GeneratorParams{
		DistStep:            g.DistStep,
		TimeStep:            g.TimeStep,
		MaxDx:               g.MaxDx,
		MaxDy:               g.MaxDy,
		MaxDTheta:           g.MaxDTheta,
		MaxSubdivisionDepth: g.MaxSubdivisionDepth,
		MaxPatchIterations:  g.MaxPatchIterations,
	}
}

// SwerveOptions returns the rotation overlay tuning.
func (g Generator) SwerveOptions() (swerve.Options, error) {
	opts := swerve.DefaultOptions()
	mode, err := swerve.ParseMode(g.RotationMode)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	if g.PercentStep != 0 {
		opts.PercentStep = g.PercentStep
	}
	opts.MaxAttempts = g.MaxAttempts
	if g.AttemptBudget != "" {
		budget, err := time.ParseDuration(g.AttemptBudget)
		if err != nil {
			return opts, errors.Wrap(err, "attempt_budget")
		}
		opts.AttemptBudget = budget
	}
	if g.EndSnapTolerance != 0 {
		opts.EndSnapTolerance = g.EndSnapTolerance
	}
	return opts, nil
}

// Path is one path of the request file.
type Path struct {
	Name        string                   `json:"name"`
	Units       string                   `json:"units"`
	Params      PathParams               `json:"params"`
	Waypoints   []Waypoint               `json:"waypoints"`
	Constraints []map[string]interface{} `json:"constraints,omitempty"`
}

// PathParams are the path's own motion limits, in the path's units.
type PathParams struct {
	StartVelocity float64 `json:"start_velocity"`
	EndVelocity   float64 `json:"end_velocity"`
	MaxVelocity   float64 `json:"max_velocity"`
	MaxAccel      float64 `json:"max_accel"`
}

// Waypoint is a pose the path passes through. Angles are in degrees.
type Waypoint struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Heading          float64 `json:"heading"`
	Rotation         float64 `json:"rotation"`
	RotationVelocity float64 `json:"rotation_velocity"`
}

// constraintAttributes is the union of every constraint type's fields.
type constraintAttributes struct {
	Type     string  `json:"type"`
	MaxCen   float64 `json:"maxcen"`
	After    float64 `json:"after"`
	Before   float64 `json:"before"`
	Velocity float64 `json:"velocity"`
	Accel    float64 `json:"accel"`
}

// DecodeConstraint turns a tagged attribute map such as
// {"type": "distancevelocity", "after": 10, "before": 20, "velocity": 30} into a constraint.
// Unknown keys are rejected.
func DecodeConstraint(attrs map[string]interface{}) (trajectory.Constraint, error) {
	var ca constraintAttributes
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &ca,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return trajectory.Constraint{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return trajectory.Constraint{}, errors.Wrap(err, "failed to decode constraint")
	}
	kind, err := trajectory.ParseConstraintKind(ca.Type)
	if err != nil {
		return trajectory.Constraint{}, err
	}
	var c trajectory.Constraint
	switch kind {
	case trajectory.ConstraintCentripetal:
		c = trajectory.NewCentripetalConstraint(ca.MaxCen)
	case trajectory.ConstraintDistanceVelocity:
		c = trajectory.NewDistanceVelocityConstraint(ca.After, ca.Before, ca.Velocity)
	case trajectory.ConstraintSegmentBudget:
		c = trajectory.NewSegmentBudgetConstraint(ca.After, ca.Before, ca.Velocity, ca.Accel)
	}
	return c, c.Validate()
}

// Path returns the engine's view of p.
func (p Path) Path() (trajectory.Path, error) {
	out := trajectory.Path{
		Name:  p.Name,
		Units: p.Units,
		Params: trajectory.PathParameters{
			StartVelocity: p.Params.StartVelocity,
			EndVelocity:   p.Params.EndVelocity,
			MaxVelocity:   p.Params.MaxVelocity,
			MaxAccel:      p.Params.MaxAccel,
		},
	}
	for _, w := range p.Waypoints {
		out.Waypoints = append(out.Waypoints, trajectory.Waypoint(w))
	}
	var errs error
	for i, attrs := range p.Constraints {
		c, err := DecodeConstraint(attrs)
		if err != nil {
			errs = multierr.Append(errs, trajerr.NewValidationError(
				fmt.Sprintf("paths.%s.constraints.%d", p.Name, i), "%v", err))
			continue
		}
		out.Constraints = append(out.Constraints, c)
	}
	return out, errs
}

// ApplyDefaults fills unset generator tuning in the robot's units, and unset path units with the
// robot's.
func (c *Config) ApplyDefaults() {
	gen := c.Generator.Params().WithDefaults(c.Robot.LengthUnits)
	c.Generator.DistStep = gen.DistStep
	c.Generator.TimeStep = gen.TimeStep
	c.Generator.MaxDx = gen.MaxDx
	c.Generator.MaxDy = gen.MaxDy
	c.Generator.MaxDTheta = gen.MaxDTheta
	c.Generator.MaxSubdivisionDepth = gen.MaxSubdivisionDepth
	c.Generator.MaxPatchIterations = gen.MaxPatchIterations
	if c.Generator.RotationMode == "" {
		c.Generator.RotationMode = string(swerve.ModeWaypoint)
	}
	if c.Generator.Workers == 0 {
		c.Generator.Workers = 1
	}
	if c.Robot.DriveType == "" {
		c.Robot.DriveType = string(trajectory.DriveTank)
	}
	for i := range c.Paths {
		if c.Paths[i].Units == "" {
			c.Paths[i].Units = c.Robot.LengthUnits
		}
	}
}

// Validate returns every problem with the config as a single ValidationError.
func (c *Config) Validate() error {
	var errs error
	errs = multierr.Append(errs, c.Robot.Params().Validate())
	errs = multierr.Append(errs, c.Generator.Params().Validate())
	if opts, err := c.Generator.SwerveOptions(); err != nil {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator", "%v", err))
	} else {
		errs = multierr.Append(errs, opts.Validate())
	}
	if c.Generator.Workers < 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.workers",
			"must not be negative, got %d", c.Generator.Workers))
	}
	for i, lpc := range c.Log {
		if !logging.ValidatePattern(lpc.Pattern) {
			errs = multierr.Append(errs, trajerr.NewValidationError(fmt.Sprintf("log.%d.pattern", i),
				"invalid logger pattern %q", lpc.Pattern))
		}
		if _, err := logging.LevelFromString(lpc.Level); err != nil {
			errs = multierr.Append(errs, trajerr.NewValidationError(fmt.Sprintf("log.%d.level", i), "%v", err))
		}
	}
	if len(c.Paths) == 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("paths", "at least one path is required"))
	}
	seen := make(map[string]bool, len(c.Paths))
	for i, p := range c.Paths {
		if p.Name == "" {
			errs = multierr.Append(errs, trajerr.NewValidationError(fmt.Sprintf("paths.%d.name", i), "is required"))
		} else if seen[p.Name] {
			errs = multierr.Append(errs, trajerr.NewValidationError(fmt.Sprintf("paths.%d.name", i),
				"duplicate path name %q", p.Name))
		}
		seen[p.Name] = true

		path, err := p.Path()
		errs = multierr.Append(errs, err)
		if verr := path.Validate(); verr != nil {
			errs = multierr.Append(errs, errors.Wrapf(verr, "path %q", p.Name))
		}
	}
	return trajerr.WrapValidation(errs)
}

// Requests returns one generation request per path, in file order.
func (c *Config) Requests() ([]generator.Request, error) {
	opts, err := c.Generator.SwerveOptions()
	if err != nil {
		return nil, trajerr.NewValidationError("generator", "%v", err)
	}
	reqs := make([]generator.Request, 0, len(c.Paths))
	for _, p := range c.Paths {
		path, err := p.Path()
		if err != nil {
			return nil, trajerr.WrapValidation(err)
		}
		reqs = append(reqs, generator.Request{
			PathID:    p.Name,
			Path:      path,
			Robot:     c.Robot.Params(),
			Generator: c.Generator.Params(),
			Swerve:    opts,
		})
	}
	return reqs, nil
}

// PathNamed returns the path called name.
func (c *Config) PathNamed(name string) (Path, bool) {
	for _, p := range c.Paths {
		if p.Name == name {
			return p, true
		}
	}
	return Path{}, false
}
