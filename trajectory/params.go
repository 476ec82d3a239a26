package trajectory

import (
	"go.uber.org/multierr"

	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/units"
)

// Defaults for GeneratorParams, in meters and radians.
const (
	DefaultDistStepMeters      = 0.0127
	DefaultTimeStep            = 0.02
	DefaultMaxDxMeters         = 0.0508
	DefaultMaxDyMeters         = 0.00127
	DefaultMaxDTheta           = 0.0873
	DefaultMaxSubdivisionDepth = 24
	DefaultMaxPatchIterations  = 16
)

// GeneratorParams tune the translation pipeline. Lengths are in the robot's length units unless
// converted with InPathUnits; TimeStep is in seconds and MaxDTheta in radians.
type GeneratorParams struct {
	DistStep            float64
	TimeStep            float64
	MaxDx               float64
	MaxDy               float64
	MaxDTheta           float64
	MaxSubdivisionDepth int
	MaxPatchIterations  int
}

// DefaultGeneratorParams returns the default tuning expressed in lengthUnits.
func DefaultGeneratorParams(lengthUnits string) GeneratorParams {
	conv := func(v float64) float64 {
		out, err := units.ConvertLength(v, units.Meters, lengthUnits)
		if err != nil {
			return v
		}
		return out
	}
	return GeneratorParams{
		DistStep:            conv(DefaultDistStepMeters),
		TimeStep:            DefaultTimeStep,
		MaxDx:               conv(DefaultMaxDxMeters),
		MaxDy:               conv(DefaultMaxDyMeters),
		MaxDTheta:           DefaultMaxDTheta,
		MaxSubdivisionDepth: DefaultMaxSubdivisionDepth,
		MaxPatchIterations:  DefaultMaxPatchIterations,
	}
}

// WithDefaults fills zero fields from DefaultGeneratorParams(lengthUnits).
func (g GeneratorParams) WithDefaults(lengthUnits string) GeneratorParams {
	def := DefaultGeneratorParams(lengthUnits)
	if g.DistStep == 0 {
		g.DistStep = def.DistStep
	}
	if g.TimeStep == 0 {
		g.TimeStep = def.TimeStep
	}
	if g.MaxDx == 0 {
		g.MaxDx = def.MaxDx
	}
	if g.MaxDy == 0 {
		g.MaxDy = def.MaxDy
	}
	if g.MaxDTheta == 0 {
		g.MaxDTheta = def.MaxDTheta
	}
	if g.MaxSubdivisionDepth == 0 {
		g.MaxSubdivisionDepth = def.MaxSubdivisionDepth
	}
	if g.MaxPatchIterations == 0 {
		g.MaxPatchIterations = def.MaxPatchIterations
	}
	return g
}

// Validate returns every problem with the tuning values.
func (g GeneratorParams) Validate() error {
	var errs error
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"generator.dist_step", g.DistStep},
		{"generator.time_step", g.TimeStep},
		{"generator.max_dx", g.MaxDx},
		{"generator.max_dy", g.MaxDy},
		{"generator.max_dtheta", g.MaxDTheta},
	} {
		if !(f.value > 0) {
			errs = multierr.Append(errs, trajerr.NewValidationError(f.name, "must be positive, got %g", f.value))
		}
	}
	if g.MaxSubdivisionDepth <= 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.max_subdivision_depth",
			"must be positive, got %d", g.MaxSubdivisionDepth))
	}
	if g.MaxPatchIterations <= 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.max_patch_iterations",
			"must be positive, got %d", g.MaxPatchIterations))
	}
	return errs
}

// InPathUnits converts the length fields from robotUnits into pathUnits.
func (g GeneratorParams) InPathUnits(robotUnits, pathUnits string) (GeneratorParams, error) {
	var err error
	for _, f := range []*float64{&g.DistStep, &g.MaxDx, &g.MaxDy} {
		conv, convErr := units.ConvertLength(*f, robotUnits, pathUnits)
		err = multierr.Append(err, convErr)
		*f = conv
	}
	if err != nil {
		return GeneratorParams{}, trajerr.WrapValidation(err)
	}
	return g, nil
}
