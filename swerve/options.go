// Package swerve schedules the chassis rotation of a holonomic robot on top of its translation
// trajectory, trading translation budget for rotation budget until every wheel stays within the
// robot's limits.
package swerve

import (
	"math"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/trajgen/trajerr"
)

// Mode selects how rotation is scheduled along the path.
type Mode string

const (
	// ModeWaypoint gives every inter-waypoint segment its own rotation schedule and budget.
	ModeWaypoint Mode = "waypoint"
	// ModeSingle rotates once from the first waypoint's rotation to the last one's.
	ModeSingle Mode = "single"
)

// ParseMode returns the mode named s. The empty string selects ModeWaypoint.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeWaypoint:
		return ModeWaypoint, nil
	case ModeSingle:
		return ModeSingle, nil
	default:
		return "", errors.Errorf("unknown rotation mode %q", s)
	}
}

// Defaults for Options.
const (
	DefaultPercentStep      = 0.05
	DefaultAttemptBudget    = 10 * time.Second
	DefaultEndSnapTolerance = 0.1
)

// Options tune the overlay.
type Options struct {
	Mode Mode
	// PercentStep is how much a failing budget shrinks per attempt.
	PercentStep float64
	// MaxAttempts bounds the number of solver runs. Zero derives it from PercentStep and the
	// number of budgets.
	MaxAttempts int
	// AttemptBudget bounds the wall-clock time spent retrying.
	AttemptBudget time.Duration
	// EndSnapTolerance is how many seconds a rotation may overrun its window before the
	// schedule is rejected. Overruns within the tolerance snap to the target.
	EndSnapTolerance float64
	Clock            clock.Clock
}

// DefaultOptions returns the default overlay tuning.
func DefaultOptions() Options {
	return Options{
		Mode:             ModeWaypoint,
		PercentStep:      DefaultPercentStep,
		AttemptBudget:    DefaultAttemptBudget,
		EndSnapTolerance: DefaultEndSnapTolerance,
		Clock:            clock.New(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Mode == "" {
		o.Mode = def.Mode
	}
	if o.PercentStep == 0 {
		o.PercentStep = def.PercentStep
	}
	if o.AttemptBudget == 0 {
		o.AttemptBudget = def.AttemptBudget
	}
	if o.EndSnapTolerance == 0 {
		o.EndSnapTolerance = def.EndSnapTolerance
	}
	if o.Clock == nil {
		o.Clock = def.Clock
	}
	return o
}

// Validate returns every problem with the options.
func (o Options) Validate() error {
	var errs error
	if _, err := ParseMode(string(o.Mode)); err != nil {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.rotation_mode", "%v", err))
	}
	if !(o.PercentStep > 0 && o.PercentStep <= 1) {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.percent_step",
			"must be within (0, 1], got %g", o.PercentStep))
	}
	if o.MaxAttempts < 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.max_attempts",
			"must not be negative, got %d", o.MaxAttempts))
	}
	if o.EndSnapTolerance < 0 {
		errs = multierr.Append(errs, trajerr.NewValidationError("generator.end_snap_tolerance",
			"must not be negative, got %g", o.EndSnapTolerance))
	}
	return errs
}

func (o Options) maxAttempts(budgets int) int {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return budgets*int(math.Ceil(1/o.PercentStep)) + 1
}

// State is the overlay's progress through one attempt.
type State int

const (
	// StateInit is before the first translation solve.
	StateInit State = iota
	// StateProfileBuilt has a translation trajectory and rotation schedules to check.
	StateProfileBuilt
	// StateDone accepted the current schedules.
	StateDone
	// StateShrinkBudget is lowering the budget of failing schedules before retrying.
	StateShrinkBudget
	// StateFail ran out of budget, attempts or time.
	StateFail
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateProfileBuilt:
		return "profile_built"
	case StateDone:
		return "done"
	case StateShrinkBudget:
		return "shrink_budget"
	case StateFail:
		return "fail"
	default:
		return "unknown"
	}
}
