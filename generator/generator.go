// Package generator turns one path request into its named trajectories and schedules many such
// requests on a bounded pool of workers.
package generator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/swerve"
	"go.viam.com/trajgen/trajectory"
	"go.viam.com/trajgen/trajerr"
)

// Request is everything needed to generate one path.
type Request struct {
	// ID is assigned by the Scheduler when empty.
	ID        string
	PathID    string
	Path      trajectory.Path
	Robot     trajectory.RobotParams
	Generator trajectory.GeneratorParams
	Swerve    swerve.Options
}

// Result is the outcome of one Request. Exactly one of Trajectories and Err is set.
type Result struct {
	RequestID    string
	PathID       string
	Trajectories map[string]*trajectory.Trajectory
	// Attempts is the number of translation solves the swerve overlay needed.
	Attempts int
	Err      error
	Duration time.Duration
}

// OK reports whether generation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Generate produces the trajectories of req. It never panics: a panic anywhere in the pipeline
// is returned as a NumericError in Result.Err.
func Generate(ctx context.Context, req Request, logger logging.Logger) (res Result) {
	clk := req.Swerve.Clock
	if clk == nil {
		clk = clock.New()
	}
	start := clk.Now()
	res = Result{RequestID: req.ID, PathID: req.PathID}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("panic during generation", "path", req.PathID, "panic", r, "stack", string(debug.Stack()))
			res.Trajectories = nil
			res.Err = trajerr.NewNumericError(-1, "generation panicked: %v", fmt.Sprint(r))
		}
		res.Duration = clk.Since(start)
	}()

	path := req.Path
	gen := req.Generator.WithDefaults(req.Robot.LengthUnits)
	planner, err := trajectory.NewPlanner(&path, req.Robot, gen, logger)
	if err != nil {
		res.Err = err
		return res
	}

	switch req.Robot.DriveType {
	case trajectory.DriveSwerve:
		out, err := swerve.Overlay(ctx, planner, req.Swerve, logger)
		if err != nil {
			res.Err = err
			return res
		}
		res.Trajectories = out.Trajectories
		res.Attempts = out.Attempts
	default:
		tr, err := planner.Solve(nil)
		if err != nil {
			res.Err = err
			return res
		}
		res.Trajectories = map[string]*trajectory.Trajectory{trajectory.MainTrajectory: tr.Main}
		res.Attempts = 1
	}
	logger.Debugw("generated path", "path", req.PathID, "trajectories", len(res.Trajectories))
	return res
}
