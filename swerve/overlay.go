package swerve

import (
	"context"
	"math"
	"sort"

	"go.viam.com/trajgen/control"
	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajectory"
	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/utils"
)

// limitSlack is the relative margin allowed over the robot's limits in the corner check.
const limitSlack = 1e-6

// Result is an accepted overlay.
type Result struct {
	Translation *trajectory.Translation
	// Trajectories holds the chassis trajectory under trajectory.MainTrajectory and one
	// trajectory per corner.
	Trajectories map[string]*trajectory.Trajectory
	Attempts     int
	// Percentages is the final translation share of every budget.
	Percentages []float64
}

// rotationWindow is a stretch of path, by distance, over which one rotation schedule runs.
type rotationWindow struct {
	after, before float64
	from          float64
	delta         float64
	startVel      float64
	endVel        float64
}

// rotationSchedule is a rotationWindow placed in time.
type rotationSchedule struct {
	start, end float64
	from       float64
	target     float64
	profile    *control.TrapezoidalProfile
}

// at returns the rotation in degrees, its rate in degrees/s and its acceleration in degrees/s².
func (s rotationSchedule) at(t float64) (float64, float64, float64) {
	if s.profile == nil {
		return s.from, 0, 0
	}
	local := t - s.start
	if t >= s.end {
		return s.target, s.profile.Velocity(s.profile.TotalTime()), 0
	}
	return s.from + s.profile.Position(local), s.profile.Velocity(local), s.profile.Acceleration(local)
}

type overlay struct {
	planner *trajectory.Planner
	opts    Options
	logger  logging.Logger

	linVel  float64
	linAcc  float64
	rotVel  float64
	rotAcc  float64
	corners []Corner

	windows []rotationWindow
	// translationShare and rotationShare map a budget percentage onto the fraction of the
	// robot's limits given to each motion.
	translationShare func(p float64) float64
	rotationShare    func(p float64) float64
	state            State
}

// Overlay schedules chassis rotation on the path held by planner. Every inter-waypoint segment
// (or the whole path in ModeSingle) has a budget percentage p starting at 100%. Each attempt
// solves translation under the budgets, fits a rotation schedule into every window, and checks
// every corner at every sample. Failing budgets shrink by opts.PercentStep until one reaches
// zero, opts.MaxAttempts is hit or opts.AttemptBudget elapses.
func Overlay(ctx context.Context, planner *trajectory.Planner, opts Options, logger logging.Logger) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, trajerr.WrapValidation(err)
	}
	o := newOverlay(planner, opts, logger)
	return o.run(ctx)
}

func newOverlay(planner *trajectory.Planner, opts Options, logger logging.Logger) *overlay {
	robot := planner.Robot
	units := planner.Path.Units
	length := robot.Length(robot.WheelbaseLength, units)
	width := robot.Length(robot.WheelbaseWidth, units)
	diagonal := math.Hypot(length, width)
	linVel := robot.Length(robot.MaxVelocity, units)
	linAcc := robot.Length(robot.MaxAccel, units)

	o := &overlay{
		planner: planner,
		opts:    opts,
		logger:  logger,
		linVel:  linVel,
		linAcc:  linAcc,
		rotVel:  linVel * 360 / (math.Pi * diagonal),
		rotAcc:  linAcc * 360 / (math.Pi * diagonal),
		corners: Corners(length, width),
	}

	wps := planner.Path.Waypoints
	view := planner.View
	switch opts.Mode {
	case ModeSingle:
		first, last := wps[0], wps[len(wps)-1]
		o.windows = []rotationWindow{{
			after:    0,
			before:   view.Length(),
			from:     first.Rotation,
			delta:    utils.AngleDiffDeg(first.Rotation, last.Rotation),
			startVel: first.RotationVelocity,
			endVel:   last.RotationVelocity,
		}}
		o.translationShare = func(p float64) float64 { return p }
		o.rotationShare = func(p float64) float64 { return 1 - p }
	default:
		for i := 0; i < view.NumSegments(); i++ {
			after, before := view.SegmentBounds(i)
			o.windows = append(o.windows, rotationWindow{
				after:    after,
				before:   before,
				from:     wps[i].Rotation,
				delta:    utils.AngleDiffDeg(wps[i].Rotation, wps[i+1].Rotation),
				startVel: wps[i].RotationVelocity,
				endVel:   wps[i+1].RotationVelocity,
			})
		}
		o.translationShare = func(p float64) float64 { return p }
		o.rotationShare = func(p float64) float64 { return p }
	}
	return o
}

func (o *overlay) setState(s State, attempt int, keysAndValues ...interface{}) {
	o.state = s
	o.logger.Debugw("swerve overlay", append([]interface{}{"state", s.String(), "attempt", attempt}, keysAndValues...)...)
}

func (o *overlay) run(ctx context.Context) (*Result, error) {
	percent := make([]float64, len(o.windows))
	for i := range percent {
		percent[i] = 1
	}
	maxAttempts := o.opts.maxAttempts(len(o.windows))
	deadline := o.opts.Clock.Now().Add(o.opts.AttemptBudget)
	o.setState(StateInit, 0, "budgets", len(percent), "max_attempts", maxAttempts)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > maxAttempts {
			return nil, o.fail(attempt-1, "no budget split found in %d attempts", maxAttempts)
		}
		if attempt > 1 && !o.opts.Clock.Now().Before(deadline) {
			return nil, o.fail(attempt-1, "attempt budget of %v exhausted", o.opts.AttemptBudget)
		}

		tr, err := o.planner.Solve(o.budgetConstraints(percent))
		if err != nil {
			return nil, err
		}
		schedules, failing := o.buildSchedules(tr.Timed, percent)
		o.setState(StateProfileBuilt, attempt, "duration", tr.Timed.TotalTime(), "unschedulable", len(failing))
		if len(failing) == 0 {
			failing = o.checkCorners(tr.Main, schedules)
		}
		if len(failing) == 0 {
			o.setState(StateDone, attempt, "percent", percent)
			return o.finish(tr, schedules, attempt, percent), nil
		}

		o.setState(StateShrinkBudget, attempt, "failing", failing)
		for _, i := range failing {
			percent[i] -= o.opts.PercentStep
			if percent[i] <= utils.Epsilon {
				return nil, o.fail(attempt, "budget of segment %d exhausted", i)
			}
		}
	}
}

func (o *overlay) fail(attempts int, format string, args ...interface{}) error {
	o.setState(StateFail, attempts)
	err := trajerr.NewInfeasibleError(format, args...)
	err.Attempts = attempts
	return err
}

func (o *overlay) budgetConstraints(percent []float64) []trajectory.Constraint {
	out := make([]trajectory.Constraint, len(o.windows))
	for i, w := range o.windows {
		share := o.translationShare(percent[i])
		out[i] = trajectory.NewSegmentBudgetConstraint(w.after, w.before, share*o.linVel, share*o.linAcc)
	}
	return out
}

// buildSchedules places every window in time and fits its rotation profile. It returns the
// indices of windows whose rotation cannot finish in time.
func (o *overlay) buildSchedules(timed *trajectory.Trajectory, percent []float64) ([]rotationSchedule, []int) {
	schedules := make([]rotationSchedule, len(o.windows))
	var failing []int
	for i, w := range o.windows {
		start := timed.TimeForDistance(w.after)
		end := timed.TimeForDistance(w.before)
		if i == len(o.windows)-1 {
			end = timed.TotalTime()
		}
		s, ok := o.schedule(w, start, end, o.rotationShare(percent[i]))
		if !ok {
			failing = append(failing, i)
		}
		schedules[i] = s
	}
	return schedules, failing
}

func (o *overlay) schedule(w rotationWindow, start, end, share float64) (rotationSchedule, bool) {
	s := rotationSchedule{start: start, end: end, from: w.from, target: w.from + w.delta}
	if math.Abs(w.delta) < utils.Epsilon && math.Abs(w.startVel) < utils.Epsilon && math.Abs(w.endVel) < utils.Epsilon {
		return s, true
	}
	if share*o.rotAcc <= utils.Epsilon || share*o.rotVel <= utils.Epsilon {
		return s, false
	}
	profile, err := control.NewTrapezoidalProfile(share*o.rotAcc, share*o.rotAcc, share*o.rotVel)
	if err != nil {
		return s, false
	}
	window := end - start
	if err := profile.FitToDuration(w.delta, w.startVel, w.endVel, window); err != nil {
		if !trajerr.Is(err, trajerr.KindInfeasible) {
			return s, false
		}
		if err := profile.Update(w.delta, w.startVel, w.endVel); err != nil {
			return s, false
		}
		if profile.TotalTime() > window+o.opts.EndSnapTolerance {
			return s, false
		}
	}
	s.profile = profile
	return s, true
}

func scheduleAt(schedules []rotationSchedule, t float64) int {
	i := sort.Search(len(schedules), func(i int) bool { return schedules[i].end >= t })
	if i >= len(schedules) {
		i = len(schedules) - 1
	}
	return i
}

// checkCorners returns the indices of windows containing a sample at which some corner moves
// faster or accelerates harder than the robot allows.
func (o *overlay) checkCorners(main *trajectory.Trajectory, schedules []rotationSchedule) []int {
	failed := make(map[int]bool)
	for _, p := range main.Points {
		idx := scheduleAt(schedules, p.Time)
		if failed[idx] {
			continue
		}
		deg, rate, accel := schedules[idx].at(p.Time)
		rot := spatialmath.NewRotation2dDegrees(deg)
		for _, c := range o.corners {
			st := c.State(p, rot, utils.DegToRad(rate), utils.DegToRad(accel))
			if st.Velocity.Norm() > o.linVel*(1+limitSlack) || st.Accel.Norm() > o.linAcc*(1+limitSlack) {
				o.logger.Debugw("corner over limit",
					"corner", c.Name, "time", p.Time, "velocity", st.Velocity.Norm(), "accel", st.Accel.Norm())
				failed[idx] = true
				break
			}
		}
	}
	out := make([]int, 0, len(failed))
	for i := range failed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (o *overlay) finish(tr *trajectory.Translation, schedules []rotationSchedule, attempts int, percent []float64) *Result {
	main := &trajectory.Trajectory{Name: trajectory.MainTrajectory, Points: make([]trajectory.Point, len(tr.Main.Points))}
	rates := make([]float64, len(main.Points))
	accels := make([]float64, len(main.Points))
	for i, p := range tr.Main.Points {
		deg, rate, accel := schedules[scheduleAt(schedules, p.Time)].at(p.Time)
		p.Rotation = spatialmath.NewRotation2dDegrees(deg)
		p.RotationVelocity = rate
		main.Points[i] = p
		rates[i] = utils.DegToRad(rate)
		accels[i] = utils.DegToRad(accel)
	}
	tr.Main = main

	out := map[string]*trajectory.Trajectory{trajectory.MainTrajectory: main}
	for name, traj := range wheelTrajectories(main, o.corners, rates, accels) {
		out[name] = traj
	}
	return &Result{
		Translation:  tr,
		Trajectories: out,
		Attempts:     attempts,
		Percentages:  append([]float64(nil), percent...),
	}
}
