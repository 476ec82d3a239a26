package trajectory

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/trajerr"
)

func testRobot() RobotParams {
	return RobotParams{
		WheelbaseWidth:  0.6,
		WheelbaseLength: 0.6,
		BumperWidth:     0.8,
		BumperLength:    0.8,
		Weight:          50,
		MaxVelocity:     4,
		MaxAccel:        4,
		LengthUnits:     "m",
		WeightUnits:     "kg",
		DriveType:       DriveTank,
	}
}

func testGenerator() GeneratorParams {
	return GeneratorParams{
		DistStep:            0.01,
		TimeStep:            0.02,
		MaxDx:               0.05,
		MaxDy:               0.00127,
		MaxDTheta:           0.0873,
		MaxSubdivisionDepth: DefaultMaxSubdivisionDepth,
		MaxPatchIterations:  DefaultMaxPatchIterations,
	}
}

func straightPath() *Path {
	return &Path{
		Name:      "straight",
		Units:     "m",
		Waypoints: []Waypoint{{X: 0, Y: 0}, {X: 1, Y: 0}},
		Params:    PathParameters{MaxVelocity: 2, MaxAccel: 2},
	}
}

func curvedPath() *Path {
	return &Path{
		Name:  "curve",
		Units: "m",
		Waypoints: []Waypoint{
			{X: 0, Y: 0, Heading: 0},
			{X: 2, Y: 1, Heading: 90},
			{X: 0, Y: 2, Heading: 180},
		},
		Params: PathParameters{MaxVelocity: 3, MaxAccel: 3},
	}
}

func TestStraightLineTrajectory(t *testing.T) {
	logger := logging.NewTestLogger(t)
	out, err := GenerateTranslation(straightPath(), testRobot(), testGenerator(), nil, logger)
	test.That(t, err, test.ShouldBeNil)

	main := out.Main
	test.That(t, main.Name, test.ShouldEqual, MainTrajectory)
	test.That(t, main.Points[0].Velocity, test.ShouldAlmostEqual, 0)
	test.That(t, main.Points[main.Len()-1].Velocity, test.ShouldAlmostEqual, 0, 1e-9)

	// Triangle profile: peak sqrt(a·d), duration 2·sqrt(d/a).
	test.That(t, main.TotalTime(), test.ShouldAlmostEqual, 2*math.Sqrt(0.5), 1e-2)
	// The distance-indexed profile reaches the analytic peak; the time grid may step over it by
	// up to one sample of acceleration.
	timedPeak, peak := 0.0, 0.0
	for _, p := range out.Timed.Points {
		timedPeak = math.Max(timedPeak, p.Velocity)
	}
	for _, p := range main.Points {
		peak = math.Max(peak, p.Velocity)
	}
	test.That(t, timedPeak, test.ShouldAlmostEqual, math.Sqrt(2), 1e-6)
	test.That(t, peak, test.ShouldAlmostEqual, math.Sqrt(2), 2*0.02)
	test.That(t, peak, test.ShouldBeLessThan, 2)

	// Integrating velocity over time recovers the path length.
	dist := 0.0
	for i := 1; i < main.Len(); i++ {
		a, b := main.Points[i-1], main.Points[i]
		dist += 0.5 * (a.Velocity + b.Velocity) * (b.Time - a.Time)
	}
	test.That(t, dist, test.ShouldAlmostEqual, 1.0, 1e-3)

	for i := 1; i < main.Len(); i++ {
		dt := main.Points[i].Time - main.Points[i-1].Time
		test.That(t, dt, test.ShouldBeGreaterThan, 0)
		if i < main.Len()-1 {
			test.That(t, dt, test.ShouldAlmostEqual, 0.02, 1e-9)
		}
		test.That(t, main.Points[i].Pose.Y(), test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestTimedTrajectoryInvariants(t *testing.T) {
	path := curvedPath()
	path.Params.StartVelocity = 0.5
	path.Params.EndVelocity = 1
	out, err := GenerateTranslation(path, testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	timed := out.Timed
	test.That(t, timed.Points[0].Velocity, test.ShouldAlmostEqual, 0.5)
	test.That(t, timed.Points[timed.Len()-1].Velocity, test.ShouldAlmostEqual, 1)
	for i := 0; i < timed.Len()-1; i++ {
		p, q := timed.Points[i], timed.Points[i+1]
		test.That(t, q.Time, test.ShouldBeGreaterThan, p.Time)
		test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, 3+1e-9)
		test.That(t, p.Velocity, test.ShouldBeGreaterThanOrEqualTo, 0)
		expected := (q.Velocity*q.Velocity - p.Velocity*p.Velocity) / (2 * (q.Position - p.Position))
		test.That(t, p.Acceleration, test.ShouldAlmostEqual, expected, 1e-9)
		test.That(t, math.Abs(p.Acceleration), test.ShouldBeLessThanOrEqualTo, 3+1e-6)
	}
	test.That(t, out.Main.Points[out.Main.Len()-1].Velocity, test.ShouldAlmostEqual, 1)
}

func TestDistanceVelocityConstraint(t *testing.T) {
	path := straightPath()
	path.Constraints = []Constraint{NewDistanceVelocityConstraint(0.2, 0.8, 0.5)}
	out, err := GenerateTranslation(path, testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// Both window edges are sampled.
	edges := 0
	for _, p := range out.Timed.Points {
		if math.Abs(p.Position-0.2) < 1e-9 || math.Abs(p.Position-0.8) < 1e-9 {
			edges++
		}
	}
	test.That(t, edges, test.ShouldEqual, 2)

	for _, traj := range []*Trajectory{out.Timed, out.Main} {
		inside := 0
		for _, p := range traj.Points {
			if p.Position > 0.2 && p.Position < 0.8 {
				inside++
				test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, 0.5+1e-9)
			}
		}
		test.That(t, inside, test.ShouldBeGreaterThan, 10)
	}

	// Outside the window the robot is free to go faster.
	peak := 0.0
	for _, p := range out.Main.Points {
		peak = math.Max(peak, p.Velocity)
	}
	test.That(t, peak, test.ShouldBeGreaterThan, 0.5)
}

func TestDistanceVelocityConstraintOffGrid(t *testing.T) {
	// Window edges that fall between distance steps still bound the resampled output.
	path := straightPath()
	path.Constraints = []Constraint{NewDistanceVelocityConstraint(0.2037, 0.7951, 0.5)}
	out, err := GenerateTranslation(path, testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for _, p := range out.Main.Points {
		if p.Position > 0.2037 && p.Position < 0.7951 {
			test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, 0.5+1e-9)
		}
	}
}

func TestUnreachableBoundaryVelocity(t *testing.T) {
	logger := logging.NewTestLogger(t)

	end := straightPath()
	end.Params = PathParameters{EndVelocity: 1.9, MaxVelocity: 2, MaxAccel: 1}
	_, err := GenerateTranslation(end, testRobot(), testGenerator(), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
	test.That(t, err.Error(), test.ShouldContainSubstring, "end velocity")

	start := straightPath()
	start.Params = PathParameters{StartVelocity: 1.9, MaxVelocity: 2, MaxAccel: 1}
	_, err = GenerateTranslation(start, testRobot(), testGenerator(), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
	test.That(t, err.Error(), test.ShouldContainSubstring, "start velocity")

	// sqrt(2·1·1) is exactly reachable.
	reachable := straightPath()
	reachable.Params = PathParameters{EndVelocity: math.Sqrt(2) - 1e-3, MaxVelocity: 2, MaxAccel: 1}
	out, err := GenerateTranslation(reachable, testRobot(), testGenerator(), nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Timed.Points[out.Timed.Len()-1].Velocity, test.ShouldAlmostEqual, math.Sqrt(2)-1e-3, 1e-6)
}

func TestBackwardPassRejectsNegativeReach(t *testing.T) {
	states := []constrainedState{
		{position: 0, velocity: 1, minAccel: 1, maxAccel: 2},
		{position: 0.5, velocity: 1, minAccel: 1, maxAccel: 2},
		{position: 1, velocity: 1, minAccel: 1, maxAccel: 2},
	}
	// A positive acceleration floor at the last sample leaves no way to have braked into it.
	params := ProfileParams{MaxVelocity: 2, MaxAccel: 1}
	err := backwardPass(states, nil, Environment{}, params, DefaultMaxPatchIterations)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot brake")
}

func TestCentripetalConstraint(t *testing.T) {
	path := curvedPath()
	const force = 20.0
	path.Constraints = []Constraint{NewCentripetalConstraint(force)}
	robot := testRobot()
	out, err := GenerateTranslation(path, robot, testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	limited := 0
	for _, p := range out.Timed.Points {
		if math.Abs(p.Curvature) < minCurvature {
			continue
		}
		limit := math.Sqrt(force / math.Abs(p.Curvature) / robot.Weight)
		test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, limit+1e-9)
		if limit < 3 {
			limited++
		}
	}
	test.That(t, limited, test.ShouldBeGreaterThan, 0)
}

func TestCentripetalConstraintUnits(t *testing.T) {
	c := NewCentripetalConstraint(10)
	robot := testRobot()
	robot.Weight = 10
	// A 1 m radius in inches: v = sqrt(10·1/10) = 1 m/s.
	env := Environment{PathUnits: "in", Robot: robot}
	v := c.MaxVelocity(ConstraintState{Curvature: 1 / 39.37007874015748}, env)
	test.That(t, v, test.ShouldAlmostEqual, 39.37007874015748, 1e-6)
	test.That(t, math.IsInf(c.MaxVelocity(ConstraintState{Curvature: 1e-6}, env), 1), test.ShouldBeTrue)
	test.That(t, c.MinMaxAccel(ConstraintState{Curvature: 1}, 1, env), test.ShouldResemble, Unconstrained)
}

func TestDistanceVelocityWindowIsOpen(t *testing.T) {
	c := NewDistanceVelocityConstraint(1, 2, 0.3)
	env := Environment{PathUnits: "m", Robot: testRobot()}
	test.That(t, c.MaxVelocity(ConstraintState{Position: 1.5}, env), test.ShouldEqual, 0.3)
	test.That(t, math.IsInf(c.MaxVelocity(ConstraintState{Position: 1}, env), 1), test.ShouldBeTrue)
	test.That(t, math.IsInf(c.MaxVelocity(ConstraintState{Position: 2}, env), 1), test.ShouldBeTrue)
}

func TestPatchIterationLimit(t *testing.T) {
	path := straightPath()
	path.Constraints = []Constraint{NewSegmentBudgetConstraint(0.3, 0.7, 1.9, 0.1)}
	gen := testGenerator()
	gen.MaxPatchIterations = 1
	_, err := GenerateTranslation(path, testRobot(), gen, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)

	gen.MaxPatchIterations = DefaultMaxPatchIterations
	out, err := GenerateTranslation(path, testRobot(), gen, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < out.Timed.Len()-1; i++ {
		p := out.Timed.Points[i]
		if p.Position >= 0.3 && out.Timed.Points[i+1].Position <= 0.7 {
			test.That(t, math.Abs(p.Acceleration), test.ShouldBeLessThanOrEqualTo, 0.1+1e-6)
		}
	}
}

func TestExtraConstraints(t *testing.T) {
	extra := []Constraint{NewDistanceVelocityConstraint(-1, 2, 0.25)}
	out, err := GenerateTranslation(straightPath(), testRobot(), testGenerator(), extra, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for _, p := range out.Timed.Points {
		test.That(t, p.Velocity, test.ShouldBeLessThanOrEqualTo, 0.25+1e-9)
	}
}

func TestDegenerateAndInvalidPaths(t *testing.T) {
	logger := logging.NewTestLogger(t)

	coincident := straightPath()
	coincident.Waypoints = []Waypoint{{X: 1, Y: 1}, {X: 1, Y: 1, Heading: 45}}
	_, err := GenerateTranslation(coincident, testRobot(), testGenerator(), nil, logger)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindDegeneratePath)

	single := straightPath()
	single.Waypoints = single.Waypoints[:1]
	_, err = GenerateTranslation(single, testRobot(), testGenerator(), nil, logger)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindValidation)

	badParams := straightPath()
	badParams.Params.StartVelocity = 5
	badParams.Units = "furlongs"
	_, err = GenerateTranslation(badParams, testRobot(), testGenerator(), nil, logger)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindValidation)
	test.That(t, err.Error(), test.ShouldContainSubstring, "start_velocity")
	test.That(t, err.Error(), test.ShouldContainSubstring, "furlongs")
}

func TestTimeForDistanceRoundTrip(t *testing.T) {
	out, err := GenerateTranslation(curvedPath(), testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	length := out.Timed.Length()
	test.That(t, out.Timed.TimeForDistance(0), test.ShouldAlmostEqual, 0)
	test.That(t, out.Timed.TimeForDistance(length), test.ShouldAlmostEqual, out.Timed.TotalTime())
	for _, frac := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		d := frac * length
		tm := out.Timed.TimeForDistance(d)
		test.That(t, out.Timed.StateAt(tm).Position, test.ShouldAlmostEqual, d, 1e-6)
		test.That(t, out.Main.StateAt(tm).Position, test.ShouldAlmostEqual, d, 3*0.02)
	}
}

func TestUnitConversionOfGeneratorParams(t *testing.T) {
	// A robot described in inches drives a path in meters.
	robot := testRobot()
	robot.LengthUnits = "in"
	robot.MaxVelocity = 4 / 0.0254
	robot.MaxAccel = 4 / 0.0254
	gen := testGenerator()
	gen.DistStep = 0.01 / 0.0254
	gen.MaxDx = 0.05 / 0.0254
	gen.MaxDy = 0.00127 / 0.0254

	inches, err := GenerateTranslation(straightPath(), robot, gen, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	meters, err := GenerateTranslation(straightPath(), testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, inches.View.Len(), test.ShouldEqual, meters.View.Len())
	test.That(t, inches.Main.TotalTime(), test.ShouldAlmostEqual, meters.Main.TotalTime(), 1e-6)
}

func TestPointFields(t *testing.T) {
	out, err := GenerateTranslation(curvedPath(), testRobot(), testGenerator(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for _, name := range FieldNames {
		col, err := out.Main.Column(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(col), test.ShouldEqual, out.Main.Len())
	}
	_, err = out.Main.Column("jerk")
	test.That(t, err, test.ShouldNotBeNil)

	// Tank robots face the direction of travel.
	for _, p := range out.Main.Points {
		test.That(t, p.Rotation.DistanceTo(p.Pose.Rotation), test.ShouldAlmostEqual, 0, 1e-9)
	}
}
