package control

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajgen/trajerr"
)

func TestTrapezoidalProfileShapes(t *testing.T) {
	for _, tc := range []struct {
		name       string
		distance   float64
		start, end float64
		shape      Shape
	}{
		{"trapezoid", 10, 0, 0, ShapeTrapezoid},
		{"pyramid", 1, 0, 0, ShapePyramid},
		{"pyramid with end velocity", 1, 0.5, 1, ShapePyramid},
		{"line braking", 0.1, 2, 0, ShapeLine},
		{"line accelerating", 0.1, 0, 1.9, ShapeLine},
		{"start above cap", 20, 4, 0, ShapeTrapezoid},
		{"negative distance", -10, 0, 0, ShapeTrapezoid},
		{"negative pyramid", -1, -0.2, 0, ShapePyramid},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewTrapezoidalProfile(2, 2, 2)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, p.Update(tc.distance, tc.start, tc.end), test.ShouldBeNil)
			test.That(t, p.Shape(), test.ShouldEqual, tc.shape)

			total := p.TotalTime()
			test.That(t, total, test.ShouldBeGreaterThan, 0)
			test.That(t, p.Position(total), test.ShouldAlmostEqual, tc.distance, 1e-6)
			test.That(t, p.Velocity(0), test.ShouldAlmostEqual, tc.start, 1e-9)
			test.That(t, p.Velocity(total), test.ShouldAlmostEqual, tc.end, 1e-9)

			// The profile is continuous: the last phase ends where Position says it does.
			test.That(t, p.Position(total-1e-9), test.ShouldAlmostEqual, tc.distance, 1e-6)

			prev := 0.0
			for i := 1; i <= 100; i++ {
				tm := total * float64(i) / 100
				pos := p.Position(tm)
				test.That(t, math.Abs(pos), test.ShouldBeGreaterThanOrEqualTo, math.Abs(prev)-1e-9)
				prev = pos
				if tc.shape != ShapeLine && tc.start <= 2 {
					test.That(t, math.Abs(p.Velocity(tm)), test.ShouldBeLessThanOrEqualTo, 2+1e-9)
				}
			}
		})
	}
}

func TestTrapezoidalProfileTiming(t *testing.T) {
	p, err := NewTrapezoidalProfile(1, 2, 4)
	test.That(t, err, test.ShouldBeNil)

	// Accelerate 0→4 over 4s (8 units), brake 4→0 over 2s (4 units), cruise 8 units (2s).
	test.That(t, p.Update(20, 0, 0), test.ShouldBeNil)
	test.That(t, p.TotalTime(), test.ShouldAlmostEqual, 8)
	test.That(t, p.Position(4), test.ShouldAlmostEqual, 8)
	test.That(t, p.Velocity(5), test.ShouldAlmostEqual, 4)
	test.That(t, p.Acceleration(1), test.ShouldAlmostEqual, 1)
	test.That(t, p.Acceleration(5), test.ShouldAlmostEqual, 0)
	test.That(t, p.Acceleration(7), test.ShouldAlmostEqual, -2)

	// Pyramid peak: sqrt((2·a·d·D)/(a+d)) = sqrt(8/3) for D=2.
	test.That(t, p.Update(2, 0, 0), test.ShouldBeNil)
	test.That(t, p.Shape(), test.ShouldEqual, ShapePyramid)
	peak := math.Sqrt(8.0 / 3)
	test.That(t, p.Velocity(peak/1), test.ShouldAlmostEqual, peak, 1e-9)
	test.That(t, p.TotalTime(), test.ShouldAlmostEqual, peak/1+peak/2, 1e-9)
}

func TestTimeForDistance(t *testing.T) {
	p, err := NewTrapezoidalProfile(2, 3, 3)
	test.That(t, err, test.ShouldBeNil)
	for _, distance := range []float64{12, -12, 1.5, -0.75} {
		test.That(t, p.Update(distance, 0, 0), test.ShouldBeNil)
		for i := 0; i <= 20; i++ {
			tm := p.TotalTime() * float64(i) / 20
			d := p.Position(tm)
			back, err := p.TimeForDistance(d)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, back, test.ShouldAlmostEqual, tm, 1e-6)
		}
	}

	test.That(t, p.Update(1, 0, 0), test.ShouldBeNil)
	_, err = p.TimeForDistance(2)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
	_, err = p.TimeForDistance(-0.5)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
}

func TestFitToDuration(t *testing.T) {
	p, err := NewTrapezoidalProfile(90, 90, 180)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, p.FitToDuration(90, 0, 0, 3), test.ShouldBeNil)
	test.That(t, p.TotalTime(), test.ShouldAlmostEqual, 3, 1e-6)
	test.That(t, p.Position(p.TotalTime()), test.ShouldAlmostEqual, 90, 1e-6)
	test.That(t, p.Velocity(3), test.ShouldAlmostEqual, 0)

	// Negative move with a non-zero end velocity.
	test.That(t, p.FitToDuration(-45, 0, -10, 2), test.ShouldBeNil)
	test.That(t, p.TotalTime(), test.ShouldAlmostEqual, 2, 1e-6)
	test.That(t, p.Velocity(p.TotalTime()), test.ShouldAlmostEqual, -10)

	// 180° in 0.5s needs more than the limits allow.
	err = p.FitToDuration(180, 0, 0, 0.5)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindInfeasible)
}

func TestTrapezoidalProfileErrors(t *testing.T) {
	_, err := NewTrapezoidalProfile(0, 1, 1)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindValidation)
	_, err = NewTrapezoidalProfile(1, 1, -1)
	test.That(t, trajerr.KindOf(err), test.ShouldEqual, trajerr.KindValidation)

	p, err := NewTrapezoidalProfile(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trajerr.KindOf(p.Update(1, 0, 5)), test.ShouldEqual, trajerr.KindInfeasible)
	test.That(t, trajerr.KindOf(p.Update(1, -1, 0)), test.ShouldEqual, trajerr.KindInfeasible)
	test.That(t, trajerr.KindOf(p.Update(0, 0, 1)), test.ShouldEqual, trajerr.KindInfeasible)

	test.That(t, p.Update(0, 0, 0), test.ShouldBeNil)
	test.That(t, p.TotalTime(), test.ShouldEqual, 0)
	test.That(t, p.Position(1), test.ShouldEqual, 0)
	test.That(t, p.String(), test.ShouldContainSubstring, "line")
}
