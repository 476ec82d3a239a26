package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestRotationComposition(t *testing.T) {
	a := NewRotation2dDegrees(30)
	b := NewRotation2dDegrees(75)
	test.That(t, a.RotateBy(b).Degrees(), test.ShouldAlmostEqual, 105)
	test.That(t, a.RotateBy(a.Inverse()).Radians(), test.ShouldAlmostEqual, 0)

	wrap := NewRotation2dDegrees(170).RotateBy(NewRotation2dDegrees(30))
	test.That(t, wrap.Degrees(), test.ShouldAlmostEqual, -160)
}

func TestRotationInterpolateShortestArc(t *testing.T) {
	from := NewRotation2dDegrees(170)
	to := NewRotation2dDegrees(-170)
	test.That(t, from.DistanceTo(to), test.ShouldAlmostEqual, math.Pi/9)
	mid := from.Interpolate(to, 0.5)
	test.That(t, math.Abs(mid.Degrees()), test.ShouldAlmostEqual, 180)
	test.That(t, from.Interpolate(to, 0).Degrees(), test.ShouldAlmostEqual, 170)
	test.That(t, from.Interpolate(to, 1).Degrees(), test.ShouldAlmostEqual, -170)
}

func TestRotationFromVector(t *testing.T) {
	test.That(t, NewRotation2dFromVector(0, 2).Degrees(), test.ShouldAlmostEqual, 90)
	test.That(t, NewRotation2dFromVector(0, 0).Degrees(), test.ShouldAlmostEqual, 0)
}

func TestPoseTransformAndInverse(t *testing.T) {
	p := NewPose2d(1, 2, math.Pi/2)
	step := NewPose2d(1, 0, 0)
	moved := p.TransformBy(step)
	test.That(t, moved.X(), test.ShouldAlmostEqual, 1)
	test.That(t, moved.Y(), test.ShouldAlmostEqual, 3)

	identity := p.TransformBy(p.Inverse())
	test.That(t, PoseAlmostEqual(identity, NewZeroPose(), 1e-12), test.ShouldBeTrue)

	rel := moved.RelativeTo(p)
	test.That(t, PoseAlmostEqual(rel, step, 1e-12), test.ShouldBeTrue)
}

func TestExpLogRoundTrip(t *testing.T) {
	for _, twist := range []Twist2d{
		{DX: 1, DY: 0, DTheta: 0},
		{DX: 0.5, DY: 0.1, DTheta: 0.3},
		{DX: 2, DY: -0.4, DTheta: -1.2},
		{DX: 0, DY: 0, DTheta: 0.7},
		{DX: 1e-3, DY: 0, DTheta: 1e-12},
	} {
		pose := PoseFromTwist(twist)
		back := pose.Log()
		test.That(t, back.DX, test.ShouldAlmostEqual, twist.DX, 1e-9)
		test.That(t, back.DY, test.ShouldAlmostEqual, twist.DY, 1e-9)
		test.That(t, back.DTheta, test.ShouldAlmostEqual, twist.DTheta, 1e-9)
	}
}

func TestExpQuarterCircle(t *testing.T) {
	// Driving a quarter of a unit circle to the left ends at (1, 1) facing +y.
	pose := NewZeroPose().Exp(Twist2d{DX: math.Pi / 2, DTheta: math.Pi / 2})
	test.That(t, pose.X(), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, pose.Y(), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, pose.Rotation.Degrees(), test.ShouldAlmostEqual, 90)
}

func TestTwistHelpers(t *testing.T) {
	tw := Twist2d{DX: 3, DY: 4, DTheta: 1}
	test.That(t, tw.Norm(), test.ShouldAlmostEqual, 5)
	test.That(t, tw.Curvature(), test.ShouldAlmostEqual, 0.2)
	test.That(t, tw.Scaled(2).DTheta, test.ShouldAlmostEqual, 2)
	test.That(t, tw.Exceeds(5, 5, 1.5), test.ShouldBeFalse)
	test.That(t, tw.Exceeds(5, 3.9, 1.5), test.ShouldBeTrue)
	test.That(t, Twist2d{DX: -2}.Exceeds(1, 1, 1), test.ShouldBeTrue)
}

func TestTranslationHelpers(t *testing.T) {
	a := NewTranslation2d(1, 0)
	b := NewTranslation2d(3, 2)
	test.That(t, a.DistanceTo(b), test.ShouldAlmostEqual, math.Sqrt(8))
	mid := a.Interpolate(b, 0.5)
	test.That(t, mid.X, test.ShouldAlmostEqual, 2)
	test.That(t, mid.Y, test.ShouldAlmostEqual, 1)
	rot := a.RotateBy(NewRotation2dDegrees(90))
	test.That(t, rot.X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, rot.Y, test.ShouldAlmostEqual, 1)
	test.That(t, b.Minus(a).Direction().Degrees(), test.ShouldAlmostEqual, 45)
}
