package spatialmath

import (
	"fmt"
	"math"
)

// smallAngle is where the exp/log maps switch to their Taylor expansions.
const smallAngle = 1e-9

// Pose2d is a planar position and heading.
type Pose2d struct {
	Translation Translation2d
	Rotation    Rotation2d
}

// NewPose2d returns the pose at (x, y) facing theta radians.
func NewPose2d(x, y, theta float64) Pose2d {
	return Pose2d{Translation: NewTranslation2d(x, y), Rotation: NewRotation2d(theta)}
}

// NewZeroPose returns the pose at the origin facing +x.
func NewZeroPose() Pose2d {
	return Pose2d{Rotation: Rotation2d{cos: 1}}
}

// X returns the x coordinate.
func (p Pose2d) X() float64 { return p.Translation.X }

// Y returns the y coordinate.
func (p Pose2d) Y() float64 { return p.Translation.Y }

// TransformBy applies other in p's frame.
func (p Pose2d) TransformBy(other Pose2d) Pose2d {
	return Pose2d{
		Translation: p.Translation.Plus(other.Translation.RotateBy(p.Rotation)),
		Rotation:    p.Rotation.RotateBy(other.Rotation),
	}
}

// Inverse returns the pose that undoes p.
func (p Pose2d) Inverse() Pose2d {
	inv := p.Rotation.Inverse()
	return Pose2d{
		Translation: p.Translation.Negate().RotateBy(inv),
		Rotation:    inv,
	}
}

// RelativeTo returns p expressed in the local frame of origin.
func (p Pose2d) RelativeTo(origin Pose2d) Pose2d {
	return origin.Inverse().TransformBy(p)
}

// Exp integrates a constant-curvature twist starting from p.
func (p Pose2d) Exp(twist Twist2d) Pose2d {
	return p.TransformBy(PoseFromTwist(twist))
}

// PoseFromTwist is the exponential map: the pose reached from the origin by following twist for
// unit time.
func PoseFromTwist(twist Twist2d) Pose2d {
	sinTheta := math.Sin(twist.DTheta)
	cosTheta := math.Cos(twist.DTheta)
	var s, c float64
	if math.Abs(twist.DTheta) < smallAngle {
		s = 1.0 - twist.DTheta*twist.DTheta/6.0
		c = 0.5 * twist.DTheta
	} else {
		s = sinTheta / twist.DTheta
		c = (1.0 - cosTheta) / twist.DTheta
	}
	return Pose2d{
		Translation: NewTranslation2d(twist.DX*s-twist.DY*c, twist.DX*c+twist.DY*s),
		Rotation:    Rotation2d{cos: cosTheta, sin: sinTheta},
	}
}

// Log is the inverse of PoseFromTwist: the twist that carries the origin onto p.
func (p Pose2d) Log() Twist2d {
	dtheta := p.Rotation.Radians()
	halfDTheta := 0.5 * dtheta
	cosMinusOne := p.Rotation.cos - 1.0
	var halfThetaByTanOfHalfDTheta float64
	if math.Abs(cosMinusOne) < smallAngle {
		halfThetaByTanOfHalfDTheta = 1.0 - dtheta*dtheta/12.0
	} else {
		halfThetaByTanOfHalfDTheta = -(halfDTheta * p.Rotation.sin) / cosMinusOne
	}
	translation := p.Translation.RotateBy(Rotation2d{cos: halfThetaByTanOfHalfDTheta, sin: -halfDTheta})
	return Twist2d{DX: translation.X, DY: translation.Y, DTheta: dtheta}
}

// Interpolate moves frac of the way from p to other, translating and rotating independently.
func (p Pose2d) Interpolate(other Pose2d, frac float64) Pose2d {
	return Pose2d{
		Translation: p.Translation.Interpolate(other.Translation, frac),
		Rotation:    p.Rotation.Interpolate(other.Rotation, frac),
	}
}

func (p Pose2d) String() string {
	return fmt.Sprintf("%v@%v", p.Translation, p.Rotation)
}

// PoseAlmostEqual returns true if the two poses are within epsilon in position and angle.
func PoseAlmostEqual(a, b Pose2d, epsilon float64) bool {
	return a.Translation.DistanceTo(b.Translation) <= epsilon &&
		math.Abs(a.Rotation.DistanceTo(b.Rotation)) <= epsilon
}
