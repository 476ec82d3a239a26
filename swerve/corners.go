package swerve

import (
	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajectory"
)

// Corner names, in output order.
const (
	FrontLeft  = "fl"
	FrontRight = "fr"
	BackLeft   = "bl"
	BackRight  = "br"
)

// Corner is a wheel module at a fixed offset from the chassis center, in the chassis frame
// (x forward, y left).
type Corner struct {
	Name   string
	Offset spatialmath.Translation2d
}

// Corners returns the four wheel modules of a wheelbase length long and width wide.
func Corners(length, width float64) []Corner {
	hl, hw := length/2, width/2
	return []Corner{
		{Name: FrontLeft, Offset: spatialmath.NewTranslation2d(hl, hw)},
		{Name: FrontRight, Offset: spatialmath.NewTranslation2d(hl, -hw)},
		{Name: BackLeft, Offset: spatialmath.NewTranslation2d(-hl, hw)},
		{Name: BackRight, Offset: spatialmath.NewTranslation2d(-hl, -hw)},
	}
}

// CornerState is the field-frame motion of one wheel module.
type CornerState struct {
	Position spatialmath.Translation2d
	Velocity spatialmath.Translation2d
	Accel    spatialmath.Translation2d
}

// State returns the motion of the corner when the chassis is at p, rotated to rotation and
// spinning at omega rad/s with angular acceleration alpha rad/s². The chassis translates along
// p's heading.
func (c Corner) State(p trajectory.Point, rotation spatialmath.Rotation2d, omega, alpha float64) CornerState {
	r := c.Offset.RotateBy(rotation)
	perp := spatialmath.NewTranslation2d(-r.Y, r.X)
	heading := p.Pose.Rotation
	dir := spatialmath.NewTranslation2d(heading.Cos(), heading.Sin())
	return CornerState{
		Position: p.Pose.Translation.Plus(r),
		Velocity: dir.Times(p.Velocity).Plus(perp.Times(omega)),
		Accel:    dir.Times(p.Acceleration).Plus(perp.Times(alpha)),
	}
}
