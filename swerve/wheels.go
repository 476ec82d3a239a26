package swerve

import (
	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajectory"
	"go.viam.com/trajgen/utils"
)

// wheelTrajectories derives one trajectory per corner from the chassis trajectory. rates and
// accels hold the chassis angular velocity (rad/s) and acceleration (rad/s²) at every point.
// A wheel's heading is the direction it rolls in; while it is stopped it keeps its last heading.
func wheelTrajectories(
	main *trajectory.Trajectory,
	corners []Corner,
	rates, accels []float64,
) map[string]*trajectory.Trajectory {
	out := make(map[string]*trajectory.Trajectory, len(corners))
	for _, c := range corners {
		points := make([]trajectory.Point, len(main.Points))
		var heading spatialmath.Rotation2d
		headingSet := false
		dist := 0.0
		for i, p := range main.Points {
			st := c.State(p, p.Rotation, rates[i], accels[i])
			speed := st.Velocity.Norm()
			if speed > utils.Epsilon {
				heading = spatialmath.NewRotation2dFromVector(st.Velocity.X, st.Velocity.Y)
				headingSet = true
			} else if !headingSet {
				heading = p.Pose.Rotation
			}
			if i > 0 {
				dist += st.Position.DistanceTo(points[i-1].Pose.Translation)
			}
			tangential := 0.0
			if speed > utils.Epsilon {
				tangential = (st.Accel.X*st.Velocity.X + st.Accel.Y*st.Velocity.Y) / speed
			}
			points[i] = trajectory.Point{
				Pose:             spatialmath.Pose2d{Translation: st.Position, Rotation: heading},
				Time:             p.Time,
				Position:         dist,
				Velocity:         speed,
				Acceleration:     tangential,
				Rotation:         p.Rotation,
				RotationVelocity: p.RotationVelocity,
				Segment:          p.Segment,
			}
		}
		out[c.Name] = &trajectory.Trajectory{Name: c.Name, Points: points}
	}
	return out
}
