package export

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"go.viam.com/trajgen/trajectory"
)

// Summary holds headline numbers for one trajectory.
type Summary struct {
	Path         string
	Trajectory   string
	Points       int
	Duration     float64
	Length       float64
	MaxVelocity  float64
	MeanVelocity float64
	StdVelocity  float64
	MaxAccel     float64
	MaxCurvature float64
}

// Summarize computes the Summary of t.
func Summarize(pathName string, t *trajectory.Trajectory) (Summary, error) {
	s := Summary{
		Path:       pathName,
		Trajectory: t.Name,
		Points:     t.Len(),
		Duration:   t.TotalTime(),
		Length:     t.Length(),
	}
	if t.Len() == 0 {
		return s, nil
	}
	vel := stats.Float64Data(lo.Map(t.Points, func(p trajectory.Point, _ int) float64 { return p.Velocity }))
	accel := lo.Map(t.Points, func(p trajectory.Point, _ int) float64 { return math.Abs(p.Acceleration) })
	curv := lo.Map(t.Points, func(p trajectory.Point, _ int) float64 { return math.Abs(p.Curvature) })

	var err error
	if s.MaxVelocity, err = vel.Max(); err != nil {
		return s, err
	}
	if s.MeanVelocity, err = vel.Mean(); err != nil {
		return s, err
	}
	if s.StdVelocity, err = vel.StandardDeviation(); err != nil {
		return s, err
	}
	s.MaxAccel = lo.Max(accel)
	s.MaxCurvature = lo.Max(curv)
	return s, nil
}

// SummarizeAll summarizes every trajectory of a path, main first and the others by name.
func SummarizeAll(pathName string, trajectories map[string]*trajectory.Trajectory) ([]Summary, error) {
	names := lo.Keys(trajectories)
	sort.Slice(names, func(i, j int) bool {
		if names[i] == trajectory.MainTrajectory || names[j] == trajectory.MainTrajectory {
			return names[i] == trajectory.MainTrajectory
		}
		return names[i] < names[j]
	})
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		s, err := Summarize(pathName, trajectories[name])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
