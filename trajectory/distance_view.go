package trajectory

import (
	"sort"

	"go.viam.com/trajgen/spatialmath"
	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/utils"
)

// minPathLength is the total length under which a path is treated as degenerate.
const minPathLength = 1e-6

// DistanceSample is a parameterized point re-indexed by cumulative distance along the path.
type DistanceSample struct {
	ParameterizedPoint
	Position float64
}

// DistanceView is a path resampled at uniform arc-length spacing.
type DistanceView struct {
	samples []DistanceSample
	// segmentEnds[i] is the cumulative distance at which segment i ends.
	segmentEnds []float64
}

// NewDistanceView resamples points every step units of arc length. The final sample always lands
// exactly at the end of the path, so the last gap may be shorter or slightly longer than step.
// Every break strictly inside the path gets a sample of its own.
func NewDistanceView(points []ParameterizedPoint, step float64, breaks ...float64) (*DistanceView, error) {
	if !(step > 0) {
		return nil, trajerr.NewValidationError("generator.dist_step", "must be positive, got %g", step)
	}
	if len(points) < 2 {
		return nil, trajerr.NewDegeneratePathError("path has %d parameterized points", len(points))
	}

	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + points[i].Pose.Translation.DistanceTo(points[i-1].Pose.Translation)
	}
	total := cum[len(cum)-1]
	if total < minPathLength {
		return nil, trajerr.NewDegeneratePathError("total path length %g is too short", total)
	}

	var targets []float64
	for k := 0; ; k++ {
		d := float64(k) * step
		// A sample closer than a twentieth of a step to the end is folded into the final one.
		if d >= total-0.05*step {
			break
		}
		targets = append(targets, d)
	}
	targets = append(targets, total)
	targets = insertBreaks(targets, breaks, total)

	samples := make([]DistanceSample, len(targets))
	j := 0
	for k, d := range targets {
		for j+2 < len(cum) && cum[j+1] < d {
			j++
		}
		samples[k] = DistanceSample{ParameterizedPoint: interpolatePoint(points[j], points[j+1], cum[j], cum[j+1], d)}
	}

	// Rebuild positions over the resampled polyline.
	for k := 1; k < len(samples); k++ {
		samples[k].Position = samples[k-1].Position +
			samples[k].Pose.Translation.DistanceTo(samples[k-1].Pose.Translation)
	}

	numSegments := points[len(points)-1].Segment + 1
	segmentEnds := make([]float64, numSegments)
	for i, p := range points {
		segmentEnds[p.Segment] = remap(cum[i], targets, samples)
	}
	segmentEnds[numSegments-1] = samples[len(samples)-1].Position
	return &DistanceView{samples: samples, segmentEnds: segmentEnds}, nil
}

// minBreakGap is the distance under which a break is merged into an existing sample.
const minBreakGap = 1e-6

func insertBreaks(targets, breaks []float64, total float64) []float64 {
	for _, b := range breaks {
		if !(b > minBreakGap && b < total-minBreakGap) {
			continue
		}
		k := sort.SearchFloat64s(targets, b)
		if targets[k]-b < minBreakGap || b-targets[k-1] < minBreakGap {
			continue
		}
		targets = append(targets, 0)
		copy(targets[k+1:], targets[k:])
		targets[k] = b
	}
	return targets
}

func interpolatePoint(a, b ParameterizedPoint, da, db, d float64) ParameterizedPoint {
	frac := 0.0
	if db-da > utils.Epsilon {
		frac = utils.Clamp((d-da)/(db-da), 0, 1)
	}
	seg := a.Segment
	if frac >= 1 {
		seg = b.Segment
	}
	return ParameterizedPoint{
		Pose:      a.Pose.Interpolate(b.Pose, frac),
		Rotation:  a.Rotation.Interpolate(b.Rotation, frac),
		Curvature: utils.Lerp(a.Curvature, b.Curvature, frac),
		Segment:   seg,
	}
}

// remap converts an original cumulative distance into the rebuilt position scale.
func remap(d float64, targets []float64, samples []DistanceSample) float64 {
	k := sort.SearchFloat64s(targets, d)
	switch {
	case k == 0:
		return samples[0].Position
	case k >= len(targets):
		return samples[len(samples)-1].Position
	}
	frac := (d - targets[k-1]) / (targets[k] - targets[k-1])
	return utils.Lerp(samples[k-1].Position, samples[k].Position, frac)
}

// Len returns the number of samples.
func (v *DistanceView) Len() int {
	return len(v.samples)
}

// At returns sample i.
func (v *DistanceView) At(i int) DistanceSample {
	return v.samples[i]
}

// Samples returns all samples in order.
func (v *DistanceView) Samples() []DistanceSample {
	return v.samples
}

// Length returns the total arc length.
func (v *DistanceView) Length() float64 {
	return v.samples[len(v.samples)-1].Position
}

// NumSegments returns the number of waypoint-to-waypoint segments.
func (v *DistanceView) NumSegments() int {
	return len(v.segmentEnds)
}

// SegmentBounds returns the cumulative distance at which segment i starts and ends.
func (v *DistanceView) SegmentBounds(i int) (float64, float64) {
	start := 0.0
	if i > 0 {
		start = v.segmentEnds[i-1]
	}
	return start, v.segmentEnds[i]
}

// PoseAt returns the sample pose nearest to distance d.
func (v *DistanceView) PoseAt(d float64) spatialmath.Pose2d {
	i := sort.Search(len(v.samples), func(i int) bool { return v.samples[i].Position >= d })
	if i >= len(v.samples) {
		i = len(v.samples) - 1
	}
	return v.samples[i].Pose
}
