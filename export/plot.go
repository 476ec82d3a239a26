package export

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/trajgen/trajectory"
)

// Default plot size.
const (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 6 * vg.Inch
)

// Series is one line of a plot: the yField column of a trajectory against its xField column.
type Series struct {
	Trajectory *trajectory.Trajectory
	XField     string
	YField     string
}

// NewPlot draws every series on one set of axes.
func NewPlot(title string, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Add(plotter.NewGrid())
	for i, s := range series {
		xs, err := s.Trajectory.Column(s.XField)
		if err != nil {
			return nil, err
		}
		ys, err := s.Trajectory.Column(s.YField)
		if err != nil {
			return nil, err
		}
		xys := make(plotter.XYs, len(xs))
		for j := range xs {
			xys[j].X, xys[j].Y = xs[j], ys[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "series %s/%s", s.Trajectory.Name, s.YField)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.Trajectory.Name+" "+s.YField, line)
		if i == 0 {
			p.X.Label.Text = s.XField
			p.Y.Label.Text = s.YField
		}
	}
	return p, nil
}

// PlotFiles writes a field map of every trajectory and a velocity profile of the main one into
// dir as PNG files, returning the files written.
func PlotFiles(dir, pathName string, trajectories map[string]*trajectory.Trajectory) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(trajectories))
	for name := range trajectories {
		names = append(names, name)
	}
	sort.Strings(names)

	field := make([]Series, 0, len(names))
	for _, name := range names {
		field = append(field, Series{Trajectory: trajectories[name], XField: "x", YField: "y"})
	}
	var written []string
	p, err := NewPlot(pathName, field...)
	if err != nil {
		return nil, err
	}
	p.X.Label.Text, p.Y.Label.Text = "x", "y"
	file := filepath.Join(dir, FileName(pathName, "field")+".png")
	if err := p.Save(PlotWidth, PlotHeight, file); err != nil {
		return nil, err
	}
	written = append(written, file)

	main, ok := trajectories[trajectory.MainTrajectory]
	if !ok {
		return written, nil
	}
	p, err = NewPlot(pathName+" profile",
		Series{Trajectory: main, XField: "time", YField: "velocity"},
		Series{Trajectory: main, XField: "time", YField: "acceleration"},
	)
	if err != nil {
		return written, err
	}
	p.Y.Label.Text = "velocity, acceleration"
	file = filepath.Join(dir, FileName(pathName, "profile")+".png")
	if err := p.Save(PlotWidth, PlotHeight, file); err != nil {
		return written, err
	}
	return append(written, file), nil
}
