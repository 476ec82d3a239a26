package export

import (
	"io"

	"github.com/aybabtme/uniplot/histogram"

	"go.viam.com/trajgen/trajectory"
)

// HistogramWidth is the width, in characters, of the longest histogram bar.
const HistogramWidth = 40

// FprintHistogram prints a text histogram of one field of t with the given number of bins.
func FprintHistogram(w io.Writer, t *trajectory.Trajectory, field string, bins int) error {
	data, err := t.Column(field)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}
	return histogram.Fprint(w, histogram.Hist(bins, data), histogram.Linear(HistogramWidth))
}
