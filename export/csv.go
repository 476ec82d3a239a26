// Package export writes generated trajectories out as CSV tables, PNG plots and summaries.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/trajgen/trajectory"
)

// WriteCSV writes one row per point of t with the given fields as columns, after a header row.
// A nil fields selects trajectory.FieldNames.
func WriteCSV(w io.Writer, t *trajectory.Trajectory, fields []string) error {
	if fields == nil {
		fields = trajectory.FieldNames
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for i, p := range t.Points {
		for j, name := range fields {
			v, err := p.Field(name)
			if err != nil {
				return errors.Wrapf(err, "point %d", i)
			}
			row[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the file a trajectory of a path is written to, without extension. Path names
// may contain separators; they become part of the file name instead of directories.
func FileName(pathName, trajectoryName string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(pathName)
	return name + "." + trajectoryName
}

// WriteCSVFiles writes every trajectory of a path into dir. Each file is written to a temporary
// name and renamed into place, so an existing output is replaced whole or not at all.
func WriteCSVFiles(dir, pathName string, trajectories map[string]*trajectory.Trajectory) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(trajectories))
	for name := range trajectories {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	var errs error
	for _, name := range names {
		file := filepath.Join(dir, FileName(pathName, name)+".csv")
		if err := writeFileAtomic(file, func(w io.Writer) error {
			return WriteCSV(w, trajectories[name], nil)
		}); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "writing %s", file))
			continue
		}
		written = append(written, file)
	}
	return written, errs
}

func writeFileAtomic(file string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, os.Remove(tmp.Name()))
		}
	}()
	if err := write(tmp); err != nil {
		return multierr.Combine(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}
