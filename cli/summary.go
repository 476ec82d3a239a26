package cli

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/trajgen/config"
	"go.viam.com/trajgen/export"
	"go.viam.com/trajgen/generator"
	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/trajectory"
	"go.viam.com/trajgen/trajerr"
)

// renderSummary renders one row per trajectory of every successful result and one row per
// failed result.
func renderSummary(results []generator.Result) (string, error) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Path", "Trajectory", "Status", "Points", "Time (s)", "Length", "Max Vel", "Mean Vel", "Max Accel", "Attempts"})
	for _, res := range results {
		if !res.OK() {
			t.AppendRow(table.Row{res.PathID, "", bad(trajerr.KindOf(res.Err).String()), "", "", "", "", "", "", res.Attempts})
			continue
		}
		rows, err := export.SummarizeAll(res.PathID, res.Trajectories)
		if err != nil {
			return "", errors.Wrapf(err, "path %q", res.PathID)
		}
		for _, s := range rows {
			t.AppendRow(table.Row{
				s.Path,
				s.Trajectory,
				ok("ok"),
				s.Points,
				fmt.Sprintf("%.3f", s.Duration),
				fmt.Sprintf("%.3f", s.Length),
				fmt.Sprintf("%.3f", s.MaxVelocity),
				fmt.Sprintf("%.3f", s.MeanVelocity),
				fmt.Sprintf("%.3f", s.MaxAccel),
				res.Attempts,
			})
		}
	}
	return t.Render(), nil
}

// SummaryAction generates every path of the request file and prints a table of the results.
func SummaryAction(c *cli.Context) error {
	registry := logging.NewRegistry()
	logger, closeLog := newLogger(c, registry)
	defer closeLog()
	cfg, err := loadConfig(c, registry, logger)
	if err != nil {
		return err
	}
	results, err := generateAll(c.Context, cfg, workers(c, cfg), registry.Sublogger(logger, "generate"))
	if err != nil {
		return err
	}
	out, err := renderSummary(results)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	if bins := c.Int(histFlag); bins > 0 {
		for _, res := range results {
			if !res.OK() {
				continue
			}
			printf(c.App.Writer, "\n%s velocity", res.PathID)
			if err := export.FprintHistogram(c.App.Writer, res.Trajectories[trajectory.MainTrajectory], "velocity", bins); err != nil {
				return err
			}
		}
	}
	for _, res := range results {
		if !res.OK() {
			warningf(c.App.ErrWriter, "path %q failed: %v", res.PathID, res.Err)
		}
	}
	return nil
}

// SchemaAction prints the JSON schema of request files.
func SchemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}

// VersionAction prints the version of this program.
func VersionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(debugFlag) {
		printf(c.App.Writer, "%s", info.String())
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	version := "?"
	if rev, ok := settings["vcs.revision"]; ok && len(rev) >= 8 {
		version = rev[:8]
		if settings["vcs.modified"] == "true" {
			version += "+"
		}
	}
	printf(c.App.Writer, "Version %s Git=%s", info.Main.Version, version)
	return nil
}
