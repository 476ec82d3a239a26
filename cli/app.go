// Package cli contains the trajgen command line.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"go.viam.com/trajgen/logging"
)

const (
	// Flags.
	debugFlag    = "debug"
	inputFlag    = "input"
	outFlag      = "out"
	plotFlag     = "plot"
	workersFlag  = "workers"
	debounceFlag = "debounce"
	logFileFlag  = "log-file"
	histFlag     = "histogram"

	loggerName = "trajgen"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	inputFlagDef := &cli.PathFlag{
		Name:     inputFlag,
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "read the request from `FILE`",
	}
	workersFlagDef := &cli.IntFlag{
		Name:  workersFlag,
		Usage: "paths to generate at once (0 uses the request file's generator.workers)",
	}
	return &cli.App{
		Name:            "trajgen",
		Usage:           "generate robot trajectories from waypoint paths",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.PathFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "generate every path of a request file and write the trajectories as CSV",
				UsageText: fmt.Sprintf("trajgen generate --%s <file> --%s <dir> [other options]", inputFlag, outFlag),
				Flags: []cli.Flag{
					inputFlagDef,
					&cli.PathFlag{
						Name:     outFlag,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write outputs into `DIR`",
					},
					&cli.BoolFlag{
						Name:  plotFlag,
						Usage: "also write PNG plots",
					},
					workersFlagDef,
				},
				Action: GenerateAction,
			},
			{
				Name:      "summary",
				Usage:     "generate every path of a request file and print a table of results",
				UsageText: fmt.Sprintf("trajgen summary --%s <file> [other options]", inputFlag),
				Flags: []cli.Flag{
					inputFlagDef,
					workersFlagDef,
					&cli.IntFlag{
						Name:  histFlag,
						Usage: "print a velocity histogram of every main trajectory with `N` bins",
					},
				},
				Action: SummaryAction,
			},
			{
				Name:      "watch",
				Usage:     "regenerate a request file every time it changes",
				UsageText: fmt.Sprintf("trajgen watch --%s <file> --%s <dir> [other options]", inputFlag, outFlag),
				Flags: []cli.Flag{
					inputFlagDef,
					&cli.PathFlag{
						Name:     outFlag,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write outputs into `DIR`",
					},
					&cli.BoolFlag{
						Name:  plotFlag,
						Usage: "also write PNG plots",
					},
					&cli.DurationFlag{
						Name:  debounceFlag,
						Value: defaultDebounce,
						Usage: "wait this long after the last change before regenerating",
					},
					workersFlagDef,
				},
				Action: WatchAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of request files",
				Action: SchemaAction,
			},
			{
				Name:   "version",
				Usage:  "print version info for this program",
				Action: VersionAction,
			},
		},
	}
}

// newLogger returns the command's logger, registered so that request-file log patterns apply,
// and a function that closes its log file.
func newLogger(c *cli.Context, registry *logging.Registry) (logging.Logger, func()) {
	var logger logging.Logger
	if c.Bool(debugFlag) {
		logger = logging.NewDebugLogger(loggerName)
	} else {
		logger = logging.NewLogger(loggerName)
	}
	closeLog := func() {}
	if file := c.Path(logFileFlag); file != "" {
		appender := logging.NewFileAppender(file)
		logger.AddAppender(appender)
		closeLog = func() {
			//nolint:errcheck
			logger.Sync()
			if err := appender.Close(); err != nil {
				warningf(c.App.ErrWriter, "failed to close log file: %v", err)
			}
		}
	}
	return registry.GetOrRegister(logger), closeLog
}

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with a bold cyan "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, color.New(color.Bold, color.FgCyan).Sprint("Info: ")+format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, color.New(color.Bold, color.FgYellow).Sprint("Warning: ")+format+"\n", a...)
}
