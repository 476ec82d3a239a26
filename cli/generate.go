package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/trajgen/config"
	"go.viam.com/trajgen/export"
	"go.viam.com/trajgen/generator"
	"go.viam.com/trajgen/logging"
)

// loadConfig reads the request file and applies its log patterns.
func loadConfig(c *cli.Context, registry *logging.Registry, logger logging.Logger) (*config.Config, error) {
	cfg, err := config.Read(c.Context, c.Path(inputFlag), logger)
	if err != nil {
		return nil, err
	}
	if err := registry.UpdateConfig(cfg.Log, logger); err != nil {
		return nil, errors.Wrap(err, "failed to apply log patterns")
	}
	return cfg, nil
}

func workers(c *cli.Context, cfg *config.Config) int {
	if n := c.Int(workersFlag); n > 0 {
		return n
	}
	return cfg.Generator.Workers
}

// generateAll runs every path of cfg and returns the results in file order.
func generateAll(ctx context.Context, cfg *config.Config, workers int, logger logging.Logger) ([]generator.Result, error) {
	reqs, err := cfg.Requests()
	if err != nil {
		return nil, err
	}
	results := make(chan generator.Result, len(reqs))
	sched := generator.NewScheduler(ctx, workers, func(res generator.Result) { results <- res }, logger)
	defer sched.Close()

	order := make(map[string]int, len(reqs))
	for i, req := range reqs {
		order[req.PathID] = i
		if _, err := sched.Submit(req); err != nil {
			return nil, err
		}
	}
	out := make([]generator.Result, len(reqs))
	for range reqs {
		select {
		case res := <-results:
			out[order[res.PathID]] = res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// writeOutputs writes the trajectories of one successful result.
func writeOutputs(dir string, plot bool, res generator.Result) ([]string, error) {
	files, err := export.WriteCSVFiles(dir, res.PathID, res.Trajectories)
	if err != nil {
		return files, err
	}
	if !plot {
		return files, nil
	}
	plots, err := export.PlotFiles(dir, res.PathID, res.Trajectories)
	return append(files, plots...), err
}

// GenerateAction generates every path of the request file and writes the outputs of those that
// succeed. Paths that fail leave their previous outputs untouched.
func GenerateAction(c *cli.Context) error {
	registry := logging.NewRegistry()
	logger, closeLog := newLogger(c, registry)
	defer closeLog()
	cfg, err := loadConfig(c, registry, logger)
	if err != nil {
		return err
	}
	n := workers(c, cfg)
	results, err := generateAll(c.Context, cfg, n, registry.Sublogger(logger, "generate"))
	if err != nil {
		return err
	}

	dir, plot := c.Path(outFlag), c.Bool(plotFlag)
	g := new(errgroup.Group)
	g.SetLimit(n)
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
			warningf(c.App.ErrWriter, "path %q failed: %v", res.PathID, res.Err)
			continue
		}
		res := res
		g.Go(func() error {
			files, err := writeOutputs(dir, plot, res)
			if err != nil {
				return errors.Wrapf(err, "path %q", res.PathID)
			}
			logger.Debugw("wrote outputs", "path", res.PathID, "files", files)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	infof(c.App.Writer, "generated %d of %d paths into %s", len(results)-failed, len(results), dir)
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d paths failed", failed), 1)
	}
	return nil
}
