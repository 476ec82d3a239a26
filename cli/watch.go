package cli

import (
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/trajgen/config"
	"go.viam.com/trajgen/generator"
	"go.viam.com/trajgen/logging"
)

const defaultDebounce = 250 * time.Millisecond

// WatchAction regenerates the request file every time it is saved until interrupted. Requests
// for a path that is still generating replace each other, so only the newest edit is written.
func WatchAction(c *cli.Context) error {
	registry := logging.NewRegistry()
	logger, closeLog := newLogger(c, registry)
	defer closeLog()
	input, err := filepath.Abs(c.Path(inputFlag))
	if err != nil {
		return err
	}
	dir, plot := c.Path(outFlag), c.Bool(plotFlag)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	//nolint:errcheck
	defer watcher.Close()
	// Editors often replace the file instead of writing it, so watch its directory.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", input)
	}

	var sched *generator.Scheduler
	defer func() {
		if sched != nil {
			sched.Close()
		}
	}()
	deliver := func(res generator.Result) {
		if !res.OK() {
			warningf(c.App.ErrWriter, "path %q failed: %v", res.PathID, res.Err)
			return
		}
		if _, err := writeOutputs(dir, plot, res); err != nil {
			warningf(c.App.ErrWriter, "path %q: %v", res.PathID, err)
			return
		}
		infof(c.App.Writer, "regenerated %q in %v", res.PathID, res.Duration)
	}

	regenerate := func() {
		cfg, err := config.Read(c.Context, input, logger)
		if err != nil {
			warningf(c.App.ErrWriter, "%v", err)
			return
		}
		if err := registry.UpdateConfig(cfg.Log, logger); err != nil {
			warningf(c.App.ErrWriter, "%v", err)
		}
		if sched == nil {
			sched = generator.NewScheduler(c.Context, workers(c, cfg), deliver, registry.Sublogger(logger, "generate"))
		}
		reqs, err := cfg.Requests()
		if err != nil {
			warningf(c.App.ErrWriter, "%v", err)
			return
		}
		for _, req := range reqs {
			if _, err := sched.Submit(req); err != nil {
				warningf(c.App.ErrWriter, "%v", err)
			}
		}
	}

	// regenerate only ever runs on this goroutine; the debouncer signals it through changed.
	changed := make(chan struct{}, 1)
	debounced := debounce.New(c.Duration(debounceFlag))
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	regenerate()
	infof(c.App.Writer, "watching %s", input)
	for {
		select {
		case <-c.Context.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != input || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debugw("request file changed", "op", ev.Op.String())
			debounced(notify)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			warningf(c.App.ErrWriter, "watch error: %v", err)
		case <-changed:
			regenerate()
		}
	}
}
