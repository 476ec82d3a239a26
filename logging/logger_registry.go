package logging

import (
	"regexp"
	"sync"

	"github.com/pkg/errors"
)

// Registry tracks named loggers so that level patterns from a request file can be applied to
// loggers created before the file was read.
type Registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]Logger),
	}
}

// GetOrRegister will either:
//   - return an existing logger for `logger.Name()` or
//   - register the input `logger` under its name and configure it based on the existing
//     patterns.
//
// Such that if concurrent callers try registering the same logger, the "winner"s logger will be
// registered and all losers will return the winning logger.
func (lr *Registry) GetOrRegister(logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	name := logger.Name()
	if existingLogger, ok := lr.loggers[name]; ok {
		return existingLogger
	}

	lr.loggers[name] = logger
	if level, ok, err := matchLevel(lr.logConfig, name); err == nil && ok {
		logger.SetLevel(level)
	}
	return logger
}

// Sublogger creates a sublogger of `parent` and registers it.
func (lr *Registry) Sublogger(parent Logger, subname string) Logger {
	return lr.GetOrRegister(parent.Sublogger(subname))
}

// LoggerNamed returns the registered logger with the given name.
func (lr *Registry) LoggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

// UpdateConfig applies the level patterns to every registered logger. Later patterns win over
// earlier ones. Loggers that match no pattern are left at their current level. Invalid patterns
// are reported through `errorLogger` and skipped.
func (lr *Registry) UpdateConfig(logConfig []LoggerPatternConfig, errorLogger Logger) error {
	valid := make([]LoggerPatternConfig, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !ValidatePattern(lpc.Pattern) {
			errorLogger.Warnw("failed to validate a pattern", "pattern", lpc.Pattern)
			continue
		}
		valid = append(valid, lpc)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = valid
	for name, logger := range lr.loggers {
		level, ok, err := matchLevel(valid, name)
		if err != nil {
			return err
		}
		if ok {
			logger.SetLevel(level)
		}
	}
	return nil
}

func matchLevel(logConfig []LoggerPatternConfig, name string) (Level, bool, error) {
	var (
		matched bool
		level   Level
	)
	for _, lpc := range logConfig {
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return level, false, err
		}
		if !r.MatchString(name) {
			continue
		}
		parsed, err := LevelFromString(lpc.Level)
		if err != nil {
			return level, false, errors.Wrapf(err, "pattern %q", lpc.Pattern)
		}
		level, matched = parsed, true
	}
	return level, matched, nil
}
