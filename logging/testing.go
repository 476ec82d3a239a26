package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender writes entries through the test's Log method, so output from parallel tests stays
// with the test that wrote it.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that logs lines formatted like a ConsoleAppender's to tb.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := formatEntry(entry, fields)
	tapp.tb.Log(line)
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
