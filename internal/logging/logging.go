// Package logging provides the structured event sink the core packages
// depend on, and a logrus-backed adapter for the CLI to wire at startup.
// No package under internal/rpmformat, internal/xmlcodec, internal/walker
// or internal/reconciler imports logrus directly: internal/reconciler
// accepts a Sink, and the other three do no logging and return errors.
package logging

import (
	"fmt"
	"log/syslog"
	"os"

	"github.com/sirupsen/logrus"
)

// Sink is the structured event interface the core accepts instead of a
// concrete logger, so tests can assert on emitted events without stdout
// capture and so the CLI can route events to syslog or stdout.
type Sink interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Sink
}

// logrusSink is the production Sink, backed by a *logrus.Entry so that
// WithField accumulates structured context the way logrus callers expect.
type logrusSink struct {
	entry *logrus.Entry
}

// NewLogrusSink builds a Sink targeting either stdout or syslog, per the
// log.target configuration key. RUST_LOG, when set, always forces stdout
// and is applied by the caller before constructing the sink.
func NewLogrusSink(target string, level logrus.Level) (Sink, error) {
	logger := logrus.New()
	logger.SetLevel(level)

	switch target {
	case "stdout", "":
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "syslog":
		hook, err := newSyslogHook()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to syslog: %w", err)
		}
		logger.SetOutput(discard{})
		logger.AddHook(hook)
	default:
		return nil, fmt.Errorf("unknown log target %q", target)
	}

	return &logrusSink{entry: logrus.NewEntry(logger)}, nil
}

func (s *logrusSink) Infof(format string, args ...any)  { s.entry.Infof(format, args...) }
func (s *logrusSink) Warnf(format string, args ...any)  { s.entry.Warnf(format, args...) }
func (s *logrusSink) Errorf(format string, args ...any) { s.entry.Errorf(format, args...) }

func (s *logrusSink) WithField(key string, value any) Sink {
	return &logrusSink{entry: s.entry.WithField(key, value)}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// syslogHook forwards logrus entries to the local syslog daemon. logrus
// ships no built-in syslog integration in this module's import set, so
// this hook is a thin adapter over the standard library's log/syslog,
// following logrus's own documented Hook interface.
type syslogHook struct {
	writer *syslog.Writer
}

func newSyslogHook() (*syslogHook, error) {
	w, err := syslog.New(syslog.LOG_INFO, "rpm-tool")
	if err != nil {
		return nil, err
	}
	return &syslogHook{writer: w}, nil
}

func (h *syslogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *syslogHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	switch e.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return h.writer.Crit(line)
	case logrus.ErrorLevel:
		return h.writer.Err(line)
	case logrus.WarnLevel:
		return h.writer.Warning(line)
	case logrus.DebugLevel, logrus.TraceLevel:
		return h.writer.Debug(line)
	default:
		return h.writer.Info(line)
	}
}

// NopSink discards every event; useful in tests that only assert on
// return values.
type NopSink struct{}

func (NopSink) Infof(string, ...any)     {}
func (NopSink) Warnf(string, ...any)     {}
func (NopSink) Errorf(string, ...any)    {}
func (n NopSink) WithField(string, any) Sink { return n }
