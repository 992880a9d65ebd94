// Package logging defines the small leveled logger used across the converter
// and the providers that back it: a console writer for humans and go-logger
// for structured output.
package logging

import (
	"fmt"
	"io"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the logging contract every package depends on. Arguments are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithFields(fields map[string]any) Logger
}

// Config selects a provider and minimum level.
type Config struct {
	Level  string
	Format string
}

// New builds a logger for cfg. Console output goes to w; the go-logger
// formats use go-logger's own sink.
func New(cfg Config, w io.Writer) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		level, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		return NewConsole(w, level), nil
	case "json", "pretty":
		return newGoLogger(cfg)
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}
}

// UsesStdout reports whether the configured format writes to stdout.
func UsesStdout(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "pretty":
		return true
	}
	return false
}

func newGoLogger(cfg Config) (Logger, error) {
	options := []glog.Option{}
	if level := glogLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	}
	return &glogAdapter{inner: glog.NewLogger(options...).GetLogger("xmldocmd")}, nil
}

func glogLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}

type glogAdapter struct {
	inner glog.Logger
}

func (l *glogAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *glogAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *glogAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *glogAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func (l *glogAdapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return &glogAdapter{inner: with.WithFields(cloneFields(fields))}
	}
	return l
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return copied
}

type noop struct{}

// NoOp returns a logger that discards everything.
func NoOp() Logger { return noop{} }

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}

func (n noop) WithFields(map[string]any) Logger { return n }
