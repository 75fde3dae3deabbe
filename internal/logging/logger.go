package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
)

// Logger defines a minimal, printf-style logging contract.
//
// Components depend on this interface so tests can inject Nop() and the
// server can scope a logger per request without pulling in a concrete
// backend.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// Config controls the process-wide logging backend.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

var (
	backendMu sync.RWMutex
	backend   = newSlogBackend(Config{})
)

// Configure replaces the process-wide backend. Call once at startup, before
// component loggers are handed out to request handlers.
func Configure(config Config) {
	backendMu.Lock()
	backend = newSlogBackend(config)
	backendMu.Unlock()
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return &componentLogger{component: component}
}

// With returns a copy of logger carrying extra structured key/value
// attributes alongside the component field. Non-component loggers are
// returned unchanged.
func With(logger Logger, args ...any) Logger {
	cl, ok := logger.(*componentLogger)
	if !ok {
		return logger
	}
	attrs := make([]slog.Attr, 0, len(cl.attrs)+len(args)/2)
	attrs = append(attrs, cl.attrs...)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return &componentLogger{component: cl.component, attrs: attrs}
}

type componentLogger struct {
	component string
	attrs     []slog.Attr
}

func (l *componentLogger) log(level slog.Level, format string, args ...any) {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	b.log(level, l.component, l.attrs, fmt.Sprintf(format, args...))
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

type slogBackend struct {
	logger *slog.Logger
	level  slog.Level
}

func newSlogBackend(config Config) *slogBackend {
	level := slog.LevelInfo
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(config.Format) == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &slogBackend{logger: slog.New(handler), level: level}
}

func (b *slogBackend) log(level slog.Level, component string, attrs []slog.Attr, msg string) {
	if level < b.level {
		return
	}
	logger := b.logger
	if component != "" {
		logger = logger.With("component", component)
	}
	for _, attr := range attrs {
		logger = logger.With(attr)
	}
	switch level {
	case slog.LevelDebug:
		logger.Debug(msg)
	case slog.LevelWarn:
		logger.Warn(msg)
	case slog.LevelError:
		logger.Error(msg)
	default:
		logger.Info(msg)
	}
}
