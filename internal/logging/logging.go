// Package logging configures the process-wide slog logger.
//
// Console output goes to stderr as text or JSON; when a file is configured a
// rotating JSON log is written alongside it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // "text" or "json"
	AddSource bool
	File      string // optional rotated log file
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	closers []io.Closer
)

// Init configures the global logger and installs it as slog's default.
func Init(opts Options) {
	level := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		console = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	handler := console
	var opened []io.Closer
	if file := strings.TrimSpace(opts.File); file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		opened = append(opened, rotating)
		handler = fanout{console, slog.NewJSONHandler(rotating, handlerOpts)}
	}

	logger := slog.New(handler).With(slog.String("app", "mefu"))

	mu.Lock()
	old := closers
	current = logger
	closers = opened
	mu.Unlock()

	for _, c := range old {
		c.Close()
	}
	slog.SetDefault(logger)
}

// L returns the configured logger, falling back to slog's default.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return slog.Default()
	}
	return current
}

// With returns a logger tagged with a component name.
func With(component string) *slog.Logger {
	return L().With(slog.String("component", component))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Close flushes and closes any open log files.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	closers = nil
	return first
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout duplicates records to several handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
