// Package logging builds the structured logger shared by commands, the sync
// engine and the remote client.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"tasksync/internal/config"
)

// New returns a logger writing text records to errOut and, when a log file is
// configured, JSON records to a size-rotated file. The returned closer must be
// called on exit.
//
// errOut receives debug records with --debug and only warnings otherwise.
func New(cfg *config.Config, errOut io.Writer) (*slog.Logger, io.Closer) {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})

	if cfg.Settings.LogFile == "" {
		return slog.New(console), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Settings.LogFile,
		MaxSize:    cfg.Settings.LogMaxSizeMB,
		MaxBackups: cfg.Settings.LogMaxBackups,
	}
	file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(fanout{console, file}), rotator
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler that accepts its level.
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
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
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
