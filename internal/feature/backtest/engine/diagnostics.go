// Package engine implements the limit-up pullback strategy as a per-instrument
// state machine driven one daily bar at a time.
package engine

import (
	"context"
	"log/slog"
)

// Diagnostics receives the engine's log lines.
// The engine never writes to a global logger, so callers decide where these go.
type Diagnostics interface {
	Log(level slog.Level, msg string, args ...any)
}

type slogDiagnostics struct {
	logger *slog.Logger
}

// NewSlogDiagnostics routes engine diagnostics to logger. A nil logger uses slog.Default().
func NewSlogDiagnostics(logger *slog.Logger) Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogDiagnostics{logger: logger}
}

func (d *slogDiagnostics) Log(level slog.Level, msg string, args ...any) {
	d.logger.Log(context.Background(), level, msg, args...)
}

// NopDiagnostics discards everything.
type NopDiagnostics struct{}

func (NopDiagnostics) Log(slog.Level, string, ...any) {}
