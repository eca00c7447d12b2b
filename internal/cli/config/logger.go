package config

import (
	"io"
	"log/slog"
)

// BaseLevel is the logging level the process starts at and the level a
// runtime debug toggle returns to: Warn normally, Info under --verbose.
func BaseLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// NewLogger builds the process logger writing to w. The level var is
// shared with the shell so its /debug command can flip it at runtime.
func NewLogger(w io.Writer, verbose, debug bool) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(BaseLevel(verbose))
	if debug {
		level.Set(slog.LevelDebug)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), level
}
