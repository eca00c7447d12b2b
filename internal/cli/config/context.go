package config

import (
	"context"
	"log/slog"
)

// Context keys for the values the root command shares with subcommands.
type (
	configKey struct{}
	loggerKey struct{}
	levelKey  struct{}
)

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the configuration from the command context,
// falling back to the built-in defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// WithLogger stores the logger and its level var in the context.
func WithLogger(ctx context.Context, logger *slog.Logger, level *slog.LevelVar) context.Context {
	ctx = context.WithValue(ctx, loggerKey{}, logger)
	return context.WithValue(ctx, levelKey{}, level)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// GetLevel retrieves the logger's level var from the command context.
func GetLevel(ctx context.Context) *slog.LevelVar {
	if l, ok := ctx.Value(levelKey{}).(*slog.LevelVar); ok {
		return l
	}
	return new(slog.LevelVar)
}
