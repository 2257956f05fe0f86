// Package commands implements the dspec subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/dspeclang/dspec/internal/config"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFrom retrieves the configuration from the context, or a
// default configuration if none was stored.
func ConfigFrom(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		SchemaDir: config.DefaultSchemaDir,
		Ext:       config.DefaultExt,
		Output:    config.DefaultOutput,
	}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// LoggerFrom retrieves the logger from the context, or a discard
// logger.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
