// Package logger builds the process logger and carries request-scoped
// loggers through contexts.
package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/vecscope/internal/version"
)

// Options override the environment preset. Empty fields keep the preset.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

var presets = map[string]func() zap.Config{
	"prod":   zap.NewProductionConfig,
	"docker": zap.NewDevelopmentConfig,
	"dev":    zap.NewDevelopmentConfig,
	"local":  zap.NewDevelopmentConfig,
}

// NewLogger builds the logger for env. prod logs JSON at info, everything
// else logs colored console output at debug.
func NewLogger(env string, opts Options) (*zap.Logger, error) {
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("logger: unknown environment %q", env)
	}
	cfg := preset()

	if opts.Level != "" {
		lvl, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", opts.Level, err)
		}
		cfg.Level = lvl
	}

	switch opts.Format {
	case "":
	case "json":
		cfg.Encoding = "json"
		cfg.EncoderConfig = zap.NewProductionEncoderConfig()
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("logger: format %q (want json or console)", opts.Format)
	}

	cfg.InitialFields = map[string]any{
		"service": "vecscope",
		"version": version.Get().Version,
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l, nil
}

type ctxKey struct{}

// Into returns a copy of ctx carrying l.
func Into(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger stored by Into, or a no-op logger.
func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
