package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the logger package.
// It provides *LoggerClient and exposes it as the Logger interface,
// and registers a shutdown hook that flushes buffered entries.
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		fx.Annotate(
			func(l *LoggerClient) Logger { return l },
			fx.As(new(Logger)),
		),
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
//
// The lifecycle hook:
//   - OnStop: Calls Sync() on the underlying Zap logger to flush any buffered logs.
//     Sync errors on stderr are not actionable and are ignored.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = client.Zap.Sync() // flushes any buffered logs
			return nil
		},
	})
}
