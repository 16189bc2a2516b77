package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Tracer and flushes it on shutdown.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the TracerProvider down on stop, flushing pending spans.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer.tracer == nil {
				return nil
			}
			tracer.logger.Info("Shutting down tracer", nil, nil)
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
