package server

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
)

// FXModule provides *Server and runs it for the lifetime of the application.
var FXModule = fx.Module("server",
	fx.Provide(NewServerWithDI),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies of NewServerWithDI.
type ServerParams struct {
	fx.In

	Config  Config
	RAG     *rag.Service
	Chat    *chat.Service
	Logger  logger.Logger
	Metrics metrics.MetricsCollector `optional:"true"`
}

// NewServerWithDI builds the HTTP server for fx.
func NewServerWithDI(p ServerParams) (*Server, error) {
	return New(p.Config, p.RAG, p.Chat, p.Logger, p.Metrics)
}

// RegisterServerLifecycle starts the listener on a goroutine and shuts it down on stop.
// A listener failure shuts the application down.
func RegisterServerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, s *Server, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := s.Start(); err != nil {
					log.Error("HTTP server stopped", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown(ctx)
		},
	})
}
