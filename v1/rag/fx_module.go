package rag

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// FXModule provides *Service and *SideWriter. The side writer is drained on stop.
var FXModule = fx.Module("rag",
	fx.Provide(
		NewServiceWithDI,
		NewSideWriterWithDI,
	),
	fx.Invoke(RegisterSideWriterLifecycle),
)

// ServiceParams groups the dependencies of NewServiceWithDI.
type ServiceParams struct {
	fx.In

	Config  Config
	Vectors *vectorstore.Adapter
	Encoder embedding.Encoder
	Repo    store.Repository
	Logger  logger.Logger
	Tracer  *tracer.Tracer           `optional:"true"`
	Metrics metrics.MetricsCollector `optional:"true"`
}

// NewServiceWithDI creates the RAG Service using dependency injection.
// Tracer and Metrics are optional.
//
// Parameters:
//   - p: A ServiceParams struct carrying the Config, the vector store adapter, the
//     embedding encoder, the repository and the Logger. It embeds fx.In.
//
// Returns:
//   - *Service: The ready service.
//   - error: An ErrInvalidConfig when p.Config does not validate.
//
// Example usage with fx:
//
//	app := fx.New(
//	    store.FXModule,
//	    vectorstore.FXModule,
//	    rag.FXModule,
//	    fx.Provide(func() rag.Config { return rag.DefaultConfig() }),
//	)
func NewServiceWithDI(p ServiceParams) (*Service, error) {
	return NewService(p.Config, p.Vectors, p.Encoder, p.Repo, p.Logger, p.Tracer, p.Metrics)
}

// SideWriterParams groups the dependencies of NewSideWriterWithDI.
type SideWriterParams struct {
	fx.In

	Config  Config
	Vectors *vectorstore.Adapter
	Logger  logger.Logger
	Metrics metrics.MetricsCollector `optional:"true"`
}

// NewSideWriterWithDI builds the SideWriter with a queue of p.Config.SideWriteBuffer entries.
func NewSideWriterWithDI(p SideWriterParams) *SideWriter {
	return NewSideWriter(p.Vectors, p.Config.SideWriteBuffer, p.Logger, p.Metrics)
}

// RegisterSideWriterLifecycle waits for pending side writes on shutdown.
func RegisterSideWriterLifecycle(lc fx.Lifecycle, w *SideWriter, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			succeeded, failed := w.Stats()
			log.Info("Draining side writes", nil, map[string]interface{}{
				"succeeded": succeeded,
				"failed":    failed,
			})
			return w.Close(ctx)
		},
	})
}
