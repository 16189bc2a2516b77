package qdrant

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// FXModule provides *QdrantClient, *Adapter and the vectordb.Service backed by it.
// A qdrant.Config and a logger.Logger must be available in the container.
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewAdapterWithDI,
		fx.Annotate(
			func(a *Adapter) vectordb.Service { return a },
			fx.As(new(vectordb.Service)),
		),
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// AdapterParams groups the dependencies of NewAdapterWithDI.
type AdapterParams struct {
	fx.In

	Client   *QdrantClient
	Config   Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewAdapterWithDI builds the Adapter from the connected client.
func NewAdapterWithDI(p AdapterParams) *Adapter {
	return NewAdapter(p.Client.Client(), p.Config.BatchSize, p.Logger, p.Observer)
}

// RegisterQdrantLifecycle closes the connection on shutdown.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
