package embedding

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - *Client  (built from Config)
//   - Encoder  (the same *Client)
//
// and closes the client on shutdown. A Config must be supplied by the application.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *Client) Encoder { return c },
			fx.As(new(Encoder)),
		),
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// EmbeddingParams groups the dependencies of NewClientWithDI.
type EmbeddingParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI loads the model at construction time so that a broken model
// aborts startup.
func NewClientWithDI(p EmbeddingParams) (*Client, error) {
	return NewClientFromConfig(context.Background(), p.Config, p.Logger, p.Observer)
}

// RegisterEmbeddingLifecycle releases the model on application shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Releasing embedding model", nil, nil)
			return client.Close()
		},
	})
}
