package chromem

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// FXModule provides *Store and exposes it as vectordb.Service.
var FXModule = fx.Module("chromem",
	fx.Provide(
		NewStoreWithDI,
		fx.Annotate(
			func(s *Store) vectordb.Service { return s },
			fx.As(new(vectordb.Service)),
		),
	),
)

// StoreParams groups the dependencies of NewStoreWithDI.
type StoreParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI opens the embedded store described by p.Config. A configured
// PersistPath reopens the collections written by a previous run.
func NewStoreWithDI(p StoreParams) (*Store, error) {
	return NewStore(p.Config, p.Logger, p.Observer)
}
