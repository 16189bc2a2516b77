package vectorstore

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// FXModule provides *Adapter. The vectordb.Service backend comes from either
// qdrant.FXModule or chromem.FXModule.
var FXModule = fx.Module("vectorstore",
	fx.Provide(NewAdapterWithDI),
)

// AdapterParams groups the dependencies of NewAdapterWithDI.
type AdapterParams struct {
	fx.In

	Config  Config
	DB      vectordb.Service
	Encoder embedding.Encoder
	Logger  logger.Logger
}

// NewAdapterWithDI wraps the injected vectordb.Service.
func NewAdapterWithDI(p AdapterParams) *Adapter {
	return New(p.DB, p.Encoder, p.Config, p.Logger)
}
