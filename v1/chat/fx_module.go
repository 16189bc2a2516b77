package chat

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
)

// FXModule provides *Service from the rag service, the LLM gateway and the side writer.
var FXModule = fx.Module("chat",
	fx.Provide(NewServiceWithDI),
)

// ServiceParams groups the dependencies of NewServiceWithDI.
type ServiceParams struct {
	fx.In

	Config    Config
	Repo      store.Repository
	Retriever *rag.Service
	Gateway   *llm.Gateway
	Side      *rag.SideWriter
	Logger    logger.Logger
	Tracer    *tracer.Tracer `optional:"true"`
}

// NewServiceWithDI builds the chat Service from injected dependencies.
func NewServiceWithDI(p ServiceParams) *Service {
	return NewService(p.Config, p.Repo, p.Retriever, p.Gateway, p.Side, p.Logger, p.Tracer)
}
