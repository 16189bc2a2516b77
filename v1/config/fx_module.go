package config

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/chromem"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/postgres"
	"github.com/Aleph-Alpha/ragcore/v1/qdrant"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/server"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// Sections exposes every package configuration to the container.
type Sections struct {
	fx.Out

	Logger      logger.Config
	Metrics     metrics.Config
	Tracer      tracer.Config
	Qdrant      qdrant.Config
	Chromem     chromem.Config
	Embedding   embedding.Config
	VectorStore vectorstore.Config
	Postgres    postgres.Config
	Store       store.Config
	RAG         rag.Config
	LLM         llm.Config
	Chat        chat.Config
	Server      server.Config
}

// Split hands each section of c to fx.
func Split(c *Config) Sections {
	return Sections{
		Logger:      c.Logger,
		Metrics:     c.Metrics,
		Tracer:      c.Tracer,
		Qdrant:      c.Qdrant,
		Chromem:     c.Chromem,
		Embedding:   c.Embedding,
		VectorStore: c.VectorStore,
		Postgres:    c.Postgres,
		Store:       c.Store,
		RAG:         c.RAG,
		LLM:         c.LLM,
		Chat:        c.Chat,
		Server:      c.Server,
	}
}

// Module supplies c and its sections.
func Module(c *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(c),
		fx.Provide(Split),
	)
}
