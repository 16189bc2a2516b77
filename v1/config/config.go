package config

import (
	"errors"
	"fmt"

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

const serviceName = "ragcore"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the full application configuration, one section per package.
type Config struct {
	Logger      logger.Config      `yaml:"logger" koanf:"logger"`
	Metrics     metrics.Config     `yaml:"metrics" koanf:"metrics"`
	Tracer      tracer.Config      `yaml:"tracer" koanf:"tracer"`
	Qdrant      qdrant.Config      `yaml:"qdrant" koanf:"qdrant"`
	Chromem     chromem.Config     `yaml:"chromem" koanf:"chromem"`
	Embedding   embedding.Config   `yaml:"embedding" koanf:"embedding"`
	VectorStore vectorstore.Config `yaml:"vectorstore" koanf:"vectorstore"`
	Postgres    postgres.Config    `yaml:"postgres" koanf:"postgres"`
	Store       store.Config       `yaml:"store" koanf:"store"`
	RAG         rag.Config         `yaml:"rag" koanf:"rag"`
	LLM         llm.Config         `yaml:"llm" koanf:"llm"`
	Chat        chat.Config        `yaml:"chat" koanf:"chat"`
	Server      server.Config      `yaml:"server" koanf:"server"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Logger: logger.Config{Level: logger.Info, ServiceName: serviceName},
		Metrics: metrics.Config{
			Address:                 metrics.DefaultMetricsAddress,
			EnableDefaultCollectors: true,
			Namespace:               serviceName,
			ServiceName:             serviceName,
		},
		Tracer:      tracer.Config{ServiceName: serviceName, AppEnv: "development"},
		Qdrant:      qdrant.DefaultConfig(),
		Embedding:   embedding.DefaultConfig(),
		VectorStore: vectorstore.DefaultConfig(),
		Postgres:    postgres.DefaultConfig(),
		Store:       store.DefaultConfig(),
		RAG:         rag.DefaultConfig(),
		LLM:         llm.DefaultConfig(),
		Chat:        chat.DefaultConfig(),
		Server:      server.DefaultConfig(),
	}
}

// Validate checks every section that has constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.VectorStore.Backend {
	case vectorstore.BackendQdrant, vectorstore.BackendChromem:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown vectorstore backend %q", ErrInvalidConfig, c.VectorStore.Backend))
	}
	switch c.Store.Backend {
	case store.BackendPostgres, store.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend))
	}
	if c.VectorStore.Collection == "" {
		errs = append(errs, fmt.Errorf("%w: vectorstore collection is required", ErrInvalidConfig))
	}
	if c.Chat.HistoryWindow < 0 || c.Chat.MaxMessageLength < 0 {
		errs = append(errs, fmt.Errorf("%w: chat limits must not be negative", ErrInvalidConfig))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port))
	}
	for _, err := range []error{c.Embedding.Validate(), c.RAG.Validate(), c.LLM.Validate()} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
