// Command ragserver runs the retrieval-augmented chat API.
//
// Configuration is read from the YAML file named by RAG_CONFIG_FILE (optional), a .env
// file in the working directory and RAG_* environment variables.
package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/chromem"
	"github.com/Aleph-Alpha/ragcore/v1/config"
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

func main() {
	cfg, err := config.Load(os.Getenv("RAG_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ragserver:", err)
		os.Exit(1)
	}
	app := fx.New(append(options(cfg),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
	)...)
	app.Run()
}

// options assembles the application. The vector and relational backends are chosen
// by configuration.
func options(cfg *config.Config) []fx.Option {
	opts := []fx.Option{
		config.Module(cfg),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		embedding.FXModule,
		vectorstore.FXModule,
		rag.FXModule,
		llm.FXModule,
		chat.FXModule,
		server.FXModule,
	}

	switch cfg.VectorStore.Backend {
	case vectorstore.BackendChromem:
		opts = append(opts, chromem.FXModule)
	default:
		opts = append(opts, qdrant.FXModule)
	}

	switch cfg.Store.Backend {
	case store.BackendMemory:
		opts = append(opts, store.MemoryFXModule)
	default:
		opts = append(opts, postgres.FXModule, store.FXModule)
	}
	return opts
}
