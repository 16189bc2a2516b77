package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/config"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

func TestOptions_ValidateGraph(t *testing.T) {
	tests := []struct {
		name        string
		vectorStore string
		store       string
	}{
		{"qdrant and postgres", vectorstore.BackendQdrant, store.BackendPostgres},
		{"chromem and memory", vectorstore.BackendChromem, store.BackendMemory},
		{"qdrant and memory", vectorstore.BackendQdrant, store.BackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.VectorStore.Backend = tt.vectorStore
			cfg.Store.Backend = tt.store

			require.NoError(t, fx.ValidateApp(options(&cfg)...))
		})
	}
}
