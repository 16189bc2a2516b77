package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.DefaultK)
	assert.Equal(t, 20, cfg.RAG.MaxK)
	assert.Equal(t, 0.6, cfg.RAG.HybridThreshold)
	assert.Equal(t, 0.7, cfg.RAG.SingleThreshold)
	assert.Equal(t, llm.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.Equal(t, vectorstore.DefaultCollection, cfg.VectorStore.Collection)
	assert.Equal(t, 10, cfg.Chat.HistoryWindow)
}

func TestParse_YAMLOverridesDefaults(t *testing.T) {
	raw := []byte(`
vectorstore:
  backend: chromem
store:
  backend: memory
rag:
  default_k: 5
  weight_documents: 0.5
  weight_messages: 0.5
server:
  port: 9000
  read_timeout: 5s
postgres:
  connection:
    host: db.internal
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "chromem", cfg.VectorStore.Backend)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 5, cfg.RAG.DefaultK)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize, "unset keys keep their defaults")
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "db.internal", cfg.Postgres.Connection.Host)
	assert.Equal(t, "5432", cfg.Postgres.Connection.Port)
}

func TestParse_EnvironmentWins(t *testing.T) {
	t.Setenv("RAG_QDRANT_ENDPOINT", "qdrant.example")
	t.Setenv("RAG_RAG_CHUNK_SIZE", "500")
	t.Setenv("RAG_RAG_CHUNK_OVERLAP", "50")
	t.Setenv("RAG_POSTGRES_CONNECTION_HOST", "pg.example")
	t.Setenv("RAG_POSTGRES_CONNECTION_DETAILS_MAX_OPEN_CONNS", "7")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Parse([]byte("rag:\n  chunk_size: 800\n"))
	require.NoError(t, err)

	assert.Equal(t, "qdrant.example", cfg.Qdrant.Endpoint)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, "pg.example", cfg.Postgres.Connection.Host)
	assert.Equal(t, 7, cfg.Postgres.ConnectionDetails.MaxOpenConns)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"overlap not below size", "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"unknown backend", "vectorstore:\n  backend: pinecone\n"},
		{"weights out of range", "rag:\n  weight_documents: 2\n"},
		{"max tokens too high", "llm:\n  max_tokens: 5000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("rag:\n  chunk_size: 100\n  chunk_overlap: 100\n"))
	assert.ErrorIs(t, err, rag.ErrInvalidConfig)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8123\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"RAG_QDRANT_ENDPOINT":                            "qdrant.endpoint",
		"RAG_RAG_HYBRID_THRESHOLD":                       "rag.hybrid_threshold",
		"RAG_POSTGRES_CONNECTION_DB_NAME":                "postgres.connection.db_name",
		"RAG_POSTGRES_CONNECTION_DETAILS_MAX_IDLE_CONNS": "postgres.connection_details.max_idle_conns",
		"RAG_POSTGRES_AUTO_MIGRATE":                      "postgres.auto_migrate",
		"RAG_DEBUG":                                      "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestSplit(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 1234

	s := Split(&cfg)

	assert.Equal(t, 1234, s.Server.Port)
	assert.Equal(t, cfg.RAG, s.RAG)
}
