package store

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/postgres"
)

func setupPostgres(t *testing.T) *postgres.Postgres {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "rag",
			"POSTGRES_PASSWORD": "rag",
			"POSTGRES_DB":       "rag",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(nat.Port("5432/tcp")),
		).WithDeadline(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := postgres.Config{
		Connection: postgres.Connection{
			Host: host, Port: port.Port(), User: "rag", Password: "rag", DbName: "rag", SSLMode: "disable",
		},
	}
	pg, err := postgres.NewPostgres(cfg, logger.NewLoggerClient(logger.Config{Level: logger.Error}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.GracefulShutdown() })
	return pg
}

func TestGormRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()
	repo := NewGormRepository(setupPostgres(t))
	require.NoError(t, repo.Migrate(ctx))

	require.NoError(t, repo.EnsureUser(ctx, 7))
	require.NoError(t, repo.EnsureUser(ctx, 7))

	doc := &Document{Title: "Go", Content: "Go has goroutines.", OwnerID: 7, ChunkSize: 1000, ChunkOverlap: 200}
	require.NoError(t, repo.CreateDocument(ctx, doc))
	require.NotZero(t, doc.ID)

	require.NoError(t, repo.CreateChunks(ctx, []DocumentChunk{
		{Content: "a", ChunkIndex: 0, EmbeddingID: "e0", DocumentID: doc.ID},
		{Content: "b", ChunkIndex: 1, EmbeddingID: "e1", DocumentID: doc.ID},
	}))
	require.NoError(t, repo.MarkDocumentProcessed(ctx, doc.ID))

	got, err := repo.GetDocument(ctx, doc.ID, 7)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)

	_, err = repo.GetDocument(ctx, doc.ID, 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, postgres.ErrRecordNotFound)

	ids, err := repo.ChunkEmbeddingIDs(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e0", "e1"}, ids)

	n, err := repo.CountChunks(ctx, DocumentFilter{OwnerID: 7, ProcessedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = repo.CreateDocument(ctx, &Document{Title: "orphan", Content: "x", OwnerID: 404})
	assert.ErrorIs(t, err, postgres.ErrForeignKey)

	s := &ChatSession{Title: "t", UserID: 7}
	require.NoError(t, repo.CreateSession(ctx, s))
	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, repo.CreateMessage(ctx, &ChatMessage{Content: c, Role: RoleUser, SessionID: s.ID}))
	}
	recent, err := repo.RecentMessages(ctx, s.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)

	sessions, err := repo.ListSessions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, 3)

	require.NoError(t, repo.DeleteSession(ctx, s.ID))
	require.NoError(t, repo.DeleteDocument(ctx, doc.ID))
	assert.ErrorIs(t, repo.DeleteDocument(ctx, doc.ID), ErrNotFound)
	require.NoError(t, repo.Ping(ctx))
}

func TestGormRepository_WithTxRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()
	repo := NewGormRepository(setupPostgres(t))
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.EnsureUser(ctx, 1))

	err := repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateDocument(ctx, &Document{Title: "t", Content: "c", OwnerID: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	n, err := repo.CountDocuments(ctx, DocumentFilter{OwnerID: 1})
	require.NoError(t, err)
	assert.Zero(t, n)
}
