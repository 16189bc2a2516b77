package qdrant

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// QdrantContainer represents a Qdrant container for testing
type QdrantContainer struct {
	testcontainers.Container
	Host string
	Port string
}

func setupQdrantContainer(ctx context.Context) (*QdrantContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: strconv.Itoa(port)}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := c.MappedPort(ctx, "6334")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	if err := waitForQdrantReady(host, mappedPort.Port(), 30*time.Second); err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &QdrantContainer{Container: c, Host: host, Port: mappedPort.Port()}, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func waitForQdrantReady(host, port string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for Qdrant after %s", timeout)
}

func generateRandomVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}

func testLogger() logger.Logger {
	return logger.NewLoggerClient(logger.Config{Level: logger.Error})
}

func TestQdrantWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := qc.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	portNum, err := strconv.Atoi(qc.Port)
	require.NoError(t, err)

	var db vectordb.Service
	app := fxtest.New(t,
		fx.Provide(
			func() Config {
				return Config{Endpoint: qc.Host, Port: portNum, Timeout: 10 * time.Second}
			},
			testLogger,
		),
		FXModule,
		fx.Populate(&db),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, db)

	t.Run("EnsureCollectionIsIdempotent", func(t *testing.T) {
		require.NoError(t, db.EnsureCollection(ctx, "fx_collection", 8))
		require.NoError(t, db.EnsureCollection(ctx, "fx_collection", 8))
		assert.Error(t, db.EnsureCollection(ctx, "", 8))
	})
}

func TestAdapterOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := qc.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	portNum, err := strconv.Atoi(qc.Port)
	require.NoError(t, err)

	client, err := NewQdrantClient(Config{Endpoint: qc.Host, Port: portNum, Timeout: 10 * time.Second}, testLogger())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	adapter := NewAdapter(client.Client(), 3, testLogger(), nil)
	const dim = 16
	collection := "documents"
	require.NoError(t, adapter.EnsureCollection(ctx, collection, dim))

	inputs := make([]vectordb.EmbeddingInput, 7)
	for i := range inputs {
		inputs[i] = vectordb.EmbeddingInput{
			ID:     fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1),
			Vector: generateRandomVector(dim),
			Payload: map[string]any{
				"text": fmt.Sprintf("chunk %d", i),
				"metadata": map[string]any{
					"document_id": 1 + i%2,
					"chunk_index": i,
					"user_id":     "42",
				},
			},
		}
	}

	t.Run("InsertInSeveralBatches", func(t *testing.T) {
		require.NoError(t, adapter.Insert(ctx, collection, inputs))

		col, err := adapter.GetCollection(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, uint64(len(inputs)), col.PointCount)
		assert.Equal(t, dim, col.VectorSize)
		assert.Equal(t, "Cosine", col.Distance)
	})

	t.Run("SearchFindsExactVector", func(t *testing.T) {
		results, err := adapter.Search(ctx, vectordb.SearchRequest{
			CollectionName: collection,
			Vector:         inputs[3].Vector,
			TopK:           3,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NotEmpty(t, results[0])
		assert.Equal(t, inputs[3].ID, results[0][0].ID)
		assert.InDelta(t, 1.0, results[0][0].Score, 1e-4)
		assert.Equal(t, "chunk 3", results[0][0].Payload["text"])

		for i := 1; i < len(results[0]); i++ {
			assert.GreaterOrEqual(t, results[0][i-1].Score, results[0][i].Score)
		}
	})

	t.Run("SearchWithMetadataFilter", func(t *testing.T) {
		results, err := adapter.Search(ctx, vectordb.SearchRequest{
			CollectionName: collection,
			Vector:         inputs[0].Vector,
			TopK:           10,
			Filters:        vectordb.MetadataEquals(map[string]any{"document_id": 2}),
		})
		require.NoError(t, err)
		assert.Len(t, results[0], 3)
		for _, r := range results[0] {
			meta := r.Payload["metadata"].(map[string]any)
			assert.Equal(t, int64(2), meta["document_id"])
		}
	})

	t.Run("MissingCollection", func(t *testing.T) {
		_, err := adapter.Search(ctx, vectordb.SearchRequest{
			CollectionName: "does_not_exist",
			Vector:         inputs[0].Vector,
			TopK:           1,
		})
		assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

		_, err = adapter.GetCollection(ctx, "does_not_exist")
		assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

		assert.NoError(t, adapter.DeleteCollection(ctx, "does_not_exist"))
	})

	t.Run("DeleteAndDropCollection", func(t *testing.T) {
		require.NoError(t, adapter.Delete(ctx, collection, []string{inputs[0].ID, inputs[1].ID}))
		col, err := adapter.GetCollection(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, uint64(len(inputs)-2), col.PointCount)

		require.NoError(t, adapter.DeleteCollection(ctx, collection))
		names, err := adapter.ListCollections(ctx)
		require.NoError(t, err)
		assert.NotContains(t, names, collection)
	})

	t.Run("EmptyOperations", func(t *testing.T) {
		assert.NoError(t, adapter.Insert(ctx, collection, nil))
		assert.NoError(t, adapter.Delete(ctx, collection, nil))
	})
}
