package chromem

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s, err := NewStore(cfg, logger.NewLoggerClient(logger.Config{Level: logger.Error}), nil)
	require.NoError(t, err)
	return s
}

// axis returns a unit vector along dimension i.
func axis(dim, i int) []float32 {
	v := make([]float32, dim)
	v[i] = 1
	return v
}

func TestStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})

	require.NoError(t, s.EnsureCollection(ctx, "documents", 4))
	require.NoError(t, s.EnsureCollection(ctx, "documents", 4))
	assert.Error(t, s.EnsureCollection(ctx, "", 4))
	assert.Error(t, s.EnsureCollection(ctx, "x", 0))

	col, err := s.GetCollection(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, 4, col.VectorSize)
	assert.Equal(t, uint64(0), col.PointCount)
	assert.Equal(t, "Cosine", col.Distance)

	names, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"documents"}, names)

	require.NoError(t, s.DeleteCollection(ctx, "documents"))
	require.NoError(t, s.DeleteCollection(ctx, "documents"))
	_, err = s.GetCollection(ctx, "documents")
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)
}

func TestStore_InsertSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})
	require.NoError(t, s.EnsureCollection(ctx, "documents", 3))

	inputs := []vectordb.EmbeddingInput{
		{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{
			"text":     "alpha",
			"metadata": map[string]any{"document_id": 1, "chunk_index": 0, "document_title": "A", "public": true, "score": 0.5},
		}},
		{ID: "b", Vector: []float32{0.9, 0.1, 0}, Payload: map[string]any{
			"text":     "beta",
			"metadata": map[string]any{"document_id": 1, "chunk_index": 1, "document_title": "A"},
		}},
		{ID: "c", Vector: []float32{0, 1, 0}, Payload: map[string]any{
			"text":     "gamma",
			"metadata": map[string]any{"document_id": 2, "chunk_index": 0, "document_title": "C"},
		}},
	}
	require.NoError(t, s.Insert(ctx, "documents", inputs))

	results, err := s.Search(ctx, vectordb.SearchRequest{CollectionName: "documents", Vector: []float32{1, 0, 0}, TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	hits := results[0]
	require.Len(t, hits, 3, "topK larger than the collection is clamped")

	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
	assert.Equal(t, "b", hits[1].ID)
	assert.Equal(t, "c", hits[2].ID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}

	assert.Equal(t, "alpha", hits[0].Payload["text"])
	meta := hits[0].Payload["metadata"].(map[string]any)
	assert.Equal(t, int64(1), meta["document_id"])
	assert.Equal(t, int64(0), meta["chunk_index"])
	assert.Equal(t, "A", meta["document_title"])
	assert.Equal(t, true, meta["public"])
	assert.Equal(t, 0.5, meta["score"])
	assert.Equal(t, "documents", hits[0].CollectionName)
}

func TestStore_SearchFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})
	require.NoError(t, s.EnsureCollection(ctx, "messages", 4))

	var inputs []vectordb.EmbeddingInput
	for i := 0; i < 8; i++ {
		role := "user_message"
		if i%2 == 1 {
			role = "assistant_message"
		}
		inputs = append(inputs, vectordb.EmbeddingInput{
			ID:     fmt.Sprintf("m%d", i),
			Vector: axis(4, i%4),
			Payload: map[string]any{
				"text": fmt.Sprintf("message %d", i),
				"metadata": map[string]any{
					"user_id":      "42",
					"session_id":   i / 4,
					"message_type": role,
				},
			},
		})
	}
	require.NoError(t, s.Insert(ctx, "messages", inputs))

	t.Run("where pushdown", func(t *testing.T) {
		res, err := s.Search(ctx, vectordb.SearchRequest{
			CollectionName: "messages",
			Vector:         axis(4, 0),
			TopK:           10,
			Filters:        vectordb.MetadataEquals(map[string]any{"session_id": 1}),
		})
		require.NoError(t, err)
		assert.Len(t, res[0], 4)
	})

	t.Run("filter with fewer matches than topK", func(t *testing.T) {
		res, err := s.Search(ctx, vectordb.SearchRequest{
			CollectionName: "messages",
			Vector:         axis(4, 0),
			TopK:           3,
			Filters:        vectordb.MetadataEquals(map[string]any{"session_id": 1, "message_type": "user_message"}),
		})
		require.NoError(t, err)
		assert.Len(t, res[0], 2)
	})

	t.Run("post filter", func(t *testing.T) {
		res, err := s.Search(ctx, vectordb.SearchRequest{
			CollectionName: "messages",
			Vector:         axis(4, 1),
			TopK:           2,
			Filters: &vectordb.FilterSet{MustNot: &vectordb.ConditionSet{
				Conditions: []vectordb.FilterCondition{vectordb.NewMetadataMatch("message_type", "user_message")},
			}},
		})
		require.NoError(t, err)
		require.Len(t, res[0], 2)
		for _, r := range res[0] {
			meta := r.Payload["metadata"].(map[string]any)
			assert.Equal(t, "assistant_message", meta["message_type"])
		}
		assert.InDelta(t, 1.0, res[0][0].Score, 1e-5)
	})

	t.Run("no match", func(t *testing.T) {
		res, err := s.Search(ctx, vectordb.SearchRequest{
			CollectionName: "messages",
			Vector:         axis(4, 0),
			TopK:           3,
			Filters:        vectordb.MetadataEquals(map[string]any{"user_id": "7"}),
		})
		require.NoError(t, err)
		assert.Empty(t, res[0])
	})
}

func TestStore_EmptyAndMissingCollections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})

	_, err := s.Search(ctx, vectordb.SearchRequest{CollectionName: "missing", Vector: axis(2, 0), TopK: 1})
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

	require.NoError(t, s.EnsureCollection(ctx, "empty", 2))
	res, err := s.Search(ctx, vectordb.SearchRequest{CollectionName: "empty", Vector: axis(2, 0), TopK: 5})
	require.NoError(t, err)
	assert.Empty(t, res[0])

	assert.NoError(t, s.Delete(ctx, "missing", []string{"x"}))
	assert.ErrorIs(t, s.Insert(ctx, "missing", []vectordb.EmbeddingInput{{ID: "x", Vector: axis(2, 0)}}), vectordb.ErrCollectionNotFound)
}

func TestStore_DimensionChecked(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})
	require.NoError(t, s.EnsureCollection(ctx, "documents", 3))

	err := s.Insert(ctx, "documents", []vectordb.EmbeddingInput{{ID: "x", Vector: axis(4, 0), Payload: map[string]any{"text": "t"}}})
	assert.Error(t, err)
}

func TestStore_DeleteAndUpsertOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})
	require.NoError(t, s.EnsureCollection(ctx, "documents", 2))

	require.NoError(t, s.Insert(ctx, "documents", []vectordb.EmbeddingInput{
		{ID: "a", Vector: axis(2, 0), Payload: map[string]any{"text": "first"}},
		{ID: "b", Vector: axis(2, 1), Payload: map[string]any{"text": "second"}},
	}))
	require.NoError(t, s.Insert(ctx, "documents", []vectordb.EmbeddingInput{
		{ID: "a", Vector: axis(2, 0), Payload: map[string]any{"text": "replaced"}},
	}))

	col, err := s.GetCollection(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), col.PointCount)

	res, err := s.Search(ctx, vectordb.SearchRequest{CollectionName: "documents", Vector: axis(2, 0), TopK: 1})
	require.NoError(t, err)
	assert.Equal(t, "replaced", res[0][0].Payload["text"])

	require.NoError(t, s.Delete(ctx, "documents", []string{"a"}))
	col, err = s.GetCollection(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), col.PointCount)
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := newTestStore(t, Config{Path: dir})
	require.NoError(t, s.EnsureCollection(ctx, "documents", 2))
	require.NoError(t, s.Insert(ctx, "documents", []vectordb.EmbeddingInput{
		{ID: "a", Vector: axis(2, 0), Payload: map[string]any{"text": "persisted", "metadata": map[string]any{"n": 1}}},
	}))

	reopened := newTestStore(t, Config{Path: dir})
	res, err := reopened.Search(ctx, vectordb.SearchRequest{CollectionName: "documents", Vector: axis(2, 0), TopK: 1})
	require.NoError(t, err)
	require.Len(t, res[0], 1)
	assert.Equal(t, "persisted", res[0][0].Payload["text"])
}

func TestStore_DimensionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := newTestStore(t, Config{Path: dir})
	require.NoError(t, s.EnsureCollection(ctx, "documents", 2))
	require.NoError(t, s.Insert(ctx, "documents", []vectordb.EmbeddingInput{
		{ID: "a", Vector: axis(2, 0), Payload: map[string]any{"text": "t"}},
	}))

	reopened := newTestStore(t, Config{Path: dir})
	require.NoError(t, reopened.EnsureCollection(ctx, "documents", 4))

	col, err := reopened.GetCollection(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, 2, col.VectorSize, "the size the collection was created with wins")

	err = reopened.Insert(ctx, "documents", []vectordb.EmbeddingInput{{ID: "b", Vector: axis(4, 0), Payload: map[string]any{"text": "t"}}})
	assert.Error(t, err)

	names, err := reopened.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"documents"}, names)
	assert.Error(t, reopened.EnsureCollection(ctx, catalogCollection, 2))
}

func TestStore_DeleteCollectionForgetsDimension(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, Config{})

	require.NoError(t, s.EnsureCollection(ctx, "documents", 2))
	require.NoError(t, s.DeleteCollection(ctx, "documents"))
	require.NoError(t, s.EnsureCollection(ctx, "documents", 3))

	col, err := s.GetCollection(ctx, "documents")
	require.NoError(t, err)
	assert.Equal(t, 3, col.VectorSize)
}

func TestFlattenPayload_RoundTrip(t *testing.T) {
	payload := map[string]any{
		"text":  "body",
		"extra": "top-level",
		"metadata": map[string]any{
			"s":    "str",
			"i":    7,
			"f":    1.5,
			"b":    false,
			"nil":  nil,
			"tags": []any{"a", "b"},
		},
	}

	content, flat := flattenPayload(payload)
	assert.Equal(t, "body", content)
	assert.Equal(t, "7", flat["i"])

	got := unflattenPayload(content, flat)
	assert.Equal(t, "body", got["text"])
	assert.Equal(t, "top-level", got["extra"])
	meta := got["metadata"].(map[string]any)
	assert.Equal(t, "str", meta["s"])
	assert.Equal(t, int64(7), meta["i"])
	assert.Equal(t, 1.5, meta["f"])
	assert.Equal(t, false, meta["b"])
	assert.Nil(t, meta["nil"])
	assert.Equal(t, []any{"a", "b"}, meta["tags"])
}
