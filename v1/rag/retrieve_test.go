package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

func TestSplitK(t *testing.T) {
	tests := []struct {
		name     string
		k        int
		w        Weights
		wantDocs int
		wantMsgs int
	}{
		{"default weights", 3, Weights{0.7, 0.3}, 2, 1},
		{"single point keeps one per side", 1, Weights{0.7, 0.3}, 1, 1},
		{"ten points", 10, Weights{0.7, 0.3}, 7, 3},
		{"half rounds away from zero", 5, Weights{0.5, 0.5}, 3, 3},
		{"zero weight still searches once", 4, Weights{1, 0}, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, msgs := SplitK(tt.k, tt.w)
			assert.Equal(t, tt.wantDocs, docs)
			assert.Equal(t, tt.wantMsgs, msgs)
		})
	}
}

func TestFuse_OrdersByWeightedScore(t *testing.T) {
	docs := weigh([]vectorstore.SearchResult{
		{ID: "doc1", Text: "d1", Score: 0.9},
		{ID: "doc2", Text: "d2", Score: 0.8},
	}, 0.7, OriginDocuments)
	msgs := weigh([]vectorstore.SearchResult{
		{ID: "msg1", Text: "m1", Score: 0.95},
	}, 0.3, OriginMessages)

	fused := Fuse(docs, msgs, 3)

	require.Len(t, fused, 3)
	assert.Equal(t, []string{"doc1", "doc2", "msg1"}, []string{fused[0].ID, fused[1].ID, fused[2].ID})
	assert.InDelta(t, 0.63, fused[0].Score, 1e-6)
	assert.InDelta(t, 0.56, fused[1].Score, 1e-6)
	assert.InDelta(t, 0.285, fused[2].Score, 1e-6)
	assert.InDelta(t, 0.95, fused[2].RawScore, 1e-6)
	assert.Equal(t, OriginMessages, fused[2].Origin)

	// only doc1 clears the hybrid floor
	r := applyThreshold(ModeHybrid, fused, 0.6)
	assert.Equal(t, 1, r.PointsUsed)
	assert.Equal(t, "d1", r.Context)
}

func TestFuse_CutsToKAndKeepsDocumentsFirstOnTies(t *testing.T) {
	docs := []Hit{{ID: "d", Score: 0.5, Origin: OriginDocuments}}
	msgs := []Hit{
		{ID: "m1", Score: 0.5, Origin: OriginMessages},
		{ID: "m2", Score: 0.9, Origin: OriginMessages},
	}

	fused := Fuse(docs, msgs, 2)

	require.Len(t, fused, 2)
	assert.Equal(t, "m2", fused[0].ID)
	assert.Equal(t, "d", fused[1].ID)
}

func TestApplyThreshold_IsStrict(t *testing.T) {
	candidates := []Hit{
		{ID: "a", Text: "first", Score: 0.61, Source: "Doc A"},
		{ID: "b", Text: "second", Score: 0.6, Source: "Doc B"},
		{ID: "c", Text: "third", Score: 0.75, Source: "Doc C"},
	}

	r := applyThreshold(ModeHybrid, candidates, 0.6)

	assert.Equal(t, ModeHybrid, r.Mode)
	assert.Equal(t, 3, r.Candidates)
	assert.Equal(t, 2, r.PointsUsed)
	assert.Equal(t, "first\n\nthird", r.Context)
	assert.Equal(t, []string{"Doc A", "Doc C"}, r.Sources)
	assert.False(t, r.Filtered)
}

func TestApplyThreshold_AllFiltered(t *testing.T) {
	r := applyThreshold(ModeSingle, []Hit{{Text: "x", Score: 0.7}}, 0.7)

	assert.True(t, r.Filtered)
	assert.Empty(t, r.Context)
	assert.Empty(t, r.Hits)
	assert.NotNil(t, r.Sources)
	assert.Equal(t, 0, r.PointsUsed)
}

func TestApplyThreshold_NoCandidates(t *testing.T) {
	r := applyThreshold(ModeHybrid, nil, 0.6)

	assert.False(t, r.Filtered)
	assert.Equal(t, 0, r.Candidates)
	assert.Empty(t, r.Context)
}

func TestBuildContext(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "one", BuildContext([]Hit{{Text: "one"}}))
	assert.Equal(t, "one\n\ntwo", BuildContext([]Hit{{Text: "one"}, {Text: "two"}}))
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want string
	}{
		{
			name: "document chunk",
			meta: map[string]any{"content_type": "document_chunk", "document_title": "Handbook"},
			want: "Handbook",
		},
		{
			name: "document chunk without title",
			meta: map[string]any{"content_type": "document_chunk"},
			want: "Unknown Document",
		},
		{
			name: "chat message",
			meta: map[string]any{"content_type": "chat_message", "session_id": int64(42)},
			want: "Previous Message (Session 42)",
		},
		{
			name: "chat message without session",
			meta: map[string]any{"content_type": "chat_message"},
			want: "Previous Message (Session Unknown)",
		},
		{
			name: "anything else",
			meta: map[string]any{},
			want: "Unknown Source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceLabel(tt.meta))
		})
	}
}
