package rag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

type recordingWriter struct {
	mu    sync.Mutex
	calls []map[string]any
	fail  string
	block chan struct{}
}

func (w *recordingWriter) AddUserMessage(ctx context.Context, userID int64, text string, metadata map[string]any) (string, error) {
	if w.block != nil {
		<-w.block
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, metadata)
	if text == w.fail {
		return "", errors.New("collection unavailable")
	}
	return "point", nil
}

func TestSideWriter_CountsOutcomes(t *testing.T) {
	w := &recordingWriter{fail: "broken"}
	sw := NewSideWriter(w, 4, testLogger(), nil)

	assert.True(t, sw.Submit(context.Background(), SideWrite{UserID: 1, SessionID: 2, MessageID: 3, Role: "user", Text: "fine"}))
	assert.True(t, sw.Submit(context.Background(), SideWrite{UserID: 1, SessionID: 2, MessageID: 4, Role: "assistant", Text: "broken"}))

	require.NoError(t, sw.Close(context.Background()))

	succeeded, failed := sw.Stats()
	assert.Equal(t, uint64(1), succeeded)
	assert.Equal(t, uint64(1), failed)
	require.Len(t, w.calls, 2)
	roles := make([]string, 0, 2)
	for _, meta := range w.calls {
		assert.Equal(t, int64(2), meta[vectorstore.KeySessionID])
		assert.Equal(t, vectorstore.ContentTypeChatMessage, meta[vectorstore.KeyContentType])
		assert.NotContains(t, meta, vectorstore.KeyMessageType, "the adapter supplies the message type")
		roles = append(roles, meta[vectorstore.KeyRole].(string))
	}
	assert.ElementsMatch(t, []string{"user", "assistant"}, roles)
}

func TestSideWriter_LogsEachOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logger.NewMockLogger(ctrl)
	log.EXPECT().Debug("Stored chat message in user collection", nil, gomock.Any())
	log.EXPECT().Error("Failed to store chat message in user collection", gomock.Not(gomock.Nil()),
		map[string]interface{}{"user_id": int64(5), "session_id": int64(6), "role": "assistant"})

	w := &recordingWriter{fail: "broken"}
	sw := NewSideWriter(w, 2, log, nil)
	sw.Submit(context.Background(), SideWrite{UserID: 5, SessionID: 6, MessageID: 1, Role: "user", Text: "fine"})
	sw.Submit(context.Background(), SideWrite{UserID: 5, SessionID: 6, MessageID: 2, Role: "assistant", Text: "broken"})

	require.NoError(t, sw.Close(context.Background()))
}

func TestSideWriter_IgnoresCallerCancellation(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{})}
	sw := NewSideWriter(w, 0, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	sw.Submit(ctx, SideWrite{UserID: 1, Role: "user", Text: "late"})
	cancel()
	close(w.block)

	require.NoError(t, sw.Close(context.Background()))
	succeeded, _ := sw.Stats()
	assert.Equal(t, uint64(1), succeeded)
}

func TestSideWriter_DropsAfterClose(t *testing.T) {
	sw := NewSideWriter(&recordingWriter{}, 1, testLogger(), nil)
	require.NoError(t, sw.Close(context.Background()))

	assert.False(t, sw.Submit(context.Background(), SideWrite{UserID: 1, Text: "too late"}))
	assert.NoError(t, sw.Close(context.Background()), "second close is a no-op")
}

func TestSideWriter_CloseHonoursDeadline(t *testing.T) {
	w := &recordingWriter{block: make(chan struct{})}
	defer close(w.block)
	sw := NewSideWriter(w, 1, testLogger(), nil)
	sw.Submit(context.Background(), SideWrite{UserID: 1, Text: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, sw.Close(ctx), context.DeadlineExceeded)
}

func TestSideWriter_WritesUserCollection(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sw := NewSideWriter(env.vectors, 4, testLogger(), nil)

	sw.Submit(ctx, SideWrite{UserID: 8, SessionID: 1, MessageID: 1, Role: "user", Text: "remember the milk"})
	require.NoError(t, sw.Close(ctx))

	info, err := env.vectors.GetUserCollectionInfo(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.PointCount)

	query := make([]float32, testDim)
	query[0] = 1
	hits, err := env.vectors.SearchUserMessages(ctx, 8, query, 5, map[string]any{vectorstore.KeyRole: "user"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "remember the milk", hits[0].Text)
	assert.Equal(t, vectorstore.MessageTypeUser, hits[0].Metadata[vectorstore.KeyMessageType])
	assert.Equal(t, "user", hits[0].Metadata[vectorstore.KeyRole])
}
