package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/chromem"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &llm.Response{Content: "echo: " + req.Message}, nil
}

type testServer struct {
	srv *Server
	gen *stubGenerator
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewLoggerClient(logger.Config{Level: logger.Error})

	db, err := chromem.NewStore(chromem.Config{}, log, nil)
	require.NoError(t, err)
	enc, err := embedding.NewClient(embedding.NewHashProvider(64), 1, log, nil, "hash")
	require.NoError(t, err)
	t.Cleanup(func() { _ = enc.Close() })

	vectors := vectorstore.New(db, enc, vectorstore.Config{}, log)
	repo := store.NewMemoryRepository()
	ragSvc, err := rag.NewService(rag.DefaultConfig(), vectors, enc, repo, log, nil, nil)
	require.NoError(t, err)

	gen := &stubGenerator{}
	chatSvc := chat.NewService(chat.DefaultConfig(), repo, ragSvc, gen, nil, log, nil)

	srv, err := New(DefaultConfig(), ragSvc, chatSvc, log, nil)
	require.NoError(t, err)
	return &testServer{srv: srv, gen: gen}
}

func (ts *testServer) do(t *testing.T, method, path string, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		req.Header.Set(HeaderUserID, fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew_RequiresServices(t *testing.T) {
	_, err := New(DefaultConfig(), nil, nil, logger.NewLoggerClient(logger.Config{Level: logger.Error}), nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", 0, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	h := decode[rag.Health](t, rec)
	assert.Equal(t, "healthy", h.Status)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequireUser(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/documents", 0, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Detail, HeaderUserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set(HeaderUserID, "abc")
	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocumentLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/documents/text", 1, `{"title":"Guide","content":"how to brew coffee at home"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode[UploadResponse](t, rec)
	assert.Equal(t, "Guide", up.Title)
	assert.Equal(t, "processed", up.Status)
	assert.Equal(t, 1, up.Chunks)

	rec = ts.do(t, http.MethodGet, "/api/v1/documents", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Document](t, rec), 1)

	path := fmt.Sprintf("/api/v1/documents/%d", up.DocumentID)
	rec = ts.do(t, http.MethodGet, path, 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[store.Document](t, rec).IsProcessed)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, 2, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, 2, "").Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/status", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[rag.Status](t, rec).TotalDocuments)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, path, 1, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, 1, "").Code)
}

func TestUploadValidation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"blank title", `{"title":" ","content":"x"}`},
		{"overlap too large", `{"title":"t","content":"x","chunk_size":10,"chunk_overlap":10}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/documents/text", 1, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/documents/abc", 1, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatFlow(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/chat", 3, `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[chat.Response](t, rec)
	assert.Equal(t, "echo: hello", resp.Message)
	require.NotNil(t, resp.KPointsUsed, "retrieval is on by default")
	assert.Equal(t, 0, *resp.KPointsUsed)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", 3,
		fmt.Sprintf(`{"message":"again","session_id":%d,"use_rag":false}`, resp.SessionID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "k_points_used")

	rec = ts.do(t, http.MethodGet, "/api/v1/chat/sessions", 3, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]store.ChatSession](t, rec)
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, 4)

	msgsPath := fmt.Sprintf("/api/v1/chat/sessions/%d/messages", resp.SessionID)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, msgsPath, 4, "").Code)
	rec = ts.do(t, http.MethodGet, msgsPath, 3, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.ChatMessage](t, rec), 4)

	sessionPath := fmt.Sprintf("/api/v1/chat/sessions/%d", resp.SessionID)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, sessionPath, 3, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, sessionPath, 3, "").Code)
}

func TestChatErrors(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/chat", 1, `{"message":"hi","k_points":50}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", 1, `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat", 1, `{"message":"hi","session_id":12345}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.gen.err = fmt.Errorf("%w: upstream timeout", llm.ErrProviderFailure)
	rec = ts.do(t, http.MethodPost, "/api/v1/chat", 1, `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Detail, "upstream timeout")
}

func TestCollectionInfo(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/chat/collection-info", 9, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", rag.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x: %w", vectorstore.ErrStoreFailure, vectordb.ErrCollectionNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: boom", llm.ErrProviderFailure), http.StatusBadGateway},
		{echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	ts := setupTestServer(t)
	ts.srv.echo.GET("/boom", func(echo.Context) error { return errors.New("secret stack detail") })

	rec := ts.do(t, http.MethodGet, "/boom", 0, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
