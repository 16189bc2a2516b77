package chat

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
)

// Request is one chat turn.
type Request struct {
	UserID  int64  `json:"-"`
	Message string `json:"message"`
	// SessionID continues an existing session; nil starts a new one.
	SessionID *int64 `json:"session_id,omitempty"`
	UseRAG    bool   `json:"use_rag"`
	// KPoints is the number of context points; zero selects the retrieval default.
	KPoints int `json:"k_points"`
	// MaxTokens bounds the answer; zero selects the model default.
	MaxTokens int `json:"max_tokens"`
}

// Response is the answer to a chat turn. KPointsUsed is nil when retrieval was off.
type Response struct {
	Message     string   `json:"message"`
	SessionID   int64    `json:"session_id"`
	MessageID   int64    `json:"message_id"`
	Sources     []string `json:"sources"`
	KPointsUsed *int     `json:"k_points_used,omitempty"`
}

// Retriever builds retrieval context. *rag.Service implements it.
type Retriever interface {
	Retrieve(ctx context.Context, q rag.Query) (*rag.Retrieval, error)
}

// Generator produces answers. *llm.Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// SideWriter copies turns to the user's message collection. *rag.SideWriter
// implements it.
type SideWriter interface {
	Submit(ctx context.Context, w rag.SideWrite) bool
}

var (
	_ Retriever  = (*rag.Service)(nil)
	_ Generator  = (*llm.Gateway)(nil)
	_ SideWriter = (*rag.SideWriter)(nil)
)
