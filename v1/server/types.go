package server

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/chat"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// Documents is the document and status API. *rag.Service implements it.
type Documents interface {
	Ingest(ctx context.Context, req rag.IngestRequest) (*rag.IngestResult, error)
	Documents(ctx context.Context, ownerID int64) ([]store.Document, error)
	Document(ctx context.Context, id, ownerID int64) (*store.Document, error)
	DeleteDocument(ctx context.Context, id, ownerID int64) ([]string, error)
	Status(ctx context.Context, userID int64) (*rag.Status, error)
	UserCollectionInfo(ctx context.Context, userID int64) (*vectorstore.CollectionInfo, error)
	Health(ctx context.Context) rag.Health
}

// Chats is the chat API. *chat.Service implements it.
type Chats interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
	Sessions(ctx context.Context, userID int64) ([]store.ChatSession, error)
	Messages(ctx context.Context, sessionID, userID int64) ([]store.ChatMessage, error)
	DeleteSession(ctx context.Context, sessionID, userID int64) error
}

var (
	_ Documents = (*rag.Service)(nil)
	_ Chats     = (*chat.Service)(nil)
)

// TextDocumentRequest is the body of POST /api/v1/documents/text.
type TextDocumentRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	FilePath     *string `json:"file_path"`
	FileType     *string `json:"file_type"`
	ChunkSize    int     `json:"chunk_size"`
	ChunkOverlap int     `json:"chunk_overlap"`
}

// UploadResponse reports an ingested document.
type UploadResponse struct {
	DocumentID int64  `json:"document_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Chunks     int    `json:"chunks"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
