package store

import "context"

// DocumentFilter narrows document and chunk counts. Zero OwnerID means all owners.
type DocumentFilter struct {
	OwnerID       int64
	ProcessedOnly bool
}

// Repository is the relational store used by the RAG and chat services.
//
// Lookups scoped by an owner return ErrNotFound both for missing rows and for rows
// owned by someone else.
type Repository interface {
	// WithTx runs fn in a transaction. fn's repository must not escape the call.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	EnsureUser(ctx context.Context, id int64) error

	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id, ownerID int64) (*Document, error)
	ListDocuments(ctx context.Context, ownerID int64) ([]Document, error)
	ListDocumentIDs(ctx context.Context, ownerID int64) ([]int64, error)
	MarkDocumentProcessed(ctx context.Context, id int64) error
	// DeleteDocument removes the document and its chunks.
	DeleteDocument(ctx context.Context, id int64) error
	CountDocuments(ctx context.Context, f DocumentFilter) (int64, error)

	CreateChunks(ctx context.Context, chunks []DocumentChunk) error
	// ChunkEmbeddingIDs returns the non-empty embedding ids of a document's chunks
	// in chunk order.
	ChunkEmbeddingIDs(ctx context.Context, documentID int64) ([]string, error)
	CountChunks(ctx context.Context, f DocumentFilter) (int64, error)

	CreateSession(ctx context.Context, s *ChatSession) error
	GetSession(ctx context.Context, id, userID int64) (*ChatSession, error)
	// ListSessions returns the user's sessions with their messages.
	ListSessions(ctx context.Context, userID int64) ([]ChatSession, error)
	// DeleteSession removes the session and its messages.
	DeleteSession(ctx context.Context, id int64) error

	CreateMessage(ctx context.Context, m *ChatMessage) error
	ListMessages(ctx context.Context, sessionID int64) ([]ChatMessage, error)
	// RecentMessages returns the last limit messages of a session, oldest first.
	RecentMessages(ctx context.Context, sessionID int64, limit int) ([]ChatMessage, error)

	Ping(ctx context.Context) error
}
