package rag

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// VectorStore is the part of *vectorstore.Adapter the service depends on.
type VectorStore interface {
	DefaultCollection() string
	Upsert(ctx context.Context, collection string, records []vectorstore.Record) ([]string, error)
	Search(ctx context.Context, collection string, vector []float32, k int, filter map[string]any) ([]vectorstore.SearchResult, error)
	Delete(ctx context.Context, collection string, ids []string) error
	GetCollectionInfo(ctx context.Context, name string) (*vectorstore.CollectionInfo, error)
	Ping(ctx context.Context) error

	MessageWriter
	SearchUserMessages(ctx context.Context, userID int64, vector []float32, k int, filter map[string]any) ([]vectorstore.SearchResult, error)
	SearchUserHistory(ctx context.Context, userID int64, vector []float32, k int, exclude ...int64) ([]vectorstore.SearchResult, error)
	DeleteUserCollection(ctx context.Context, userID int64) error
	GetUserCollectionInfo(ctx context.Context, userID int64) (*vectorstore.CollectionInfo, error)
}

// MessageWriter stores a chat message in a user's private collection.
type MessageWriter interface {
	AddUserMessage(ctx context.Context, userID int64, text string, metadata map[string]any) (string, error)
}

var _ VectorStore = (*vectorstore.Adapter)(nil)
