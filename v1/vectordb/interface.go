package vectordb

import "context"

// Service is the storage contract shared by every vector database backend.
//
// The RAG layer talks only to this interface; qdrant.Adapter and chromem.Store are
// the two implementations shipped with ragcore.
type Service interface {
	// Search runs one or more similarity queries. The outer result slice has one
	// entry per request, in request order; each inner slice is ordered by
	// descending Score.
	Search(ctx context.Context, requests ...SearchRequest) ([][]SearchResult, error)

	// Insert upserts points into a collection. Existing IDs are overwritten.
	Insert(ctx context.Context, collectionName string, inputs []EmbeddingInput) error

	// Delete removes points by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, collectionName string, ids []string) error

	// EnsureCollection creates the collection with the given dimension if it does not
	// exist yet. Calling it for an existing collection is a no-op.
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error

	// GetCollection returns collection metadata, or ErrCollectionNotFound.
	GetCollection(ctx context.Context, name string) (*Collection, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection drops a collection and all of its points. Dropping a
	// missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error
}
