package vectordb

// SearchRequest is a single similarity query.
type SearchRequest struct {
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding.
	Vector []float32 `json:"vector"`

	// TopK is the maximum number of results.
	TopK int `json:"maxResults"`

	// Filters optionally restricts candidates by payload.
	Filters *FilterSet `json:"filters,omitempty"`
}

// SearchResult is one matched point.
type SearchResult struct {
	ID string `json:"id"`

	// Score is cosine similarity; higher is more similar.
	Score float32 `json:"score"`

	// Payload is the stored payload converted to plain Go values.
	Payload map[string]any `json:"payload"`

	CollectionName string `json:"collectionName,omitempty"`
}

// EmbeddingInput is one point to upsert.
type EmbeddingInput struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Collection describes a stored collection.
type Collection struct {
	Name string `json:"name"`

	// Status is the backend-reported state, e.g. "Green".
	Status string `json:"status"`

	VectorSize int `json:"vectorSize"`

	// Distance is the similarity metric, always "Cosine" for ragcore collections.
	Distance string `json:"distance"`

	VectorCount uint64 `json:"vectorCount"`
	PointCount  uint64 `json:"pointCount"`
}
