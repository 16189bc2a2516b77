package vectorstore

// Record is one text to store. Empty ID gets a random UUID; nil Vector is computed
// by the embedder.
type Record struct {
	ID       string
	Text     string
	Metadata map[string]any
	Vector   []float32
}

// SearchResult is one hit: the stored text, its cosine score and its metadata.
type SearchResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// CollectionInfo is the summary returned by GetCollectionInfo.
type CollectionInfo struct {
	Name        string `json:"name"`
	PointCount  uint64 `json:"points_count"`
	VectorCount uint64 `json:"vectors_count"`
	Status      string `json:"status"`
	VectorSize  int    `json:"vector_size"`
}

// Metadata keys written by the adapter and the RAG service.
const (
	KeyUserID        = "user_id"
	KeyDocumentID    = "document_id"
	KeyDocumentTitle = "document_title"
	KeyChunkIndex    = "chunk_index"
	KeyContentType   = "content_type"
	KeySessionID     = "session_id"
	KeyMessageType   = "message_type"
	KeyMessageID     = "message_id"
	KeyRole          = "role"
	KeyTimestamp     = "timestamp"
	KeyCreatedAt     = "created_at"

	ContentTypeDocumentChunk = "document_chunk"
	ContentTypeChatMessage   = "chat_message"

	MessageTypeUser = "user_message"
)
