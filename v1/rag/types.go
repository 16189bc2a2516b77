package rag

import (
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/store"
)

// Mode says how a query was answered.
type Mode string

const (
	// ModeDisabled means retrieval was skipped because the caller turned it off.
	ModeDisabled Mode = "disabled"
	// ModeSingle searches the shared document collection only.
	ModeSingle Mode = "single"
	// ModeHybrid fuses the user's documents with the user's message history.
	ModeHybrid Mode = "hybrid"
)

// Origin names the collection a hit came from.
type Origin string

const (
	OriginDocuments Origin = "documents"
	OriginMessages  Origin = "messages"
)

// Weights split the result budget between documents and messages in hybrid mode.
type Weights struct {
	Documents float64
	Messages  float64
}

// Query is one retrieval request.
type Query struct {
	Text string
	// UserID selects hybrid mode when non-zero.
	UserID int64
	// K is the number of points to return; zero selects Config.DefaultK.
	K      int
	UseRAG bool
	// Weights override the configured hybrid weights when set.
	Weights *Weights
	// ExcludeMessageIDs are chat messages left out of the message search.
	ExcludeMessageIDs []int64
}

// Hit is one fused search result. Score is the weighted score that the relevance
// floor is applied to; RawScore is the similarity reported by the vector store.
type Hit struct {
	ID       string
	Text     string
	Score    float64
	RawScore float64
	Origin   Origin
	Metadata map[string]any
	Source   string
}

// Retrieval is the outcome of Retrieve.
type Retrieval struct {
	Mode Mode
	// Hits are the results above the relevance floor, best first.
	Hits []Hit
	// Context joins the texts of Hits with blank lines. Empty when nothing survived.
	Context string
	// Sources holds one label per hit, in the same order.
	Sources []string
	// PointsUsed is len(Hits).
	PointsUsed int
	// Candidates is the number of fused results before the relevance floor.
	Candidates int
	// Filtered is true when there were candidates but the floor dropped all of them.
	Filtered bool
}

// IngestRequest describes a text document to ingest for OwnerID.
type IngestRequest struct {
	OwnerID  int64
	Title    string
	Content  string
	FilePath *string
	FileType *string
	// ChunkSize and ChunkOverlap default to the service configuration when zero.
	ChunkSize    int
	ChunkOverlap int
}

// IngestResult is returned by a successful Ingest.
type IngestResult struct {
	Document  store.Document
	Chunks    int
	VectorIDs []string
}

// Status summarises stored documents and vectors.
type Status struct {
	TotalDocuments     int64     `json:"total_documents"`
	ProcessedDocuments int64     `json:"processed_documents"`
	TotalChunks        int64     `json:"total_chunks"`
	CollectionSize     uint64    `json:"collection_size"`
	IsHealthy          bool      `json:"is_healthy"`
	LastUpdate         time.Time `json:"last_update"`
}

// Health reports reachability of the retrieval dependencies.
type Health struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"
)
