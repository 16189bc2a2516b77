package rag

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
)

// ErrInvalidConfig is returned when Config.Validate fails.
var ErrInvalidConfig = errors.New("rag: invalid config")

// Config holds the retrieval and ingest defaults.
type Config struct {
	// ChunkSize and ChunkOverlap are used when an ingest request does not set them.
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size" env:"RAG_CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap" env:"RAG_CHUNK_OVERLAP"`

	// DefaultK is the number of points used when a query does not set K.
	DefaultK int `yaml:"default_k" koanf:"default_k" env:"RAG_DEFAULT_K"`

	// MaxK is the largest accepted K.
	MaxK int `yaml:"max_k" koanf:"max_k" env:"RAG_MAX_K"`

	// WeightDocuments and WeightMessages scale scores in hybrid mode.
	WeightDocuments float64 `yaml:"weight_documents" koanf:"weight_documents" env:"RAG_WEIGHT_DOCUMENTS"`
	WeightMessages  float64 `yaml:"weight_messages" koanf:"weight_messages" env:"RAG_WEIGHT_MESSAGES"`

	// HybridThreshold and SingleThreshold are relevance floors. A hit survives only
	// when its score is strictly greater than the floor of its mode.
	HybridThreshold float64 `yaml:"hybrid_threshold" koanf:"hybrid_threshold" env:"RAG_HYBRID_THRESHOLD"`
	SingleThreshold float64 `yaml:"single_threshold" koanf:"single_threshold" env:"RAG_SINGLE_THRESHOLD"`

	// SideWriteBuffer is the capacity of the side write outcome channel.
	SideWriteBuffer int `yaml:"side_write_buffer" koanf:"side_write_buffer" env:"RAG_SIDE_WRITE_BUFFER"`
}

// DefaultConfig returns the pipeline defaults: 1000 character chunks with 200
// characters of overlap, k=3 capped at 20, hybrid weights of 0.7 for documents
// and 0.3 for messages, and relevance thresholds of 0.6 (hybrid) and 0.7 (single
// source).
//
// Example:
//
//	cfg := rag.DefaultConfig()
//	cfg.DefaultK = 5
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
func DefaultConfig() Config {
	return Config{
		ChunkSize:       1000,
		ChunkOverlap:    200,
		DefaultK:        3,
		MaxK:            20,
		WeightDocuments: 0.7,
		WeightMessages:  0.3,
		HybridThreshold: 0.6,
		SingleThreshold: 0.7,
		SideWriteBuffer: 64,
	}
}

// Validate checks the chunking parameters, the k bounds, the hybrid weights and the
// side write buffer.
//
// Returns:
//   - error: nil when the configuration is usable, otherwise an error wrapping
//     ErrInvalidConfig that names the offending setting.
func (c Config) Validate() error {
	if err := c.chunking().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MaxK < 1 {
		return fmt.Errorf("%w: max_k must be at least 1", ErrInvalidConfig)
	}
	if c.DefaultK < 1 || c.DefaultK > c.MaxK {
		return fmt.Errorf("%w: default_k must be in [1, %d]", ErrInvalidConfig, c.MaxK)
	}
	if err := validateWeights(c.WeightDocuments, c.WeightMessages); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SideWriteBuffer < 0 {
		return fmt.Errorf("%w: side_write_buffer must not be negative", ErrInvalidConfig)
	}
	return nil
}

func validateWeights(docs, msgs float64) error {
	if docs < 0 || docs > 1 || msgs < 0 || msgs > 1 {
		return fmt.Errorf("weights must be in [0, 1], got documents=%v messages=%v", docs, msgs)
	}
	if docs+msgs == 0 {
		return errors.New("weights must not both be zero")
	}
	return nil
}

func (c Config) chunking() chunker.Config {
	return chunker.Config{ChunkSize: c.ChunkSize, ChunkOverlap: c.ChunkOverlap}
}
