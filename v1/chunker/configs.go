package chunker

import (
	"errors"
	"fmt"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ErrInvalidConfig is returned for chunk size / overlap combinations that cannot
// produce a terminating split.
var ErrInvalidConfig = errors.New("chunker: invalid configuration")

// Config holds the splitting parameters, measured in characters (Unicode code points).
type Config struct {
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap" env:"CHUNK_OVERLAP"`
}

// DefaultConfig returns 1000 character chunks overlapping by 200.
func DefaultConfig() Config {
	return Config{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// Validate rejects non-positive sizes, negative overlaps and overlaps that are
// not strictly smaller than the chunk size.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)", ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}
