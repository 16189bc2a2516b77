package embedding

import "errors"

var (
	// ErrEmbeddingFailure wraps every failure of the underlying model.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrProviderUnavailable is returned when the selected provider cannot be built
	// into this binary.
	ErrProviderUnavailable = errors.New("embedding: provider not available")

	// ErrClosed is returned by Encode after Close.
	ErrClosed = errors.New("embedding: client closed")
)
