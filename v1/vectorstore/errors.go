package vectorstore

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector or an existing collection does not
	// match the embedder's dimension.
	ErrDimensionMismatch = errors.New("vectorstore: dimension mismatch")

	// ErrStoreFailure wraps every error returned by the vector database. The original
	// error stays in the chain.
	ErrStoreFailure = errors.New("vectorstore: store failure")

	// ErrInvalidInput is returned for malformed arguments before any store call.
	ErrInvalidInput = errors.New("vectorstore: invalid input")
)
