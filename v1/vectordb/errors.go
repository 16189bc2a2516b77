package vectordb

import "errors"

// ErrCollectionNotFound is returned by GetCollection and Search for a missing collection.
var ErrCollectionNotFound = errors.New("vectordb: collection not found")
