package rag

import "errors"

// ErrValidation is returned for malformed query or ingest parameters before any
// external call is made.
var ErrValidation = errors.New("rag: validation error")
