package llm

import "errors"

// ErrProviderFailure wraps every error returned by the completion provider,
// including an empty answer.
var ErrProviderFailure = errors.New("llm: provider failure")
