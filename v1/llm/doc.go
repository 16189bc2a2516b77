// Package llm sends chat conversations to an OpenAI-compatible completion API
// (OpenRouter by default) through langchaingo.
//
// Gateway.Generate builds the message list from the request: a system message with the
// retrieved context when there is one, the most recent history turns and the new user
// message. The new message is not appended a second time when the caller already stored
// it as the last user turn. Provider errors and empty answers are reported as
// ErrProviderFailure and never retried.
package llm
