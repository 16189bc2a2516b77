// Package chunker splits document text into overlapping chunks sized for embedding.
//
// Splitting is a pure function of (text, size, overlap): whitespace is normalized,
// windows of size characters advance by roughly size-overlap, and window edges are
// pulled back to sentence or word boundaries when possible.
package chunker
