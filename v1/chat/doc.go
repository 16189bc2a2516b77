// Package chat runs a chat turn end to end: session lookup, message persistence,
// retrieval, generation and the background copy of both turns into the user's
// message collection.
package chat
