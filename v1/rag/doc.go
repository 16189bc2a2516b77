// Package rag is the retrieval and fusion service.
//
// # Ingest
//
// Service.Ingest turns a text into searchable chunks through a fixed sequence of
// stages run in one relational transaction:
//
//	createDocument -> chunk -> embed -> upsertVectors -> persistChunks -> markProcessed
//
// A failing stage rolls the transaction back, so no document row survives, and
// vectors written before the failure are deleted best effort.
//
// # Retrieval
//
// Service.Retrieve embeds the query once. Without a user it searches the shared
// document collection. With a user it runs a hybrid search: the user's document
// chunks and the user's message collection are queried concurrently, scores are
// multiplied by the configured weights (0.7 documents, 0.3 messages by default) and
// the merged list is cut to K. Hits scoring at or below the relevance floor (0.6 in
// hybrid mode, 0.7 otherwise) are dropped. The survivors form the context, joined by
// blank lines, and one source label each.
//
// Retrieval.Filtered distinguishes "every candidate was below the floor" from
// ModeDisabled, although both yield an empty context.
//
// # Side writes
//
// SideWriter copies chat turns into the per-user collection on background
// goroutines. Outcomes are logged and counted, never returned to the chat flow.
package rag
