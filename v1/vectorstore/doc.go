// Package vectorstore is the vector store adapter used by the retrieval service.
//
// It sits on top of a vectordb.Service backend (Qdrant in production, chromem for
// embedded use) and adds what the RAG layer needs: lazy collection creation sized to
// the embedder, id generation, batched embedding of records without vectors, exact
// match metadata filters and per-user message collections.
//
// # Collections
//
// Document chunks live in one shared collection (Config.Collection, "documents" by
// default). Each user owns a private collection named by UserCollectionName, for
// example "user_42_collection", holding their chat messages.
//
// # Payload layout
//
// Every point carries
//
//	{"text": "<chunk or message>", "metadata": {"user_id": 42, ...}}
//
// and filters passed to Search address keys of the metadata object.
//
// # Example
//
//	store := vectorstore.New(db, encoder, vectorstore.DefaultConfig(), log)
//	ids, err := store.Upsert(ctx, store.DefaultCollection(), []vectorstore.Record{
//		{Text: "Qdrant stores vectors.", Metadata: map[string]any{"document_id": int64(7)}},
//	})
//	hits, err := store.Search(ctx, store.DefaultCollection(), queryVec, 3,
//		map[string]any{"document_id": int64(7)})
package vectorstore
