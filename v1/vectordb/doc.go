// Package vectordb defines the database-agnostic contract for vector storage.
//
// Backends (qdrant, chromem) implement Service. Callers build filters with the
// constructors in this package and never see a backend's native filter type.
//
// # Payload layout
//
// Every point stored by ragcore carries the payload
//
//	{"text": "...", "metadata": {"document_id": 7, "chunk_index": 0, ...}}
//
// Conditions built with the NewMetadata* constructors address keys inside the
// "metadata" object; FieldPath returns the dotted path ("metadata.document_id")
// used by backends that filter on nested keys.
//
// # Example
//
//	results, err := db.Search(ctx, vectordb.SearchRequest{
//		CollectionName: "documents",
//		Vector:         queryVector,
//		TopK:           3,
//		Filters:        vectordb.MetadataEquals(map[string]any{"user_id": "42"}),
//	})
package vectordb
