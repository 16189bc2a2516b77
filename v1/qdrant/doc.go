// Package qdrant is the Qdrant backend of vectordb.Service.
//
// QdrantClient owns the gRPC connection and health-checks the server on construction.
// Adapter implements vectordb.Service over that connection:
//
//	qc, err := qdrant.NewQdrantClient(qdrant.DefaultConfig(), log)
//	if err != nil {
//		return err
//	}
//	var db vectordb.Service = qdrant.NewAdapter(qc.Client(), 0, log, nil)
//
// Collections are created with cosine distance. Upserts are sent in batches of
// Config.BatchSize points (200 by default) and wait for persistence. Filters built
// with vectordb's NewMetadata* constructors address the nested payload key
// "metadata.<field>".
//
// Searches against a collection that does not exist fail with an error matching
// vectordb.ErrCollectionNotFound.
//
// With Fx:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Supply(qdrant.DefaultConfig()),
//		qdrant.FXModule,
//	)
package qdrant
