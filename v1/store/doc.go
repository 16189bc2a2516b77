// Package store holds the relational records of the service (users, documents,
// document chunks, chat sessions and chat messages) behind the Repository interface.
//
// GormRepository persists them in PostgreSQL through the postgres package.
// MemoryRepository keeps them in process for development and tests.
//
// Ingest runs inside WithTx so that a failure in any step leaves no document behind:
//
//	err := repo.WithTx(ctx, func(tx store.Repository) error {
//		if err := tx.CreateDocument(ctx, doc); err != nil {
//			return err
//		}
//		return tx.CreateChunks(ctx, chunks)
//	})
package store
