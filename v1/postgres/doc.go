// Package postgres wraps gorm with the PostgreSQL driver (pgx underneath).
//
// The Postgres type keeps the active *gorm.DB in an atomic pointer. A monitor
// goroutine pings the database every 10 seconds and a retry goroutine reconnects
// after a failed ping; both are started and stopped by FXModule.
//
// Basic Usage:
//
//	pg, err := postgres.NewPostgres(postgres.DefaultConfig(), log)
//	if err != nil {
//		return err
//	}
//	defer pg.GracefulShutdown()
//
//	var doc store.Document
//	err = pg.First(ctx, &doc, "id = ?", 7)
//
// Transaction Example:
//
//	err = pg.Transaction(ctx, func(tx *postgres.Postgres) error {
//		if err := tx.Create(ctx, &doc); err != nil {
//			return err // rolled back
//		}
//		return tx.Create(ctx, &chunks)
//	})
//
// Query Builder:
//
//	var ids []string
//	_, err = pg.Query(ctx).
//		Model(&store.DocumentChunk{}).
//		Where("document_id = ?", docID).
//		Pluck("embedding_id", &ids)
//
// Error Handling:
//
// Methods return gorm and driver errors unchanged. TranslateError maps them to the
// package sentinels using gorm's translated errors and the pgconn.PgError SQLSTATE:
//
//	err := pg.First(ctx, &doc, "id = ?", id)
//	if errors.Is(postgres.TranslateError(err), postgres.ErrRecordNotFound) {
//		// 404
//	}
//
// Thread Safety:
//
// All methods are safe for concurrent use. A *Postgres handed to a Transaction
// callback must not be used after the callback returns.
package postgres
