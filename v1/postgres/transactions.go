package postgres

import (
	"context"

	"gorm.io/gorm"
)

// cloneWithTx returns a shallow copy of Postgres with tx as the DB client. The copy
// shares the shutdown machinery of p.
func (p *Postgres) cloneWithTx(tx *gorm.DB) *Postgres {
	c := &Postgres{
		cfg:                p.cfg,
		logger:             p.logger,
		shutdownSignal:     p.shutdownSignal,
		retryChanSignal:    p.retryChanSignal,
		closeRetryChanOnce: p.closeRetryChanOnce,
		closeShutdownOnce:  p.closeShutdownOnce,
	}
	c.client.Store(tx)
	return c
}

// Transaction executes fn within a database transaction. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
//
// Example usage:
//
//	err := pg.Transaction(ctx, func(tx *Postgres) error {
//		if err := tx.Create(ctx, doc); err != nil {
//			return err
//		}
//		return tx.Create(ctx, &chunks)
//	})
func (p *Postgres) Transaction(ctx context.Context, fn func(tx *Postgres) error) error {
	return p.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(p.cloneWithTx(tx))
	})
}
