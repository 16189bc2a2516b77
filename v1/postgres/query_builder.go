package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Query starts a fluent query on a snapshot of the current connection.
//
// Example:
//
//	var msgs []ChatMessage
//	err := db.Query(ctx).
//	    Where("session_id = ?", sessionID).
//	    Order("created_at DESC").
//	    Limit(10).
//	    Find(&msgs)
func (p *Postgres) Query(ctx context.Context) *QueryBuilder {
	return &QueryBuilder{db: p.DB().WithContext(ctx)}
}

// QueryBuilder wraps gorm's chainable API. Modifiers return the builder; terminal
// methods execute the query.
type QueryBuilder struct {
	db *gorm.DB
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (qb *QueryBuilder) Where(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Where(query, args...)
	return qb
}

// Joins adds an INNER JOIN clause.
//
//	qb.Joins("JOIN documents ON documents.id = document_chunks.document_id")
func (qb *QueryBuilder) Joins(query string, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Joins(query, args...)
	return qb
}

func (qb *QueryBuilder) Order(value interface{}) *QueryBuilder {
	qb.db = qb.db.Order(value)
	return qb
}

func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.db = qb.db.Limit(limit)
	return qb
}

// Model sets the table from a model when the destination type does not imply it.
func (qb *QueryBuilder) Model(value interface{}) *QueryBuilder {
	qb.db = qb.db.Model(value)
	return qb
}

func (qb *QueryBuilder) Find(dest interface{}) error {
	return qb.db.Find(dest).Error
}

func (qb *QueryBuilder) Count(count *int64) error {
	return qb.db.Count(count).Error
}

// Pluck collects a single column into dest.
//
//	var ids []string
//	qb.Model(&DocumentChunk{}).Where("document_id = ?", id).Pluck("embedding_id", &ids)
func (qb *QueryBuilder) Pluck(column string, dest interface{}) (int64, error) {
	result := qb.db.Pluck(column, dest)
	return result.RowsAffected, result.Error
}
