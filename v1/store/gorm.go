package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/ragcore/v1/postgres"
)

// GormRepository implements Repository on PostgreSQL.
type GormRepository struct {
	pg *postgres.Postgres
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository returns a Repository backed by the given PostgreSQL client.
// The schema is not touched; call Migrate or rely on store.FXModule for that.
//
// Parameters:
//   - pg: A connected client. Transactions started through WithTx run on a
//     transactional copy of it.
//
// Returns:
//   - *GormRepository: The repository.
//
// Example:
//
//	repo := store.NewGormRepository(pg)
//	if err := repo.Migrate(ctx); err != nil {
//	    return err
//	}
func NewGormRepository(pg *postgres.Postgres) *GormRepository {
	return &GormRepository{pg: pg}
}

// Migrate creates or updates all tables.
func (r *GormRepository) Migrate(ctx context.Context) error {
	return r.pg.Migrate(ctx, Models()...)
}

func (r *GormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.pg.Transaction(ctx, func(tx *postgres.Postgres) error {
		return fn(&GormRepository{pg: tx})
	})
}

func (r *GormRepository) EnsureUser(ctx context.Context, id int64) error {
	u := User{
		ID:       id,
		Username: fmt.Sprintf("user_%d", id),
		Email:    fmt.Sprintf("user_%d@users.invalid", id),
		IsActive: true,
	}
	err := r.pg.DB().WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&u).Error
	return translate("ensure user", err)
}

func (r *GormRepository) CreateDocument(ctx context.Context, doc *Document) error {
	return translate("create document", r.pg.Create(ctx, doc))
}

func (r *GormRepository) GetDocument(ctx context.Context, id, ownerID int64) (*Document, error) {
	var doc Document
	if err := r.pg.First(ctx, &doc, "id = ? AND owner_id = ?", id, ownerID); err != nil {
		return nil, translate("get document", err)
	}
	return &doc, nil
}

func (r *GormRepository) ListDocuments(ctx context.Context, ownerID int64) ([]Document, error) {
	var docs []Document
	err := r.pg.Query(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&docs)
	return docs, translate("list documents", err)
}

func (r *GormRepository) ListDocumentIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	_, err := r.pg.Query(ctx).Model(&Document{}).Where("owner_id = ?", ownerID).Order("id").Pluck("id", &ids)
	return ids, translate("list document ids", err)
}

func (r *GormRepository) MarkDocumentProcessed(ctx context.Context, id int64) error {
	n, err := r.pg.UpdateColumns(ctx, &Document{ID: id}, map[string]interface{}{"is_processed": true})
	if err != nil {
		return translate("mark document processed", err)
	}
	if n == 0 {
		return fmt.Errorf("mark document processed %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GormRepository) DeleteDocument(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx Repository) error {
		g := tx.(*GormRepository)
		if _, err := g.pg.Delete(ctx, &DocumentChunk{}, "document_id = ?", id); err != nil {
			return translate("delete chunks", err)
		}
		n, err := g.pg.Delete(ctx, &Document{}, "id = ?", id)
		if err != nil {
			return translate("delete document", err)
		}
		if n == 0 {
			return fmt.Errorf("delete document %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *GormRepository) CountDocuments(ctx context.Context, f DocumentFilter) (int64, error) {
	var n int64
	q := r.pg.Query(ctx).Model(&Document{})
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.ProcessedOnly {
		q = q.Where("is_processed = ?", true)
	}
	return n, translate("count documents", q.Count(&n))
}

func (r *GormRepository) CreateChunks(ctx context.Context, chunks []DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return translate("create chunks", r.pg.Create(ctx, &chunks))
}

func (r *GormRepository) ChunkEmbeddingIDs(ctx context.Context, documentID int64) ([]string, error) {
	var ids []string
	_, err := r.pg.Query(ctx).
		Model(&DocumentChunk{}).
		Where("document_id = ? AND embedding_id <> ''", documentID).
		Order("chunk_index").
		Pluck("embedding_id", &ids)
	return ids, translate("list chunk embedding ids", err)
}

func (r *GormRepository) CountChunks(ctx context.Context, f DocumentFilter) (int64, error) {
	var n int64
	q := r.pg.Query(ctx).Model(&DocumentChunk{})
	if f.OwnerID != 0 || f.ProcessedOnly {
		q = q.Joins("JOIN documents ON documents.id = document_chunks.document_id")
	}
	if f.OwnerID != 0 {
		q = q.Where("documents.owner_id = ?", f.OwnerID)
	}
	if f.ProcessedOnly {
		q = q.Where("documents.is_processed = ?", true)
	}
	return n, translate("count chunks", q.Count(&n))
}

func (r *GormRepository) CreateSession(ctx context.Context, s *ChatSession) error {
	return translate("create session", r.pg.Create(ctx, s))
}

func (r *GormRepository) GetSession(ctx context.Context, id, userID int64) (*ChatSession, error) {
	var s ChatSession
	if err := r.pg.First(ctx, &s, "id = ? AND user_id = ?", id, userID); err != nil {
		return nil, translate("get session", err)
	}
	return &s, nil
}

func (r *GormRepository) ListSessions(ctx context.Context, userID int64) ([]ChatSession, error) {
	var sessions []ChatSession
	err := r.pg.DB().WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("chat_messages.id") }).
		Where("user_id = ?", userID).
		Order("id").
		Find(&sessions).Error
	return sessions, translate("list sessions", err)
}

func (r *GormRepository) DeleteSession(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx Repository) error {
		g := tx.(*GormRepository)
		if _, err := g.pg.Delete(ctx, &ChatMessage{}, "session_id = ?", id); err != nil {
			return translate("delete messages", err)
		}
		n, err := g.pg.Delete(ctx, &ChatSession{}, "id = ?", id)
		if err != nil {
			return translate("delete session", err)
		}
		if n == 0 {
			return fmt.Errorf("delete session %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *GormRepository) CreateMessage(ctx context.Context, m *ChatMessage) error {
	return translate("create message", r.pg.Create(ctx, m))
}

func (r *GormRepository) ListMessages(ctx context.Context, sessionID int64) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := r.pg.Query(ctx).Where("session_id = ?", sessionID).Order("id").Find(&msgs)
	return msgs, translate("list messages", err)
}

func (r *GormRepository) RecentMessages(ctx context.Context, sessionID int64, limit int) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := r.pg.Query(ctx).Where("session_id = ?", sessionID).Order("id DESC").Limit(limit).Find(&msgs)
	if err != nil {
		return nil, translate("recent messages", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *GormRepository) Ping(ctx context.Context) error {
	return r.pg.HealthCheck(ctx)
}

// translate maps database errors to package errors, keeping the original in the chain.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	err = postgres.TranslateError(err)
	if errors.Is(err, postgres.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
