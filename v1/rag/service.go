package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// Service ingests documents and answers retrieval queries over the shared document
// collection and the per-user message collections.
type Service struct {
	cfg     Config
	vectors VectorStore
	encoder embedding.Encoder
	repo    store.Repository
	logger  logger.Logger
	tracer  *tracer.Tracer
	metrics metrics.MetricsCollector
	now     func() time.Time
}

// NewService validates cfg and builds a Service. tr and m may be nil.
func NewService(cfg Config, vectors VectorStore, encoder embedding.Encoder, repo store.Repository,
	log logger.Logger, tr *tracer.Tracer, m metrics.MetricsCollector) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		vectors: vectors,
		encoder: encoder,
		repo:    repo,
		logger:  log,
		tracer:  tr,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// SearchSimilar embeds query and searches either the user's message collection
// (userMessages with a user) or the shared document collection, filtered to the
// user's documents when userID is set.
func (s *Service) SearchSimilar(ctx context.Context, query string, k int, userID int64, userMessages bool) ([]vectorstore.SearchResult, error) {
	vector, err := s.encoder.EncodeOne(ctx, query)
	if err != nil {
		return nil, err
	}
	if userMessages && userID != 0 {
		return s.vectors.SearchUserMessages(ctx, userID, vector, k, nil)
	}
	var filter map[string]any
	if userID != 0 {
		filter = map[string]any{vectorstore.KeyUserID: userID}
	}
	return s.vectors.Search(ctx, s.vectors.DefaultCollection(), vector, k, filter)
}

// Documents lists the documents owned by ownerID.
func (s *Service) Documents(ctx context.Context, ownerID int64) ([]store.Document, error) {
	docs, err := s.repo.ListDocuments(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []store.Document{}
	}
	return docs, nil
}

// Document returns one document owned by ownerID.
func (s *Service) Document(ctx context.Context, id, ownerID int64) (*store.Document, error) {
	return s.repo.GetDocument(ctx, id, ownerID)
}

// DeleteDocument removes a document owned by ownerID together with exactly the
// vectors recorded for its chunks. It returns the removed vector ids.
func (s *Service) DeleteDocument(ctx context.Context, documentID, ownerID int64) ([]string, error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.delete_document")
	defer span.End()

	var ids []string
	err := s.repo.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetDocument(ctx, documentID, ownerID); err != nil {
			return err
		}
		var err error
		ids, err = tx.ChunkEmbeddingIDs(ctx, documentID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := s.vectors.Delete(ctx, s.vectors.DefaultCollection(), ids); err != nil {
				return err
			}
		}
		return tx.DeleteDocument(ctx, documentID)
	})
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WarnWithContext(ctx, "Document not found", nil, map[string]interface{}{"document_id": documentID})
		}
		return nil, err
	}

	s.logger.InfoWithContext(ctx, "Document deleted", nil, map[string]interface{}{
		"document_id": documentID,
		"vectors":     len(ids),
	})
	return ids, nil
}

// ClearUserData deletes every document of the user and drops the user's message
// collection.
func (s *Service) ClearUserData(ctx context.Context, userID int64) error {
	docIDs, err := s.repo.ListDocumentIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range docIDs {
		if _, err := s.DeleteDocument(ctx, id, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("clearing document %d: %w", id, err)
		}
	}
	if err := s.vectors.DeleteUserCollection(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoWithContext(ctx, "User data cleared", nil, map[string]interface{}{
		"user_id":   userID,
		"documents": len(docIDs),
	})
	return nil
}

// Status counts documents, chunks and vectors. With a user id the counts are
// limited to that user and the collection size is that of the user's message
// collection. The system is reported healthy when every count is positive.
func (s *Service) Status(ctx context.Context, userID int64) (*Status, error) {
	total, err := s.repo.CountDocuments(ctx, store.DocumentFilter{OwnerID: userID})
	if err != nil {
		return nil, err
	}
	processed, err := s.repo.CountDocuments(ctx, store.DocumentFilter{OwnerID: userID, ProcessedOnly: true})
	if err != nil {
		return nil, err
	}
	chunks, err := s.repo.CountChunks(ctx, store.DocumentFilter{OwnerID: userID})
	if err != nil {
		return nil, err
	}

	var info *vectorstore.CollectionInfo
	if userID != 0 {
		info, err = s.vectors.GetUserCollectionInfo(ctx, userID)
	} else {
		info, err = s.vectors.GetCollectionInfo(ctx, s.vectors.DefaultCollection())
	}
	var size uint64
	switch {
	case err == nil:
		size = info.PointCount
	case errors.Is(err, vectordb.ErrCollectionNotFound):
	default:
		return nil, err
	}

	return &Status{
		TotalDocuments:     total,
		ProcessedDocuments: processed,
		TotalChunks:        chunks,
		CollectionSize:     size,
		IsHealthy:          total > 0 && processed > 0 && chunks > 0 && size > 0,
		LastUpdate:         s.now().UTC(),
	}, nil
}

// UserCollectionInfo describes the user's message collection.
func (s *Service) UserCollectionInfo(ctx context.Context, userID int64) (*vectorstore.CollectionInfo, error) {
	return s.vectors.GetUserCollectionInfo(ctx, userID)
}

// Health checks the vector store, the embedder and the relational store.
func (s *Service) Health(ctx context.Context) Health {
	components := map[string]string{
		"vector_store":    healthy,
		"embedding_model": healthy,
		"database":        healthy,
	}
	if err := s.vectors.Ping(ctx); err != nil {
		components["vector_store"] = unhealthy
		s.logger.WarnWithContext(ctx, "Vector store health check failed", err)
	}
	if s.encoder.Dimension() <= 0 {
		components["embedding_model"] = unhealthy
	}
	if err := s.repo.Ping(ctx); err != nil {
		components["database"] = unhealthy
		s.logger.WarnWithContext(ctx, "Database health check failed", err)
	}

	status := healthy
	for _, v := range components {
		if v != healthy {
			status = unhealthy
		}
	}
	return Health{Status: status, Components: components, Timestamp: s.now().UTC()}
}

func (s *Service) countIngest(status string) {
	if s.metrics != nil {
		s.metrics.IncrementDocumentsIngested(status)
	}
}
