package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

// Ingest runs strictly in this order, inside one relational transaction:
//
//	createDocument -> chunk -> embed -> upsertVectors -> persistChunks -> markProcessed
//
// Each stage takes the result of the previous one.

type chunkedDocument struct {
	doc    *store.Document
	chunks []string
}

type embeddedDocument struct {
	chunkedDocument
	vectors [][]float32
}

type storedDocument struct {
	embeddedDocument
	vectorIDs []string
}

// Ingest stores a document, splits it, embeds the chunks and writes them to the
// shared collection. On any failure the relational transaction is rolled back and
// vectors already written are deleted best effort.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (res *IngestResult, err error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest")
	defer span.End()
	start := time.Now()

	req, err = s.normalizeIngest(req)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	var written []string
	defer func() {
		if err == nil {
			s.countIngest("processed")
			return
		}
		s.countIngest("failed")
		s.tracer.RecordErrorOnSpan(span, err)
		if len(written) > 0 {
			s.cleanupVectors(context.WithoutCancel(ctx), written)
		}
		s.logger.ErrorWithContext(ctx, "Document ingest failed", err, map[string]interface{}{
			"title":    req.Title,
			"owner_id": req.OwnerID,
		})
	}()

	err = s.repo.WithTx(ctx, func(tx store.Repository) error {
		doc, err := s.createDocument(ctx, tx, req)
		if err != nil {
			return err
		}
		chunked, err := s.chunk(ctx, doc)
		if err != nil {
			return err
		}
		embedded, err := s.embed(ctx, chunked)
		if err != nil {
			return err
		}
		stored, err := s.upsertVectors(ctx, embedded)
		written = stored.vectorIDs
		if err != nil {
			return err
		}
		if err := s.persistChunks(ctx, tx, stored); err != nil {
			return err
		}
		if err := s.markProcessed(ctx, tx, doc); err != nil {
			return err
		}
		res = &IngestResult{Document: *doc, Chunks: len(stored.chunks), VectorIDs: stored.vectorIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tracer.SetAttributes(span, map[string]interface{}{
		"rag.document_id": res.Document.ID,
		"rag.chunks":      res.Chunks,
	})
	s.logger.InfoWithContext(ctx, "Document ingested", nil, map[string]interface{}{
		"document_id": res.Document.ID,
		"owner_id":    req.OwnerID,
		"chunks":      res.Chunks,
		"duration":    time.Since(start).String(),
	})
	return res, nil
}

func (s *Service) normalizeIngest(req IngestRequest) (IngestRequest, error) {
	if req.OwnerID <= 0 {
		return req, fmt.Errorf("%w: owner id must be positive", ErrValidation)
	}
	if chunker.IsBlank(req.Title) {
		return req, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = s.cfg.ChunkSize
		if req.ChunkOverlap == 0 {
			req.ChunkOverlap = s.cfg.ChunkOverlap
		}
	}
	cfg := chunker.Config{ChunkSize: req.ChunkSize, ChunkOverlap: req.ChunkOverlap}
	if err := cfg.Validate(); err != nil {
		return req, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return req, nil
}

func (s *Service) createDocument(ctx context.Context, tx store.Repository, req IngestRequest) (*store.Document, error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest.create_document")
	defer span.End()

	if err := tx.EnsureUser(ctx, req.OwnerID); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	doc := &store.Document{
		Title:        req.Title,
		Content:      req.Content,
		FilePath:     req.FilePath,
		FileType:     req.FileType,
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: req.ChunkOverlap,
		OwnerID:      req.OwnerID,
	}
	if err := tx.CreateDocument(ctx, doc); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	return doc, nil
}

func (s *Service) chunk(ctx context.Context, doc *store.Document) (chunkedDocument, error) {
	_, span := s.tracer.StartSpan(ctx, "rag.ingest.chunk")
	defer span.End()

	chunks, err := chunker.Split(doc.Content, doc.ChunkSize, doc.ChunkOverlap)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return chunkedDocument{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.tracer.SetAttributes(span, map[string]interface{}{"rag.chunks": len(chunks)})
	s.logger.Debug("Document split", nil, map[string]interface{}{
		"document_id": doc.ID,
		"chunks":      len(chunks),
	})
	return chunkedDocument{doc: doc, chunks: chunks}, nil
}

func (s *Service) embed(ctx context.Context, in chunkedDocument) (embeddedDocument, error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest.embed")
	defer span.End()

	if len(in.chunks) == 0 {
		return embeddedDocument{chunkedDocument: in, vectors: [][]float32{}}, nil
	}
	res := <-s.encoder.EncodeAsync(ctx, in.chunks)
	if res.Err != nil {
		s.tracer.RecordErrorOnSpan(span, res.Err)
		return embeddedDocument{}, res.Err
	}
	return embeddedDocument{chunkedDocument: in, vectors: res.Vectors}, nil
}

func (s *Service) upsertVectors(ctx context.Context, in embeddedDocument) (storedDocument, error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest.upsert_vectors")
	defer span.End()

	out := storedDocument{embeddedDocument: in}
	if len(in.chunks) == 0 {
		out.vectorIDs = []string{}
		return out, nil
	}

	createdAt := s.now().UTC()
	records := make([]vectorstore.Record, len(in.chunks))
	for i, text := range in.chunks {
		records[i] = vectorstore.Record{
			Text:   text,
			Vector: in.vectors[i],
			Metadata: map[string]any{
				vectorstore.KeyDocumentID:    in.doc.ID,
				vectorstore.KeyDocumentTitle: in.doc.Title,
				vectorstore.KeyChunkIndex:    i,
				vectorstore.KeyUserID:        in.doc.OwnerID,
				vectorstore.KeyContentType:   vectorstore.ContentTypeDocumentChunk,
				vectorstore.KeyCreatedAt:     createdAt,
			},
		}
	}

	ids, err := s.vectors.Upsert(ctx, s.vectors.DefaultCollection(), records)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return out, err
	}
	out.vectorIDs = ids
	return out, nil
}

func (s *Service) persistChunks(ctx context.Context, tx store.Repository, in storedDocument) error {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest.persist_chunks")
	defer span.End()

	rows := make([]store.DocumentChunk, len(in.chunks))
	for i, text := range in.chunks {
		rows[i] = store.DocumentChunk{
			Content:     text,
			ChunkIndex:  i,
			EmbeddingID: in.vectorIDs[i],
			DocumentID:  in.doc.ID,
		}
	}
	if err := tx.CreateChunks(ctx, rows); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return err
	}
	return nil
}

func (s *Service) markProcessed(ctx context.Context, tx store.Repository, doc *store.Document) error {
	ctx, span := s.tracer.StartSpan(ctx, "rag.ingest.mark_processed")
	defer span.End()

	if err := tx.MarkDocumentProcessed(ctx, doc.ID); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return err
	}
	doc.IsProcessed = true
	return nil
}

func (s *Service) cleanupVectors(ctx context.Context, ids []string) {
	if err := s.vectors.Delete(ctx, s.vectors.DefaultCollection(), ids); err != nil {
		s.logger.Error("Failed to remove vectors of a failed ingest", err, map[string]interface{}{
			"count": len(ids),
		})
		return
	}
	s.logger.Info("Removed vectors of a failed ingest", nil, map[string]interface{}{"count": len(ids)})
}
