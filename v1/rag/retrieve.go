package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

const contextSeparator = "\n\n"

// Source labels for hits.
const (
	unknownDocument = "Unknown Document"
	unknownSource   = "Unknown Source"
)

// Retrieve runs one query.
//
// Without a user the shared collection is searched for K points and hits must score
// above SingleThreshold. With a user, the user's document chunks and the user's
// message collection are searched concurrently for max(1, round(K*w)) points each,
// scores are multiplied by the weight of their origin, the merged list is sorted and
// cut to K, and hits must score above HybridThreshold.
func (s *Service) Retrieve(ctx context.Context, q Query) (*Retrieval, error) {
	ctx, span := s.tracer.StartSpan(ctx, "rag.retrieve")
	defer span.End()

	if !q.UseRAG {
		s.tracer.SetAttributes(span, map[string]interface{}{"rag.mode": string(ModeDisabled)})
		s.logger.DebugWithContext(ctx, "Retrieval disabled for query", nil)
		return &Retrieval{Mode: ModeDisabled, Hits: []Hit{}, Sources: []string{}}, nil
	}

	k, w, err := s.resolveQuery(q)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	vector, err := s.encoder.EncodeOne(ctx, q.Text)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	var (
		mode       Mode
		threshold  float64
		candidates []Hit
	)
	if q.UserID == 0 {
		mode, threshold = ModeSingle, s.cfg.SingleThreshold
		res, err := s.vectors.Search(ctx, s.vectors.DefaultCollection(), vector, k, nil)
		if err != nil {
			s.tracer.RecordErrorOnSpan(span, err)
			return nil, err
		}
		candidates = weigh(res, 1, OriginDocuments)
	} else {
		mode, threshold = ModeHybrid, s.cfg.HybridThreshold
		candidates, err = s.hybridSearch(ctx, vector, q, k, w)
		if err != nil {
			s.tracer.RecordErrorOnSpan(span, err)
			return nil, err
		}
	}

	r := applyThreshold(mode, candidates, threshold)

	s.tracer.SetAttributes(span, map[string]interface{}{
		"rag.mode":                  string(mode),
		"rag.k":                     k,
		"rag.candidates":            r.Candidates,
		"rag.points_used":           r.PointsUsed,
		"rag.empty_after_threshold": r.Filtered,
	})
	if s.metrics != nil {
		s.metrics.RecordPointsUsed(string(mode), r.PointsUsed)
	}
	fields := map[string]interface{}{
		"mode":        string(mode),
		"k":           k,
		"candidates":  r.Candidates,
		"points_used": r.PointsUsed,
	}
	if r.Filtered {
		s.logger.InfoWithContext(ctx, "All candidates fell below the relevance threshold", nil, fields)
	} else {
		fields["context"] = logger.Truncate(r.Context, 500)
		s.logger.DebugWithContext(ctx, "Context built", nil, fields)
	}
	return r, nil
}

func (s *Service) resolveQuery(q Query) (int, Weights, error) {
	if chunker.IsBlank(q.Text) {
		return 0, Weights{}, fmt.Errorf("%w: query text is empty", ErrValidation)
	}
	k := q.K
	if k == 0 {
		k = s.cfg.DefaultK
	}
	if k < 1 || k > s.cfg.MaxK {
		return 0, Weights{}, fmt.Errorf("%w: k must be between 1 and %d, got %d", ErrValidation, s.cfg.MaxK, q.K)
	}
	w := Weights{Documents: s.cfg.WeightDocuments, Messages: s.cfg.WeightMessages}
	if q.Weights != nil {
		w = *q.Weights
	}
	if err := validateWeights(w.Documents, w.Messages); err != nil {
		return 0, Weights{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return k, w, nil
}

func (s *Service) hybridSearch(ctx context.Context, vector []float32, q Query, k int, w Weights) ([]Hit, error) {
	kDocs, kMsgs := SplitK(k, w)

	var docs, msgs []vectorstore.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.vectors.Search(gctx, s.vectors.DefaultCollection(), vector, kDocs, map[string]any{
			vectorstore.KeyUserID:      q.UserID,
			vectorstore.KeyContentType: vectorstore.ContentTypeDocumentChunk,
		})
		return err
	})
	g.Go(func() error {
		var err error
		msgs, err = s.vectors.SearchUserHistory(gctx, q.UserID, vector, kMsgs, q.ExcludeMessageIDs...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Fuse(weigh(docs, w.Documents, OriginDocuments), weigh(msgs, w.Messages, OriginMessages), k), nil
}

// SplitK returns the per-collection budgets max(1, round(k*w)) for documents and
// messages.
func SplitK(k int, w Weights) (docs, msgs int) {
	docs = max(1, int(math.Round(float64(k)*w.Documents)))
	msgs = max(1, int(math.Round(float64(k)*w.Messages)))
	return docs, msgs
}

// Fuse merges weighted document and message hits, sorts them by descending score
// and keeps the best k. Equal scores keep documents before messages.
func Fuse(docs, msgs []Hit, k int) []Hit {
	all := make([]Hit, 0, len(docs)+len(msgs))
	all = append(all, docs...)
	all = append(all, msgs...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func weigh(results []vectorstore.SearchResult, weight float64, origin Origin) []Hit {
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ID:       r.ID,
			Text:     r.Text,
			Score:    float64(r.Score) * weight,
			RawScore: float64(r.Score),
			Origin:   origin,
			Metadata: r.Metadata,
			Source:   SourceLabel(r.Metadata),
		}
	}
	return hits
}

// applyThreshold keeps hits scoring strictly above threshold and builds the context.
func applyThreshold(mode Mode, candidates []Hit, threshold float64) *Retrieval {
	r := &Retrieval{Mode: mode, Hits: []Hit{}, Sources: []string{}, Candidates: len(candidates)}
	for _, h := range candidates {
		if h.Score > threshold {
			r.Hits = append(r.Hits, h)
			r.Sources = append(r.Sources, h.Source)
		}
	}
	r.PointsUsed = len(r.Hits)
	r.Context = BuildContext(r.Hits)
	r.Filtered = len(candidates) > 0 && len(r.Hits) == 0
	return r
}

// BuildContext joins hit texts with a blank line.
func BuildContext(hits []Hit) string {
	if len(hits) == 0 {
		return ""
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Text
	}
	return strings.Join(parts, contextSeparator)
}

// SourceLabel names where a hit came from: the document title for document chunks,
// "Previous Message (Session S)" for chat messages.
func SourceLabel(meta map[string]any) string {
	switch meta[vectorstore.KeyContentType] {
	case vectorstore.ContentTypeDocumentChunk:
		if title, ok := meta[vectorstore.KeyDocumentTitle].(string); ok && title != "" {
			return title
		}
		return unknownDocument
	case vectorstore.ContentTypeChatMessage:
		session, ok := meta[vectorstore.KeySessionID]
		if !ok || session == nil {
			session = "Unknown"
		}
		return fmt.Sprintf("Previous Message (Session %v)", session)
	default:
		return unknownSource
	}
}
