package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

var _ vectordb.Service = (*Store)(nil)

var errNoEmbeddingFunc = errors.New("chromem: documents must carry precomputed embeddings")

const (
	// catalogCollection holds one document per collection recording its vector size.
	// chromem keeps collection metadata private, so the catalog is what survives a reopen.
	catalogCollection = "_ragcore_catalog"
	dimensionKey      = "dimension"
)

// Store implements vectordb.Service with an embedded chromem-go database.
//
// chromem computes exact cosine similarity over all documents of a collection, which
// suits development setups and tests. The vector size of every collection is recorded
// in a catalog collection, so a persistent store reopened with another embedder still
// reports the size the collection was created with.
type Store struct {
	db       *chromem.DB
	logger   logger.Logger
	observer observability.Observer

	// serialises collection creation and deletion
	mu sync.Mutex
}

// NewStore opens a persistent database at cfg.Path, or an in-memory one when the path is empty.
func NewStore(cfg Config, log logger.Logger, observer observability.Observer) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		if err = os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("chromem: creating directory %s: %w", cfg.Path, err)
		}
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("chromem: opening database: %w", err)
		}
	}

	log.Info("Chromem store initialized", nil, map[string]interface{}{
		"path":     cfg.Path,
		"compress": cfg.Compress,
	})

	return &Store{
		db:       db,
		logger:   log,
		observer: observer,
	}, nil
}

// embeddingFunc is never expected to run: every document and query carries its own vector.
// Passing a non-nil function keeps chromem from falling back to its OpenAI default.
func embeddingFunc(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

func (s *Store) collection(name string) *chromem.Collection {
	return s.db.GetCollection(name, embeddingFunc)
}

func (s *Store) EnsureCollection(ctx context.Context, name string, vectorSize uint64) (err error) {
	if name == "" {
		return fmt.Errorf("chromem: collection name cannot be empty")
	}
	if name == catalogCollection {
		return fmt.Errorf("chromem: collection name %s is reserved", name)
	}
	if vectorSize == 0 {
		return fmt.Errorf("chromem: vector size must be positive")
	}

	start := time.Now()
	defer func() { s.observeOperation("ensure_collection", name, 0, time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection(name) != nil {
		// collections created before the catalog existed adopt the first size seen
		if s.dimension(ctx, name) == 0 {
			return s.recordDimension(ctx, name, vectorSize)
		}
		return nil
	}

	meta := map[string]string{dimensionKey: strconv.FormatUint(vectorSize, 10)}
	if _, err = s.db.CreateCollection(name, meta, embeddingFunc); err != nil {
		return fmt.Errorf("chromem: creating collection %s: %w", name, err)
	}
	if err = s.recordDimension(ctx, name, vectorSize); err != nil {
		return err
	}

	s.logger.Info("Created chromem collection", nil, map[string]interface{}{
		"collection":  name,
		"vector_size": vectorSize,
	})
	return nil
}

// dimension returns the recorded vector size of name, or 0 when none is recorded.
func (s *Store) dimension(ctx context.Context, name string) int {
	catalog := s.collection(catalogCollection)
	if catalog == nil {
		return 0
	}
	doc, err := catalog.GetByID(ctx, name)
	if err != nil {
		return 0
	}
	dim, err := strconv.Atoi(doc.Metadata[dimensionKey])
	if err != nil {
		return 0
	}
	return dim
}

func (s *Store) recordDimension(ctx context.Context, name string, vectorSize uint64) error {
	catalog, err := s.db.GetOrCreateCollection(catalogCollection, nil, embeddingFunc)
	if err != nil {
		return fmt.Errorf("chromem: opening catalog: %w", err)
	}
	err = catalog.AddDocument(ctx, chromem.Document{
		ID:        name,
		Metadata:  map[string]string{dimensionKey: strconv.FormatUint(vectorSize, 10)},
		Embedding: []float32{1},
	})
	if err != nil {
		return fmt.Errorf("chromem: recording dimension of %s: %w", name, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, collectionName string, inputs []vectordb.EmbeddingInput) (err error) {
	if len(inputs) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { s.observeOperation("upsert", collectionName, len(inputs), time.Since(start), err) }()

	c := s.collection(collectionName)
	if c == nil {
		return fmt.Errorf("chromem: insert into %s: %w", collectionName, vectordb.ErrCollectionNotFound)
	}

	dim := s.dimension(ctx, collectionName)

	docs := make([]chromem.Document, len(inputs))
	for i, in := range inputs {
		if in.ID == "" {
			return fmt.Errorf("chromem: input %d has no id", i)
		}
		if dim > 0 && len(in.Vector) != dim {
			return fmt.Errorf("chromem: input %d has dimension %d, collection %s expects %d", i, len(in.Vector), collectionName, dim)
		}
		content, meta := flattenPayload(in.Payload)
		docs[i] = chromem.Document{
			ID:        in.ID,
			Content:   content,
			Metadata:  meta,
			Embedding: in.Vector,
		}
	}

	// chromem's AddDocuments overwrites documents with the same id.
	if err = c.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("chromem: adding documents: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("chromem: at least one search request is required")
	}

	results := make([][]vectordb.SearchResult, 0, len(requests))
	for i, req := range requests {
		start := time.Now()
		res, err := s.search(ctx, req)
		s.observeOperation("search", req.CollectionName, len(res), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Store) search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	if req.CollectionName == "" || len(req.Vector) == 0 || req.TopK <= 0 {
		return nil, fmt.Errorf("chromem: invalid search request (collection=%q, dim=%d, topK=%d)",
			req.CollectionName, len(req.Vector), req.TopK)
	}

	c := s.collection(req.CollectionName)
	if c == nil {
		return nil, fmt.Errorf("chromem: search %s: %w", req.CollectionName, vectordb.ErrCollectionNotFound)
	}

	count := c.Count()
	if count == 0 {
		return []vectordb.SearchResult{}, nil
	}

	where, postFilter := splitFilter(req.Filters)
	n := min(req.TopK, count)
	if postFilter {
		// remaining conditions are evaluated here, so every candidate is needed
		n = count
	}

	found, err := c.QueryEmbedding(ctx, req.Vector, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: querying %s: %w", req.CollectionName, err)
	}

	out := make([]vectordb.SearchResult, 0, min(len(found), req.TopK))
	for _, r := range found {
		payload := unflattenPayload(r.Content, r.Metadata)
		if postFilter && !vectordb.Matches(req.Filters, payload) {
			continue
		}
		out = append(out, vectordb.SearchResult{
			ID:             r.ID,
			Score:          r.Similarity,
			Payload:        payload,
			CollectionName: req.CollectionName,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > req.TopK {
		out = out[:req.TopK]
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collectionName string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { s.observeOperation("delete", collectionName, len(ids), time.Since(start), err) }()

	c := s.collection(collectionName)
	if c == nil {
		return nil
	}
	if err = c.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("chromem: deleting from %s: %w", collectionName, err)
	}
	return nil
}

func (s *Store) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	c := s.collection(name)
	if c == nil || name == catalogCollection {
		return nil, fmt.Errorf("chromem: collection %s: %w", name, vectordb.ErrCollectionNotFound)
	}

	dim := s.dimension(ctx, name)

	count := uint64(c.Count())
	return &vectordb.Collection{
		Name:        name,
		Status:      "Green",
		VectorSize:  dim,
		Distance:    "Cosine",
		VectorCount: count,
		PointCount:  count,
	}, nil
}

func (s *Store) ListCollections(_ context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		if name == catalogCollection {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) DeleteCollection(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.observeOperation("delete_collection", name, 0, time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("chromem: deleting collection %s: %w", name, err)
	}
	if catalog := s.collection(catalogCollection); catalog != nil {
		if err = catalog.Delete(ctx, nil, nil, name); err != nil {
			return fmt.Errorf("chromem: forgetting dimension of %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) observeOperation(operation, collection string, size int, duration time.Duration, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component: "chromem",
		Operation: operation,
		Resource:  collection,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
	})
}
