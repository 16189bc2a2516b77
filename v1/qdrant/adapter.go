package qdrant

import (
	"context"
	"fmt"
	"slices"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

var _ vectordb.Service = (*Adapter)(nil)

// Adapter implements vectordb.Service on top of the Qdrant SDK client.
type Adapter struct {
	api       *qdrant.Client
	batchSize int
	logger    logger.Logger
	observer  observability.Observer
}

// NewAdapter wraps an SDK client. batchSize <= 0 selects the default of 200.
func NewAdapter(api *qdrant.Client, batchSize int, log logger.Logger, observer observability.Observer) *Adapter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Adapter{api: api, batchSize: batchSize, logger: log, observer: observer}
}

// EnsureCollection creates a cosine collection of the given dimension when it is missing.
// A concurrent create that loses the race is treated as success.
func (a *Adapter) EnsureCollection(ctx context.Context, name string, vectorSize uint64) (err error) {
	if name == "" {
		return fmt.Errorf("qdrant: collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("qdrant: vector size must be positive")
	}

	start := time.Now()
	defer func() { a.observeOperation("ensure_collection", name, 0, time.Since(start), err) }()

	collections, err := a.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("qdrant: failed to list collections: %w", err)
	}
	if slices.Contains(collections, name) {
		return nil
	}

	err = a.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	a.logger.Info("Created Qdrant collection", nil, map[string]interface{}{
		"collection":  name,
		"vector_size": vectorSize,
	})
	return nil
}

// Insert upserts inputs in batches and waits for each batch to be persisted.
func (a *Adapter) Insert(ctx context.Context, collectionName string, inputs []vectordb.EmbeddingInput) (err error) {
	if len(inputs) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { a.observeOperation("upsert", collectionName, len(inputs), time.Since(start), err) }()

	for from := 0; from < len(inputs); from += a.batchSize {
		to := min(from+a.batchSize, len(inputs))
		if err := a.upsertBatch(ctx, collectionName, inputs[from:to]); err != nil {
			return fmt.Errorf("qdrant: batch upsert failed at [%d:%d]: %w", from, to, mapError(err))
		}
	}
	return nil
}

func (a *Adapter) upsertBatch(ctx context.Context, collectionName string, batch []vectordb.EmbeddingInput) error {
	points := make([]*qdrant.PointStruct, 0, len(batch))
	for _, in := range batch {
		points = append(points, &qdrant.PointStruct{
			Id:      toPointID(in.ID),
			Vectors: qdrant.NewVectors(in.Vector...),
			Payload: qdrant.NewValueMap(in.Payload),
		})
	}

	wait := true
	_, err := a.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           &wait,
	})
	return err
}

// Search runs each request in order. A missing collection fails with
// vectordb.ErrCollectionNotFound.
func (a *Adapter) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("qdrant: at least one search request is required")
	}

	results := make([][]vectordb.SearchResult, 0, len(requests))
	for i, req := range requests {
		if err := validateSearchInput(req.CollectionName, req.Vector, req.TopK); err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}

		start := time.Now()
		res, err := a.search(ctx, req)
		a.observeOperation("search", req.CollectionName, len(res), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *Adapter) search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	limit := uint64(req.TopK)
	resp, err := a.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: req.CollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         convertFilterSet(req.Filters),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", mapError(err))
	}

	res, err := parseSearchResults(resp)
	if err != nil {
		return nil, err
	}
	for i := range res {
		res[i].CollectionName = req.CollectionName
	}
	return res, nil
}

// Delete removes points by ID and waits for completion.
func (a *Adapter) Delete(ctx context.Context, collectionName string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { a.observeOperation("delete", collectionName, len(ids), time.Since(start), err) }()

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, toPointID(id))
	}

	wait := true
	_, err = a.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete failed: %w", mapError(err))
	}
	return nil
}

// GetCollection returns collection metadata.
func (a *Adapter) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("qdrant: collection name cannot be empty")
	}

	info, err := a.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to get collection %q: %w", name, mapError(err))
	}

	size, distance := extractVectorDetails(info)
	return &vectordb.Collection{
		Name:        name,
		Status:      info.GetStatus().String(),
		VectorSize:  size,
		Distance:    distance,
		VectorCount: derefUint64(info.IndexedVectorsCount),
		PointCount:  derefUint64(info.PointsCount),
	}, nil
}

// ListCollections returns all collection names.
func (a *Adapter) ListCollections(ctx context.Context) ([]string, error) {
	names, err := a.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to list collections: %w", err)
	}
	return names, nil
}

// DeleteCollection drops a collection. A missing collection is not an error.
func (a *Adapter) DeleteCollection(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { a.observeOperation("delete_collection", name, 0, time.Since(start), err) }()

	if err = a.api.DeleteCollection(ctx, name); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("qdrant: failed to delete collection %q: %w", name, err)
	}
	return nil
}

func (a *Adapter) observeOperation(operation, collection string, size int, duration time.Duration, err error) {
	if a.observer == nil {
		return
	}
	a.observer.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: operation,
		Resource:  collection,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
	})
}
