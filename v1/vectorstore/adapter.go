package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// Adapter manages the shared document collection and the per-user message collections
// on top of any vectordb.Service.
//
// Every point is stored with the payload {"text": ..., "metadata": {...}}. Collections
// are created lazily with the embedder's dimension and cosine distance.
type Adapter struct {
	db         vectordb.Service
	encoder    embedding.Encoder
	collection string
	logger     logger.Logger
	now        func() time.Time

	group singleflight.Group
	known sync.Map
}

// New builds an Adapter. An empty collection name selects DefaultCollection.
func New(db vectordb.Service, encoder embedding.Encoder, cfg Config, log logger.Logger) *Adapter {
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	return &Adapter{
		db:         db,
		encoder:    encoder,
		collection: collection,
		logger:     log,
		now:        time.Now,
	}
}

// DefaultCollection is the name of the shared document collection.
func (a *Adapter) DefaultCollection() string {
	return a.collection
}

// Dimension is the embedder dimension every collection is created with.
func (a *Adapter) Dimension() int {
	return a.encoder.Dimension()
}

// EnsureCollection creates the collection if it does not exist. Concurrent callers for
// the same name share one create. An existing collection with a different dimension
// fails with ErrDimensionMismatch.
func (a *Adapter) EnsureCollection(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidInput)
	}
	if _, ok := a.known.Load(name); ok {
		return nil
	}

	_, err, _ := a.group.Do(name, func() (interface{}, error) {
		if _, ok := a.known.Load(name); ok {
			return nil, nil
		}

		dim := a.encoder.Dimension()
		if err := a.db.EnsureCollection(ctx, name, uint64(dim)); err != nil {
			return nil, fmt.Errorf("%w: ensure collection %s: %w", ErrStoreFailure, name, err)
		}

		info, err := a.db.GetCollection(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: describe collection %s: %w", ErrStoreFailure, name, err)
		}
		if info.VectorSize != 0 && info.VectorSize != dim {
			return nil, fmt.Errorf("%w: collection %s has dimension %d, embedder produces %d",
				ErrDimensionMismatch, name, info.VectorSize, dim)
		}

		a.known.Store(name, struct{}{})
		a.logger.Debug("Collection ready", nil, map[string]interface{}{
			"collection": name,
			"dimension":  dim,
		})
		return nil, nil
	})
	return err
}

// Upsert stores records in collection and returns their ids in input order.
// Records without a vector are embedded in a single batch; records with a vector of the
// wrong dimension are rejected before anything is written.
func (a *Adapter) Upsert(ctx context.Context, collection string, records []Record) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	dim := a.encoder.Dimension()
	var missing []int
	for i, r := range records {
		if r.Vector == nil {
			missing = append(missing, i)
			continue
		}
		if len(r.Vector) != dim {
			return nil, fmt.Errorf("%w: record %d has dimension %d, expected %d", ErrDimensionMismatch, i, len(r.Vector), dim)
		}
	}

	vectors := make([][]float32, len(records))
	for i, r := range records {
		vectors[i] = r.Vector
	}
	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = records[i].Text
		}
		encoded, err := a.encoder.Encode(ctx, texts)
		if err != nil {
			return nil, err
		}
		for j, i := range missing {
			vectors[i] = encoded[j]
		}
	}

	if err := a.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	inputs := make([]vectordb.EmbeddingInput, len(records))
	for i, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		inputs[i] = vectordb.EmbeddingInput{
			ID:     id,
			Vector: vectors[i],
			Payload: map[string]any{
				"text":               r.Text,
				vectordb.MetadataKey: sanitizeMetadata(r.Metadata),
			},
		}
	}

	if err := a.db.Insert(ctx, collection, inputs); err != nil {
		return nil, fmt.Errorf("%w: upsert into %s: %w", ErrStoreFailure, collection, err)
	}

	a.logger.Debug("Upserted points", nil, map[string]interface{}{
		"collection": collection,
		"count":      len(inputs),
	})
	return ids, nil
}

// Search returns up to k hits ordered by descending score. k below 1 is treated as 1.
// filter is an AND of exact matches on metadata keys. A collection that does not exist
// yet is created and yields no results.
func (a *Adapter) Search(ctx context.Context, collection string, vector []float32, k int, filter map[string]any) ([]SearchResult, error) {
	return a.search(ctx, collection, vector, k, vectordb.MetadataEquals(filter))
}

func (a *Adapter) search(ctx context.Context, collection string, vector []float32, k int, filters *vectordb.FilterSet) ([]SearchResult, error) {
	if len(vector) != a.encoder.Dimension() {
		return nil, fmt.Errorf("%w: query has dimension %d, expected %d", ErrDimensionMismatch, len(vector), a.encoder.Dimension())
	}
	k = max(1, k)

	if err := a.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}

	res, err := a.db.Search(ctx, vectordb.SearchRequest{
		CollectionName: collection,
		Vector:         vector,
		TopK:           k,
		Filters:        filters,
	})
	if err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			a.known.Delete(collection)
			return []SearchResult{}, nil
		}
		return nil, fmt.Errorf("%w: search %s: %w", ErrStoreFailure, collection, err)
	}
	if len(res) == 0 {
		return []SearchResult{}, nil
	}

	hits := make([]SearchResult, 0, len(res[0]))
	for _, r := range res[0] {
		hits = append(hits, toSearchResult(r))
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes points by id.
func (a *Adapter) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := a.db.Delete(ctx, collection, ids); err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			return nil
		}
		return fmt.Errorf("%w: delete from %s: %w", ErrStoreFailure, collection, err)
	}
	a.logger.Debug("Deleted points", nil, map[string]interface{}{
		"collection": collection,
		"count":      len(ids),
	})
	return nil
}

// DeleteCollection drops a collection.
func (a *Adapter) DeleteCollection(ctx context.Context, name string) error {
	a.known.Delete(name)
	if err := a.db.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: delete collection %s: %w", ErrStoreFailure, name, err)
	}
	a.logger.Info("Deleted collection", nil, map[string]interface{}{"collection": name})
	return nil
}

// ClearCollection drops a collection and recreates it empty.
func (a *Adapter) ClearCollection(ctx context.Context, name string) error {
	if err := a.DeleteCollection(ctx, name); err != nil {
		return err
	}
	return a.EnsureCollection(ctx, name)
}

// GetCollectionInfo describes a collection. A missing collection fails with an error
// matching vectordb.ErrCollectionNotFound.
func (a *Adapter) GetCollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	info, err := a.db.GetCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: describe collection %s: %w", ErrStoreFailure, name, err)
	}
	return &CollectionInfo{
		Name:        info.Name,
		PointCount:  info.PointCount,
		VectorCount: info.VectorCount,
		Status:      info.Status,
		VectorSize:  info.VectorSize,
	}, nil
}

// Ping checks that the backend answers.
func (a *Adapter) Ping(ctx context.Context) error {
	if _, err := a.db.ListCollections(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return nil
}

// UserCollectionName returns the private collection of a user.
func UserCollectionName(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10) + "_collection"
}

// IsUserCollection reports whether name follows the user collection pattern.
func IsUserCollection(name string) bool {
	return strings.HasPrefix(name, "user_") && strings.HasSuffix(name, "_collection")
}

// ListUserCollections returns all per-user collections.
func (a *Adapter) ListUserCollections(ctx context.Context) ([]string, error) {
	names, err := a.db.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %w", ErrStoreFailure, err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if IsUserCollection(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// AddUserMessage stores a chat message in the user's collection, adding user_id,
// message_type and timestamp to the metadata. It returns the point id.
func (a *Adapter) AddUserMessage(ctx context.Context, userID int64, text string, metadata map[string]any) (string, error) {
	meta := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[KeyUserID] = userID
	if _, ok := meta[KeyMessageType]; !ok {
		meta[KeyMessageType] = MessageTypeUser
	}
	meta[KeyTimestamp] = a.now().UTC().Format(time.RFC3339Nano)

	ids, err := a.Upsert(ctx, UserCollectionName(userID), []Record{{Text: text, Metadata: meta}})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// SearchUserMessages searches the user's collection, always filtering on user_id.
func (a *Adapter) SearchUserMessages(ctx context.Context, userID int64, vector []float32, k int, filter map[string]any) ([]SearchResult, error) {
	f := make(map[string]any, len(filter)+1)
	for key, v := range filter {
		f[key] = v
	}
	f[KeyUserID] = userID
	return a.Search(ctx, UserCollectionName(userID), vector, k, f)
}

// SearchUserHistory searches the user's collection for earlier chat turns. Messages
// whose message_id is listed in exclude are left out, typically the turn being answered.
func (a *Adapter) SearchUserHistory(ctx context.Context, userID int64, vector []float32, k int, exclude ...int64) ([]SearchResult, error) {
	conditions := []vectordb.FilterCondition{vectordb.NewMetadataMatch(KeyUserID, userID)}
	if len(exclude) > 0 {
		ids := make([]any, len(exclude))
		for i, id := range exclude {
			ids[i] = id
		}
		conditions = append(conditions, vectordb.NewMetadataMatchExcept(KeyMessageID, ids...))
	}
	return a.search(ctx, UserCollectionName(userID), vector, k, vectordb.NewFilterSet(vectordb.Must(conditions...)))
}

// DeleteUserCollection drops the user's collection.
func (a *Adapter) DeleteUserCollection(ctx context.Context, userID int64) error {
	return a.DeleteCollection(ctx, UserCollectionName(userID))
}

// GetUserCollectionInfo describes the user's collection.
func (a *Adapter) GetUserCollectionInfo(ctx context.Context, userID int64) (*CollectionInfo, error) {
	return a.GetCollectionInfo(ctx, UserCollectionName(userID))
}
