package store

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRepository keeps all records in process. A transaction works on a private
// copy of the state and merges its changes back on success, so other callers are
// not blocked while it runs. Concurrent updates of the same record resolve in
// favour of the transaction that commits last.
type MemoryRepository struct {
	mu   *sync.Mutex
	st   **memState
	seq  *atomic.Int64
	inTx bool
	now  func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

type memState struct {
	users    map[int64]User
	docs     map[int64]Document
	chunks   map[int64]DocumentChunk
	sessions map[int64]ChatSession
	messages map[int64]ChatMessage
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	st := &memState{
		users:    map[int64]User{},
		docs:     map[int64]Document{},
		chunks:   map[int64]DocumentChunk{},
		sessions: map[int64]ChatSession{},
		messages: map[int64]ChatMessage{},
	}
	return &MemoryRepository{mu: &sync.Mutex{}, st: &st, seq: &atomic.Int64{}, now: time.Now}
}

func (s *memState) clone() *memState {
	c := &memState{
		users:    make(map[int64]User, len(s.users)),
		docs:     make(map[int64]Document, len(s.docs)),
		chunks:   make(map[int64]DocumentChunk, len(s.chunks)),
		sessions: make(map[int64]ChatSession, len(s.sessions)),
		messages: make(map[int64]ChatMessage, len(s.messages)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.docs {
		c.docs[k] = v
	}
	for k, v := range s.chunks {
		c.chunks[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	return c
}

// merge applies the changes a transaction made, from base to work, onto s.
func (s *memState) merge(base, work *memState) {
	mergeRecords(s.users, base.users, work.users)
	mergeRecords(s.docs, base.docs, work.docs)
	mergeRecords(s.chunks, base.chunks, work.chunks)
	mergeRecords(s.sessions, base.sessions, work.sessions)
	mergeRecords(s.messages, base.messages, work.messages)
}

func mergeRecords[V any](dst, base, work map[int64]V) {
	for k, v := range work {
		if old, ok := base[k]; !ok || !reflect.DeepEqual(old, v) {
			dst[k] = v
		}
	}
	for k := range base {
		if _, ok := work[k]; !ok {
			delete(dst, k)
		}
	}
}

// id hands out identifiers shared by the repository and its transactions.
func (r *MemoryRepository) id() int64 {
	return r.seq.Add(1)
}

// state locks the repository, or the transaction copy inside WithTx, and returns the
// state together with the matching unlock.
func (r *MemoryRepository) state() (*memState, func()) {
	r.mu.Lock()
	return *r.st, r.mu.Unlock
}

func (r *MemoryRepository) snapshot() *memState {
	st, unlock := r.state()
	defer unlock()
	return st.clone()
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	base := r.snapshot()
	work := base.clone()
	tx := &MemoryRepository{mu: &sync.Mutex{}, st: &work, seq: r.seq, inTx: true, now: r.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	st, unlock := r.state()
	defer unlock()
	st.merge(base, work)
	return nil
}

func (r *MemoryRepository) EnsureUser(_ context.Context, id int64) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.users[id]; ok {
		return nil
	}
	now := r.now()
	st.users[id] = User{
		ID:        id,
		Username:  fmt.Sprintf("user_%d", id),
		Email:     fmt.Sprintf("user_%d@users.invalid", id),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *MemoryRepository) CreateDocument(_ context.Context, doc *Document) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.users[doc.OwnerID]; !ok {
		return fmt.Errorf("create document: owner %d does not exist", doc.OwnerID)
	}
	doc.ID = r.id()
	doc.CreatedAt = r.now()
	doc.UpdatedAt = doc.CreatedAt
	if doc.ChunkSize == 0 {
		doc.ChunkSize = 1000
	}
	if doc.ChunkOverlap == 0 {
		doc.ChunkOverlap = 200
	}
	stored := *doc
	stored.Chunks, stored.Owner = nil, nil
	st.docs[doc.ID] = stored
	return nil
}

func (r *MemoryRepository) GetDocument(_ context.Context, id, ownerID int64) (*Document, error) {
	st, unlock := r.state()
	defer unlock()
	doc, ok := st.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, fmt.Errorf("get document %d: %w", id, ErrNotFound)
	}
	return &doc, nil
}

func (r *MemoryRepository) ListDocuments(_ context.Context, ownerID int64) ([]Document, error) {
	st, unlock := r.state()
	defer unlock()
	var out []Document
	for _, d := range st.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b Document) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *MemoryRepository) ListDocumentIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	docs, err := r.ListDocuments(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (r *MemoryRepository) MarkDocumentProcessed(_ context.Context, id int64) error {
	st, unlock := r.state()
	defer unlock()
	doc, ok := st.docs[id]
	if !ok {
		return fmt.Errorf("mark document processed %d: %w", id, ErrNotFound)
	}
	doc.IsProcessed = true
	doc.UpdatedAt = r.now()
	st.docs[id] = doc
	return nil
}

func (r *MemoryRepository) DeleteDocument(_ context.Context, id int64) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.docs[id]; !ok {
		return fmt.Errorf("delete document %d: %w", id, ErrNotFound)
	}
	for cid, c := range st.chunks {
		if c.DocumentID == id {
			delete(st.chunks, cid)
		}
	}
	delete(st.docs, id)
	return nil
}

func (r *MemoryRepository) CountDocuments(_ context.Context, f DocumentFilter) (int64, error) {
	st, unlock := r.state()
	defer unlock()
	var n int64
	for _, d := range st.docs {
		if matchesDoc(d, f) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CreateChunks(_ context.Context, chunks []DocumentChunk) error {
	st, unlock := r.state()
	defer unlock()
	for i := range chunks {
		if _, ok := st.docs[chunks[i].DocumentID]; !ok {
			return fmt.Errorf("create chunks: document %d does not exist", chunks[i].DocumentID)
		}
	}
	now := r.now()
	for i := range chunks {
		chunks[i].ID = r.id()
		chunks[i].CreatedAt = now
		st.chunks[chunks[i].ID] = chunks[i]
	}
	return nil
}

func (r *MemoryRepository) ChunkEmbeddingIDs(_ context.Context, documentID int64) ([]string, error) {
	st, unlock := r.state()
	defer unlock()
	var chunks []DocumentChunk
	for _, c := range st.chunks {
		if c.DocumentID == documentID && c.EmbeddingID != "" {
			chunks = append(chunks, c)
		}
	}
	slices.SortFunc(chunks, func(a, b DocumentChunk) int { return cmp.Compare(a.ChunkIndex, b.ChunkIndex) })
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.EmbeddingID
	}
	return ids, nil
}

func (r *MemoryRepository) CountChunks(_ context.Context, f DocumentFilter) (int64, error) {
	st, unlock := r.state()
	defer unlock()
	var n int64
	for _, c := range st.chunks {
		if d, ok := st.docs[c.DocumentID]; ok && matchesDoc(d, f) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, s *ChatSession) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.users[s.UserID]; !ok {
		return fmt.Errorf("create session: user %d does not exist", s.UserID)
	}
	s.ID = r.id()
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt
	stored := *s
	stored.Messages, stored.User = nil, nil
	st.sessions[s.ID] = stored
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id, userID int64) (*ChatSession, error) {
	st, unlock := r.state()
	defer unlock()
	s, ok := st.sessions[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (r *MemoryRepository) ListSessions(_ context.Context, userID int64) ([]ChatSession, error) {
	st, unlock := r.state()
	defer unlock()
	var out []ChatSession
	for _, s := range st.sessions {
		if s.UserID == userID {
			s.Messages = sessionMessages(st, s.ID)
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b ChatSession) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *MemoryRepository) DeleteSession(_ context.Context, id int64) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("delete session %d: %w", id, ErrNotFound)
	}
	for mid, m := range st.messages {
		if m.SessionID == id {
			delete(st.messages, mid)
		}
	}
	delete(st.sessions, id)
	return nil
}

func (r *MemoryRepository) CreateMessage(_ context.Context, m *ChatMessage) error {
	st, unlock := r.state()
	defer unlock()
	if _, ok := st.sessions[m.SessionID]; !ok {
		return fmt.Errorf("create message: session %d does not exist", m.SessionID)
	}
	m.ID = r.id()
	m.CreatedAt = r.now()
	st.messages[m.ID] = *m
	return nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, sessionID int64) ([]ChatMessage, error) {
	st, unlock := r.state()
	defer unlock()
	return sessionMessages(st, sessionID), nil
}

func (r *MemoryRepository) RecentMessages(_ context.Context, sessionID int64, limit int) ([]ChatMessage, error) {
	st, unlock := r.state()
	defer unlock()
	msgs := sessionMessages(st, sessionID)
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

func sessionMessages(st *memState, sessionID int64) []ChatMessage {
	out := []ChatMessage{}
	for _, m := range st.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b ChatMessage) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func matchesDoc(d Document, f DocumentFilter) bool {
	if f.OwnerID != 0 && d.OwnerID != f.OwnerID {
		return false
	}
	return !f.ProcessedOnly || d.IsProcessed
}
