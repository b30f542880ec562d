package notes

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/murmurhq/murmur/internal/synthesis"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory [Store] for local development and tests. It
// performs exact cosine-distance search instead of an approximate index.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]*Note
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[uuid.UUID]*Note)}
}

// Create implements [Store].
func (s *MemoryStore) Create(_ context.Context, n *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cp := cloneNote(n)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.notes[n.ID] = cp
	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

// Get implements [Store].
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneNote(n), nil
}

// Update implements [Store].
func (s *MemoryStore) Update(_ context.Context, n *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.notes[n.ID]
	if !ok {
		return ErrNotFound
	}
	cp := cloneNote(n)
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	s.notes[n.ID] = cp
	n.UpdatedAt = cp.UpdatedAt
	return nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// List implements [Store].
func (s *MemoryStore) List(_ context.Context, folder string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Note, 0, len(s.notes))
	for _, n := range s.notes {
		if folder != "" && n.Folder != folder {
			continue
		}
		cp := cloneNote(n)
		cp.History = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SearchSimilar implements [Store] with an exact cosine-distance scan.
func (s *MemoryStore) SearchSimilar(_ context.Context, query []float32, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := []SearchHit{}
	for _, n := range s.notes {
		if len(n.SummaryEmbedding) == 0 || len(n.SummaryEmbedding) != len(query) {
			continue
		}
		cp := cloneNote(n)
		cp.History = nil
		hits = append(hits, SearchHit{Note: cp, Distance: cosineDistance(query, n.SummaryEmbedding)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Ping implements [Store].
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements [Store].
func (s *MemoryStore) Close() {}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func cloneNote(n *Note) *Note {
	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	cp.History = append([]Input(nil), n.History...)
	cp.SummaryEmbedding = append([]float32(nil), n.SummaryEmbedding...)
	cp.Actions.Calendar = append([]synthesis.CalendarEvent(nil), n.Actions.Calendar...)
	cp.Actions.Email = append([]synthesis.EmailDraft(nil), n.Actions.Email...)
	cp.Actions.Reminders = append([]synthesis.Reminder(nil), n.Actions.Reminders...)
	return &cp
}
