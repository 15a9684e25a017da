package storage

import (
	"context"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
)

// MemoryStore is an in-process NoteStore for tests and dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]*models.Note
	now   Clock
}

// NewMemoryStore returns an empty store. A nil clock means time.Now.
func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{notes: make(map[string]*models.Note), now: now}
}

// All implements NoteStore. The sequence works on a snapshot of the slugs
// taken when iteration starts.
func (m *MemoryStore) All(ctx context.Context) iter.Seq[*models.Note] {
	return func(yield func(*models.Note) bool) {
		m.mu.RLock()
		slugs := make([]string, 0, len(m.notes))
		for sl := range m.notes {
			slugs = append(slugs, sl)
		}
		m.mu.RUnlock()
		sort.Strings(slugs)

		for _, sl := range slugs {
			if ctx.Err() != nil {
				return
			}
			m.mu.RLock()
			n, ok := m.notes[sl]
			var c *models.Note
			if ok {
				c = n.Clone()
			}
			m.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Get implements NoteStore.
func (m *MemoryStore) Get(ctx context.Context, raw string) (*models.Note, error) {
	sl := slug.Normalize(raw)
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[sl]
	if sl == "" || !ok {
		return nil, apperr.NotFound(raw)
	}
	return n.Clone(), nil
}

// Create implements NoteStore.
func (m *MemoryStore) Create(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	sl := slug.Normalize(in.Slug)
	if sl == "" {
		return nil, apperr.InvalidSlug(in.Slug)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[sl]; ok {
		return nil, apperr.AlreadyExists(sl)
	}
	now := stamp(m.now)
	n := &models.Note{
		Slug:      sl,
		Title:     strings.TrimSpace(in.Title),
		Tags:      models.CleanTags(in.Tags),
		Content:   in.Content,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if n.Title == "" {
		n.Title = sl
	}
	m.notes[sl] = n
	return n.Clone(), nil
}

// Update implements NoteStore.
func (m *MemoryStore) Update(ctx context.Context, u models.NoteUpdate) (*models.Note, error) {
	sl := slug.Normalize(u.Slug)
	if sl == "" {
		return nil, apperr.InvalidSlug(u.Slug)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.notes[sl]
	if !ok {
		return nil, apperr.NotFound(sl)
	}
	n := cur.Clone()
	applyUpdate(n, u)
	updated := nextUpdatedAt(m.now, n.UpdatedAt)
	n.UpdatedAt = &updated
	m.notes[sl] = n
	return n.Clone(), nil
}

// Delete implements NoteStore.
func (m *MemoryStore) Delete(ctx context.Context, raw string) error {
	sl := slug.Normalize(raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[sl]; sl == "" || !ok {
		return apperr.NotFound(raw)
	}
	delete(m.notes, sl)
	return nil
}
