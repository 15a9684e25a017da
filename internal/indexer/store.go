package indexer

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// IndexedStore is a NoteStore that updates the keyword index after every
// successful mutation. Index failures are logged, never returned: the note
// itself has already been persisted.
type IndexedStore struct {
	storage.NoteStore
	indexer *Indexer
}

var _ storage.NoteStore = (*IndexedStore)(nil)

// NewIndexedStore wraps the indexer's store.
func NewIndexedStore(idx *Indexer) *IndexedStore {
	return &IndexedStore{NoteStore: idx.store, indexer: idx}
}

// Create implements storage.NoteStore.
func (s *IndexedStore) Create(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	n, err := s.NoteStore.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.index(ctx, n)
	return n, nil
}

// Update implements storage.NoteStore.
func (s *IndexedStore) Update(ctx context.Context, u models.NoteUpdate) (*models.Note, error) {
	n, err := s.NoteStore.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	s.index(ctx, n)
	return n, nil
}

// Delete implements storage.NoteStore.
func (s *IndexedStore) Delete(ctx context.Context, slug string) error {
	if err := s.NoteStore.Delete(ctx, slug); err != nil {
		return err
	}
	if err := s.indexer.Sync(ctx, slug); err != nil {
		s.indexer.logger.Warn("index removal failed", zap.String("slug", slug), zap.Error(err))
	}
	return nil
}

func (s *IndexedStore) index(ctx context.Context, n *models.Note) {
	if err := s.indexer.Index(ctx, n); err != nil {
		s.indexer.logger.Warn("index update failed", zap.String("slug", n.Slug), zap.Error(err))
	}
}
