// Package indexer keeps the keyword index in step with the note store.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/keyword"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// Indexer copies notes from a store into a keyword index.
type Indexer struct {
	store  storage.NoteStore
	index  keyword.Index
	logger *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (note indexed, note removed, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndexer creates an indexer over store and index.
func NewIndexer(store storage.NoteStore, index keyword.Index, opts ...IndexerOption) *Indexer {
	idx := &Indexer{store: store, index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Reindex indexes every note in the store and drops index entries whose
// note no longer exists. It returns the number of notes indexed.
func (idx *Indexer) Reindex(ctx context.Context) (int, error) {
	seen := make(map[string]struct{})
	n := 0
	for note := range idx.store.All(ctx) {
		if err := idx.index.Index(ctx, note); err != nil {
			return n, fmt.Errorf("index %s: %w", note.Slug, err)
		}
		seen[note.Slug] = struct{}{}
		n++
	}
	if err := ctx.Err(); err != nil {
		return n, err
	}
	indexed, err := idx.index.Slugs(ctx)
	if err != nil {
		return n, err
	}
	for _, sl := range indexed {
		if _, ok := seen[sl]; ok {
			continue
		}
		if err := idx.index.Delete(ctx, sl); err != nil {
			return n, fmt.Errorf("drop stale %s: %w", sl, err)
		}
		idx.logger.Debug("indexer dropped stale note", zap.String("slug", sl))
	}
	idx.logger.Info("indexer reindexed notes", zap.Int("count", n))
	return n, nil
}

// Sync brings one slug up to date: it is indexed when the store has it and
// removed from the index otherwise.
func (idx *Indexer) Sync(ctx context.Context, raw string) error {
	sl := slug.Normalize(raw)
	if sl == "" {
		return apperr.InvalidSlug(raw)
	}
	note, err := idx.store.Get(ctx, sl)
	if apperr.Is(err, apperr.KindNotFound) {
		idx.logger.Debug("indexer removing note", zap.String("slug", sl))
		return idx.Remove(ctx, sl)
	}
	if err != nil {
		return err
	}
	return idx.Index(ctx, note)
}

// Index adds or replaces a single note.
func (idx *Indexer) Index(ctx context.Context, note *models.Note) error {
	if err := idx.index.Index(ctx, note); err != nil {
		return fmt.Errorf("failed to index keywords: %w", err)
	}
	idx.logger.Debug("indexer indexed note", zap.String("slug", note.Slug))
	return nil
}

// Remove drops a slug from the index.
func (idx *Indexer) Remove(ctx context.Context, sl string) error {
	if err := idx.index.Delete(ctx, sl); err != nil {
		return fmt.Errorf("failed to remove %s from index: %w", sl, err)
	}
	return nil
}
