// Package storage persists notes and defines the NoteStore contract that the
// HTTP layer, the chat gateway and the importers depend on.
package storage

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/hyperjump/neuralvault/internal/models"
)

// NoteStore is slug-addressed note persistence. Slugs passed in are
// normalized first. Returned notes are copies owned by the caller.
type NoteStore interface {
	// All yields every note sorted by slug. Each range over the sequence
	// re-reads the store; unreadable entries are skipped.
	All(ctx context.Context) iter.Seq[*models.Note]
	// Get returns a NotFound error when slug is invalid or unknown.
	Get(ctx context.Context, slug string) (*models.Note, error)
	// Create fails with InvalidSlug or AlreadyExists.
	Create(ctx context.Context, in models.NoteInput) (*models.Note, error)
	// Update fails with InvalidSlug or NotFound. Slug and createdAt never change.
	Update(ctx context.Context, u models.NoteUpdate) (*models.Note, error)
	// Delete fails with NotFound.
	Delete(ctx context.Context, slug string) error
}

// List collects All into a slice.
func List(ctx context.Context, s NoteStore) []*models.Note {
	notes := slices.Collect(s.All(ctx))
	if notes == nil {
		notes = []*models.Note{}
	}
	return notes
}

// Clock returns the current time. Stores truncate it to milliseconds, the
// precision timestamps are persisted with.
type Clock func() time.Time

func stamp(now Clock) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}

// nextUpdatedAt keeps updatedAt monotonically non-decreasing even when the
// clock steps backwards.
func nextUpdatedAt(now Clock, prev *time.Time) time.Time {
	t := stamp(now)
	if prev != nil && t.Before(*prev) {
		return *prev
	}
	return t
}
