// Package keyword provides full-text search over notes.
package keyword

import (
	"context"

	"github.com/hyperjump/neuralvault/internal/models"
)

// SearchOptions are optional search parameters. Nil means defaults.
type SearchOptions struct {
	// TitleBoost multiplies title matches relative to content matches (e.g. 3.0).
	TitleBoost float64
	// Fuzziness is the maximum edit distance per term (0 disables, max 2).
	Fuzziness int
	// Tag restricts hits to notes carrying this tag.
	Tag string
}

// Index defines note indexing and search.
type Index interface {
	Index(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, slug string) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*models.SearchResult, error)
	// Slugs lists every indexed slug.
	Slugs(ctx context.Context) ([]string, error)
	DocCount() (uint64, error)
	Close() error
}
