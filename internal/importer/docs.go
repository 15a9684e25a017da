package importer

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/extract"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// DocOptions override what DocImporter derives from the file name.
type DocOptions struct {
	Slug  string
	Title string
	Tags  []string
}

// DocImporter creates a note from a document file.
type DocImporter struct {
	store     storage.NoteStore
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewDocImporter returns a DocImporter writing to store.
func NewDocImporter(store storage.NoteStore, extractor *extract.Extractor, opts ...Option) *DocImporter {
	o := buildOptions(opts)
	return &DocImporter{store: store, extractor: extractor, logger: o.logger}
}

// Import extracts the text of path and stores it as a new note. The slug
// defaults to imports/<slugified file name> and the title to the file name
// without extension.
func (d *DocImporter) Import(ctx context.Context, path string, opts DocOptions) (*models.Note, error) {
	text, err := d.extractor.Extract(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedInput, "cannot read document: "+filepath.Base(path), err)
	}
	if text == "" {
		return nil, apperr.Malformed("document has no text: " + filepath.Base(path))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = name
	}
	sl := slug.Normalize(opts.Slug)
	if sl == "" {
		base := slug.Slugify(name)
		if base == "" {
			return nil, apperr.InvalidSlug(name)
		}
		sl = "imports/" + base
	}

	n, err := d.store.Create(ctx, models.NoteInput{
		Slug:    sl,
		Title:   title,
		Content: text,
		Tags:    models.CleanTags(opts.Tags),
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("imported document", zap.String("path", path), zap.String("slug", n.Slug), zap.Int("chars", len(text)))
	return n, nil
}
