package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
)

// Note file extensions. New notes use the store's primary extension; reads
// fall back to the other.
const (
	ExtMDX = ".mdx"
	ExtMD  = ".md"
)

// FileStore keeps one markdown file with YAML front matter per note under
// root. Slug segments map 1:1 to directories.
type FileStore struct {
	root   string
	exts   []string
	now    Clock
	logger *zap.Logger
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *zap.Logger) FileStoreOption {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(c Clock) FileStoreOption {
	return func(s *FileStore) {
		if c != nil {
			s.now = c
		}
	}
}

// WithExtension sets the extension used for new notes (".mdx" or ".md").
func WithExtension(ext string) FileStoreOption {
	return func(s *FileStore) {
		if ext == ExtMD {
			s.exts = []string{ExtMD, ExtMDX}
		}
	}
}

// NewFileStore returns a store rooted at dir. The directory is created
// lazily on the first write.
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		root:   filepath.Clean(dir),
		exts:   []string{ExtMDX, ExtMD},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the notes directory.
func (s *FileStore) Root() string { return s.root }

// Extensions returns the recognised note file extensions, primary first.
func (s *FileStore) Extensions() []string { return append([]string(nil), s.exts...) }

// SlugFor maps a file path under the root back to its slug.
func (s *FileStore) SlugFor(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	ext := filepath.Ext(rel)
	if !s.isNoteExt(ext) {
		return "", false
	}
	raw := filepath.ToSlash(strings.TrimSuffix(rel, ext))
	norm := slug.Normalize(raw)
	if norm == "" || norm != raw {
		return "", false
	}
	return norm, true
}

func (s *FileStore) isNoteExt(ext string) bool {
	for _, e := range s.exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func (s *FileStore) pathFor(normalized, ext string) string {
	return filepath.Join(append([]string{s.root}, slug.Segments(normalized)...)...) + ext
}

// locate returns the path of the existing file for a normalized slug.
func (s *FileStore) locate(normalized string) (string, bool) {
	for _, ext := range s.exts {
		p := s.pathFor(normalized, ext)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// All implements NoteStore.
func (s *FileStore) All(ctx context.Context) iter.Seq[*models.Note] {
	return func(yield func(*models.Note) bool) {
		slugs, err := s.slugs()
		if err != nil {
			s.logger.Warn("listing notes failed", zap.String("root", s.root), zap.Error(err))
			return
		}
		for _, sl := range slugs {
			if ctx.Err() != nil {
				return
			}
			p, ok := s.locate(sl)
			if !ok {
				continue
			}
			n, err := s.read(p, sl)
			if err != nil {
				s.logger.Warn("skipping unreadable note", zap.String("path", p), zap.Error(err))
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Count returns the number of addressable note files.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	slugs, err := s.slugs()
	return len(slugs), err
}

// slugs walks the root and returns every addressable slug, sorted.
func (s *FileStore) slugs() ([]string, error) {
	seen := make(map[string]struct{})
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.isNoteExt(filepath.Ext(path)) {
			return nil
		}
		sl, ok := s.SlugFor(path)
		if !ok {
			s.logger.Warn("skipping note with unaddressable path", zap.String("path", path))
			return nil
		}
		seen[sl] = struct{}{}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for sl := range seen {
		out = append(out, sl)
	}
	sort.Strings(out)
	return out, nil
}

// Get implements NoteStore.
func (s *FileStore) Get(ctx context.Context, raw string) (*models.Note, error) {
	sl := slug.Normalize(raw)
	if sl == "" {
		return nil, apperr.NotFound(raw)
	}
	p, ok := s.locate(sl)
	if !ok {
		return nil, apperr.NotFound(sl)
	}
	n, err := s.read(p, sl)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(sl)
		}
		return nil, fmt.Errorf("read note %s: %w", sl, err)
	}
	return n, nil
}

func (s *FileStore) read(path, sl string) (*models.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	return noteFromMeta(sl, meta, body), nil
}

func noteFromMeta(sl string, meta map[string]interface{}, body string) *models.Note {
	n := &models.Note{
		Slug:      sl,
		Title:     metaString(meta, keyTitle),
		Tags:      models.CleanTags(metaTags(meta)),
		Content:   body,
		CreatedAt: metaTime(meta, keyCreatedAt),
		UpdatedAt: metaTime(meta, keyUpdatedAt),
	}
	if n.Title == "" {
		n.Title = sl
	}
	for k, v := range meta {
		if isManaged(k) {
			continue
		}
		if n.Metadata == nil {
			n.Metadata = make(map[string]interface{})
		}
		n.Metadata[k] = v
	}
	return n
}

// Create implements NoteStore. The file is written to a temporary name and
// hard-linked into place, so a concurrent Create for the same slug fails
// with AlreadyExists instead of overwriting.
func (s *FileStore) Create(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	sl := slug.Normalize(in.Slug)
	if sl == "" {
		return nil, apperr.InvalidSlug(in.Slug)
	}
	if _, exists := s.locate(sl); exists {
		return nil, apperr.AlreadyExists(sl)
	}
	now := stamp(s.now)
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
	data, err := encodeNote(n)
	if err != nil {
		return nil, err
	}
	target := s.pathFor(sl, s.exts[0])
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create note directory: %w", err)
	}
	tmp, err := writeTemp(filepath.Dir(target), data)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)
	if err := os.Link(tmp, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, apperr.AlreadyExists(sl)
		}
		return nil, fmt.Errorf("create note %s: %w", sl, err)
	}
	return n.Clone(), nil
}

// Update implements NoteStore. Unknown front-matter keys survive the update.
func (s *FileStore) Update(ctx context.Context, u models.NoteUpdate) (*models.Note, error) {
	sl := slug.Normalize(u.Slug)
	if sl == "" {
		return nil, apperr.InvalidSlug(u.Slug)
	}
	p, ok := s.locate(sl)
	if !ok {
		return nil, apperr.NotFound(sl)
	}
	n, err := s.read(p, sl)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound(sl)
		}
		return nil, fmt.Errorf("read note %s: %w", sl, err)
	}
	applyUpdate(n, u)
	updated := nextUpdatedAt(s.now, n.UpdatedAt)
	n.UpdatedAt = &updated

	data, err := encodeNote(n)
	if err != nil {
		return nil, err
	}
	tmp, err := writeTemp(filepath.Dir(p), data)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("update note %s: %w", sl, err)
	}
	return n, nil
}

// applyUpdate merges the set fields of u into n. A blank title keeps the
// current one.
func applyUpdate(n *models.Note, u models.NoteUpdate) {
	if u.Title != nil {
		if t := strings.TrimSpace(*u.Title); t != "" {
			n.Title = t
		}
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Tags != nil {
		n.Tags = models.CleanTags(*u.Tags)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
}

// Delete implements NoteStore. Directories left empty are removed up to
// the root.
func (s *FileStore) Delete(ctx context.Context, raw string) error {
	sl := slug.Normalize(raw)
	if sl == "" {
		return apperr.NotFound(raw)
	}
	p, ok := s.locate(sl)
	if !ok {
		return apperr.NotFound(sl)
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound(sl)
		}
		return fmt.Errorf("delete note %s: %w", sl, err)
	}
	s.pruneEmptyDirs(filepath.Dir(p))
	return nil
}

func (s *FileStore) pruneEmptyDirs(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root+string(filepath.Separator)) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func encodeNote(n *models.Note) ([]byte, error) {
	return encodeDocument(n.Title, n.Slug, n.Tags, n.CreatedAt, n.UpdatedAt, n.Metadata, n.Content)
}

// writeTemp writes data to a hidden temporary file in dir and syncs it.
func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".note-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	return name, nil
}
