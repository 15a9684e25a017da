package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/neuralvault/internal/models"
)

const noteType = "note"

// noteDoc is the indexed shape of a note.
type noteDoc struct {
	Slug    string   `json:"slug"`
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// pathWords turns "neural-vault/commits_2025" into "neural vault commits 2025"
// so the standard analyzer can match slug words.
var pathWords = strings.NewReplacer("/", " ", "-", " ", "_", " ")

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
	// version changes on every write so term caches know when to refresh.
	version atomic.Uint64
}

var _ Index = (*BleveIndex)(nil)

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match the exact word.
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("path", text)
	doc.AddFieldMappingsAt("content", text)

	exact := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt("slug", exact)
	doc.AddFieldMappingsAt("tags", exact)

	im.AddDocumentMapping(noteType, doc)
	im.DefaultType = noteType
	im.DefaultMapping = doc
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path gives
// an in-memory index that is rebuilt on every start.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces the note, keyed by slug.
func (b *BleveIndex) Index(ctx context.Context, n *models.Note) error {
	tags := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = strings.ToLower(t)
	}
	defer b.version.Add(1)
	return b.index.Index(n.Slug, noteDoc{
		Slug:    n.Slug,
		Path:    pathWords.Replace(n.Slug),
		Title:   n.Title,
		Tags:    tags,
		Content: n.Content,
	})
}

// Delete removes a note. Deleting an unknown slug is not an error.
func (b *BleveIndex) Delete(ctx context.Context, slug string) error {
	defer b.version.Add(1)
	return b.index.Delete(slug)
}

// textQuery matches text against titles, slug words and content.
func textQuery(text string, titleBoost float64, fuzziness int) blevequery.Query {
	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(titleBoost)
	title.SetFuzziness(fuzziness)
	path := bleve.NewMatchQuery(text)
	path.SetField("path")
	path.SetFuzziness(fuzziness)
	content := bleve.NewMatchQuery(text)
	content.SetField("content")
	content.SetFuzziness(fuzziness)
	return bleve.NewDisjunctionQuery(title, path, content)
}

func phraseQuery(phrase string, titleBoost float64) blevequery.Query {
	title := bleve.NewMatchPhraseQuery(phrase)
	title.SetField("title")
	title.SetBoost(titleBoost)
	content := bleve.NewMatchPhraseQuery(phrase)
	content.SetField("content")
	return bleve.NewDisjunctionQuery(title, content)
}

// Search matches query against titles, slug words and content. Title matches are
// boosted by opts.TitleBoost; content hits carry a highlighted snippet.
// Quoted phrases must appear as written and words prefixed with "-" exclude
// notes (see ParseQuery). A query with nothing to match returns no hits.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*models.SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	parsed := ParseQuery(query)
	if parsed.Empty() {
		return []*models.SearchResult{}, nil
	}
	titleBoost := opts.TitleBoost
	if titleBoost <= 0 {
		titleBoost = 1
	}
	fuzziness := min(max(opts.Fuzziness, 0), 2)

	q := bleve.NewBooleanQuery()
	if len(parsed.Terms) > 0 {
		q.AddMust(textQuery(strings.Join(parsed.Terms, " "), titleBoost, fuzziness))
	}
	for _, p := range parsed.Phrases {
		q.AddMust(phraseQuery(p, titleBoost))
	}
	for _, word := range parsed.Excluded {
		q.AddMustNot(textQuery(word, 1, 0))
	}
	if tag := strings.ToLower(strings.TrimSpace(opts.Tag)); tag != "" {
		tq := bleve.NewTermQuery(tag)
		tq.SetField("tags")
		q.AddMust(tq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"title", "tags"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("content")

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*models.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &models.SearchResult{Slug: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			r.Title = t
		}
		r.Tags = fieldStrings(hit.Fields["tags"])
		if frags := hit.Fragments["content"]; len(frags) > 0 {
			r.Snippet = frags[0]
		}
		out = append(out, r)
	}
	return out, nil
}

// fieldStrings reads a stored field that Bleve returns as a string for one
// value and a slice for several.
func fieldStrings(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Slugs lists every indexed slug.
func (b *BleveIndex) Slugs(ctx context.Context) ([]string, error) {
	n, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(n)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve match-all failed: %w", err)
	}
	out := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, hit.ID)
	}
	return out, nil
}

// Terms returns every word in the title and content dictionaries with the
// number of notes containing it. A word in both fields keeps the larger count.
func (b *BleveIndex) Terms() (map[string]int, error) {
	terms := make(map[string]int)
	for _, field := range []string{"title", "content"} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("read %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil {
				_ = dict.Close()
				return nil, fmt.Errorf("read %s dictionary: %w", field, err)
			}
			if entry == nil {
				break
			}
			if n := int(entry.Count); n > terms[entry.Term] {
				terms[entry.Term] = n
			}
		}
		if err := dict.Close(); err != nil {
			return nil, err
		}
	}
	return terms, nil
}

// Indexable reports whether the text analyzer keeps word; stop words such as
// "the" are dropped at index time.
func (b *BleveIndex) Indexable(word string) bool {
	im, ok := b.index.Mapping().(*mapping.IndexMappingImpl)
	if !ok {
		return false
	}
	tokens, err := im.AnalyzeText(standard.Name, []byte(word))
	return err == nil && len(tokens) > 0
}

// Version changes whenever a note is indexed or deleted.
func (b *BleveIndex) Version() uint64 {
	return b.version.Load()
}

// DocCount returns the number of indexed notes.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
