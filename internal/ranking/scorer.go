package ranking

import (
	"strings"

	"github.com/hyperjump/neuralvault/internal/models"
)

// Query is a pre-tokenized retrieval query.
type Query struct {
	Text   string
	Tokens []string
	Terms  []string
}

// NewQuery tokenizes text for both scorers.
func NewQuery(text string) Query {
	return Query{Text: text, Tokens: Tokenize(text), Terms: Terms(text)}
}

// Empty reports whether the query has nothing to match.
func (q Query) Empty() bool {
	return len(q.Tokens) == 0 && len(q.Terms) == 0
}

// Scorer scores a note against a query. Zero means unrelated.
type Scorer interface {
	Score(q Query, n *models.Note) float64
}

// OverlapScorer counts distinct query tokens found in the title, the slug
// and a prefix of the content. Content matches are capped so long notes do
// not win on size alone.
type OverlapScorer struct {
	config *RetrievalConfig
}

// NewOverlapScorer returns an OverlapScorer. A nil config uses defaults.
func NewOverlapScorer(config *RetrievalConfig) *OverlapScorer {
	return &OverlapScorer{config: withDefaults(config)}
}

// Score implements Scorer.
func (s *OverlapScorer) Score(q Query, n *models.Note) float64 {
	if len(q.Tokens) == 0 {
		return 0
	}
	title := toSet(Tokenize(n.Title))
	slug := slugTokens(n.Slug)
	content := toSet(Tokenize(prefix(n.Content, s.config.ContentPrefixChars)))

	var titleHits, slugHits, contentHits int
	for _, t := range q.Tokens {
		if _, ok := title[t]; ok {
			titleHits++
		}
		if _, ok := slug[t]; ok {
			slugHits++
		}
		if _, ok := content[t]; ok {
			contentHits++
		}
	}
	contentHits = min(contentHits, s.config.ContentOverlapCap)
	return s.config.TitleWeight*float64(titleHits) +
		s.config.SlugWeight*float64(slugHits) +
		s.config.ContentWeight*float64(contentHits)
}

// SubstringScorer counts raw substring occurrences of each query term in
// the note body, capped per term, and adds the title weight for every term
// the title contains.
type SubstringScorer struct {
	config *RetrievalConfig
}

// NewSubstringScorer returns a SubstringScorer. A nil config uses defaults.
func NewSubstringScorer(config *RetrievalConfig) *SubstringScorer {
	return &SubstringScorer{config: withDefaults(config)}
}

// Score implements Scorer.
func (s *SubstringScorer) Score(q Query, n *models.Note) float64 {
	if len(q.Terms) == 0 {
		return 0
	}
	title := strings.ToLower(n.Title)
	body := strings.ToLower(n.Content)
	var score float64
	for _, term := range q.Terms {
		if hits := strings.Count(body, term); hits > 0 {
			score += s.config.ContentWeight * float64(min(hits, s.config.SubstringHitCap))
		}
		if strings.Contains(title, term) {
			score += s.config.TitleWeight
		}
	}
	return score
}

func withDefaults(config *RetrievalConfig) *RetrievalConfig {
	if config == nil {
		return DefaultRetrievalConfig()
	}
	c := *config
	c.ApplyDefaults()
	return &c
}
