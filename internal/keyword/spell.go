package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// TermDictionary is the word list a SpellChecker corrects against.
type TermDictionary interface {
	// Terms maps each indexed word to the number of notes containing it.
	Terms() (map[string]int, error)
	// Version changes whenever Terms would return something different.
	Version() uint64
}

// indexable is implemented by dictionaries whose analyzer drops some words
// (stop words). Dropped words are never reported as misspelled.
type indexable interface {
	Indexable(word string) bool
}

// Suggestion is a dictionary word close to a misspelled query word.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
}

// Correction is the result of checking a query.
type Correction struct {
	// Misspelled maps each unknown query word to its candidates, best first.
	Misspelled map[string][]Suggestion
	// Queries are rewritten queries, best first.
	Queries []string
}

// SpellChecker suggests corrections for query words that do not occur in
// the index.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFrequency   int
	maxSuggestions int

	mu      sync.Mutex
	terms   map[string]int
	version uint64
	loaded  bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the largest edit distance considered (default 2).
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores dictionary words found in fewer notes.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFrequency = f
		}
	}
}

// WithMaxSuggestions caps candidates per word and rewritten queries.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker returns a SpellChecker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFrequency:   1,
		maxSuggestions: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SpellCheckerFor returns a SpellChecker over index, or nil when index has
// no term dictionary.
func SpellCheckerFor(index Index, opts ...SpellCheckerOption) *SpellChecker {
	dict, ok := index.(TermDictionary)
	if !ok {
		return nil
	}
	return NewSpellChecker(dict, opts...)
}

// Suggestions returns rewritten queries for query, or nil when every word
// is known. A nil SpellChecker suggests nothing.
func (s *SpellChecker) Suggestions(query string) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	c, err := s.Check(query)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Queries, nil
}

// snapshot returns the cached dictionary, reloading it after index writes.
func (s *SpellChecker) snapshot() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.dictionary.Version()
	if s.loaded && v == s.version {
		return s.terms, nil
	}
	terms, err := s.dictionary.Terms()
	if err != nil {
		return nil, err
	}
	s.terms, s.version, s.loaded = terms, v, true
	return terms, nil
}

// Check looks up every plain and excluded word of query. Words inside
// quoted phrases are left alone. A nil Correction means nothing to fix.
func (s *SpellChecker) Check(query string) (*Correction, error) {
	terms, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	parsed := ParseQuery(query)
	words := append(append([]string(nil), parsed.Terms...), parsed.Excluded...)

	filter, _ := s.dictionary.(indexable)
	misspelled := make(map[string][]Suggestion)
	for _, w := range words {
		if _, ok := terms[w]; ok || !checkable(w) {
			continue
		}
		if filter != nil && !filter.Indexable(w) {
			continue
		}
		if _, done := misspelled[w]; done {
			continue
		}
		if cands := s.suggest(terms, w); len(cands) > 0 {
			misspelled[w] = cands
		}
	}
	if len(misspelled) == 0 {
		return nil, nil
	}
	queries := s.rewrite(query, misspelled)
	if len(queries) == 0 {
		return nil, nil
	}
	return &Correction{Misspelled: misspelled, Queries: queries}, nil
}

// Suggest returns dictionary words close to term, best first.
func (s *SpellChecker) Suggest(term string) ([]Suggestion, error) {
	terms, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.suggest(terms, strings.ToLower(term)), nil
}

func (s *SpellChecker) suggest(terms map[string]int, term string) []Suggestion {
	limit := s.maxDistance
	if n := len([]rune(term)); n <= 4 {
		limit = min(limit, 1)
	}
	var out []Suggestion
	for t, freq := range terms {
		if t == term || freq < s.minFrequency {
			continue
		}
		if diff := len(t) - len(term); diff > limit || -diff > limit {
			continue
		}
		if d := EditDistance(term, t); d <= limit {
			out = append(out, Suggestion{Term: t, Distance: d, Frequency: freq})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// rewrite builds corrected queries: first every misspelled word replaced by
// its best candidate, then one variant per runner-up candidate. Rewrites
// identical to query are dropped.
func (s *SpellChecker) rewrite(query string, misspelled map[string][]Suggestion) []string {
	pick := make(map[string]string, len(misspelled))
	for w, cands := range misspelled {
		pick[w] = cands[0].Term
	}
	seen := map[string]bool{strings.Join(strings.Fields(query), " "): true}
	var queries []string
	if q := replaceWords(query, pick); !seen[q] {
		seen[q] = true
		queries = append(queries, q)
	}

	words := make([]string, 0, len(misspelled))
	for w := range misspelled {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		for _, c := range misspelled[w][1:] {
			if len(queries) >= s.maxSuggestions {
				return queries
			}
			alt := make(map[string]string, len(pick))
			for k, v := range pick {
				alt[k] = v
			}
			alt[w] = c.Term
			if q := replaceWords(query, alt); !seen[q] {
				seen[q] = true
				queries = append(queries, q)
			}
		}
	}
	return queries
}

// replaceWords swaps whole words of query outside quotes, keeping any "-"
// prefix. Edge punctuation of a replaced word is dropped.
func replaceWords(query string, repl map[string]string) string {
	fields := strings.Fields(query)
	quoted := false
	for i, f := range fields {
		inQuote := quoted || strings.HasPrefix(f, `"`)
		quoted = quoted != (strings.Count(f, `"`)%2 == 1)
		if inQuote {
			continue
		}
		if r, ok := repl[normalizeToken(strings.TrimPrefix(f, "-"))]; ok {
			prefix := ""
			if strings.HasPrefix(f, "-") {
				prefix = "-"
			}
			fields[i] = prefix + r
		}
	}
	return strings.Join(fields, " ")
}

// checkable skips words too short to correct reliably and anything with digits.
func checkable(w string) bool {
	if len([]rune(w)) < 3 {
		return false
	}
	for _, r := range w {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
