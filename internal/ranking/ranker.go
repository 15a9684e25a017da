// Package ranking selects the notes most relevant to a free-text question
// using term-overlap heuristics.
package ranking

import (
	"iter"
	"sort"

	"github.com/hyperjump/neuralvault/internal/models"
)

// Scored pairs a note with its score.
type Scored struct {
	Note  *models.Note
	Score float64
}

// Ranker scores notes, drops those scoring zero and keeps the best TopN in
// descending order. Ties keep input order.
type Ranker struct {
	scorer Scorer
	topN   int
}

// NewRanker returns a Ranker. topN <= 0 means unlimited.
func NewRanker(scorer Scorer, topN int) *Ranker {
	return &Ranker{scorer: scorer, topN: topN}
}

// Rank scores every note yielded by notes against query.
func (r *Ranker) Rank(query string, notes iter.Seq[*models.Note]) []Scored {
	q := NewQuery(query)
	if q.Empty() {
		return nil
	}
	var scored []Scored
	for n := range notes {
		if s := r.scorer.Score(q, n); s > 0 {
			scored = append(scored, Scored{Note: n, Score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if r.topN > 0 && len(scored) > r.topN {
		scored = scored[:r.topN]
	}
	return scored
}

// Slugs returns the slugs of scored, in order.
func Slugs(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Note.Slug
	}
	return out
}
