package ranking

import (
	"strings"
	"testing"

	"github.com/hyperjump/neuralvault/internal/models"
)

func TestOverlapScorer_weights(t *testing.T) {
	s := NewOverlapScorer(nil)
	n := &models.Note{Slug: "projects/kafka", Title: "Kafka tuning", Content: "consumer lag and batching"}

	tests := []struct {
		query string
		want  float64
	}{
		{"tuning", 3},            // title
		{"projects", 2},          // slug
		{"batching", 1},          // content
		{"kafka", 3 + 2},         // title + slug
		{"kafka lag", 3 + 2 + 1}, // title + slug + content
		{"zookeeper", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := s.Score(NewQuery(tt.query), n); got != tt.want {
			t.Errorf("Score(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestOverlapScorer_contentCapAndPrefix(t *testing.T) {
	cfg := &RetrievalConfig{ContentOverlapCap: 2, ContentPrefixChars: 20}
	s := NewOverlapScorer(cfg)
	n := &models.Note{Slug: "x", Title: "x", Content: "alpha beta gamma " + strings.Repeat(" ", 30) + "delta"}

	if got := s.Score(NewQuery("alpha beta gamma"), n); got != 2 {
		t.Errorf("capped content score = %v, want 2", got)
	}
	if got := s.Score(NewQuery("delta"), n); got != 0 {
		t.Errorf("token beyond prefix scored %v", got)
	}
}

func TestSubstringScorer(t *testing.T) {
	s := NewSubstringScorer(nil)
	n := &models.Note{Slug: "a", Title: "Notes", Content: strings.Repeat("deploy ", 9) + "rollback"}

	if got := s.Score(NewQuery("deploy"), n); got != 5 {
		t.Errorf("per-term hits not capped: %v", got)
	}
	if got := s.Score(NewQuery("rollback deploy"), n); got != 6 {
		t.Errorf("Score = %v, want 6", got)
	}
	if got := s.Score(NewQuery("notes"), n); got != 3 {
		t.Errorf("title term score = %v, want 3", got)
	}
	if got := s.Score(NewQuery("kubernetes"), n); got != 0 {
		t.Errorf("unrelated score = %v", got)
	}
}

func TestScorers_titleOverlapStrictlyIncreases(t *testing.T) {
	base := &models.Note{Slug: "s", Title: "weekly review", Content: "retro notes"}
	withTitle := &models.Note{Slug: "s", Title: "weekly review retro", Content: "retro notes"}
	for name, s := range map[string]Scorer{
		"overlap":   NewOverlapScorer(nil),
		"substring": NewSubstringScorer(nil),
	} {
		q := NewQuery("retro")
		if a, b := s.Score(q, base), s.Score(q, withTitle); b <= a {
			t.Errorf("%s: title overlap did not increase score (%v -> %v)", name, a, b)
		}
	}
}

func TestRetrievalConfig_Validate(t *testing.T) {
	c := DefaultRetrievalConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	c.VaultTopN = -1
	if err := c.Validate(); err == nil {
		t.Error("negative top-n accepted")
	}
	c = DefaultRetrievalConfig()
	c.TitleWeight = -3
	if err := c.Validate(); err == nil {
		t.Error("negative weight accepted")
	}
}

func TestRetrievalConfig_ApplyDefaults(t *testing.T) {
	c := &RetrievalConfig{TitleWeight: 10}
	c.ApplyDefaults()
	if c.TitleWeight != 10 {
		t.Errorf("explicit weight overwritten: %v", c.TitleWeight)
	}
	if c.VaultTopN != 5 || c.ChatTopN != 3 || c.ContentOverlapCap != 25 {
		t.Errorf("defaults not applied: %+v", c)
	}
}
