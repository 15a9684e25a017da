package ranking

import "fmt"

// RetrievalConfig holds the weights, caps and cut-offs used to pick notes
// as chat context.
type RetrievalConfig struct {
	// Weights per matched query token
	TitleWeight   float64 `yaml:"title_weight"`   // default: 3
	SlugWeight    float64 `yaml:"slug_weight"`    // default: 2
	ContentWeight float64 `yaml:"content_weight"` // default: 1

	// Caps
	ContentOverlapCap  int `yaml:"content_overlap_cap"`  // default: 25 distinct tokens
	ContentPrefixChars int `yaml:"content_prefix_chars"` // default: 4000
	SubstringHitCap    int `yaml:"substring_hit_cap"`    // default: 5 hits per term

	// Result sizes
	VaultTopN         int `yaml:"vault_top_n"`         // default: 5
	ChatTopN          int `yaml:"chat_top_n"`          // default: 3
	VaultSnippetChars int `yaml:"vault_snippet_chars"` // default: 1500
	ChatSnippetChars  int `yaml:"chat_snippet_chars"`  // default: 1200
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		TitleWeight:   3,
		SlugWeight:    2,
		ContentWeight: 1,

		ContentOverlapCap:  25,
		ContentPrefixChars: 4000,
		SubstringHitCap:    5,

		VaultTopN:         5,
		ChatTopN:          3,
		VaultSnippetChars: 1500,
		ChatSnippetChars:  1200,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RetrievalConfig) ApplyDefaults() {
	d := DefaultRetrievalConfig()

	if c.TitleWeight == 0 {
		c.TitleWeight = d.TitleWeight
	}
	if c.SlugWeight == 0 {
		c.SlugWeight = d.SlugWeight
	}
	if c.ContentWeight == 0 {
		c.ContentWeight = d.ContentWeight
	}
	if c.ContentOverlapCap == 0 {
		c.ContentOverlapCap = d.ContentOverlapCap
	}
	if c.ContentPrefixChars == 0 {
		c.ContentPrefixChars = d.ContentPrefixChars
	}
	if c.SubstringHitCap == 0 {
		c.SubstringHitCap = d.SubstringHitCap
	}
	if c.VaultTopN == 0 {
		c.VaultTopN = d.VaultTopN
	}
	if c.ChatTopN == 0 {
		c.ChatTopN = d.ChatTopN
	}
	if c.VaultSnippetChars == 0 {
		c.VaultSnippetChars = d.VaultSnippetChars
	}
	if c.ChatSnippetChars == 0 {
		c.ChatSnippetChars = d.ChatSnippetChars
	}
}

// Validate rejects negative weights and non-positive limits.
func (c *RetrievalConfig) Validate() error {
	if c.TitleWeight < 0 || c.SlugWeight < 0 || c.ContentWeight < 0 {
		return fmt.Errorf("retrieval weights must not be negative")
	}
	for name, v := range map[string]int{
		"content_overlap_cap":  c.ContentOverlapCap,
		"content_prefix_chars": c.ContentPrefixChars,
		"substring_hit_cap":    c.SubstringHitCap,
		"vault_top_n":          c.VaultTopN,
		"chat_top_n":           c.ChatTopN,
		"vault_snippet_chars":  c.VaultSnippetChars,
		"chat_snippet_chars":   c.ChatSnippetChars,
	} {
		if v <= 0 {
			return fmt.Errorf("retrieval.%s must be positive, got %d", name, v)
		}
	}
	return nil
}
