package ranking

import (
	"regexp"
	"strings"
)

var (
	outsideTokenSet = regexp.MustCompile(`[^a-z0-9\s/-]`)
	nonWord         = regexp.MustCompile(`[^a-z0-9_]+`)
	slugSeparators  = strings.NewReplacer("/", " ", "-", " ")
)

// Tokenize lowercases text, blanks out everything but letters, digits,
// whitespace, '/' and '-', and splits on whitespace. Duplicates are
// dropped; first occurrence order is kept.
func Tokenize(text string) []string {
	cleaned := outsideTokenSet.ReplaceAllString(strings.ToLower(text), " ")
	return unique(strings.Fields(cleaned))
}

// Terms splits lowercased text on runs of non-word characters, dropping
// duplicates.
func Terms(text string) []string {
	return unique(nonWord.Split(strings.ToLower(text), -1))
}

// slugTokens are the tokens of a slug plus its '/' and '-' separated parts,
// so "neural-vault/commits" also matches "vault" and "commits".
func slugTokens(slug string) map[string]struct{} {
	set := toSet(Tokenize(slug))
	for _, t := range Tokenize(slugSeparators.Replace(slug)) {
		set[t] = struct{}{}
	}
	return set
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
