package keyword

import (
	"regexp"
	"strings"
	"unicode"
)

// ParsedQuery is a search query split into its parts.
type ParsedQuery struct {
	// Terms are the plain words, lowercased.
	Terms []string
	// Phrases are the double-quoted sections; each must match in order.
	Phrases []string
	// Excluded are words prefixed with "-"; notes containing any are dropped.
	Excluded []string
}

var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// ParseQuery splits raw into terms, quoted phrases and excluded words.
// AND and OR are ignored; NOT excludes the word after it.
func ParseQuery(raw string) ParsedQuery {
	var q ParsedQuery
	for _, m := range phrasePattern.FindAllStringSubmatch(raw, -1) {
		if p := strings.ToLower(strings.Join(strings.Fields(m[1]), " ")); p != "" {
			q.Phrases = append(q.Phrases, p)
		}
	}
	negate := false
	for _, word := range strings.Fields(phrasePattern.ReplaceAllString(raw, " ")) {
		switch {
		case word == "AND" || word == "OR":
			continue
		case word == "NOT":
			negate = true
			continue
		}
		excluded := negate
		negate = false
		if strings.HasPrefix(word, "-") {
			excluded = true
			word = word[1:]
		}
		token := normalizeToken(word)
		if token == "" {
			continue
		}
		if excluded {
			q.Excluded = append(q.Excluded, token)
		} else {
			q.Terms = append(q.Terms, token)
		}
	}
	return q
}

// Empty reports whether the query has nothing a note could match.
func (q ParsedQuery) Empty() bool {
	return len(q.Terms) == 0 && len(q.Phrases) == 0
}

// normalizeToken lowercases token and trims punctuation from its edges,
// keeping inner dashes and underscores.
func normalizeToken(token string) string {
	return strings.TrimFunc(strings.ToLower(token), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
