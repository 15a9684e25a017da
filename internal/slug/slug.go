// Package slug turns user-supplied identifiers into safe, hierarchical note keys.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins slug segments.
const Separator = "/"

// Segments splits s on forward and back slashes, trims each part and drops
// empty, "." and ".." segments. The result is nil when nothing usable remains.
func Segments(s string) []string {
	parts := strings.Split(strings.ReplaceAll(s, `\`, Separator), Separator)
	var segs []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		segs = append(segs, p)
	}
	return segs
}

// Normalize returns the canonical form of s. An empty result means s does
// not address any note and callers must reject it.
func Normalize(s string) string {
	return strings.Join(Segments(s), Separator)
}

// Valid reports whether s normalizes to a non-empty slug.
func Valid(s string) bool {
	return Normalize(s) != ""
}

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	dashRuns   = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a single slug segment from free text such as a title:
// lowercase ASCII letters, digits and single dashes. Diacritics are folded
// ("Café" becomes "cafe"); everything else is dropped.
func Slugify(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), text)
	if err != nil {
		folded = text
	}
	s := strings.ToLower(strings.TrimSpace(folded))
	s = disallowed.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Parent returns the slug without its last segment, or "" for top-level slugs.
func Parent(s string) string {
	segs := Segments(s)
	if len(segs) <= 1 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], Separator)
}

// Base returns the last segment of s.
func Base(s string) string {
	segs := Segments(s)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
