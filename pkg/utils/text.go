// Package utils provides shared text and logging helpers.
package utils

import (
	"strings"
	"unicode"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate returns the first maxLen characters of s followed by Ellipsis
// when s is longer than that. maxLen <= 0 returns s unchanged.
func Truncate(s string, maxLen int) string {
	head, cut := cutRunes(s, maxLen)
	if !cut {
		return s
	}
	return head + Ellipsis
}

// Head returns at most the first n characters of s, without a marker.
// n <= 0 returns s unchanged.
func Head(s string, n int) string {
	head, _ := cutRunes(s, n)
	return head
}

func cutRunes(s string, n int) (string, bool) {
	if n <= 0 || len(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}

// CollapseSpace trims s and replaces every run of whitespace with a single space.
func CollapseSpace(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	wasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteByte(' ')
				wasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		wasSpace = false
	}
	return b.String()
}
