// Package markdown renders the notes dialect (headings, lists, inline code,
// links and commit records) to HTML fragments.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	listItemRe = regexp.MustCompile(`^-\s+(.*)$`)
	commitKey  = regexp.MustCompile(`^(Hash|Author|Time):\s*(.*)$`)
	codeOnly   = regexp.MustCompile("^`([^`]+)`$")
	inlineRe   = regexp.MustCompile("(`[^`]+`|\\[[^\\]]+\\]\\([^)]+\\))")
	linkRe     = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)$`)
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape HTML-escapes s.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render converts markdown to HTML. It never panics: if commit-aware
// rendering fails, the input is rendered as headings and paragraphs only.
func Render(src string) string {
	return render(src, renderDocument)
}

func render(src string, full func(string) string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = renderBasic(src)
		}
	}()
	return full(src)
}

type lineKind int

const (
	lineBlank lineKind = iota
	lineHeading
	lineItem
	lineNested
	lineText
)

type line struct {
	kind  lineKind
	level int
	text  string
}

// splitLines trims the document and breaks it on \n or \r\n.
func splitLines(src string) []string {
	src = strings.ReplaceAll(strings.TrimSpace(src), "\r\n", "\n")
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

func classify(raw string) line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return line{kind: lineBlank}
	}
	if m := headingRe.FindStringSubmatch(trimmed); m != nil {
		return line{kind: lineHeading, level: len(m[1]), text: strings.TrimSpace(m[2])}
	}
	if m := listItemRe.FindStringSubmatch(trimmed); m != nil {
		kind := lineItem
		if indentWidth(raw) >= 2 {
			kind = lineNested
		}
		return line{kind: kind, text: strings.TrimSpace(m[1])}
	}
	return line{kind: lineText, text: trimmed}
}

// indentWidth counts leading spaces; a tab counts as two.
func indentWidth(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 2
		default:
			return n
		}
	}
	return n
}

func formatInline(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range inlineRe.FindAllStringIndex(s, -1) {
		b.WriteString(Escape(s[last:loc[0]]))
		b.WriteString(formatToken(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(Escape(s[last:]))
	return b.String()
}

func formatToken(tok string) string {
	if m := codeOnly.FindStringSubmatch(tok); m != nil {
		return "<code>" + Escape(m[1]) + "</code>"
	}
	if m := linkRe.FindStringSubmatch(tok); m != nil {
		return fmt.Sprintf(`<a href="%s">%s</a>`, Escape(safeHref(m[2])), Escape(m[1]))
	}
	return Escape(tok)
}

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

func safeHref(href string) string {
	h := strings.ToLower(strings.TrimSpace(href))
	for _, s := range unsafeSchemes {
		if strings.HasPrefix(h, s) {
			return "#"
		}
	}
	return strings.TrimSpace(href)
}

// renderBasic is the fallback: headings and paragraphs, text escaped.
func renderBasic(src string) string {
	var out []string
	for _, raw := range splitLines(src) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			out = append(out, fmt.Sprintf("<h%d>%s</h%d>", level, Escape(strings.TrimSpace(m[2])), level))
			continue
		}
		out = append(out, "<p>"+Escape(trimmed)+"</p>")
	}
	return strings.Join(out, "\n")
}
