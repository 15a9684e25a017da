// Package extract turns documents into plain text suitable for a note body.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrUnsupported is returned for extensions with no registered extractor.
var ErrUnsupported = errors.New("unsupported document type")

// Func extracts text from the raw bytes of one document.
type Func func(content []byte) (string, error)

// Extractor dispatches on file extension.
type Extractor struct {
	funcs map[string]Func
}

// NewExtractor returns an Extractor for plain text, markdown, PDF, DOCX,
// ODT, RTF and XLSX.
func NewExtractor() *Extractor {
	return &Extractor{funcs: map[string]Func{
		".txt":  extractPlain,
		".md":   extractPlain,
		".mdx":  extractPlain,
		".rst":  extractPlain,
		".pdf":  extractPDF,
		".docx": extractDOCX,
		".odt":  extractWithCat,
		".rtf":  extractWithCat,
		".xlsx": extractXLSX,
	}}
}

// Supported reports whether ext (with leading dot, any case) can be extracted.
func (e *Extractor) Supported(ext string) bool {
	_, ok := e.funcs[strings.ToLower(ext)]
	return ok
}

// Extensions lists the supported extensions, sorted.
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(e.funcs))
	for ext := range e.funcs {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract reads the file at path and returns its normalized text.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !e.Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := e.funcs[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	text, err := fn(content)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Normalize converts line endings to \n, strips trailing spaces on each line,
// squeezes runs of blank lines to one and trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

// extractPlain returns content as string; invalid UTF-8 sequences become U+FFFD.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\uFFFD"), nil
	}
	return strings.TrimPrefix(string(content), "\uFEFF"), nil
}
