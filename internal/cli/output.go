// Package cli formats command output for the neuralvault binary.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/pkg/utils"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per item, for piping into other tools.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	separator  = "─────────────────────────────────────────────────────────"
	snippetLen = 200
)

// ParseFormat validates a --format flag value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search hits to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", r.Score, r.Slug, r.Title)
		}
		return nil
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %dms\n", response.Total, response.Query, response.QueryTime)
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %q?\n", response.Suggestions[0])
	}
	fmt.Fprintln(w)
	for i, r := range response.Results {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "%d. %s  (score %.4f)\n", i+1, r.Title, r.Score)
		fmt.Fprintf(w, "Slug: %s\n", r.Slug)
		if len(r.Tags) > 0 {
			fmt.Fprintf(w, "Tags: %s\n", strings.Join(r.Tags, ", "))
		}
		if r.Snippet != "" {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(utils.CollapseSpace(r.Snippet), snippetLen))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteNotes writes a note listing.
func WriteNotes(w io.Writer, notes []*models.Note, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if notes == nil {
			notes = []*models.Note{}
		}
		return writeJSON(w, notes)
	case OutputCompact:
		for _, n := range notes {
			fmt.Fprintln(w, n.Slug)
		}
		return nil
	}
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return nil
	}
	for _, n := range notes {
		line := fmt.Sprintf("%-40s %s", n.Slug, n.Title)
		if len(n.Tags) > 0 {
			line += "  [" + strings.Join(n.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}

// WriteNote writes a single note. Text output is the note's front matter
// fields followed by its raw markdown.
func WriteNote(w io.Writer, n *models.Note, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, n)
	case OutputCompact:
		_, err := io.WriteString(w, n.Content)
		return err
	}
	fmt.Fprintf(w, "Title: %s\n", n.Title)
	fmt.Fprintf(w, "Slug: %s\n", n.Slug)
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(n.Tags, ", "))
	}
	if n.UpdatedAt != nil {
		fmt.Fprintf(w, "Updated: %s\n", n.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimRight(n.Content, "\n"))
	return nil
}

// WriteAnswer writes an assistant reply and the notes it drew on.
func WriteAnswer(w io.Writer, answer *models.VaultAnswer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, answer.Answer)
	if format == OutputCompact || len(answer.Sources) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nSources: %s\n", strings.Join(answer.Sources, ", "))
	return nil
}
