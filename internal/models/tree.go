package models

import (
	"sort"
	"strings"
)

// NoteRef is the sidebar entry for a note.
type NoteRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// TreeGroup collects the notes sharing a first slug segment. Name is empty
// for top-level notes.
type TreeGroup struct {
	Name  string    `json:"name"`
	Notes []NoteRef `json:"notes"`
}

// BuildTree groups notes by their first slug segment. Groups are sorted by
// name; notes keep their input order.
func BuildTree(notes []*Note) []TreeGroup {
	idx := make(map[string]int)
	var groups []TreeGroup
	for _, n := range notes {
		name := ""
		if i := strings.Index(n.Slug, "/"); i >= 0 {
			name = n.Slug[:i]
		}
		gi, ok := idx[name]
		if !ok {
			gi = len(groups)
			idx[name] = gi
			groups = append(groups, TreeGroup{Name: name})
		}
		groups[gi].Notes = append(groups[gi].Notes, NoteRef{Slug: n.Slug, Title: n.Title})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	if groups == nil {
		groups = []TreeGroup{}
	}
	return groups
}
