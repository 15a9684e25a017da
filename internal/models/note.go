// Package models defines the core data structures for notes, chat exchanges and search results.
package models

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Note is a markdown document addressed by a hierarchical slug.
type Note struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Tags      []string   `json:"tags"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	// Metadata holds front-matter keys the store does not manage itself.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Clone returns a deep copy of n so callers never share state with the store.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = slices.Clone(n.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if n.CreatedAt != nil {
		t := *n.CreatedAt
		c.CreatedAt = &t
	}
	if n.UpdatedAt != nil {
		t := *n.UpdatedAt
		c.UpdatedAt = &t
	}
	c.Metadata = maps.Clone(n.Metadata)
	return &c
}

// HasTag reports whether n carries tag (case-insensitive).
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NoteInput is the input for creating a note.
type NoteInput struct {
	Slug    string   `json:"slug,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// NoteUpdate is a partial update. Nil fields keep the stored value.
type NoteUpdate struct {
	Slug    string    `json:"-"`
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Empty reports whether u would change nothing but updatedAt.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil
}
