package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// noteSlug returns the wildcard part of /notes/* and /html/* routes.
func noteSlug(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes := storage.List(r.Context(), s.store)
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		filtered := make([]*models.Note, 0, len(notes))
		for _, n := range notes {
			if n.HasTag(tag) {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Get(r.Context(), noteSlug(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if !s.decode(w, r, &body) {
		return
	}
	in, err := noteInput(body)
	if err != nil {
		s.metrics.mutation("create", err)
		s.respondErr(w, r, err)
		return
	}
	s.logger.Debug("create note request", zap.String("slug", in.Slug))
	n, err := s.store.Create(r.Context(), in)
	s.metrics.mutation("create", err)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if !s.decode(w, r, &body) {
		return
	}
	u := noteUpdate(noteSlug(r), body)
	s.logger.Debug("update note request", zap.String("slug", u.Slug))
	n, err := s.store.Update(r.Context(), u)
	s.metrics.mutation("update", err)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	sl := noteSlug(r)
	s.logger.Debug("delete note request", zap.String("slug", sl))
	err := s.store.Delete(r.Context(), sl)
	s.metrics.mutation("delete", err)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// noteInput validates a create body. The slug comes from "slug" when given,
// otherwise from the title.
func noteInput(body map[string]json.RawMessage) (models.NoteInput, error) {
	title, okTitle := stringField(body, "title")
	content, okContent := stringField(body, "content")
	if !okTitle || !okContent || strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return models.NoteInput{}, apperr.Malformed("title and content are required")
	}
	var sl string
	if raw, ok := stringField(body, "slug"); ok && strings.TrimSpace(raw) != "" {
		sl = slug.Normalize(raw)
	} else {
		sl = slug.Slugify(title)
	}
	if sl == "" {
		return models.NoteInput{}, apperr.New(apperr.KindInvalidSlug, "unable to derive a valid slug")
	}
	in := models.NoteInput{Slug: sl, Title: title, Content: content}
	if tags, ok := tagsField(body); ok {
		in.Tags = tags
	}
	return in, nil
}

// noteUpdate keeps only well-typed fields; anything else leaves the stored
// value untouched.
func noteUpdate(sl string, body map[string]json.RawMessage) models.NoteUpdate {
	u := models.NoteUpdate{Slug: sl}
	if v, ok := stringField(body, "title"); ok {
		u.Title = &v
	}
	if v, ok := stringField(body, "content"); ok {
		u.Content = &v
	}
	if v, ok := tagsField(body); ok {
		u.Tags = &v
	}
	return u
}

func stringField(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// tagsField accepts a list (non-string items dropped) or a comma-separated
// string.
func tagsField(body map[string]json.RawMessage) ([]string, bool) {
	raw, ok := body["tags"]
	if !ok {
		return nil, false
	}
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		tags := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return models.CleanTags(tags), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return models.ParseTags(s), true
	}
	return nil, false
}
