package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/keyword"
	"github.com/hyperjump/neuralvault/internal/markdown"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notes, err := s.noteCount(ctx)
	if err != nil {
		s.logger.Error("status: count notes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	indexed, err := s.index.DocCount()
	if err != nil {
		s.logger.Error("status: count indexed documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	resp := map[string]interface{}{
		"notes":             notes,
		"indexed_documents": indexed,
		"chat_provider":     s.config.Chat.Provider,
		"chat_ready":        s.chat != nil && s.chat.Ready(),
	}
	if s.usage != nil {
		if u, err := s.usage(); err == nil {
			resp["disk_usage_bytes"] = u.Bytes
		} else {
			s.logger.Warn("status: disk usage failed", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) noteCount(ctx context.Context) (int, error) {
	if s.count != nil {
		return s.count(ctx)
	}
	return len(storage.List(ctx, s.store)), nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.BuildTree(storage.List(r.Context(), s.store)))
}

func (s *Server) handleNoteHTML(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Get(r.Context(), noteSlug(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"slug":  n.Slug,
		"title": n.Title,
		"html":  markdown.Render(n.Content),
	})
}

type renderRequest struct {
	Markdown string `json:"markdown"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"html": markdown.Render(req.Markdown)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.SearchQuery{Query: q.Get("q"), Tag: q.Get("tag")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = n
	}
	if err := query.Validate(s.config.Search.DefaultLimit, s.config.Search.MaxLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))

	start := time.Now()
	results, err := s.index.Search(r.Context(), query.Query, query.Limit, &keyword.SearchOptions{
		TitleBoost: s.config.Search.TitleBoost,
		Fuzziness:  s.config.Search.Fuzziness,
		Tag:        query.Tag,
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if results == nil {
		results = []*models.SearchResult{}
	}
	resp := &models.SearchResponse{
		Query:     query.Query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}
	if resp.Suggestions, err = s.spell.Suggestions(query.Query); err != nil {
		s.logger.Warn("spell check failed", zap.String("query", query.Query), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}
