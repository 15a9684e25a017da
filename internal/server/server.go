// Package server provides the HTTP API for Neural Vault.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/chat"
	"github.com/hyperjump/neuralvault/internal/config"
	"github.com/hyperjump/neuralvault/internal/keyword"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// Server is the HTTP server for the Neural Vault API.
type Server struct {
	store   storage.NoteStore
	index   keyword.Index
	chat    *chat.Gateway
	config  *config.Config
	logger  *zap.Logger
	metrics *Metrics
	spell   *keyword.SpellChecker
	usage   func() (storage.Usage, error)
	count   func(ctx context.Context) (int, error)
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithDiskUsage reports the notes footprint on /api/v1/status.
func WithDiskUsage(fn func() (storage.Usage, error)) Option {
	return func(s *Server) { s.usage = fn }
}

// WithNoteCount replaces the default note count (a full listing) on
// /api/v1/status.
func WithNoteCount(fn func(ctx context.Context) (int, error)) Option {
	return func(s *Server) { s.count = fn }
}

// WithMetrics shares a metrics set between servers; by default each server
// gets its own registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewServer creates a server with the given dependencies. store should
// keep index up to date (see indexer.IndexedStore).
func NewServer(
	store storage.NoteStore,
	index keyword.Index,
	gateway *chat.Gateway,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		index:  index,
		chat:   gateway,
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if cfg.Search.SuggestOrDefault() {
		s.spell = keyword.SpellCheckerFor(index)
	}
	return s
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)
	if t := s.config.Server.RequestTimeout; t > 0 {
		r.Use(middleware.Timeout(t))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/tree", s.handleTree)
		r.Get("/notes", s.handleListNotes)
		r.Post("/notes", s.handleCreateNote)
		r.Get("/notes/*", s.handleGetNote)
		r.Put("/notes/*", s.handleUpdateNote)
		r.Delete("/notes/*", s.handleDeleteNote)
		r.Get("/html/*", s.handleNoteHTML)
		r.Post("/render", s.handleRender)
		r.Get("/search", s.handleSearch)
		r.Post("/chat", s.handleChat)
		r.Post("/vault-chat", s.handleVaultChat)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
