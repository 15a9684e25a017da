package server

import (
	"net/http"

	"github.com/hyperjump/neuralvault/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.chat.Chat(r.Context(), req)
	s.metrics.chatRequest("chat", err)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVaultChat(w http.ResponseWriter, r *http.Request) {
	var req models.VaultQuestion
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.chat.AskVault(r.Context(), req.Question)
	s.metrics.chatRequest("vault-chat", err)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}
