package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/internal/store"
)

type createConversationRequest struct {
	Title     string `json:"title"`
	Mode      string `json:"mode"`
	Language  string `json:"language"`
	PersonaID string `json:"persona_id"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	now := time.Now()
	conv := store.Conversation{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Mode:      req.Mode,
		Language:  req.Language,
		PersonaID: req.PersonaID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateConversation(r.Context(), conv); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	list, err := s.store.ListConversations(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if list == nil {
		list = []store.Conversation{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.store.GetConversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "conversation_not_found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteConversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "conversation_not_found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msgs, err := s.store.ListMessages(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "conversation_not_found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

type appendMessageRequest struct {
	Role string `json:"role"`
	Text string `json:"text"`
	// Kind distinguishes voice transcripts from typed turns for the
	// turn counter; it is not stored.
	Kind string `json:"kind"`
}

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req appendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	msg := store.Message{
		ID:             uuid.New().String(),
		ConversationID: id,
		Role:           req.Role,
		Text:           req.Text,
		CreatedAt:      time.Now(),
	}
	err := s.store.AppendMessage(r.Context(), msg)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "conversation_not_found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if s.metrics != nil && msg.Role == "user" {
		kind := req.Kind
		if kind == "" {
			kind = "text"
		}
		s.metrics.Turns.WithLabelValues(kind).Inc()
	}
	respondJSON(w, http.StatusCreated, msg)
}
