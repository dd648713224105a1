// Package httpapi exposes the service's HTTP surface: token minting for
// browser-style clients, conversation/transcript CRUD, the expert text
// endpoint, health, and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voxbridge/voxbridge/internal/expert"
	"github.com/voxbridge/voxbridge/internal/observability"
	"github.com/voxbridge/voxbridge/internal/store"
	"github.com/voxbridge/voxbridge/pkg/bridge"
	"github.com/voxbridge/voxbridge/pkg/realtime"
)

// TokenMinter mints ephemeral session credentials. *realtime.Client
// satisfies it.
type TokenMinter interface {
	MintCredential(ctx context.Context, model, voice string) (*realtime.Credential, error)
}

// Signaler performs the SDP offer/answer exchange against the upstream
// realtime endpoint. *realtime.Client satisfies it.
type Signaler interface {
	Exchange(ctx context.Context, localSDP, credential, model string) (string, error)
}

type Server struct {
	minter   TokenMinter
	signaler Signaler
	store    store.Store
	expert   expert.Responder
	personas bridge.PersonaSet
	metrics  *observability.Metrics
}

func New(minter TokenMinter, signaler Signaler, st store.Store, responder expert.Responder, personas bridge.PersonaSet, metrics *observability.Metrics) *Server {
	return &Server{
		minter:   minter,
		signaler: signaler,
		store:    st,
		expert:   responder,
		personas: personas,
		metrics:  metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/token", s.handleMintToken)
	r.Post("/api/signal", s.handleSignal)
	r.Get("/api/personas", s.handleListPersonas)
	r.Post("/api/llm/expert", s.handleExpert)

	r.Post("/api/conversations", s.handleCreateConversation)
	r.Get("/api/conversations", s.handleListConversations)
	r.Get("/api/conversations/{id}", s.handleGetConversation)
	r.Delete("/api/conversations/{id}", s.handleDeleteConversation)
	r.Get("/api/conversations/{id}/messages", s.handleListMessages)
	r.Post("/api/conversations/{id}/messages", s.handleAppendMessage)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
