package httpapi

import (
	"net/http"
	"strings"
)

type personaView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

func (s *Server) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	out := make([]personaView, 0, len(s.personas))
	for _, p := range s.personas {
		v := personaView{ID: p.ID, Name: p.Name}
		for lang := range p.Instructions {
			v.Languages = append(v.Languages, lang)
		}
		out = append(out, v)
	}
	respondJSON(w, http.StatusOK, out)
}

type expertRequest struct {
	Text      string `json:"text"`
	PersonaID string `json:"persona_id"`
	Language  string `json:"language"`
}

type expertResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleExpert(w http.ResponseWriter, r *http.Request) {
	if s.expert == nil {
		respondError(w, http.StatusServiceUnavailable, "expert_disabled", "no expert responder configured")
		return
	}

	var req expertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
		return
	}

	instructions, _ := s.personas.Resolve(req.PersonaID, req.Language)
	reply, err := s.expert.Respond(r.Context(), instructions, req.Text)
	if err != nil {
		respondError(w, http.StatusBadGateway, "expert_failed", err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.Turns.WithLabelValues("expert").Inc()
	}
	respondJSON(w, http.StatusOK, expertResponse{Reply: reply})
}
