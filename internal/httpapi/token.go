package httpapi

import (
	"errors"
	"net/http"

	"github.com/voxbridge/voxbridge/pkg/realtime"
)

type mintTokenRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
}

type mintTokenResponse struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// handleMintToken relays an ephemeral credential to the client so the
// long-lived API key never leaves the server.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cred, err := s.minter.MintCredential(r.Context(), req.Model, req.Voice)
	if err != nil {
		var apiErr *realtime.Error
		if errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusUnauthorized {
			respondError(w, http.StatusBadGateway, "upstream_unauthorized", apiErr.Message)
			return
		}
		respondError(w, http.StatusBadGateway, "mint_failed", err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.TokensMinted.Inc()
	}
	respondJSON(w, http.StatusOK, mintTokenResponse{
		Value:     cred.Value,
		ExpiresAt: cred.ExpiresAt,
	})
}
