package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxbridge/voxbridge/pkg/realtime"
)

// handleSignal relays a browser client's SDP offer to the upstream
// realtime endpoint and returns the answer verbatim. The client
// authorizes with the ephemeral credential it got from /api/token, so
// the long-lived API key stays server-side throughout the handshake.
//
// A successful exchange is the moment a session actually starts; the
// mode query parameter lets the client label it.
func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	credential := strings.TrimPrefix(auth, "Bearer ")
	if auth == "" || credential == auth || credential == "" {
		respondError(w, http.StatusUnauthorized, "missing_credential", "Authorization: Bearer <ephemeral credential> required")
		return
	}

	model := r.URL.Query().Get("model")
	if model == "" {
		model = realtime.ModelGPT4oRealtimePreview
	}

	offer, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(strings.TrimSpace(string(offer))) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be an SDP offer")
		return
	}

	start := time.Now()
	answer, err := s.signaler.Exchange(r.Context(), string(offer), credential, model)
	if s.metrics != nil {
		s.metrics.ObserveSignalingLatency(time.Since(start))
	}
	if err != nil {
		var sigErr *realtime.SignalingError
		if errors.As(err, &sigErr) {
			respondError(w, http.StatusBadGateway, "signaling_rejected", sigErr.Body)
			return
		}
		respondError(w, http.StatusBadGateway, "signaling_failed", err.Error())
		return
	}

	if s.metrics != nil {
		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "unknown"
		}
		s.metrics.SessionsStarted.WithLabelValues(mode).Inc()
	}

	w.Header().Set("Content-Type", "application/sdp")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(answer))
}
