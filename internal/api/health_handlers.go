package api

import (
	"net/http"

	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "ok"})
}

// handleReady checks that the durable store accepts connections with the
// active credential. Returns 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.ProfileService.Ready(ctx); err != nil {
		logger.FromContext(ctx).Warn("readiness check failed - store: %v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable", Code: apperrors.ErrCodeTransient})
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "ready"})
}
