package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/services"
	"github.com/vytor/profilehub/internal/worker"
)

type Server struct {
	ProfileService services.ProfileService
	Pool           *worker.Pool
	StoreTimeout   time.Duration
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response: %v", err)
	}
}

// storeContext bounds store work done on behalf of a request.
func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.StoreTimeout)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, apperrors.NewInvalidInputError(key, "is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidInputError(key, "must be an integer")
	}
	return n, nil
}

// flexInt accepts a JSON number or a string holding one.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return apperrors.NewInvalidInputError("age", "must be an integer")
	}
	*n = flexInt(v)
	return nil
}
