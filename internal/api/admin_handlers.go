package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/profilehub/internal/config"
	apperrors "github.com/vytor/profilehub/internal/errors"
)

type switchRoleRequest struct {
	Role string `json:"role"`
}

// handleSwitchRole changes the credential used by future store connections.
// Anything other than "admin" selects the guest role.
func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	var req switchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperrors.NewInvalidInputError("body", "malformed role JSON"))
		return
	}

	status := "Switched to Guest"
	if s.ProfileService.SwitchRole(r.Context(), req.Role) == config.RoleAdmin {
		status = "Switched to Admin"
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Status: status})
}
