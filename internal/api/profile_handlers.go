package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/services"
)

type profileSummary struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
	Interest string `json:"interest"`
}

type createProfileRequest struct {
	Username string   `json:"username"`
	Age      *flexInt `json:"age"`
	Interest string   `json:"interest"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.ProfileService.ListProfiles(r.Context())

	out := make([]profileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileSummary{Username: p.Username, Age: p.Age, Interest: p.PrimaryInterest.Name})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug("malformed create body: %v", err)
		handleError(w, r, apperrors.NewInvalidInputError("body", "malformed profile JSON"))
		return
	}
	if req.Age == nil {
		handleError(w, r, apperrors.NewInvalidInputError("age", "is required"))
		return
	}

	p, err := s.ProfileService.CreateProfile(r.Context(), services.CreateProfileInput{
		Username: req.Username,
		Age:      int(*req.Age),
		Interest: req.Interest,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("created profile: %s", p.Username)
	writeJSON(w, r, http.StatusCreated, messageResponse{Message: "Profile created"})
}

func (s *Server) handleRenameProfile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.ProfileService.RenameProfile(ctx, q.Get("currentName"), q.Get("newName")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Renamed successfully"})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.ProfileService.DeleteProfile(ctx, username); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("deleted profile: %s", username)
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Deleted successfully"})
}

func (s *Server) handleSearchStored(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	p, err := s.ProfileService.SearchStored(ctx, r.URL.Query().Get("username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleUpdateAge(w http.ResponseWriter, r *http.Request) {
	age, err := queryInt(r, "age")
	if err != nil {
		handleError(w, r, err)
		return
	}
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.ProfileService.UpdateAge(ctx, r.URL.Query().Get("username"), age); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Age updated"})
}

func (s *Server) handleSortedProfiles(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = string(services.SortByUsername)
	}

	profiles, err := s.ProfileService.SortedProfiles(r.Context(), services.SortKey(by))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(profiles))
}

func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	minAge, err := queryInt(r, "minAge")
	if err != nil {
		handleError(w, r, err)
		return
	}
	maxAge, err := queryInt(r, "maxAge")
	if err != nil {
		handleError(w, r, err)
		return
	}

	matches, err := s.ProfileService.FindMatches(r.Context(), r.URL.Query().Get("username"), minAge, maxAge)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(matches))
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	interest := strings.TrimSpace(chi.URLParam(r, "interest"))
	if interest == "" {
		handleError(w, r, apperrors.NewInvalidInputError("interest", "is required"))
		return
	}
	writeJSON(w, r, http.StatusOK, s.ProfileService.GroupByInterest(r.Context(), interest))
}

func (s *Server) handleInterests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ProfileService.Interests())
}

func nonNil(ps []models.Profile) []models.Profile {
	if ps == nil {
		return []models.Profile{}
	}
	return ps
}
