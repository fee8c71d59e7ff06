package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes serves every endpoint both at the root and under /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(corsMiddleware)

	s.mountRoutes(r)
	r.Route("/api", s.mountRoutes)
	return r
}

func (s *Server) mountRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.poolMiddleware)
		s.profileRoutes(r)
	})
}

func (s *Server) profileRoutes(r chi.Router) {
	r.Get("/profiles", s.handleListProfiles)
	r.Post("/profiles", s.handleCreateProfile)
	r.Put("/profiles", s.handleRenameProfile)
	r.Delete("/profiles", s.handleDeleteProfile)
	r.Get("/profiles/search", s.handleSearchStored)
	r.Patch("/profiles/age", s.handleUpdateAge)
	r.Get("/profiles/sorted", s.handleSortedProfiles)
	r.Get("/profiles/matches", s.handleFindMatches)
	r.Get("/groups/{interest}", s.handleGroup)
	r.Get("/interests", s.handleInterests)
	r.Post("/admin/role", s.handleSwitchRole)
}
