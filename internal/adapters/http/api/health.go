// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// AppName is reported by the health endpoint and shown on pages.
const AppName = "ArthursDen"

type healthResponse struct {
	Status        string `json:"status"`
	App           string `json:"app"`
	Authenticated bool   `json:"authenticated"`
}

// handleHealth handles GET /health requests. It is public and reports
// whether the caller carries a valid session.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.sessions.Read(r)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		App:           AppName,
		Authenticated: err == nil,
	})
}
