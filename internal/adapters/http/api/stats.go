// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"maps"
	"net/http"

	"github.com/okian/arthursden/internal/domain/model"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// handleStats handles GET /api/stats requests for admins.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, _ model.Account) {
	stats := make(map[string]any)
	if s.stats != nil {
		maps.Copy(stats, s.stats.GetStats())
	}
	if s.limiter != nil {
		stats["rateLimitKeys"] = s.limiter.Len()
	}
	writeJSON(w, http.StatusOK, stats)
}
