// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/arthursden/internal/domain/model"
)

type dashboardPage struct {
	App         string
	Username    string
	DisplayName string
	IsAdmin     bool
}

// handleDashboard handles GET / for a logged-in account. Market data is
// loaded by the page from /api/market-data.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, account model.Account) {
	display := account.DisplayName
	if display == "" {
		display = account.Username
	}
	s.render(w, r, "dashboard.html", dashboardPage{
		App:         AppName,
		Username:    account.Username,
		DisplayName: display,
		IsAdmin:     account.IsAdmin(),
	})
}
