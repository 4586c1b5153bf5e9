package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/arthursden/internal/adapters/export"
	"github.com/okian/arthursden/internal/domain/model"
)

type marketDataResponse struct {
	model.MarketView
	GeneratedAt string `json:"generated_at"`
}

// handleMarketData handles GET /api/market-data.
func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.market_data"
	view, err := s.deps.MarketView(r.Context(), account.Username)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, marketDataResponse{
		MarketView:  view,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	})
}

// handleExport handles GET /api/export. The CSV is built in memory so a
// failure can still be reported as JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.export"
	view, err := s.deps.MarketView(r.Context(), account.Username)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, view.Products); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(account.Username)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
