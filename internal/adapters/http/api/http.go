// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/okian/arthursden/internal/adapters/http/ratelimit"
	"github.com/okian/arthursden/internal/adapters/http/session"
	service "github.com/okian/arthursden/internal/app"
	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps JSON and form request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Authenticate(ctx context.Context, username, password string) (model.Account, error)
	Account(ctx context.Context, username string) (model.Account, error)

	// Admin operations. actor is the username of the caller.
	CreateUser(ctx context.Context, actor string, in service.NewUser) (model.Account, error)
	DeleteUser(ctx context.Context, actor, username string) error

	UpdateSearchTerms(ctx context.Context, username string, terms []any) (model.Account, error)
	UpdateWatchlist(ctx context.Context, username string, shops []any) (model.Account, error)

	MarketView(ctx context.Context, username string) (model.MarketView, error)
	DefaultSearchTerms() []string
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the dashboard and its JSON API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	sessions *session.Manager
	limiter  *ratelimit.Limiter
	pages    *template.Template
	logger   logger.Logger
	now      func() time.Time
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for request and failure logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimiter enables per-client rate limiting in Middleware.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithClock overrides the time source used for generated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsProvider, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		stats:    stats,
		sessions: sessions,
		pages:    parsePages(),
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Public.
	mux.HandleFunc("GET /health", MetricsMiddleware(s.handleHealth, "health"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /login", MetricsMiddleware(s.handleLoginPage, "login_page"))
	mux.HandleFunc("POST /login", MetricsMiddleware(s.handleLogin, "login"))
	mux.HandleFunc("GET /logout", MetricsMiddleware(s.handleLogout, "logout"))

	// Pages.
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.page(s.handleDashboard), "dashboard"))

	// Session API.
	mux.HandleFunc("GET /api/market-data", MetricsMiddleware(s.authed(s.handleMarketData), "market_data"))
	mux.HandleFunc("GET /api/export", MetricsMiddleware(s.authed(s.handleExport), "export"))
	mux.HandleFunc("GET /api/me", MetricsMiddleware(s.authed(s.handleMe), "me"))
	mux.HandleFunc("POST /api/update-search-terms", MetricsMiddleware(s.authed(s.handleUpdateSearchTerms), "update_search_terms"))
	mux.HandleFunc("POST /api/update-watchlist", MetricsMiddleware(s.authed(s.handleUpdateWatchlist), "update_watchlist"))

	// Admin API.
	mux.HandleFunc("POST /api/create-user", MetricsMiddleware(s.authed(adminOnly(s.handleCreateUser)), "create_user"))
	mux.HandleFunc("POST /api/delete-user", MetricsMiddleware(s.authed(adminOnly(s.handleDeleteUser)), "delete_user"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.authed(adminOnly(s.handleStats)), "stats"))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// fail writes the client-facing form of err. Server-side failures are
// logged with the request id and never shown to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("request_id", RequestID(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, f.status, f.code, f.message)
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(op, "Request body must be valid JSON")
	}
	return nil
}
