// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/arthursden/internal/adapters/repository"
	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// authedHandler serves a request whose session resolved to account.
type authedHandler func(w http.ResponseWriter, r *http.Request, account model.Account)

// Middleware wraps the whole mux with per-client rate limiting, request
// logging and panic recovery, outermost first. Throttled requests are
// rejected before they get a request id and logged on their own line.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return s.rateLimit(s.requestLog(s.recoverer(next)))
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		fields := []logger.Field{
			logger.String("request_id", id),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", wrapped.statusCode),
			logger.Duration("duration", time.Since(start)),
		}
		switch r.URL.Path {
		case "/health", "/metrics":
			s.logger.Debug(r.Context(), "http request", fields...)
		default:
			s.logger.Info(r.Context(), "http request", fields...)
		}
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error(r.Context(), "panic serving request",
				logger.String("request_id", RequestID(r.Context())),
				logger.String("path", r.URL.Path),
				logger.Any("panic", rec),
			)
			writeError(w, http.StatusInternalServerError, "internal", "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "api.rate_limit"
		if s.limiter == nil || r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		if key := clientKey(r); !s.limiter.Allow(key) {
			metrics.RecordRateLimited()
			s.logger.Warn(r.Context(), "rate limited",
				logger.String("client", key),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
			)
			s.fail(w, r, NewKind(op, ErrRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote address. Forwarding headers
// are client-controlled and ignored.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authed resolves the session for API routes and answers 401 without one.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.authed"
		account, err := s.resolve(w, r)
		if err != nil {
			s.fail(w, r, WrapKind(op, ErrUnauthorized, err))
			return
		}
		next(w, r, account)
	}
}

// page resolves the session for HTML routes and redirects to the login
// page without one.
func (s *Server) page(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.resolve(w, r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r, account)
	}
}

// resolve reads the session cookie and loads its account. A session for an
// account that no longer exists is cleared.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (model.Account, error) {
	sess, err := s.sessions.Read(r)
	if err != nil {
		return model.Account{}, err
	}
	account, err := s.deps.Account(r.Context(), sess.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.sessions.Clear(w)
		}
		return model.Account{}, err
	}
	return account, nil
}

// adminOnly rejects callers whose account is not an admin. The role is
// taken from the stored account, not the cookie.
func adminOnly(next authedHandler) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, account model.Account) {
		if !account.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next(w, r, account)
	}
}

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			errorType := getErrorType(wrapped.statusCode)
			severity := getErrorSeverity(wrapped.statusCode)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
			metrics.RecordErrorByType(errorType, severity)
			metrics.RecordErrorLatency("http", errorType, durationMs)
		}
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return "auth"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
