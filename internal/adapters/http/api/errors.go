package api

import (
	"errors"
	"net/http"

	"github.com/okian/arthursden/internal/adapters/repository"
	service "github.com/okian/arthursden/internal/app"
	"github.com/okian/arthursden/internal/domain/sanitize"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("authentication required")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrRender       = errors.New("render failed")
)

// Error records the operation that failed, the kind of failure and its
// cause. Kind or Err may be nil.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns an error of kind raised by op and caused by err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// badRequest builds a 400 whose message is shown to the client as is.
func badRequest(op, message string) error {
	return WrapKind(op, ErrBadRequest, errors.New(message))
}

// failure is what a client gets to see of an error.
type failure struct {
	status  int
	code    string
	message string
}

// classify maps an error to its response. Anything unrecognised is a 500
// with a generic message.
func classify(err error) failure {
	var (
		ve     *sanitize.ValidationError
		apiErr *Error
	)
	switch {
	case errors.As(err, &ve):
		return failure{http.StatusBadRequest, "validation", ve.Message}
	case errors.Is(err, service.ErrInvalidRole):
		return failure{http.StatusBadRequest, "validation", "Role must be admin or user"}
	case errors.Is(err, ErrBadRequest):
		msg := "Invalid request"
		if errors.As(err, &apiErr) && apiErr.Err != nil {
			msg = apiErr.Err.Error()
		}
		return failure{http.StatusBadRequest, "bad_request", msg}
	case errors.Is(err, ErrUnauthorized):
		return failure{http.StatusUnauthorized, "unauthorized", "Authentication required"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return failure{http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"}
	case errors.Is(err, service.ErrForbidden):
		return failure{http.StatusForbidden, "forbidden", "Admin access required"}
	case errors.Is(err, repository.ErrProtectedAccount):
		return failure{http.StatusForbidden, "protected_account", "The admin account cannot be deleted"}
	case errors.Is(err, repository.ErrNotFound):
		return failure{http.StatusNotFound, "not_found", "User not found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return failure{http.StatusConflict, "conflict", "User already exists"}
	case errors.Is(err, ErrRateLimited):
		return failure{http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded"}
	default:
		return failure{http.StatusInternalServerError, "internal", "Internal server error"}
	}
}
