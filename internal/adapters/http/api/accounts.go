package api

import (
	"net/http"
	"strings"

	service "github.com/okian/arthursden/internal/app"
	"github.com/okian/arthursden/internal/domain/model"
)

type meResponse struct {
	model.Account
	DefaultSearchTerms []string `json:"default_search_terms"`
}

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type createUserResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    model.Account `json:"user"`
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

type searchTermsRequest struct {
	SearchTerms []any `json:"search_terms"`
}

type searchTermsResponse struct {
	Success     bool     `json:"success"`
	SearchTerms []string `json:"search_terms"`
}

type watchlistRequest struct {
	WatchlistShops []any `json:"watchlist_shops"`
}

type watchlistResponse struct {
	Success        bool     `json:"success"`
	WatchlistShops []string `json:"watchlist_shops"`
}

// handleMe handles GET /api/me.
func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, account model.Account) {
	writeJSON(w, http.StatusOK, meResponse{
		Account:            account,
		DefaultSearchTerms: s.deps.DefaultSearchTerms(),
	})
}

// handleCreateUser handles POST /api/create-user for admins.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.create_user"
	var req createUserRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		s.fail(w, r, badRequest(op, "Username and password are required"))
		return
	}

	created, err := s.deps.CreateUser(r.Context(), account.Username, service.NewUser{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, createUserResponse{
		Success: true,
		Message: "User created",
		User:    created,
	})
}

// handleDeleteUser handles POST /api/delete-user for admins.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.delete_user"
	var req deleteUserRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		s.fail(w, r, badRequest(op, "Username is required"))
		return
	}
	if err := s.deps.DeleteUser(r.Context(), account.Username, req.Username); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "User deleted"})
}

// handleUpdateSearchTerms handles POST /api/update-search-terms. An empty
// list falls back to the default terms.
func (s *Server) handleUpdateSearchTerms(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.update_search_terms"
	var req searchTermsRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.SearchTerms == nil {
		s.fail(w, r, badRequest(op, "search_terms must be a list"))
		return
	}
	updated, err := s.deps.UpdateSearchTerms(r.Context(), account.Username, req.SearchTerms)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	terms := updated.SearchTerms
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, searchTermsResponse{Success: true, SearchTerms: terms})
}

// handleUpdateWatchlist handles POST /api/update-watchlist. An empty list
// clears the watchlist.
func (s *Server) handleUpdateWatchlist(w http.ResponseWriter, r *http.Request, account model.Account) {
	const op = "api.update_watchlist"
	var req watchlistRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.WatchlistShops == nil {
		s.fail(w, r, badRequest(op, "watchlist_shops must be a list"))
		return
	}
	updated, err := s.deps.UpdateWatchlist(r.Context(), account.Username, req.WatchlistShops)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	shops := updated.WatchlistShops
	if shops == nil {
		shops = []string{}
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Success: true, WatchlistShops: shops})
}
