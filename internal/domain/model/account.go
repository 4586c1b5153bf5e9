package model

import (
	"slices"
	"time"
)

// Account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is a dashboard login. It lives in process memory only.
type Account struct {
	Username       string    `json:"username"`
	PasswordHash   []byte    `json:"-"`
	Role           string    `json:"role"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email,omitempty"`
	SearchTerms    []string  `json:"search_terms"`
	WatchlistShops []string  `json:"watchlist_shops"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsAdmin reports whether the account may manage other accounts.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Clone returns a copy that shares no slices with a.
func (a Account) Clone() Account {
	a.PasswordHash = slices.Clone(a.PasswordHash)
	a.SearchTerms = slices.Clone(a.SearchTerms)
	a.WatchlistShops = slices.Clone(a.WatchlistShops)
	return a
}
