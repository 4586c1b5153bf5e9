// Package repository defines the account store interface and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/arthursden/internal/domain/model"
)

// AccountStore provides read/write access to dashboard accounts keyed by
// username. Returned accounts are copies; mutating them never changes the
// store.
type AccountStore interface {
	// Get returns the account for username or ErrNotFound.
	Get(ctx context.Context, username string) (model.Account, error)

	// Create adds a new account. Returns ErrAlreadyExists if the username
	// is taken.
	Create(ctx context.Context, a model.Account) error

	// Delete removes an account. Returns ErrNotFound for unknown users and
	// ErrProtectedAccount for the seeded admin.
	Delete(ctx context.Context, username string) error

	// UpdateSearchTerms replaces the account's search terms.
	UpdateSearchTerms(ctx context.Context, username string, terms []string) (model.Account, error)

	// UpdateWatchlist replaces the account's watchlist shops.
	UpdateWatchlist(ctx context.Context, username string, shops []string) (model.Account, error)

	// List returns all accounts ordered by username.
	List(ctx context.Context) []model.Account

	// Count returns the number of accounts.
	Count(ctx context.Context) int
}
