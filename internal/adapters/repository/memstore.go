package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/pkg/metrics"
)

// InMemoryStore is an AccountStore backed by a map guarded by one mutex.
// Nothing is persisted; accounts are lost on restart.
type InMemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]model.Account
	protected map[string]struct{}
	now       func() time.Time
}

var _ AccountStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		accounts:  make(map[string]model.Account),
		protected: make(map[string]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the account for username.
func (s *InMemoryStore) Get(_ context.Context, username string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return a.Clone(), nil
}

// Create stores a copy of a. CreatedAt is set when zero.
func (s *InMemoryStore) Create(_ context.Context, a model.Account) error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.Username]; exists {
		return ErrAlreadyExists
	}
	a = a.Clone()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	if a.SearchTerms == nil {
		a.SearchTerms = []string{}
	}
	if a.WatchlistShops == nil {
		a.WatchlistShops = []string{}
	}
	s.accounts[a.Username] = a
	metrics.UpdateAccountsTotal(len(s.accounts))
	return nil
}

// Delete removes username unless it is protected.
func (s *InMemoryStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.protected[username]; ok {
		return ErrProtectedAccount
	}
	if _, ok := s.accounts[username]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, username)
	metrics.UpdateAccountsTotal(len(s.accounts))
	return nil
}

// UpdateSearchTerms replaces the search terms of username.
func (s *InMemoryStore) UpdateSearchTerms(_ context.Context, username string, terms []string) (model.Account, error) {
	return s.update(username, func(a *model.Account) {
		a.SearchTerms = append([]string{}, terms...)
	})
}

// UpdateWatchlist replaces the watchlist shops of username.
func (s *InMemoryStore) UpdateWatchlist(_ context.Context, username string, shops []string) (model.Account, error) {
	return s.update(username, func(a *model.Account) {
		a.WatchlistShops = append([]string{}, shops...)
	})
}

func (s *InMemoryStore) update(username string, fn func(*model.Account)) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	fn(&a)
	s.accounts[username] = a
	return a.Clone(), nil
}

// List returns copies of all accounts ordered by username.
func (s *InMemoryStore) List(_ context.Context) []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b model.Account) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out
}

// Count returns the number of accounts.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
