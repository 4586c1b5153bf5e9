// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/arthursden/internal/adapters/etsy"
	"github.com/okian/arthursden/internal/adapters/repository"
	"github.com/okian/arthursden/internal/domain/market"
	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/internal/domain/sanitize"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
)

// Defaults for the seeded admin account.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"

	maxDisplayNameLen = 100
)

// Login attempt outcomes recorded in metrics.
const (
	loginSuccess = "success"
	loginFailure = "failure"
)

// NewUser carries the fields accepted when an admin creates an account.
type NewUser struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
	Role        string
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.RWMutex

	accounts repository.AccountStore
	builder  *market.Builder

	adminUsername string
	adminPassword string
	bcryptCost    int

	// dummyHash keeps unknown-user logins as slow as wrong-password ones.
	dummyHash []byte

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration. Without a
// market builder the service serves demo data only.
func New(opts ...Option) *Service {
	s := &Service{
		adminUsername: DefaultAdminUsername,
		adminPassword: DefaultAdminPassword,
		bcryptCost:    bcrypt.DefaultCost,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.accounts == nil {
		s.accounts = repository.NewInMemoryStore(repository.WithProtected(s.adminUsername))
	}
	if s.builder == nil {
		s.builder = market.NewBuilder(etsy.New(""))
	}
	return s
}

// Start seeds the admin account. Calling it again is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("arthursden-dummy"), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash dummy password: %w", err)
	}
	s.dummyHash = dummy

	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	err = s.accounts.Create(ctx, model.Account{
		Username:     s.adminUsername,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		DisplayName:  "Administrator",
	})
	if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return fmt.Errorf("seed admin: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.String("admin", s.adminUsername),
		logger.Int("accounts", s.accounts.Count(ctx)),
	)
	return nil
}

// Stop marks the service stopped. Accounts live in memory and are dropped
// with the process.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	a, err := s.accounts.Get(ctx, strings.TrimSpace(username))
	hash := a.PasswordHash
	if err != nil {
		hash = s.dummyHash
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || cmpErr != nil {
		metrics.RecordLoginAttempt(loginFailure)
		s.logger.Warn(ctx, "login failed", logger.String("username", sanitize.Truncate(username, 50, "...")))
		return model.Account{}, ErrInvalidCredentials
	}

	metrics.RecordLoginAttempt(loginSuccess)
	s.logger.Info(ctx, "login succeeded", logger.String("username", a.Username))
	return a, nil
}

// Account returns the account for username.
func (s *Service) Account(ctx context.Context, username string) (model.Account, error) {
	return s.accounts.Get(ctx, username)
}

// CreateUser adds an account on behalf of actor, who must be an admin.
func (s *Service) CreateUser(ctx context.Context, actor string, in NewUser) (model.Account, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return model.Account{}, err
	}

	username, err := sanitize.Username(in.Username)
	if err != nil {
		return model.Account{}, err
	}
	if err := sanitize.Password(in.Password); err != nil {
		return model.Account{}, err
	}
	email, err := sanitize.Email(in.Email)
	if err != nil {
		return model.Account{}, err
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case "":
		role = model.RoleUser
	case model.RoleUser, model.RoleAdmin:
	default:
		return model.Account{}, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}

	display := sanitize.Text(in.DisplayName, maxDisplayNameLen)
	if display == "" {
		display = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := model.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		DisplayName:  display,
		Email:        email,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return model.Account{}, err
	}

	s.logger.Info(ctx, "account created",
		logger.String("username", username),
		logger.String("role", role),
		logger.String("by", actor),
	)
	return s.accounts.Get(ctx, username)
}

// DeleteUser removes username on behalf of actor. The seeded admin can
// never be deleted, whoever asks.
func (s *Service) DeleteUser(ctx context.Context, actor, username string) error {
	username = strings.TrimSpace(username)
	if username == s.adminUsername {
		return repository.ErrProtectedAccount
	}
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info(ctx, "account deleted",
		logger.String("username", username),
		logger.String("by", actor),
	)
	return nil
}

// UpdateSearchTerms cleans and stores the search terms of username.
func (s *Service) UpdateSearchTerms(ctx context.Context, username string, terms []any) (model.Account, error) {
	clean, err := sanitize.SearchTerms(terms)
	if err != nil {
		return model.Account{}, err
	}
	return s.accounts.UpdateSearchTerms(ctx, username, clean)
}

// UpdateWatchlist cleans and stores the watchlist shops of username.
func (s *Service) UpdateWatchlist(ctx context.Context, username string, shops []any) (model.Account, error) {
	return s.accounts.UpdateWatchlist(ctx, username, sanitize.ShopNames(shops))
}

// MarketView builds the market view for username using their search terms
// and watchlist.
func (s *Service) MarketView(ctx context.Context, username string) (model.MarketView, error) {
	a, err := s.accounts.Get(ctx, username)
	if err != nil {
		return model.MarketView{}, err
	}
	return s.builder.BuildMarketView(ctx, a.SearchTerms, a.WatchlistShops), nil
}

// DefaultSearchTerms returns the terms used for accounts without their own.
func (s *Service) DefaultSearchTerms() []string {
	return s.builder.DefaultTerms()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.accounts.Count(context.Background())
	metrics.UpdateAccountsTotal(count)
	return map[string]any{
		"started":  s.started,
		"accounts": count,
		"admin":    s.adminUsername,
	}
}

func (s *Service) requireAdmin(ctx context.Context, actor string) error {
	a, err := s.accounts.Get(ctx, actor)
	if err != nil || !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
