package service

import (
	"github.com/okian/arthursden/internal/adapters/repository"
	"github.com/okian/arthursden/internal/domain/market"
	"github.com/okian/arthursden/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAccountStore replaces the default in-memory account store. The store
// is expected to protect the admin account itself.
func WithAccountStore(store repository.AccountStore) Option {
	return func(s *Service) {
		if store != nil {
			s.accounts = store
		}
	}
}

// WithMarketBuilder sets the builder used for market views.
func WithMarketBuilder(b *market.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithAdmin sets the credentials of the seeded admin account.
func WithAdmin(username, password string) Option {
	return func(s *Service) {
		if username != "" {
			s.adminUsername = username
		}
		if password != "" {
			s.adminPassword = password
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}
