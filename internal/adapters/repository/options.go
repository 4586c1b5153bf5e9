package repository

import "time"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithProtected marks usernames that can never be deleted.
func WithProtected(usernames ...string) Option {
	return func(s *InMemoryStore) {
		for _, u := range usernames {
			if u != "" {
				s.protected[u] = struct{}{}
			}
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
