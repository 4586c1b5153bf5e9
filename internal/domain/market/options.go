package market

import "github.com/okian/arthursden/pkg/logger"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithDefaultTerms sets the search terms used when a caller has none.
func WithDefaultTerms(terms []string) Option {
	return func(b *Builder) {
		if len(terms) > 0 {
			b.defaultTerms = append([]string(nil), terms...)
		}
	}
}

// WithListingsPerTerm sets how many listings are requested per term.
func WithListingsPerTerm(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.perTerm = n
		}
	}
}

// WithConcurrency caps how many terms are fetched at once.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}
