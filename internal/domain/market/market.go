// Package market turns search terms into a MarketView: it fetches listings
// per term, estimates each one, applies the watchlist, falls back to demo
// data when nothing is left and summarizes the result.
package market

import (
	"context"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/okian/arthursden/internal/domain/estimate"
	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
)

// Builder defaults.
const (
	defaultListingsPerTerm = 5
	defaultConcurrency     = 4
)

// DefaultSearchTerms are used when neither the caller nor the config
// supplies any.
var DefaultSearchTerms = []string{
	"personalized nursery decor",
	"baby name sign",
	"milestone board",
	"growth chart",
	"kids wall art",
}

// Fetcher returns listings for one keyword, or nil when there is no data.
// Implementations never return errors: every failure means "no data".
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, limit int) *model.Listings
}

// Builder assembles market views. It is safe for concurrent use.
type Builder struct {
	fetcher      Fetcher
	defaultTerms []string
	perTerm      int
	concurrency  int
	logger       logger.Logger
}

// NewBuilder constructs a Builder around fetcher.
func NewBuilder(fetcher Fetcher, opts ...Option) *Builder {
	b := &Builder{
		fetcher:      fetcher,
		defaultTerms: DefaultSearchTerms,
		perTerm:      defaultListingsPerTerm,
		concurrency:  defaultConcurrency,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DefaultTerms returns a copy of the terms used for accounts without their own.
func (b *Builder) DefaultTerms() []string {
	return append([]string(nil), b.defaultTerms...)
}

// BuildMarketView fetches and summarizes the given terms. An empty terms
// list means the default terms. It never fails: when no product survives,
// the demo products are used instead.
func (b *Builder) BuildMarketView(ctx context.Context, terms, watchlist []string) model.MarketView {
	start := time.Now()
	defer func() {
		metrics.RecordMarketViewLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(terms) == 0 {
		terms = b.defaultTerms
	}

	perTerm := iter.Mapper[string, []model.Product]{MaxGoroutines: b.concurrency}.Map(terms, func(term *string) []model.Product {
		return b.termProducts(ctx, *term)
	})

	products := FilterWatchlist(merge(perTerm), watchlist)
	products, source := Fallback(products)
	if source == model.SourceDemo {
		metrics.RecordDemoFallback()
		b.logger.Info(ctx, "no live products, serving demo data",
			logger.Int("terms", len(terms)),
			logger.Int("watchlist", len(watchlist)),
		)
	}

	return model.MarketView{
		Products: products,
		Insights: Summarize(products, source),
	}
}

// termProducts fetches and estimates the listings of one term. Listings
// that cannot be estimated are skipped.
func (b *Builder) termProducts(ctx context.Context, term string) []model.Product {
	listings := b.fetcher.Fetch(ctx, term, b.perTerm)
	if listings == nil {
		return nil
	}

	results := listings.Results
	if len(results) > b.perTerm {
		results = results[:b.perTerm]
	}

	out := make([]model.Product, 0, len(results))
	for _, raw := range results {
		p, err := estimate.Estimate(raw, term)
		if err != nil {
			metrics.RecordListingSkipped()
			b.logger.Debug(ctx, "skipping listing",
				logger.String("term", term),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordListingEstimated()
		out = append(out, p)
	}
	return out
}

// merge flattens per-term results in term order. A listing already
// produced by an earlier term is not repeated.
func merge(perTerm [][]model.Product) []model.Product {
	seen := make(map[int64]struct{})
	var out []model.Product
	for _, products := range perTerm {
		for _, p := range products {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// FilterWatchlist keeps only products whose shop contains any watchlist
// entry, ignoring case, and marks them as matches. An empty watchlist
// keeps everything unmarked.
func FilterWatchlist(products []model.Product, watchlist []string) []model.Product {
	needles := make([]string, 0, len(watchlist))
	for _, w := range watchlist {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			needles = append(needles, w)
		}
	}
	if len(needles) == 0 {
		return products
	}

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		shop := strings.ToLower(p.Shop)
		for _, n := range needles {
			if strings.Contains(shop, n) {
				p.WatchlistMatch = true
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Fallback substitutes the demo products when products is empty and
// reports which data source the result comes from.
func Fallback(products []model.Product) ([]model.Product, string) {
	if len(products) == 0 {
		return DemoProducts(), model.SourceDemo
	}
	return products, model.SourceLive
}
