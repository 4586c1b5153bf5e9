// Package etsy is the marketplace listing fetcher. It talks to the Etsy
// Open API v3 and reports every failure as "no data".
package etsy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/internal/domain/sanitize"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
)

// Client defaults and request bounds.
const (
	DefaultBaseURL = "https://openapi.etsy.com"
	DefaultTimeout = 12 * time.Second
	DefaultRPS     = 5

	listingsPath   = "/v3/application/listings/active"
	maxKeywordLen  = 200
	minLimit       = 1
	maxLimit       = 100
	maxBodyBytes   = 8 << 20
	userAgent      = "arthursden/1.0"
	headerAPIKey   = "x-api-key"
	includedFields = "Shop,Images,User"
	component      = "etsy"
)

// Client fetches active listings by keyword.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// New constructs a Client. An empty apiKey yields a disabled client whose
// Fetch always returns nil without touching the network.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRPS), 1),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Fetch returns up to limit active listings for keyword, or nil when the
// client is disabled or the call fails for any reason. It never retries.
func (c *Client) Fetch(ctx context.Context, keyword string, limit int) *model.Listings {
	if !c.Enabled() {
		metrics.RecordFetch(metrics.FetchDisabled, 0)
		return nil
	}

	keyword = sanitize.Keyword(keyword, maxKeywordLen)
	if keyword == "" {
		return nil
	}
	limit = min(max(limit, minLimit), maxLimit)

	start := time.Now()
	listings, outcome := c.fetch(ctx, keyword, limit)
	latency := time.Since(start)
	metrics.RecordFetch(outcome, float64(latency.Milliseconds()))

	if outcome != metrics.FetchSuccess {
		metrics.RecordErrorByComponent(component, outcome)
		metrics.RecordErrorLatency(component, outcome, float64(latency.Milliseconds()))
		c.logger.Warn(ctx, "listing fetch failed",
			logger.String("keyword", keyword),
			logger.String("outcome", outcome),
			logger.Duration("latency", latency),
		)
		return nil
	}
	c.logger.Debug(ctx, "listings fetched",
		logger.String("keyword", keyword),
		logger.Int("count", len(listings.Results)),
		logger.Duration("latency", latency),
	)
	return listings
}

func (c *Client) fetch(ctx context.Context, keyword string, limit int) (*model.Listings, string) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, metrics.FetchThrottled
	}

	q := url.Values{}
	q.Set("keywords", keyword)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort_on", "score")
	q.Set("sort_order", "desc")
	q.Set("includes", includedFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+listingsPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, metrics.FetchNetworkError
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// Secret; never logged.
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, metrics.FetchTimeout
		}
		return nil, metrics.FetchNetworkError
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, metrics.FetchHTTPError
	}

	var listings model.Listings
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&listings); err != nil {
		if isTimeout(err) {
			return nil, metrics.FetchTimeout
		}
		return nil, metrics.FetchDecodeError
	}
	return &listings, metrics.FetchSuccess
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
