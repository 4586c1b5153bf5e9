// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers file and environment values on top of New().
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/arthursden/internal/domain/market"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, also writes logs to a rotated file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// AdminUsername and AdminPassword seed the protected admin account.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// SessionSecret signs session cookies. A random secret is generated
	// at start when empty, which logs everyone out on restart.
	SessionSecret string `koanf:"session_secret"`

	// SessionTTLMinutes bounds how long a login stays valid.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// CookieSecure marks the session cookie Secure (HTTPS only).
	CookieSecure bool `koanf:"cookie_secure"`

	// EtsyAPIKey enables live marketplace data. Empty means demo data only.
	EtsyAPIKey string `koanf:"etsy_api_key"`

	// EtsyBaseURL is the marketplace API root.
	EtsyBaseURL string `koanf:"etsy_base_url"`

	// EtsyTimeoutMS bounds a single marketplace call.
	EtsyTimeoutMS int `koanf:"etsy_timeout_ms"`

	// EtsyRequestsPerSecond paces outbound marketplace calls.
	EtsyRequestsPerSecond float64 `koanf:"etsy_requests_per_second"`

	// ListingsPerTerm is how many listings are fetched per search term.
	ListingsPerTerm int `koanf:"listings_per_term"`

	// FetchConcurrency caps concurrent per-term fetches for one market view.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// DefaultSearchTerms is used for accounts without their own terms.
	DefaultSearchTerms []string `koanf:"default_search_terms"`

	// RateLimitRequests and RateLimitWindowSeconds define the per-client
	// sliding window.
	RateLimitRequests      int `koanf:"rate_limit_requests"`
	RateLimitWindowSeconds int `koanf:"rate_limit_window_seconds"`

	// MetricsEnabled turns metric recording off when false.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace, MetricsSubsystem and MetricsPrefix compose metric
	// names: namespace_subsystem_prefix_name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels added to every series. As an env
	// var: "region=eu,tier=web".
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBuckets overrides the HTTP latency histogram buckets
	// (milliseconds).
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsRefreshSeconds is how often gauges are refreshed.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":5000",
		AdminUsername:          "admin",
		AdminPassword:          "admin123",
		SessionTTLMinutes:      12 * 60,
		EtsyBaseURL:            "https://openapi.etsy.com",
		EtsyTimeoutMS:          12_000,
		EtsyRequestsPerSecond:  5,
		ListingsPerTerm:        5,
		FetchConcurrency:       4,
		DefaultSearchTerms:     append([]string(nil), market.DefaultSearchTerms...),
		RateLimitRequests:      60,
		RateLimitWindowSeconds: 60,
		MetricsEnabled:         true,
		MetricsNamespace:       "arthursden",
		MetricsSubsystem:       "dashboard",
		MetricsRefreshSeconds:  10,
	}
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// EtsyTimeout returns the marketplace call timeout as a duration.
func (c *Config) EtsyTimeout() time.Duration {
	return time.Duration(c.EtsyTimeoutMS) * time.Millisecond
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// MetricsRefresh returns the gauge refresh interval as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.AdminUsername) == "":
		return fmt.Errorf("%w: admin_username must not be empty", ErrInvalidConfig)
	case len(c.AdminPassword) < 6:
		return fmt.Errorf("%w: admin_password must be at least 6 characters", ErrInvalidConfig)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case c.EtsyTimeoutMS <= 0:
		return fmt.Errorf("%w: etsy_timeout_ms must be positive", ErrInvalidConfig)
	case c.ListingsPerTerm < 1 || c.ListingsPerTerm > 100:
		return fmt.Errorf("%w: listings_per_term must be within [1,100]", ErrInvalidConfig)
	case c.RateLimitRequests <= 0 || c.RateLimitWindowSeconds <= 0:
		return fmt.Errorf("%w: rate limit requests and window must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
