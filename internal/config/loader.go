package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "ARTHURSDEN_"

// legacyEnv maps the unprefixed variable names older deployments set to
// their config keys. Prefixed variables win over these.
var legacyEnv = map[string]string{
	"ADMIN_USERNAME": "admin_username",
	"ADMIN_PASSWORD": "admin_password",
	"SECRET_KEY":     "session_secret",
	"ETSY_API_KEY":   "etsy_api_key",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ARTHURSDEN_CONFIG is set
//  3. legacy unprefixed env (ADMIN_USERNAME, ADMIN_PASSWORD, SECRET_KEY, ETSY_API_KEY)
//  4. env (prefix ARTHURSDEN_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: legacy env: %w", ErrLoadConfig, err)
	}

	// ARTHURSDEN_ETSY_API_KEY -> etsy_api_key (flat keys, underscores kept
	// to match the koanf tags on Config). List values are comma separated.
	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		switch key {
		case "config":
			return "", nil
		case "default_search_terms", "metrics_latency_buckets":
			return key, strings.Split(value, ",")
		case "metrics_labels":
			return key, parseLabels(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// mapstructure decodes into an existing slice element by element, so a
	// shorter override would keep the tail of the defaults.
	if k.Exists("default_search_terms") {
		cfg.DefaultSearchTerms = nil
	}
	if k.Exists("metrics_latency_buckets") {
		cfg.MetricsLatencyBuckets = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.DefaultSearchTerms = compact(cfg.DefaultSearchTerms)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// compact trims entries and drops empty ones, which comma-separated env
// values tend to produce.
func compact(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseLabels reads "k=v,k2=v2". Pairs without a key are dropped.
func parseLabels(value string) map[string]any {
	out := make(map[string]any)
	for _, pair := range strings.Split(value, ",") {
		k, v, _ := strings.Cut(pair, "=")
		if k = strings.TrimSpace(k); k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
