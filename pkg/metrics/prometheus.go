// Package metrics provides Prometheus metrics for the ArthursDen dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Fetch outcomes recorded by RecordFetch.
const (
	FetchSuccess      = "success"
	FetchHTTPError    = "http_error"
	FetchTimeout      = "timeout"
	FetchNetworkError = "network_error"
	FetchDecodeError  = "decode_error"
	FetchDisabled     = "disabled"
	FetchThrottled    = "throttled"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Marketplace pipeline
	fetchRequests     *prometheus.CounterVec
	fetchLatency      prometheus.Histogram
	listingsEstimated prometheus.Counter
	listingsSkipped   prometheus.Counter
	demoFallbacks     prometheus.Counter
	marketViewLatency prometheus.Histogram

	// Accounts and access
	loginAttempts     *prometheus.CounterVec
	accountsTotal     prometheus.Gauge
	rateLimitRejected prometheus.Counter
	rateLimitKeys     prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager and its registry with ones built from
// opts. Call it once at startup, before any handler reads GetRegistry.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	manager := NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
	globalManager = manager
}

// RefreshInterval returns how often gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arthursden",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.fetchRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("fetch_requests_total"),
			Help:        "Marketplace search calls by outcome",
			ConstLabels: labels,
		},
		[]string{"outcome"},
	)

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_latency_milliseconds"),
		Help:        "Marketplace search latency in milliseconds",
		Buckets:     []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
		ConstLabels: labels,
	})

	m.listingsEstimated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("listings_estimated_total"),
		Help:        "Listings turned into products",
		ConstLabels: labels,
	})

	m.listingsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("listings_skipped_total"),
		Help:        "Listings skipped because a field could not be read",
		ConstLabels: labels,
	})

	m.demoFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("demo_fallbacks_total"),
		Help:        "Market views served from demonstration data",
		ConstLabels: labels,
	})

	m.marketViewLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("market_view_latency_milliseconds"),
		Help:        "Time to build a market view in milliseconds",
		Buckets:     []float64{1, 5, 25, 100, 500, 1000, 5000, 15000, 30000},
		ConstLabels: labels,
	})

	m.loginAttempts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("login_attempts_total"),
			Help:        "Login attempts by result",
			ConstLabels: labels,
		},
		[]string{"result"},
	)

	m.accountsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("accounts_total"),
		Help:        "Accounts held in memory",
		ConstLabels: labels,
	})

	m.rateLimitRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rate_limited_total"),
		Help:        "Requests rejected by the rate limiter",
		ConstLabels: labels,
	})

	m.rateLimitKeys = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rate_limit_tracked_clients"),
		Help:        "Client addresses currently tracked by the rate limiter",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Enabled reports whether the global manager records anything.
func Enabled() bool {
	return globalManager.enabled
}

// Marketplace Metrics Functions.

// RecordFetch records one marketplace search call and its latency.
func RecordFetch(outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.fetchRequests.WithLabelValues(outcome).Inc()
	if outcome != FetchDisabled {
		globalManager.fetchLatency.Observe(latencyMs)
	}
}

// RecordListingEstimated increments the estimated listings counter.
func RecordListingEstimated() {
	if globalManager.enabled {
		globalManager.listingsEstimated.Inc()
	}
}

// RecordListingSkipped increments the skipped listings counter.
func RecordListingSkipped() {
	if globalManager.enabled {
		globalManager.listingsSkipped.Inc()
	}
}

// RecordDemoFallback increments the demo fallback counter.
func RecordDemoFallback() {
	if globalManager.enabled {
		globalManager.demoFallbacks.Inc()
	}
}

// RecordMarketViewLatency records how long a market view took to build.
func RecordMarketViewLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.marketViewLatency.Observe(latencyMs)
	}
}

// Access Metrics Functions.

// RecordLoginAttempt records a login attempt with result "success" or "failure".
func RecordLoginAttempt(result string) {
	if globalManager.enabled {
		globalManager.loginAttempts.WithLabelValues(result).Inc()
	}
}

// UpdateAccountsTotal sets the number of accounts held in memory.
func UpdateAccountsTotal(count int) {
	if globalManager.enabled {
		globalManager.accountsTotal.Set(float64(count))
	}
}

// RecordRateLimited increments the rate limited requests counter.
func RecordRateLimited() {
	if globalManager.enabled {
		globalManager.rateLimitRejected.Inc()
	}
}

// UpdateRateLimitKeys sets the number of tracked client addresses.
func UpdateRateLimitKeys(count int) {
	if globalManager.enabled {
		globalManager.rateLimitKeys.Set(float64(count))
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
