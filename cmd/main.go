package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/arthursden/internal/adapters/etsy"
	"github.com/okian/arthursden/internal/adapters/http/api"
	"github.com/okian/arthursden/internal/adapters/http/ratelimit"
	"github.com/okian/arthursden/internal/adapters/http/session"
	"github.com/okian/arthursden/internal/adapters/http/site"
	"github.com/okian/arthursden/internal/adapters/http/swagger"
	app "github.com/okian/arthursden/internal/app"
	"github.com/okian/arthursden/internal/config"
	"github.com/okian/arthursden/internal/domain/market"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
		return
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithFile(cfg.LogFile)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logs: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Must run before any handler captures the registry.
	metrics.Init(metricsOptions(cfg)...)
	if !metrics.Enabled() {
		loggerInstance.Info(ctx, "metrics recording disabled")
	}

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	sessions, err := newSessions(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to set up sessions", logger.Error(err))
		return
	}

	limiter := ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow())
	handler := newHandler(ctx, svc, sessions, limiter, loggerInstance)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater, which also sweeps idle rate limit keys
	go startServiceMetricsUpdater(ctx, svc, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("live_data", cfg.EtsyAPIKey != ""),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// metricsOptions maps the metrics section of cfg onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	}
}

// newService wires the Etsy client and market builder into the service.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	client := etsy.New(cfg.EtsyAPIKey,
		etsy.WithBaseURL(cfg.EtsyBaseURL),
		etsy.WithTimeout(cfg.EtsyTimeout()),
		etsy.WithRequestsPerSecond(cfg.EtsyRequestsPerSecond),
		etsy.WithLogger(log.Named("etsy")),
	)
	builder := market.NewBuilder(client,
		market.WithDefaultTerms(cfg.DefaultSearchTerms),
		market.WithListingsPerTerm(cfg.ListingsPerTerm),
		market.WithConcurrency(cfg.FetchConcurrency),
		market.WithLogger(log.Named("market")),
	)
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithMarketBuilder(builder),
		app.WithAdmin(cfg.AdminUsername, cfg.AdminPassword),
	)
}

// newSessions builds the session manager. Without a configured secret a
// random one is generated, so sessions do not survive a restart.
func newSessions(ctx context.Context, cfg *config.Config, log logger.Logger) (*session.Manager, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := session.GenerateSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Warn(ctx, "session_secret not set; generated a random one, sessions end on restart")
	}
	return session.NewManager(secret,
		session.WithTTL(cfg.SessionTTL()),
		session.WithSecure(cfg.CookieSecure),
	)
}

// newHandler registers every route and wraps the mux with the API
// middleware chain.
func newHandler(ctx context.Context, svc *app.Service, sessions *session.Manager, limiter *ratelimit.Limiter, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Register API docs under /api-docs and /openapi.yaml
	swagger.Register(ctx, mux)

	// Register dashboard assets under /assets/
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, sessions,
		api.WithLogger(log.Named("http")),
		api.WithRateLimiter(limiter),
	)
	apiServer.Register(ctx, mux)
	return apiServer.Middleware(mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates
// service metrics and sweeps the rate limiter.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc, limiter)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the account gauge and drops rate limit
// keys whose window has passed.
func updateServiceMetrics(svc *app.Service, limiter *ratelimit.Limiter) {
	// GetStats updates the accounts gauge itself.
	_ = svc.GetStats()

	if limiter != nil {
		limiter.Sweep()
		metrics.UpdateRateLimitKeys(limiter.Len())
	}
}
