package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/arthursden/internal/adapters/http/ratelimit"
	"github.com/okian/arthursden/internal/config"
	"github.com/okian/arthursden/pkg/logger"
	"github.com/okian/arthursden/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ARTHURSDEN_ADDR", ":8080")
			_ = os.Setenv("ARTHURSDEN_LISTINGS_PER_TERM", "7")
			defer func() {
				_ = os.Unsetenv("ARTHURSDEN_ADDR")
				_ = os.Unsetenv("ARTHURSDEN_LISTINGS_PER_TERM")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ListingsPerTerm, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When testing service creation from defaults", func() {
			svc := newService(config.New(), logger.Discard())

			convey.Convey("Then the service should expose the configured terms", func() {
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.DefaultSearchTerms(), convey.ShouldResemble, config.New().DefaultSearchTerms)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given a config with a metrics prefix and labels", t, func() {
		defer metrics.Init()

		cfg := config.New()
		cfg.MetricsPrefix = "staging"
		cfg.MetricsLabels = map[string]string{"region": "eu"}
		cfg.MetricsRefreshSeconds = 2

		convey.Convey("When metrics are initialised from it", func() {
			metrics.Init(metricsOptions(cfg)...)
			metrics.RecordRateLimited()

			convey.Convey("Then the served registry should use the configured names", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "arthursden_dashboard_staging_rate_limited_total")
			})

			convey.Convey("And the updaters should tick at the configured interval", func() {
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 2*time.Second)
				convey.So(metrics.Enabled(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSessions(t *testing.T) {
	convey.Convey("Given a config", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When no session secret is configured", func() {
			cfg.SessionSecret = ""
			m, err := newSessions(ctx, cfg, logger.Discard())

			convey.Convey("Then a random one should be generated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a session secret is configured", func() {
			cfg.SessionSecret = "configured-secret"
			m, err := newSessions(ctx, cfg, logger.Discard())

			convey.Convey("Then it should be used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the fully wired handler", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.SessionSecret = "integration-secret"
		log := logger.Discard()

		svc := newService(cfg, log)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		sessions, err := newSessions(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)

		handler := newHandler(ctx, svc, sessions, ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow()), log)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then every surface should be mounted", func() {
			convey.So(get("/health").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/metrics").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/login").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/assets/dashboard.js").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And protected routes should require a session", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusFound)
			convey.So(get("/api/market-data").Code, convey.ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := newService(config.New(), logger.Discard())

			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc, ratelimit.New(1, time.Minute))
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := newService(config.New(), logger.Discard())
			now := time.Now()
			clock := func() time.Time { return now }
			limiter := ratelimit.New(1, time.Second, ratelimit.WithClock(clock))
			limiter.Allow("192.0.2.10")

			convey.Convey("Then expired rate limit keys should be swept", func() {
				now = now.Add(2 * time.Second)
				updateServiceMetrics(svc, limiter)
				convey.So(limiter.Len(), convey.ShouldEqual, 0)
			})

			convey.Convey("And a nil limiter should be tolerated", func() {
				convey.So(func() { updateServiceMetrics(svc, nil) }, convey.ShouldNotPanic)
			})
		})
	})
}
