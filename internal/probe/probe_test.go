package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/arthursden/internal/adapters/http/api"
	"github.com/okian/arthursden/internal/adapters/http/ratelimit"
	"github.com/okian/arthursden/internal/adapters/http/session"
	service "github.com/okian/arthursden/internal/app"
	"github.com/okian/arthursden/internal/domain/market"
	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string, int) *model.Listings { return nil }

func newDashboard(opts ...api.Option) *httptest.Server {
	svc := service.New(
		service.WithBcryptCost(bcrypt.MinCost),
		service.WithMarketBuilder(market.NewBuilder(offlineFetcher{})),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	sessions, err := session.NewManager("probe-secret")
	if err != nil {
		panic(err)
	}
	srv := api.NewServer(svc, svc, sessions, opts...)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return httptest.NewServer(srv.Middleware(mux))
}

func probeConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Username: "admin",
		Password: service.DefaultAdminPassword,
		Requests: 10,
		Workers:  4,
		Timeout:  5 * time.Second,
	}
}

func TestRun(t *testing.T) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given a running dashboard", t, func() {
		ctx := context.Background()
		ts := newDashboard()
		defer ts.Close()

		Convey("When the probe runs with valid credentials", func() {
			cfg := probeConfig(ts.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "exports", "latest.csv")
			stats, err := Run(ctx, cfg)

			Convey("Then every check should pass", func() {
				So(err, ShouldBeNil)
				So(stats.Products, ShouldEqual, 5)
				So(stats.DataSource, ShouldEqual, model.SourceDemo)
				So(stats.CriticalAlerts, ShouldBeGreaterThanOrEqualTo, 1)
				So(stats.ExportRows, ShouldEqual, 6)
				So(stats.RequestsSent, ShouldEqual, 10)
				So(stats.RequestsOK, ShouldEqual, 10)
				So(stats.RequestsFailed, ShouldEqual, 0)
				So(stats.Duration, ShouldBeGreaterThan, 0)
			})

			Convey("And the export should be saved", func() {
				data, readErr := os.ReadFile(cfg.OutputFile)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldStartWith, "Product,Shop,Price")
			})
		})

		Convey("When the password is wrong", func() {
			cfg := probeConfig(ts.URL)
			cfg.Password = "not-the-password"
			stats, err := Run(ctx, cfg)

			Convey("Then the probe should stop at login", func() {
				So(stats, ShouldBeNil)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "login failed")
				So(err.Error(), ShouldContainSubstring, "Invalid credentials")
			})
		})

		Convey("When no load is requested", func() {
			cfg := probeConfig(ts.URL)
			cfg.Requests = 0
			stats, err := Run(ctx, cfg)

			Convey("Then only the checks should run", func() {
				So(err, ShouldBeNil)
				So(stats.RequestsSent, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a rate limited dashboard", t, func() {
		// login, market data and export use three of the six slots.
		ts := newDashboard(api.WithRateLimiter(ratelimit.New(6, time.Minute)))
		defer ts.Close()

		Convey("When the load exceeds the limit", func() {
			stats, err := Run(context.Background(), probeConfig(ts.URL))

			Convey("Then throttled answers should be counted apart from failures", func() {
				So(err, ShouldBeNil)
				So(stats.RequestsOK, ShouldEqual, 3)
				So(stats.RequestsThrottled, ShouldEqual, 7)
				So(stats.RequestsFailed, ShouldEqual, 0)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		ts := newDashboard()
		url := ts.URL
		ts.Close()

		Convey("Then the health check should fail", func() {
			_, err := Run(context.Background(), probeConfig(url))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "service health check failed")
		})
	})
}

func validView() marketData {
	products := []model.Product{
		{ID: 1, WeeklySales: 12, SalesTrend: "+45%", Priority: model.PriorityCritical},
		{ID: 2, WeeklySales: 4, SalesTrend: "+5%", Priority: model.PriorityMedium},
	}
	return marketData{
		MarketView: model.MarketView{
			Products: products,
			Insights: model.Insights{MarketSummary: model.MarketSummary{
				ProductCount:     2,
				TotalWeeklySales: 16,
				CriticalAlerts:   1,
				DataSource:       model.SourceLive,
			}},
		},
		GeneratedAt: "2026-03-14T09:30:00Z",
	}
}

func TestVerifyMarketView(t *testing.T) {
	Convey("Given a consistent market view", t, func() {
		data := validView()

		Convey("Then it should verify", func() {
			So(verifyMarketView(data), ShouldBeNil)
		})

		Convey("When it has no products", func() {
			data.Products = nil
			So(errors.Is(verifyMarketView(data), ErrCheckFailed), ShouldBeTrue)
		})

		Convey("When the summary disagrees with the products", func() {
			data.Insights.MarketSummary.TotalWeeklySales = 99
			data.Insights.MarketSummary.CriticalAlerts = 0
			err := verifyMarketView(data)

			Convey("Then every mismatch should be reported", func() {
				So(errors.Is(err, ErrCheckFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "total_weekly_sales 99, want 16")
				So(err.Error(), ShouldContainSubstring, "critical_alerts 0, want 1")
			})
		})

		Convey("When a product breaks its bounds", func() {
			data.Products[1].WeeklySales = 0
			data.Products[1].Priority = "Urgent"
			data.Insights.MarketSummary.TotalWeeklySales = 12
			err := verifyMarketView(data)

			So(errors.Is(err, ErrCheckFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "weekly_sales 0 below 1")
			So(err.Error(), ShouldContainSubstring, `unknown priority "Urgent"`)
		})

		Convey("When the data source is unknown", func() {
			data.Insights.MarketSummary.DataSource = "cache"
			So(errors.Is(verifyMarketView(data), ErrCheckFailed), ShouldBeTrue)
		})
	})
}

func TestCheckTrend(t *testing.T) {
	Convey("Given sales trend labels", t, func() {
		So(checkTrend("+5%"), ShouldBeNil)
		So(checkTrend("+50%"), ShouldBeNil)
		So(checkTrend("+4%"), ShouldNotBeNil)
		So(checkTrend("+51%"), ShouldNotBeNil)
		So(checkTrend("12%"), ShouldNotBeNil)
		So(checkTrend("+12"), ShouldNotBeNil)
		So(checkTrend("+x%"), ShouldNotBeNil)
	})
}
