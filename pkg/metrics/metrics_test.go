package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test_prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should use the dashboard namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "arthursden")
				So(manager.subsystem, ShouldEqual, "dashboard")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("pre"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics should be registered on the given registry", func() {
				So(manager, ShouldNotBeNil)
				manager.fetchRequests.WithLabelValues(FetchSuccess).Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_pre_fetch_requests_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording marketplace fetches", func() {
			before := testutil.ToFloat64(globalManager.fetchRequests.WithLabelValues(FetchTimeout))
			RecordFetch(FetchTimeout, 12000)

			Convey("Then the outcome counter should increase", func() {
				after := testutil.ToFloat64(globalManager.fetchRequests.WithLabelValues(FetchTimeout))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording listing estimation", func() {
			estimated := testutil.ToFloat64(globalManager.listingsEstimated)
			skipped := testutil.ToFloat64(globalManager.listingsSkipped)
			RecordListingEstimated()
			RecordListingEstimated()
			RecordListingSkipped()

			Convey("Then both counters should move independently", func() {
				So(testutil.ToFloat64(globalManager.listingsEstimated)-estimated, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.listingsSkipped)-skipped, ShouldEqual, 1)
			})
		})

		Convey("When recording access metrics", func() {
			UpdateAccountsTotal(3)
			UpdateRateLimitKeys(7)
			rejected := testutil.ToFloat64(globalManager.rateLimitRejected)
			RecordRateLimited()

			Convey("Then gauges should hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.accountsTotal), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.rateLimitKeys), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.rateLimitRejected)-rejected, ShouldEqual, 1)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordDemoFallback()
					RecordMarketViewLatency(42)
					RecordLoginAttempt("success")
					RecordLoginAttempt("failure")
					RecordHTTPRequest("market-data", "GET", "200")
					RecordHTTPRequestDuration("market-data", "GET", "200", 15.0)
					RecordErrorByComponent("etsy", "timeout")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("login", "POST", "client_error")
					RecordErrorLatency("http", "server_error", 5.0)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordFetch(FetchSuccess, 100)

		Convey("Then it should expose dashboard metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() == "arthursden_dashboard_fetch_requests_total" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given a deployment specific metrics setup", t, func() {
		defer Init()

		Init(
			WithNamespace("shop"),
			WithSubsystem("intel"),
			WithMetricPrefix("eu"),
			WithCustomLabels(map[string]string{"region": "eu-west"}),
			WithHistogramBuckets([]float64{10, 100}),
			WithRefreshInterval(3*time.Second),
		)
		RecordFetch(FetchSuccess, 50)

		Convey("Then the replaced registry should carry the new names and labels", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var labels []string
			for _, f := range families {
				if f.GetName() != "shop_intel_eu_fetch_requests_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						labels = append(labels, l.GetName()+"="+l.GetValue())
					}
				}
			}
			So(labels, ShouldContain, "region=eu-west")
			So(labels, ShouldContain, "outcome=success")
		})

		Convey("Then the refresh interval should follow the option", func() {
			So(RefreshInterval(), ShouldEqual, 3*time.Second)
		})

		Convey("When metrics are disabled", func() {
			Init(WithMetricsEnabled(false))
			RecordRateLimited()

			Convey("Then recording should be a no-op", func() {
				So(Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(globalManager.rateLimitRejected), ShouldEqual, 0)
			})
		})
	})

	Convey("Given the default setup", t, func() {
		Convey("Then the refresh interval should be the default", func() {
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(Enabled(), ShouldBeTrue)
		})
	})
}
