package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/arthursden/internal/config"
	"github.com/okian/arthursden/internal/domain/market"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.AdminUsername, convey.ShouldEqual, "admin")
			convey.So(cfg.EtsyAPIKey, convey.ShouldBeEmpty)
			convey.So(cfg.ListingsPerTerm, convey.ShouldEqual, 5)
			convey.So(cfg.DefaultSearchTerms, convey.ShouldResemble, market.DefaultSearchTerms)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "arthursden")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then changing its terms should not touch the shared defaults", func() {
			cfg.DefaultSearchTerms[0] = "changed"
			convey.So(market.DefaultSearchTerms[0], convey.ShouldNotEqual, "changed")
		})

		convey.Convey("Then durations should be derived from the numeric fields", func() {
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 12*time.Hour)
			convey.So(cfg.EtsyTimeout(), convey.ShouldEqual, 12*time.Second)
			convey.So(cfg.RateLimitWindow(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given an otherwise valid config", t, func() {
		cfg := config.New()

		convey.Convey("When the admin password is too short", func() {
			cfg.AdminPassword = "abc"
			err := cfg.Validate()

			convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "admin_password")
			})
		})

		convey.Convey("When listings per term is out of range", func() {
			cfg.ListingsPerTerm = 101
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the metrics refresh interval is zero", func() {
			cfg.MetricsRefreshSeconds = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the rate limit window is zero", func() {
			cfg.RateLimitWindowSeconds = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
