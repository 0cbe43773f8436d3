package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/okian/foamperf/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewDefaults(t *testing.T) {
	Convey("Given a fresh config", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the documented defaults are set", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MinConfidence, ShouldAlmostEqual, 0.6)
			So(cfg.ExcludeFraction, ShouldAlmostEqual, 0.2)
			So(cfg.SweepWorkers, ShouldEqual, runtime.NumCPU())
		})

		Convey("And history and metrics stay disabled until configured", func() {
			So(cfg.HistoryPath, ShouldBeEmpty)
			So(cfg.MetricsAddr, ShouldBeEmpty)
			So(cfg.ExcludedPatches, ShouldBeEmpty)
		})
	})
}
