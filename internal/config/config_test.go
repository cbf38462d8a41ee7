package config_test

import (
	"testing"

	"github.com/okian/gridiron/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.Database.Driver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.Policy.ID, convey.ShouldEqual, "default")
			convey.So(cfg.Pool.Model().Allocatable(), convey.ShouldEqual, 4_750_000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
