package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		clearConfigEnvVars(t)
		t.Setenv("GRIDIRON_ENV_FILE", filepath.Join(dir, "missing.env"))

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Formula, convey.ShouldEqual, "stabilized")
			convey.So(cfg.Policy.Guardrails.MaxSharePercent, convey.ShouldEqual, 0.15)
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("GRIDIRON_ADDR", ":8080")
			t.Setenv("GRIDIRON_QUEUE_SIZE", "64")
			t.Setenv("GRIDIRON_WORKER_COUNT", "3")
			t.Setenv("GRIDIRON_POLICY__GUARDRAILS__MAX_SHARE_PERCENT", "0.2")
			t.Setenv("GRIDIRON_DATABASE__DRIVER", "sqlite")
			t.Setenv("GRIDIRON_POOL__POOL_AMOUNT", "1000000")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			convey.So(cfg.Policy.Guardrails.MaxSharePercent, convey.ShouldEqual, 0.2)
			convey.So(cfg.Policy.Weights.Impact, convey.ShouldEqual, 1.0)
			convey.So(cfg.Database.Driver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.Pool.PoolAmount, convey.ShouldEqual, 1_000_000)
			convey.So(cfg.Pool.ID, convey.ShouldEqual, "pool-2026")
		})

		convey.Convey("When loading config from a YAML file", func() {
			path := filepath.Join(dir, "gridiron.yaml")
			body := "addr: \":7070\"\nlog_format: json\nforecast:\n  inflation_rate: 0.03\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			t.Setenv("GRIDIRON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.Forecast.InflationRate, convey.ShouldEqual, 0.03)
			convey.So(cfg.Forecast.AsOfYear, convey.ShouldEqual, 2026)
		})

		convey.Convey("When a .env file sets values", func() {
			envFile := filepath.Join(dir, "test.env")
			convey.So(os.WriteFile(envFile, []byte("GRIDIRON_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)
			t.Setenv("GRIDIRON_ENV_FILE", envFile)

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
		})

		convey.Convey("When the YAML file is missing", func() {
			t.Setenv("GRIDIRON_CONFIG", filepath.Join(dir, "nope.yaml"))

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the driver is unsupported", func() {
			t.Setenv("GRIDIRON_DATABASE__DRIVER", "oracle")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When environment variables override code-keyed map entries", func() {
			t.Setenv("GRIDIRON_FORECAST__TARGET_HEADCOUNT__OL", "3")
			t.Setenv("GRIDIRON_FORECAST__BASE_TRANSFER_PROB__RED", "0.9")
			t.Setenv("GRIDIRON_BUDGET__ROLE_MULTIPLIERS__STARTER", "0.8")
			t.Setenv("GRIDIRON_BUDGET__NIL_BANDS__C__HIGH", "300000")
			t.Setenv("GRIDIRON_POLICY__POSITION_MULTIPLIERS__QB", "1.5")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Forecast.TargetHeadcount["OL"], convey.ShouldEqual, 3)
			convey.So(cfg.Forecast.TargetHeadcount, convey.ShouldNotContainKey, "ol")
			convey.So(cfg.Forecast.TargetHeadcount, convey.ShouldHaveLength, len(config.New().Forecast.TargetHeadcount))
			convey.So(cfg.Forecast.BaseTransferProb["RED"], convey.ShouldEqual, 0.9)
			convey.So(cfg.Forecast.BaseTransferProb, convey.ShouldNotContainKey, "red")
			convey.So(cfg.Budget.RoleMultipliers["STARTER"], convey.ShouldEqual, 0.8)
			convey.So(cfg.Budget.NILBands["C"].High, convey.ShouldEqual, 300_000)
			convey.So(cfg.Budget.NILBands["C"].Low, convey.ShouldEqual, 100_000)
			convey.So(cfg.Policy.PositionMultipliers["QB"], convey.ShouldEqual, 1.5)
		})

		convey.Convey("When a YAML file keys a map entry in lower case", func() {
			path := filepath.Join(dir, "maps.yaml")
			body := "forecast:\n  target_headcount:\n    ol: 6\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			t.Setenv("GRIDIRON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Forecast.TargetHeadcount["OL"], convey.ShouldEqual, 6)
			convey.So(cfg.Forecast.TargetHeadcount, convey.ShouldNotContainKey, "ol")
		})

		convey.Convey("When the warn threshold exceeds the position cap", func() {
			t.Setenv("GRIDIRON_BUDGET__WARN_POSITION_PERCENT", "0.5")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, policy.ErrInvalidBudget), convey.ShouldBeTrue)
		})

		convey.Convey("When the position cap is not positive", func() {
			t.Setenv("GRIDIRON_BUDGET__MAX_POSITION_PERCENT", "0")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the policy is invalid", func() {
			t.Setenv("GRIDIRON_POLICY__GUARDRAILS__MAX_SHARE_PERCENT", "1.5")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// clearConfigEnvVars unsets every GRIDIRON_ variable; t.Setenv restores them after the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "GRIDIRON_") {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}
