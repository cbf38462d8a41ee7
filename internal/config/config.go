// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with the demo defaults.
// - Load(ctx) layers a .env file, an optional YAML file and GRIDIRON_ env vars on top.
// - Errors returned from this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"runtime"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MCPEnabled mounts the MCP tool server on MCPPath.
	MCPEnabled bool   `koanf:"mcp_enabled"`
	MCPPath    string `koanf:"mcp_path"`

	// QueueSize bounds the in-memory recompute job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many request ids are remembered for idempotent submits.
	DedupeSize int `koanf:"dedupe_size"`

	// Formula selects the valuation power formula: stabilized or safe_power.
	Formula string `koanf:"formula"`

	Database    DatabaseConfig          `koanf:"database"`
	Policy      policy.Policy           `koanf:"policy"`
	Pool        PoolConfig              `koanf:"pool"`
	Budget      policy.BudgetConfig     `koanf:"budget"`
	Risk        policy.RiskWeights      `koanf:"risk"`
	Forecast    policy.ForecastConfig   `koanf:"forecast"`
	Replacement policy.ReplacementRules `koanf:"replacement"`
	Demo        policy.DemoScenario     `koanf:"demo"`
}

// Supported database drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	// Driver is memory, sqlite or pgx.
	Driver string `koanf:"driver"`
	// DSN is the sqlite file path or the postgres connection string.
	DSN string `koanf:"dsn"`
	// Seed loads the demo roster into an empty store.
	Seed bool `koanf:"seed"`
}

// PoolConfig is the default revenue-share pool.
type PoolConfig struct {
	ID             string  `koanf:"id"`
	Name           string  `koanf:"name"`
	PoolAmount     float64 `koanf:"pool_amount"`
	ReservedAmount float64 `koanf:"reserved_amount"`
}

// Model converts the pool settings to a record.
func (p PoolConfig) Model() model.Pool {
	return model.Pool{ID: p.ID, Name: p.Name, PoolAmount: p.PoolAmount, ReservedAmount: p.ReservedAmount}
}

// New creates a Config with the demo defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9080",
		MCPEnabled:  true,
		MCPPath:     "/mcp",
		QueueSize:   1024,
		WorkerCount: runtime.NumCPU(),
		DedupeSize:  10_000,
		Formula:     "stabilized",
		Database: DatabaseConfig{
			Driver: DriverMemory,
			DSN:    "gridiron.db",
			Seed:   true,
		},
		Policy: policy.Default(),
		Pool: PoolConfig{
			ID:             "pool-2026",
			Name:           "2026 revenue share",
			PoolAmount:     5_000_000,
			ReservedAmount: 250_000,
		},
		Budget:      policy.DefaultBudget(),
		Risk:        policy.DefaultRisk(),
		Forecast:    policy.DefaultForecast(),
		Replacement: policy.DefaultReplacement(),
		Demo:        policy.DefaultDemo(),
	}
}
