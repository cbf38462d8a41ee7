package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "GRIDIRON_"
	envConfig  = "GRIDIRON_CONFIG"
	envDotfile = "GRIDIRON_ENV_FILE"
)

// codeMaps are the settings keyed by upper-case codes (roles, colors, position groups, bands).
var codeMaps = []string{ //nolint:gochecknoglobals // key table
	"policy.position_multipliers",
	"budget.nil_bands",
	"budget.role_multipliers",
	"budget.position_weights",
	"forecast.base_transfer_prob",
	"forecast.role_transfer_multiplier",
	"forecast.target_headcount",
}

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (GRIDIRON_ENV_FILE, default ".env") exported into the process env if present
//  3. file (YAML) if GRIDIRON_CONFIG is set
//  4. env (prefix GRIDIRON_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	dotfile := os.Getenv(envDotfile)
	if dotfile == "" {
		dotfile = ".env"
	}
	if err := godotenv.Load(dotfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotfile, err)
	}

	cfg := New()
	k := koanf.New(".")

	// Struct-valued map entries are decoded whole, so a single-field override of a
	// band would zero its other field unless the defaults are present in k.
	for name, b := range cfg.Budget.NILBands {
		prefix := "budget.nil_bands." + name + "."
		if err := k.Set(prefix+"low", b.Low); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
		if err := k.Set(prefix+"high", b.High); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRIDIRON_QUEUE_SIZE -> queue_size, GRIDIRON_POLICY__GUARDRAILS__MAX_SHARE_PERCENT ->
	// policy.guardrails.max_share_percent. Single underscores are kept to match koanf tags;
	// GRIDIRON_FORECAST__TARGET_HEADCOUNT__OL keeps the map key upper case.
	envProvider := env.Provider(envPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	if s == "CONFIG" || s == "ENV_FILE" {
		return ""
	}
	key := strings.ReplaceAll(strings.ToLower(s), "__", ".")
	for _, m := range codeMaps {
		if rest, ok := strings.CutPrefix(key, m+"."); ok {
			code, field, _ := strings.Cut(rest, ".")
			key = m + "." + strings.ToUpper(code)
			if field != "" {
				key += "." + field
			}
			break
		}
	}
	return key
}

// Normalize upper-cases the code-keyed maps, so file or env entries written in any case
// replace the matching default instead of sitting beside it.
func (c *Config) Normalize() {
	c.Policy.Normalize()
	c.Budget.Normalize()
	c.Forecast.Normalize()
}

// Validate checks the settings a running service depends on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case DriverMemory, DriverSQLite, DriverPgx:
	default:
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.Driver != DriverMemory && c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required for driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	switch c.Formula {
	case "stabilized", "safe_power":
	default:
		return fmt.Errorf("%w: unknown formula %q", ErrInvalidConfig, c.Formula)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Policy.ID == "" || c.Pool.ID == "" {
		return fmt.Errorf("%w: policy.id and pool.id must not be empty", ErrInvalidConfig)
	}
	if c.Pool.PoolAmount < 0 || c.Pool.ReservedAmount < 0 {
		return fmt.Errorf("%w: pool amounts must not be negative", ErrInvalidConfig)
	}
	if err := c.Budget.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Forecast.InflationRate < 0 {
		return fmt.Errorf("%w: forecast.inflation_rate must not be negative", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 || c.WorkerCount <= 0 {
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	if c.MCPEnabled && !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("%w: mcp_path must start with /", ErrInvalidConfig)
	}
	return nil
}
