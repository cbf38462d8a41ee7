package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/logger"
)

// cli holds the global flags and the service opened for one invocation.
type cli struct {
	driver   string
	dsn      string
	policyID string
	poolID   string

	cfg *config.Config
	svc *app.Service
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "gridctl",
		Short:        "Roster valuation and budget planning tool",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.driver, "driver", "", "record store driver (memory, sqlite, pgx); overrides config")
	flags.StringVar(&c.dsn, "dsn", "", "record store DSN; overrides config")
	flags.StringVar(&c.policyID, "policy", "", "policy id (default from config)")
	flags.StringVar(&c.poolID, "pool", "", "pool id (default from config)")

	root.AddCommand(
		c.importCmd(),
		c.exportCmd(),
		c.valueCmd(),
		c.budgetCmd(),
		c.forecastCmd(),
		c.replacementCmd(),
		c.whatIfCmd(),
		c.scenarioCmd(),
	)
	return root
}

// open loads configuration, applies flag overrides and starts the service.
func (c *cli) open(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if c.driver != "" {
		cfg.Database.Driver = c.driver
	}
	if c.dsn != "" {
		cfg.Database.DSN = c.dsn
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	c.log = logger.Named("gridctl")

	svc, err := app.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		svc.Stop()
		return err
	}
	c.cfg, c.svc = cfg, svc
	return nil
}

// run wraps a command body with opening and closing the service.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.open(cmd); err != nil {
			return err
		}
		defer c.close()
		return fn(cmd, args)
	}
}

func (c *cli) close() {
	if c.svc != nil {
		c.svc.Stop()
		c.svc = nil
	}
	_ = logger.Sync()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
