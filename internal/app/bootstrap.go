package service

import (
	"context"
	"fmt"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/internal/domain/valuation"
	"github.com/okian/gridiron/pkg/logger"
)

// OpenStore opens the record store selected by cfg.Database, loading the configured
// policy and pool into it.
func OpenStore(ctx context.Context, cfg *config.Config, l logger.Logger) (repository.Store, error) {
	opts := []repository.Option{
		repository.WithSeed(cfg.Database.Seed),
		repository.WithPolicy(cfg.Policy),
		repository.WithPool(cfg.Pool.Model()),
		repository.WithLogger(l),
	}
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return repository.NewMemoryStore(opts...), nil
	case config.DriverSQLite:
		return repository.OpenSQL(ctx, repository.DriverSQLite, cfg.Database.DSN, opts...)
	case config.DriverPgx:
		return repository.OpenSQL(ctx, repository.DriverPgx, cfg.Database.DSN, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnsupportedDriver, cfg.Database.Driver)
	}
}

// FromConfig opens the configured store and builds a Service over it. The service
// closes the store on Stop.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	l := logger.Get().Named("service")
	st, err := OpenStore(ctx, cfg, logger.Named("repository"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	formula := valuation.Stabilized
	if cfg.Formula == "safe_power" {
		formula = valuation.SafePower
	}
	base := []Option{
		WithLogger(l),
		WithDefaults(cfg.Policy.ID, cfg.Pool.ID),
		WithFormula(formula),
		WithBudget(cfg.Budget),
		WithRisk(cfg.Risk),
		WithForecast(cfg.Forecast),
		WithReplacement(cfg.Replacement),
		WithDemo(cfg.Demo),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
	}
	svc := New(append(base, opts...)...)
	svc.store = st
	svc.ownsStore = true
	return svc, nil
}
