package service

import (
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/valuation"
	"github.com/okian/gridiron/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record source. Without one, Start opens a seeded in-memory store.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithDefaults sets the policy and pool used when a request names none.
func WithDefaults(policyID, poolID string) Option {
	return func(s *Service) {
		if policyID != "" {
			s.defaultPolicy = policyID
		}
		if poolID != "" {
			s.defaultPool = poolID
		}
	}
}

// WithFormula selects the valuation power formula.
func WithFormula(f valuation.Formula) Option {
	return func(s *Service) {
		s.formula = f
	}
}

// WithBudget sets the budget allocator settings.
func WithBudget(cfg policy.BudgetConfig) Option {
	return func(s *Service) {
		s.budgetCfg = cfg
	}
}

// WithRisk sets the risk weights applied to roster rows.
func WithRisk(w policy.RiskWeights) Option {
	return func(s *Service) {
		s.risk = w
	}
}

// WithForecast sets the projector settings.
func WithForecast(cfg policy.ForecastConfig) Option {
	return func(s *Service) {
		s.forecastCfg = cfg
	}
}

// WithReplacement sets the replacement selector rules.
func WithReplacement(r policy.ReplacementRules) Option {
	return func(s *Service) {
		s.replacement = r
	}
}

// WithDemo sets the before/after recruit.
func WithDemo(d policy.DemoScenario) Option {
	return func(s *Service) {
		s.demo = d
	}
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
