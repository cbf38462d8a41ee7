package repository

import (
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/pkg/logger"
)

type options struct {
	seed     bool
	policies []policy.Policy
	pools    []model.Pool
	logger   logger.Logger
}

// Option configures a store.
type Option func(*options)

// WithSeed loads the demo roster when the store is empty.
func WithSeed(seed bool) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithPolicy upserts p when the store opens.
func WithPolicy(p policy.Policy) Option {
	return func(o *options) {
		o.policies = append(o.policies, p)
	}
}

// WithPool upserts p when the store opens.
func WithPool(p model.Pool) Option {
	return func(o *options) {
		o.pools = append(o.pools, p)
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logger.Get().Named("repository")}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
