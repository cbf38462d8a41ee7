package repository

import (
	"errors"

	"github.com/okian/gridiron/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	// ErrNotFound is model.ErrNotFound so callers can match either.
	ErrNotFound          = model.ErrNotFound
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
