package scenario

import (
	"errors"
	"fmt"

	"github.com/okian/gridiron/internal/domain/model"
)

var (
	// ErrInvalidMutation is returned when a mutation fails validation or cannot be decoded.
	ErrInvalidMutation = errors.New("invalid mutation")
	// ErrPlayerNotFound is returned when an update targets a player missing from the relations.
	ErrPlayerNotFound = fmt.Errorf("player %w", model.ErrNotFound)
	// ErrDuplicatePlayer is returned when ADD_PLAYER reuses an existing id.
	ErrDuplicatePlayer = errors.New("player already exists")
)
