package policy

import "errors"

// Sentinel kinds for policy errors.
var (
	ErrInvalidPolicy = errors.New("invalid policy")
	ErrInvalidBudget = errors.New("invalid budget settings")
)
