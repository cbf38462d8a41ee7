package csvio

import "errors"

// Sentinel errors for CSV intake.
var (
	// ErrMissingHeader is returned when a required column is absent from the header row.
	ErrMissingHeader = errors.New("missing required header")
	// ErrEmpty is returned when the input has no header row.
	ErrEmpty = errors.New("empty csv")
)
