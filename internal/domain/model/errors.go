package model

import "errors"

// Sentinel kinds shared by record sources and the engines.
var (
	ErrNotFound = errors.New("not found")
)
