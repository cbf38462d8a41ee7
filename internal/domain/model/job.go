package model

import "time"

// Job is an asynchronous valuation recompute request.
type Job struct {
	ID          string    // server-assigned job id
	RequestID   string    // caller idempotency key
	PolicyID    string    // policy to value under
	PoolID      string    // pool to allocate
	SubmittedAt time.Time // enqueue time
}
