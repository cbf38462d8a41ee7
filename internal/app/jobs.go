package service

import (
	"sync"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
)

// JobState is the lifecycle stage of a recompute job.
type JobState string

// Job states.
const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus reports a recompute job.
type JobStatus struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id,omitempty"`
	PolicyID    string     `json:"policy_id"`
	PoolID      string     `json:"pool_id"`
	State       JobState   `json:"state"`
	Rows        int        `json:"rows,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Duplicate   bool       `json:"duplicate,omitempty"`
}

func newJobStatus(job model.Job) JobStatus {
	return JobStatus{
		ID:          job.ID,
		RequestID:   job.RequestID,
		PolicyID:    job.PolicyID,
		PoolID:      job.PoolID,
		State:       JobQueued,
		SubmittedAt: job.SubmittedAt,
	}
}

// jobTable keeps the most recent job statuses; the oldest entry is dropped past limit.
type jobTable struct {
	mu    sync.Mutex
	byID  map[string]*JobStatus
	order []string
	limit int
}

func newJobTable(limit int) *jobTable {
	if limit < 1 {
		limit = 1
	}
	return &jobTable{byID: make(map[string]*JobStatus), limit: limit}
}

func (t *jobTable) put(st JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[st.ID]; !ok {
		t.order = append(t.order, st.ID)
	}
	t.byID[st.ID] = &st
	for len(t.order) > t.limit {
		delete(t.byID, t.order[0])
		t.order = t.order[1:]
	}
}

func (t *jobTable) get(id string) (JobStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.byID[id]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

func (t *jobTable) update(id string, fn func(*JobStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.byID[id]; ok {
		fn(st)
	}
}

func (t *jobTable) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return
	}
	delete(t.byID, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *jobTable) counts() map[JobState]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[JobState]int{}
	for _, st := range t.byID {
		out[st.State]++
	}
	return out
}
