// Package task keeps batch state in memory. The registry is the only
// store: tasks live for the lifetime of the process and are addressed
// by the UUID handed back at submission.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// ErrNotFound is returned when a task ID has no registry entry.
var ErrNotFound = eris.New("task: not found")

// Registry is a thread-safe in-memory task store.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*entry
}

// entry pairs the task with per-row bookkeeping. recorded guards
// against double-counting when a row is reported twice.
type entry struct {
	task     model.Task
	recorded []bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*entry)}
}

// Create registers a pending task for the given input rows and returns
// its ID. Results are pre-sized so rows can complete in any order.
func (r *Registry) Create(queries []model.BusinessQuery, country, language string) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[id] = &entry{
		task: model.Task{
			ID:        id,
			Status:    model.TaskPending,
			Total:     len(queries),
			Results:   make([]model.MatchResult, len(queries)),
			CreatedAt: time.Now().UTC(),
			Queries:   queries,
			Country:   country,
			Language:  language,
		},
		recorded: make([]bool, len(queries)),
	}
	return id
}

// Get returns a snapshot of the task. Mutating the returned value does
// not affect the registry.
func (r *Registry) Get(id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return snapshot(e.task), nil
}

// SetRunning transitions a task to running.
func (r *Registry) SetRunning(id string) error {
	return r.update(id, func(t *model.Task) {
		t.Status = model.TaskRunning
	})
}

// RecordResult stores the result for one input row. Recording the same
// index twice overwrites the row without advancing the processed count.
func (r *Registry) RecordResult(id string, index int, result model.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if index < 0 || index >= len(e.task.Results) {
		return eris.Errorf("task: result index %d out of range for %d rows", index, len(e.task.Results))
	}

	e.task.Results[index] = result
	if !e.recorded[index] {
		e.recorded[index] = true
		e.task.Processed++
	}
	return nil
}

// Complete marks a task as finished.
func (r *Registry) Complete(id string) error {
	return r.update(id, func(t *model.Task) {
		t.Status = model.TaskCompleted
	})
}

// Fail marks a task as failed with a reason.
func (r *Registry) Fail(id string, reason string) error {
	return r.update(id, func(t *model.Task) {
		t.Status = model.TaskFailed
		t.Error = reason
	})
}

// NotFound returns the original input rows whose results carry no
// Facebook URL. Only meaningful once the task is terminal.
func (r *Registry) NotFound(id string) ([]model.BusinessQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	var missed []model.BusinessQuery
	for i, res := range e.task.Results {
		if e.recorded[i] && !res.Found() {
			missed = append(missed, e.task.Queries[i])
		}
	}
	return missed, nil
}

// Purge drops terminal tasks older than the given age and returns how
// many were removed.
func (r *Registry) Purge(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.tasks {
		if e.task.Status.Terminal() && e.task.CreatedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) update(id string, fn func(*model.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	fn(&e.task)
	return nil
}

// snapshot deep-copies the slices so callers cannot race the registry.
func snapshot(t model.Task) model.Task {
	out := t
	out.Results = make([]model.MatchResult, len(t.Results))
	copy(out.Results, t.Results)
	out.Queries = make([]model.BusinessQuery, len(t.Queries))
	copy(out.Queries, t.Queries)
	return out
}
