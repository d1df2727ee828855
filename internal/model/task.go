package model

import "time"

// TaskStatus is the lifecycle state of a batch task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is final.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task tracks one batch through its lifecycle. Results are ordered by
// original input row position regardless of completion order.
type Task struct {
	ID        string        `json:"task_id"`
	Status    TaskStatus    `json:"status"`
	Processed int           `json:"processed_count"`
	Total     int           `json:"total_count"`
	Results   []MatchResult `json:"results"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	// Queries holds the original input rows so not-found rows can be
	// requeried with the task's own settings.
	Queries  []BusinessQuery `json:"-"`
	Country  string          `json:"-"`
	Language string          `json:"-"`
}

// Progress returns completion as a percentage in [0,100].
func (t Task) Progress() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Processed) / float64(t.Total) * 100
}
