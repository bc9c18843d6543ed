package core

import "time"

// TaskStatus represents the lifecycle state of a single task.
type TaskStatus string

const (
	// TaskStatusPending marks a task created but not yet attempted.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning marks a task currently executing an attempt.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted marks a task that finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed marks a task whose retries are exhausted.
	TaskStatusFailed TaskStatus = "failed"
)

// Task is the per-step unit of work handed to an agent. One task is created
// for each step invocation and discarded after the step settles; tasks are
// not persisted. Type carries the capability name used for dispatch.
type Task struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Input      map[string]any `json:"input"`
	Context    map[string]any `json:"context,omitempty"`
	Priority   int            `json:"priority"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
	Status     TaskStatus     `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	WorkflowID string         `json:"workflow_id,omitempty"`
}

// NewTask constructs a pending task for a capability invocation.
func NewTask(workflowID, taskType string, input map[string]any, maxRetries int) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:         NewID(),
		Type:       taskType,
		Input:      input,
		Priority:   1,
		MaxRetries: maxRetries,
		Status:     TaskStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		WorkflowID: workflowID,
	}
}

// MarkStatus updates the task status and refreshes the updated timestamp.
func (t *Task) MarkStatus(status TaskStatus) {
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
}
