package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies workflow lifecycle events.
type EventType string

const (
	// EventWorkflowStarted is emitted once when an execution begins.
	EventWorkflowStarted EventType = "workflow_started"
	// EventWorkflowCompleted is emitted once when every step succeeded.
	EventWorkflowCompleted EventType = "workflow_completed"
	// EventWorkflowFailed is emitted once when a step failure aborts the run.
	EventWorkflowFailed EventType = "workflow_failed"
	// EventStepStarted is emitted before a step is dispatched (or gated).
	EventStepStarted EventType = "step_started"
	// EventStepCompleted is emitted when a step settles successfully.
	EventStepCompleted EventType = "step_completed"
	// EventStepFailed is emitted when a step settles with an error.
	EventStepFailed EventType = "step_failed"
	// EventHumanInputRequired is emitted when a gated step suspends on approval.
	EventHumanInputRequired EventType = "human_input_required"
)

// Event is an immutable lifecycle record emitted during workflow execution.
// Events for a given workflow arrive at subscribers in causal order
// (started → per-step started/completed|failed → terminal); no ordering is
// guaranteed across different workflows.
//
// Result is set on step_completed, Interaction on human_input_required, and
// Error on step_failed / workflow_failed.
type Event struct {
	ID          string            `json:"id"`
	WorkflowID  string            `json:"workflow_id"`
	Type        EventType         `json:"type"`
	StepID      string            `json:"step_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Result      *ExecutionResult  `json:"result,omitempty"`
	Interaction *HumanInteraction `json:"interaction,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// NewEvent creates a bare event bound to a workflow.
func NewEvent(workflowID string, eventType EventType) Event {
	return Event{
		ID:         NewID(),
		WorkflowID: workflowID,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
	}
}

// NewStepEvent creates an event bound to a workflow step.
func NewStepEvent(workflowID, stepID string, eventType EventType) Event {
	e := NewEvent(workflowID, eventType)
	e.StepID = stepID
	return e
}

// NewID generates a new unique identifier for workflows, tasks, interactions
// and events. Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
