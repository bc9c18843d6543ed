package engine

import "fmt"

var (
	// ErrWorkflowNotFound is returned when no workflow with the given id is known.
	ErrWorkflowNotFound = fmt.Errorf("workflow not found")
	// ErrAlreadyRunning is returned when an execution for the workflow id is
	// already in flight.
	ErrAlreadyRunning = fmt.Errorf("workflow is already running")
	// ErrWorkflowTerminal is returned for lifecycle requests against a
	// completed, failed or cancelled workflow.
	ErrWorkflowTerminal = fmt.Errorf("workflow is in a terminal state")
	// ErrWorkflowCancelled is returned by Execute when the run was cancelled
	// by a caller while steps were in flight.
	ErrWorkflowCancelled = fmt.Errorf("workflow cancelled")
	// ErrNotRunning is returned when pause is requested for a workflow that
	// is not currently running.
	ErrNotRunning = fmt.Errorf("workflow is not running")
	// ErrNotPaused is returned when resume is requested for a workflow that
	// is not paused.
	ErrNotPaused = fmt.Errorf("workflow is not paused")
	// ErrConditionsNotMet marks a step whose declared conditions did not all
	// hold against its execution result.
	ErrConditionsNotMet = fmt.Errorf("step conditions not met")
	// ErrApprovalCancelled marks a gated step whose interaction was cancelled.
	ErrApprovalCancelled = fmt.Errorf("human approval cancelled")
	// ErrApprovalTimeout marks a gated step that received no response within
	// the approval timeout.
	ErrApprovalTimeout = fmt.Errorf("human approval timed out")
	// ErrInteractionNotFound is returned when responding to an unknown interaction.
	ErrInteractionNotFound = fmt.Errorf("interaction not found")
	// ErrInteractionResolved is returned when responding to an interaction
	// that already completed or was cancelled.
	ErrInteractionResolved = fmt.Errorf("interaction already resolved")
)
