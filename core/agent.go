package core

import "context"

// Agent defines the interface all capability providers in Orchestra must implement.
//
// Agents are the primary processing units dispatched by the workflow engine.
// They receive a Task built from a workflow step, perform the work bound to
// the task's capability name, and report the outcome as an ExecutionResult.
//
// Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Be safe for concurrent Execute calls (steps in a group run concurrently)
//   - Return a non-nil ExecutionResult or an error, never both nil
type Agent interface {
	// ID returns the stable agent identifier used by workflow steps.
	ID() string
	// Name returns the human-readable agent name.
	Name() string
	// Description returns a detailed description of the agent's purpose.
	Description() string
	// Domain categorizes the agent (e.g. "research", "engineering").
	Domain() string
	// Version identifies the agent implementation revision.
	Version() string
	// IsActive reports whether the agent may receive new work.
	IsActive() bool
	// Capabilities returns the ordered list of operations this agent exposes.
	Capabilities() []Capability
	// Execute performs the work described by the task.
	Execute(ctx context.Context, task *Task) (*ExecutionResult, error)
}

// InputValidator is an optional interface agents may implement to validate a
// task input map before dispatch. The engine consults it when present; a
// returned error fails the attempt without invoking Execute.
type InputValidator interface {
	ValidateInput(input map[string]any) error
}

// ExecutionResult captures the outcome of a single task execution.
//
// Output keys are addressable from later workflow steps via
// "${step.<id>.<key>}" input references and from conditions via
// "output.<key>" dot paths.
type ExecutionResult struct {
	Success        bool           `json:"success"`
	Output         map[string]any `json:"output,omitempty"`
	Error          string         `json:"error,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	ReviewRequired bool           `json:"review_required,omitempty"`
}
