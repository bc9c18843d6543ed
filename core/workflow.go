package core

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
//
// Transitions: CREATED → RUNNING → {COMPLETED, FAILED, CANCELLED};
// RUNNING ⇄ PAUSED. Only the engine performs the transitions into
// COMPLETED and FAILED; callers may only request pause/resume/cancel.
type WorkflowStatus string

const (
	// WorkflowStatusCreated marks a planned workflow not yet executed.
	WorkflowStatusCreated WorkflowStatus = "created"
	// WorkflowStatusRunning marks a workflow currently executing.
	WorkflowStatusRunning WorkflowStatus = "running"
	// WorkflowStatusPaused marks a workflow suspended by a caller.
	WorkflowStatusPaused WorkflowStatus = "paused"
	// WorkflowStatusCompleted marks a workflow whose steps all succeeded.
	WorkflowStatusCompleted WorkflowStatus = "completed"
	// WorkflowStatusFailed marks a workflow aborted by a step failure.
	WorkflowStatusFailed WorkflowStatus = "failed"
	// WorkflowStatusCancelled marks a workflow cancelled by a caller.
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s WorkflowStatus) Terminal() bool {
	switch s {
	case WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusCancelled:
		return true
	default:
		return false
	}
}

// BackoffStrategy selects the delay growth curve between retry attempts.
type BackoffStrategy string

const (
	// BackoffLinear grows the delay by baseDelay per attempt.
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential doubles the delay per attempt.
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy controls per-step retry behavior. Attempts are numbered
// 0..MaxRetries inclusive, so MaxRetries=2 yields up to three attempts.
type RetryPolicy struct {
	MaxRetries int             `json:"max_retries"`
	Backoff    BackoffStrategy `json:"backoff_strategy"`
	BaseDelay  time.Duration   `json:"base_delay"`
	MaxDelay   time.Duration   `json:"max_delay"`
}

// DefaultRetryPolicy returns the policy applied to steps that declare none:
// three retries with exponential backoff from 1s capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Backoff:    BackoffExponential,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// Delay computes the sleep before retrying after the given failed attempt.
// Exponential: min(baseDelay * 2^attempt, maxDelay).
// Linear: min(baseDelay * (attempt+1), maxDelay).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	var d time.Duration
	switch p.Backoff {
	case BackoffLinear:
		d = p.BaseDelay * time.Duration(attempt+1)
	default:
		d = p.BaseDelay << uint(attempt)
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// ConditionOperator enumerates the comparison operators usable in step conditions.
type ConditionOperator string

const (
	// OpEquals passes when field and value compare equal.
	OpEquals ConditionOperator = "equals"
	// OpNotEquals passes when field and value compare unequal.
	OpNotEquals ConditionOperator = "not_equals"
	// OpContains passes when the string-coerced field contains the string-coerced value.
	OpContains ConditionOperator = "contains"
	// OpGreaterThan passes when the numeric-coerced field exceeds the value.
	OpGreaterThan ConditionOperator = "greater_than"
	// OpLessThan passes when the numeric-coerced field is below the value.
	OpLessThan ConditionOperator = "less_than"
)

// Condition is a post-execution assertion evaluated against a step's
// ExecutionResult via a dot path (e.g. "output.success"). All conditions on a
// step must hold or the step is treated as failed.
//
// NextStepID is carried for plan round-tripping but not consulted for
// routing; the engine executes steps strictly in plan order.
type Condition struct {
	Field      string            `json:"field"`
	Operator   ConditionOperator `json:"operator"`
	Value      any               `json:"value"`
	NextStepID string            `json:"next_step_id,omitempty"`
}

// WorkflowStep binds one unit of work to a single agent capability.
//
// Input values of the exact form "${context.X}" or "${step.<id>.<key>}" are
// resolved at dispatch time against the workflow context and prior step
// outputs respectively. Parallel is an adjacency hint: a parallel step joins
// the group of the step immediately before it.
type WorkflowStep struct {
	ID                    string         `json:"id"`
	AgentID               string         `json:"agent_id"`
	TaskType              string         `json:"task_type"`
	Input                 map[string]any `json:"input"`
	Conditions            []Condition    `json:"conditions,omitempty"`
	Parallel              bool           `json:"parallel,omitempty"`
	HumanApprovalRequired bool           `json:"human_approval_required,omitempty"`
	RetryPolicy           *RetryPolicy   `json:"retry_policy,omitempty"`
}

// Retry returns the step's retry policy, falling back to the default.
func (s WorkflowStep) Retry() RetryPolicy {
	if s.RetryPolicy != nil {
		return *s.RetryPolicy
	}
	return DefaultRetryPolicy()
}

// Workflow is an ordered plan of steps addressing one user request. It is
// created by the conductor in CREATED status and mutated only by the engine
// execution that owns it. Step IDs are unique within a workflow.
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Steps         []WorkflowStep `json:"steps"`
	Status        WorkflowStatus `json:"status"`
	CurrentStepID string         `json:"current_step_id,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CreatedBy     string         `json:"created_by,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Step returns the step with the given id, if present.
func (w *Workflow) Step(id string) (*WorkflowStep, bool) {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i], true
		}
	}
	return nil, false
}

// Touch refreshes the updated timestamp.
func (w *Workflow) Touch() { w.UpdatedAt = time.Now().UTC() }
