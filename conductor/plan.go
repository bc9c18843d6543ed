package conductor

import (
	"fmt"
	"time"

	"github.com/hupe1980/orchestra/core"
)

// planDocument is the wire shape consumed from the completion service. Field
// names are camelCase on the wire; durations arrive as milliseconds.
type planDocument struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Steps       []planStep `json:"steps"`
}

type planStep struct {
	ID                    string           `json:"id"`
	AgentID               string           `json:"agentId"`
	TaskType              string           `json:"taskType"`
	Input                 map[string]any   `json:"input"`
	Conditions            []planCondition  `json:"conditions,omitempty"`
	Parallel              bool             `json:"parallel,omitempty"`
	HumanApprovalRequired bool             `json:"humanApprovalRequired,omitempty"`
	RetryPolicy           *planRetryPolicy `json:"retryPolicy,omitempty"`
}

type planCondition struct {
	Field      string `json:"field"`
	Operator   string `json:"operator"`
	Value      any    `json:"value"`
	NextStepID string `json:"nextStepId,omitempty"`
}

type planRetryPolicy struct {
	// MaxRetries is a pointer so an absent field (fall back to the default
	// retry budget) can be told apart from an explicit 0 (disable retries).
	MaxRetries      *int   `json:"maxRetries"`
	BackoffStrategy string `json:"backoffStrategy"`
	BaseDelayMillis int64  `json:"baseDelay"`
	MaxDelayMillis  int64  `json:"maxDelay"`
}

// materializeStep validates a plan step against the registry and converts it
// into a core.WorkflowStep, filling defaults for missing optional fields.
// Position is the zero-based index used for generated step ids.
func (c *Conductor) materializeStep(step planStep, position int) (core.WorkflowStep, error) {
	agent, ok := c.registry.Get(step.AgentID)
	if !ok {
		return core.WorkflowStep{}, fmt.Errorf("%w: %w: %s", ErrPlanningFailed, ErrUnknownAgent, step.AgentID)
	}
	if !agent.IsActive() {
		return core.WorkflowStep{}, fmt.Errorf("%w: %w: %s is inactive", ErrPlanningFailed, ErrUnknownAgent, step.AgentID)
	}
	if !c.registry.HasCapability(step.AgentID, step.TaskType) {
		return core.WorkflowStep{}, fmt.Errorf("%w: %w: agent %s, capability %s",
			ErrPlanningFailed, ErrCapabilityMismatch, step.AgentID, step.TaskType)
	}

	id := step.ID
	if id == "" {
		id = fmt.Sprintf("step_%d", position+1)
	}
	input := step.Input
	if input == nil {
		input = map[string]any{}
	}

	conditions := make([]core.Condition, 0, len(step.Conditions))
	for _, cond := range step.Conditions {
		conditions = append(conditions, core.Condition{
			Field:      cond.Field,
			Operator:   core.ConditionOperator(cond.Operator),
			Value:      cond.Value,
			NextStepID: cond.NextStepID,
		})
	}

	return core.WorkflowStep{
		ID:                    id,
		AgentID:               step.AgentID,
		TaskType:              step.TaskType,
		Input:                 input,
		Conditions:            conditions,
		Parallel:              step.Parallel,
		HumanApprovalRequired: step.HumanApprovalRequired,
		RetryPolicy:           materializeRetryPolicy(step.RetryPolicy),
	}, nil
}

// materializeRetryPolicy converts the wire retry policy, applying the default
// policy (3 retries, exponential, 1s base, 10s cap) when absent and filling
// unset fields from the default.
func materializeRetryPolicy(policy *planRetryPolicy) *core.RetryPolicy {
	defaults := core.DefaultRetryPolicy()
	if policy == nil {
		return &defaults
	}
	out := core.RetryPolicy{
		MaxRetries: defaults.MaxRetries,
		Backoff:    core.BackoffStrategy(policy.BackoffStrategy),
		BaseDelay:  time.Duration(policy.BaseDelayMillis) * time.Millisecond,
		MaxDelay:   time.Duration(policy.MaxDelayMillis) * time.Millisecond,
	}
	if policy.MaxRetries != nil && *policy.MaxRetries >= 0 {
		out.MaxRetries = *policy.MaxRetries
	}
	if out.Backoff != core.BackoffLinear && out.Backoff != core.BackoffExponential {
		out.Backoff = defaults.Backoff
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = defaults.BaseDelay
	}
	if out.MaxDelay <= 0 {
		out.MaxDelay = defaults.MaxDelay
	}
	return &out
}
