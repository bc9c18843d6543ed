package testutil

import (
	"time"

	"github.com/hupe1980/orchestra/core"
)

// WorkflowBuilder provides a fluent helper for constructing workflows in tests.
// Example:
//
//	wf := NewWorkflowBuilder("wf-1").
//	    Step("s1", "agent-1", "analyze").
//	    ParallelStep("s2", "agent-2", "summarize").
//	    Build()
//
// Chain only the parts you need; sensible defaults are applied.
type WorkflowBuilder struct {
	id      string
	name    string
	context map[string]any
	steps   []core.WorkflowStep
}

// NewWorkflowBuilder creates a builder for a workflow with the given id.
func NewWorkflowBuilder(id string) *WorkflowBuilder {
	return &WorkflowBuilder{id: id, name: "test workflow", context: map[string]any{}}
}

// Name sets the workflow name (chainable).
func (b *WorkflowBuilder) Name(name string) *WorkflowBuilder { b.name = name; return b }

// Context sets a workflow context key (chainable).
func (b *WorkflowBuilder) Context(key string, value any) *WorkflowBuilder {
	b.context[key] = value
	return b
}

// Step appends a sequential step (chainable).
func (b *WorkflowBuilder) Step(id, agentID, taskType string) *WorkflowBuilder {
	b.steps = append(b.steps, core.WorkflowStep{ID: id, AgentID: agentID, TaskType: taskType, Input: map[string]any{}})
	return b
}

// ParallelStep appends a step that joins the previous step's group (chainable).
func (b *WorkflowBuilder) ParallelStep(id, agentID, taskType string) *WorkflowBuilder {
	b.steps = append(b.steps, core.WorkflowStep{ID: id, AgentID: agentID, TaskType: taskType, Input: map[string]any{}, Parallel: true})
	return b
}

// AddStep appends a fully specified step (chainable).
func (b *WorkflowBuilder) AddStep(step core.WorkflowStep) *WorkflowBuilder {
	b.steps = append(b.steps, step)
	return b
}

// Build constructs the core.Workflow value in CREATED status.
func (b *WorkflowBuilder) Build() *core.Workflow {
	now := time.Now().UTC()
	return &core.Workflow{
		ID:        b.id,
		Name:      b.name,
		Steps:     b.steps,
		Status:    core.WorkflowStatusCreated,
		Context:   b.context,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "test",
	}
}
