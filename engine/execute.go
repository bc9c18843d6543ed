package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/internal/util"
	"github.com/hupe1980/orchestra/registry"
)

// stepResults records settled step outputs for input references and is safe
// for concurrent writes from steps of the same group.
type stepResults struct {
	mu      sync.RWMutex
	results map[string]*core.ExecutionResult
}

func newStepResults() *stepResults {
	return &stepResults{results: make(map[string]*core.ExecutionResult)}
}

func (r *stepResults) put(stepID string, result *core.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[stepID] = result
}

func (r *stepResults) get(stepID string) (*core.ExecutionResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[stepID]
	return result, ok
}

// groupSteps partitions steps into ordered execution groups with a single
// left-to-right scan. A step starts a new group unless it is marked parallel
// and the current group is non-empty, in which case it joins the current
// group. This is an adjacency rule, not a dependency graph: the first step
// never merges backward and steps declare no explicit predecessors.
func groupSteps(steps []core.WorkflowStep) [][]core.WorkflowStep {
	var groups [][]core.WorkflowStep
	for _, step := range steps {
		if step.Parallel && len(groups) > 0 {
			groups[len(groups)-1] = append(groups[len(groups)-1], step)
			continue
		}
		groups = append(groups, []core.WorkflowStep{step})
	}
	return groups
}

// runGroup executes the steps of one group concurrently and waits for every
// step to settle. The first step error fails the group; sibling results are
// discarded by the caller because the workflow aborts (fail-fast, not
// best-effort).
func (e *Engine) runGroup(ctx context.Context, workflow *core.Workflow, group []core.WorkflowStep, results *stepResults) error {
	if len(group) == 1 {
		return e.runStep(ctx, workflow, group[0], results)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(group))
	for i := range group {
		step := group[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.runStep(ctx, workflow, step, results); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	if err, ok := <-errCh; ok {
		return err
	}
	return nil
}

// runStep executes a single workflow step: approval gate, agent resolution,
// task construction, retrying execution and condition evaluation. It emits
// step_started followed by exactly one of step_completed / step_failed.
func (e *Engine) runStep(ctx context.Context, workflow *core.Workflow, step core.WorkflowStep, results *stepResults) error {
	e.setCurrentStep(workflow, step.ID)
	e.emit(core.NewStepEvent(workflow.ID, step.ID, core.EventStepStarted))
	e.logger.Debug("step started", "workflow_id", workflow.ID, "step_id", step.ID, "task_type", step.TaskType)

	result, err := e.dispatchStep(ctx, workflow, step, results)
	if err != nil {
		failed := core.NewStepEvent(workflow.ID, step.ID, core.EventStepFailed)
		failed.Error = err.Error()
		e.emit(failed)
		e.logger.Error("step failed", "workflow_id", workflow.ID, "step_id", step.ID, "error", err)
		return fmt.Errorf("step %s: %w", step.ID, err)
	}

	results.put(step.ID, result)
	completed := core.NewStepEvent(workflow.ID, step.ID, core.EventStepCompleted)
	completed.Result = result
	e.emit(completed)
	e.logger.Debug("step completed", "workflow_id", workflow.ID, "step_id", step.ID)
	return nil
}

// dispatchStep performs the work of a step after step_started was emitted.
func (e *Engine) dispatchStep(ctx context.Context, workflow *core.Workflow, step core.WorkflowStep, results *stepResults) (*core.ExecutionResult, error) {
	if step.HumanApprovalRequired {
		if err := e.awaitApproval(ctx, workflow, step); err != nil {
			return nil, err
		}
	}

	agent, ok := e.registry.Get(step.AgentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrAgentNotFound, step.AgentID)
	}

	policy := step.Retry()
	task := core.NewTask(workflow.ID, step.TaskType, e.resolveInput(workflow, step.Input, results), policy.MaxRetries)
	task.Context = workflow.Context

	result, err := e.runWithRetry(ctx, agent, task, policy)
	if err != nil {
		return nil, err
	}

	if !EvaluateConditions(step.Conditions, result) {
		return nil, fmt.Errorf("%w: step %s", ErrConditionsNotMet, step.ID)
	}
	return result, nil
}

// runWithRetry drives the attempt loop. Attempts are numbered 0..MaxRetries
// inclusive; the task status flips to RUNNING before each attempt and to
// COMPLETED / FAILED once settled. Between failed attempts the configured
// backoff delay is slept, honoring context cancellation.
func (e *Engine) runWithRetry(ctx context.Context, agent core.Agent, task *core.Task, policy core.RetryPolicy) (*core.ExecutionResult, error) {
	for attempt := 0; ; attempt++ {
		task.RetryCount = attempt
		task.MarkStatus(core.TaskStatusRunning)

		result, err := e.invoke(ctx, agent, task)
		if err == nil {
			task.MarkStatus(core.TaskStatusCompleted)
			return result, nil
		}

		if attempt >= policy.MaxRetries {
			task.MarkStatus(core.TaskStatusFailed)
			return nil, fmt.Errorf("task %s failed after %d attempts: %w", task.ID, attempt+1, err)
		}

		delay := policy.Delay(attempt)
		e.logger.Debug("retrying task", "task_id", task.ID, "attempt", attempt, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			task.MarkStatus(core.TaskStatusFailed)
			return nil, ctx.Err()
		}
	}
}

// invoke validates the task input when the agent supports it and executes the
// task. A nil result without error is treated as an agent contract violation.
func (e *Engine) invoke(ctx context.Context, agent core.Agent, task *core.Task) (*core.ExecutionResult, error) {
	if validator, ok := agent.(core.InputValidator); ok {
		if err := validator.ValidateInput(task.Input); err != nil {
			return nil, fmt.Errorf("input validation: %w", err)
		}
	}
	result, err := agent.Execute(ctx, task)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("agent %s returned no result", agent.ID())
	}
	return result, nil
}

// resolveInput replaces deferred references in a step input map. Values of
// the exact form "${context.X}" read the workflow context; "${step.<id>.<key>}"
// reads a prior step's output. An unresolved reference becomes nil rather
// than an error.
func (e *Engine) resolveInput(workflow *core.Workflow, input map[string]any, results *stepResults) map[string]any {
	resolved := make(map[string]any, len(input))
	for key, value := range input {
		ref := util.ParseReference(value)
		switch ref.Kind {
		case util.RefContext:
			resolved[key] = workflow.Context[ref.Key]
		case util.RefStep:
			if result, ok := results.get(ref.StepID); ok && result.Output != nil {
				resolved[key] = result.Output[ref.Key]
			} else {
				resolved[key] = nil
			}
		default:
			resolved[key] = value
		}
	}
	return resolved
}
