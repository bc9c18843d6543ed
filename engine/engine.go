package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/logging"
	"github.com/hupe1980/orchestra/registry"
)

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// ApprovalTimeout bounds how long a gated step waits for a human
	// response before failing with ErrApprovalTimeout.
	ApprovalTimeout time.Duration

	// EventBufferSize sets the per-subscriber channel buffer. A subscriber
	// that falls more than this many events behind misses the overflow;
	// delivery is at-most-once by design.
	EventBufferSize int
}

// DefaultConfig provides the default engine configuration: a five minute
// approval timeout and room for a hundred buffered events per subscriber.
var DefaultConfig = Config{
	ApprovalTimeout: 5 * time.Minute,
	EventBufferSize: 100,
}

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config
	// Logger provides structured logging. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// interaction pairs the externally visible record with the wait/notify
// primitive the gated step blocks on. done is closed exactly once when the
// interaction resolves (completed or cancelled).
type interaction struct {
	record *core.HumanInteraction
	done   chan struct{}
}

// Engine executes workflows against registered agents.
//
// State owned by the engine: the workflow map, the active-execution set, the
// interaction table, per-workflow event history and the subscriber list. All
// public methods are safe for concurrent use.
type Engine struct {
	registry *registry.Registry
	config   Config
	logger   logging.Logger

	mu        sync.RWMutex
	workflows map[string]*core.Workflow
	active    map[string]struct{}
	history   map[string][]core.Event

	interactionsMu sync.Mutex
	interactions   map[string]*interaction

	subsMu  sync.RWMutex
	subs    map[int]chan core.Event
	nextSub int
}

// New constructs an Engine dispatching to agents resolved through the given
// registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config.ApprovalTimeout <= 0 {
		opts.Config.ApprovalTimeout = DefaultConfig.ApprovalTimeout
	}
	if opts.Config.EventBufferSize <= 0 {
		opts.Config.EventBufferSize = DefaultConfig.EventBufferSize
	}
	return &Engine{
		registry:     reg,
		config:       opts.Config,
		logger:       opts.Logger,
		workflows:    make(map[string]*core.Workflow),
		active:       make(map[string]struct{}),
		history:      make(map[string][]core.Event),
		interactions: make(map[string]*interaction),
		subs:         make(map[int]chan core.Event),
	}
}

// Execute runs the workflow to completion and returns when it reaches a
// terminal state (or is paused). At most one execution per workflow id is
// admitted; concurrent attempts fail with ErrAlreadyRunning. On success the
// workflow is marked COMPLETED; the first unrecovered step failure marks it
// FAILED and is returned wrapped.
func (e *Engine) Execute(ctx context.Context, workflow *core.Workflow) error {
	if err := e.admit(workflow); err != nil {
		return err
	}
	defer func() {
		e.mu.Lock()
		delete(e.active, workflow.ID)
		terminal := workflow.Status.Terminal()
		e.mu.Unlock()
		if terminal {
			e.pruneResolvedInteractions(workflow.ID)
		}
	}()

	e.setStatus(workflow, core.WorkflowStatusRunning)
	e.emit(core.NewEvent(workflow.ID, core.EventWorkflowStarted))
	e.logger.Info("workflow started", "workflow_id", workflow.ID, "steps", len(workflow.Steps))

	results := newStepResults()
	for _, group := range groupSteps(workflow.Steps) {
		switch e.Status(workflow.ID) {
		case core.WorkflowStatusCancelled:
			e.logger.Info("workflow cancelled", "workflow_id", workflow.ID)
			return fmt.Errorf("%w: %s", ErrWorkflowCancelled, workflow.ID)
		case core.WorkflowStatusPaused:
			e.logger.Info("workflow paused", "workflow_id", workflow.ID)
			return nil
		}
		if err := e.runGroup(ctx, workflow, group, results); err != nil {
			// A cancel that raced the failing group wins; its status stands
			// and the group result is discarded.
			if e.Status(workflow.ID) == core.WorkflowStatusCancelled {
				return fmt.Errorf("%w: %s", ErrWorkflowCancelled, workflow.ID)
			}
			e.setStatus(workflow, core.WorkflowStatusFailed)
			failed := core.NewEvent(workflow.ID, core.EventWorkflowFailed)
			failed.Error = err.Error()
			e.emit(failed)
			e.logger.Error("workflow failed", "workflow_id", workflow.ID, "error", err)
			return fmt.Errorf("workflow %s execution failed: %w", workflow.ID, err)
		}
	}

	if e.Status(workflow.ID) == core.WorkflowStatusCancelled {
		return fmt.Errorf("%w: %s", ErrWorkflowCancelled, workflow.ID)
	}
	e.setStatus(workflow, core.WorkflowStatusCompleted)
	e.emit(core.NewEvent(workflow.ID, core.EventWorkflowCompleted))
	e.logger.Info("workflow completed", "workflow_id", workflow.ID)
	return nil
}

// Track registers a workflow with the engine without starting it, making
// lifecycle calls (Cancel, Status) addressable before the first Execute.
func (e *Engine) Track(workflow *core.Workflow) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[workflow.ID] = workflow
}

// admit atomically checks the active set, rejects terminal or in-flight
// workflows and marks the execution as active.
func (e *Engine) admit(workflow *core.Workflow) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, running := e.active[workflow.ID]; running {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, workflow.ID)
	}
	if workflow.Status.Terminal() {
		return fmt.Errorf("%w: %s (%s)", ErrWorkflowTerminal, workflow.ID, workflow.Status)
	}
	e.active[workflow.ID] = struct{}{}
	e.workflows[workflow.ID] = workflow
	return nil
}

// Pause suspends a running workflow. The execution loop observes the status
// at the next group boundary and returns; Resume starts a fresh execution
// from the first step.
func (e *Engine) Pause(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	workflow, ok := e.workflows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if workflow.Status != core.WorkflowStatusRunning {
		return fmt.Errorf("%w: %s (%s)", ErrNotRunning, id, workflow.Status)
	}
	workflow.Status = core.WorkflowStatusPaused
	workflow.Touch()
	e.logger.Info("workflow pause requested", "workflow_id", id)
	return nil
}

// Resume re-invokes execution of a paused workflow. Execution restarts from
// the first step rather than the recorded current step; completed work is
// re-dispatched. Partial resume requires durable step results and is not
// implemented.
func (e *Engine) Resume(ctx context.Context, id string) error {
	e.mu.Lock()
	workflow, ok := e.workflows[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if workflow.Status != core.WorkflowStatusPaused {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s (%s)", ErrNotPaused, id, workflow.Status)
	}
	workflow.Status = core.WorkflowStatusCreated
	workflow.Touch()
	e.mu.Unlock()

	return e.Execute(ctx, workflow)
}

// Cancel flips the workflow to CANCELLED and drops it from the active set.
// Cancellation is cooperative: an in-flight agent call or retry sleep is not
// forcibly aborted; its result is discarded when it settles.
func (e *Engine) Cancel(id string) error {
	e.mu.Lock()
	workflow, ok := e.workflows[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if workflow.Status.Terminal() {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s (%s)", ErrWorkflowTerminal, id, workflow.Status)
	}
	workflow.Status = core.WorkflowStatusCancelled
	workflow.Touch()
	delete(e.active, id)
	e.mu.Unlock()

	e.cancelPendingInteractions(id)
	e.pruneResolvedInteractions(id)
	e.logger.Info("workflow cancelled", "workflow_id", id)
	return nil
}

// Status returns the current status of a known workflow, or the empty status
// for unknown ids (see StatusErr for the error-reporting variant).
func (e *Engine) Status(id string) core.WorkflowStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if workflow, ok := e.workflows[id]; ok {
		return workflow.Status
	}
	return ""
}

// StatusErr returns the workflow status, failing with ErrWorkflowNotFound
// for unknown ids.
func (e *Engine) StatusErr(id string) (core.WorkflowStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	workflow, ok := e.workflows[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return workflow.Status, nil
}

// Workflow returns a known workflow by id.
func (e *Engine) Workflow(id string) (*core.Workflow, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	workflow, ok := e.workflows[id]
	return workflow, ok
}

// setStatus transitions the workflow status under the engine lock.
func (e *Engine) setStatus(workflow *core.Workflow, status core.WorkflowStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	workflow.Status = status
	workflow.Touch()
}

// setCurrentStep records the step the execution is positioned at.
func (e *Engine) setCurrentStep(workflow *core.Workflow, stepID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	workflow.CurrentStepID = stepID
	workflow.Touch()
}
