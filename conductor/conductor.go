package conductor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/orchestra/completion"
	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/engine"
	"github.com/hupe1980/orchestra/knowledge"
	"github.com/hupe1980/orchestra/logging"
	"github.com/hupe1980/orchestra/registry"
)

// workflowKeyPrefix namespaces persisted workflows in the knowledge store.
const workflowKeyPrefix = "workflow:"

// Options holds configuration overrides passed to New().
type Options struct {
	// Temperature used for planning completions.
	Temperature float64
	// MaxTokens caps the planning completion length.
	MaxTokens int64
	// ContextSnippets limits how many knowledge results feed the prompt.
	ContextSnippets int
	// CreatedBy is stamped on planned workflows.
	CreatedBy string
	// Logger provides structured logging. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Conductor plans workflows from natural language requests and delegates
// their lifecycle to the engine. It keeps its own map of planned workflows so
// lifecycle calls can be addressed by id.
type Conductor struct {
	registry *registry.Registry
	store    knowledge.Store
	service  completion.Service
	engine   *engine.Engine
	logger   logging.Logger
	opts     Options

	mu        sync.RWMutex
	workflows map[string]*core.Workflow
}

// New constructs a Conductor wired to its collaborators.
func New(
	reg *registry.Registry,
	store knowledge.Store,
	service completion.Service,
	eng *engine.Engine,
	optFns ...func(o *Options),
) *Conductor {
	opts := Options{
		Temperature:     0.7,
		MaxTokens:       4096,
		ContextSnippets: 5,
		CreatedBy:       "conductor",
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Conductor{
		registry:  reg,
		store:     store,
		service:   service,
		engine:    eng,
		logger:    opts.Logger,
		opts:      opts,
		workflows: make(map[string]*core.Workflow),
	}
}

// PlanWorkflow turns a request into a validated workflow in CREATED status:
// it retrieves knowledge snippets, enumerates the active agent catalogue,
// asks the completion service for a JSON plan, validates every step against
// the registry and persists the materialized workflow in the knowledge store
// under "workflow:<id>". Planning failures surface synchronously; no
// workflow object is created for an invalid plan.
func (c *Conductor) PlanWorkflow(ctx context.Context, request string, workflowContext map[string]any) (*core.Workflow, error) {
	snippets := c.store.Search(request, c.opts.ContextSnippets)
	agents := c.registry.All()

	prompt := buildPlanningPrompt(request, workflowContext, snippets, agents)
	text, err := c.service.Complete(ctx, completion.Request{
		Prompt:      prompt,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Format:      completion.FormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: completion service: %v", ErrPlanningFailed, err)
	}

	var plan planDocument
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %v", ErrPlanningFailed, err)
	}

	steps := make([]core.WorkflowStep, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		materialized, err := c.materializeStep(step, i)
		if err != nil {
			return nil, err
		}
		steps = append(steps, materialized)
	}

	if workflowContext == nil {
		workflowContext = map[string]any{}
	}
	now := time.Now().UTC()
	workflow := &core.Workflow{
		ID:          core.NewID(),
		Name:        plan.Name,
		Description: plan.Description,
		Steps:       steps,
		Status:      core.WorkflowStatusCreated,
		Context:     workflowContext,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   c.opts.CreatedBy,
		Metadata: map[string]any{
			"request":    request,
			"confidence": plan.Confidence,
		},
	}

	c.persist(workflow)
	c.engine.Track(workflow)
	c.mu.Lock()
	c.workflows[workflow.ID] = workflow
	c.mu.Unlock()

	c.logger.Info("workflow planned", "workflow_id", workflow.ID, "name", workflow.Name, "steps", len(steps), "confidence", plan.Confidence)
	return workflow, nil
}

// ExecuteWorkflow runs a planned workflow to completion via the engine and
// re-persists its settled state. Errors from the engine are passed through.
func (c *Conductor) ExecuteWorkflow(ctx context.Context, id string) error {
	workflow, err := c.workflow(id)
	if err != nil {
		return err
	}
	execErr := c.engine.Execute(ctx, workflow)
	c.persist(workflow)
	return execErr
}

// PauseWorkflow delegates a pause request to the engine.
func (c *Conductor) PauseWorkflow(id string) error {
	if _, err := c.workflow(id); err != nil {
		return err
	}
	return c.engine.Pause(id)
}

// ResumeWorkflow re-invokes execution of a paused workflow and re-persists
// its settled state.
func (c *Conductor) ResumeWorkflow(ctx context.Context, id string) error {
	workflow, err := c.workflow(id)
	if err != nil {
		return err
	}
	execErr := c.engine.Resume(ctx, id)
	c.persist(workflow)
	return execErr
}

// CancelWorkflow delegates a cancel request to the engine and re-persists
// the cancelled workflow.
func (c *Conductor) CancelWorkflow(id string) error {
	workflow, err := c.workflow(id)
	if err != nil {
		return err
	}
	if err := c.engine.Cancel(id); err != nil {
		return err
	}
	c.persist(workflow)
	return nil
}

// WorkflowStatus reports the current status of a planned workflow. The read
// goes through the engine, which guards status mutations with its own lock,
// so polling while an execution is in flight is safe.
func (c *Conductor) WorkflowStatus(id string) (core.WorkflowStatus, error) {
	if _, err := c.workflow(id); err != nil {
		return "", err
	}
	return c.engine.StatusErr(id)
}

// GetWorkflow returns a planned workflow by id. The engine mutates the
// returned workflow while an execution is in flight; read Status through
// WorkflowStatus during concurrent execution.
func (c *Conductor) GetWorkflow(id string) (*core.Workflow, error) {
	return c.workflow(id)
}

// workflow looks up a planned workflow, failing with the engine's NotFound
// sentinel so callers handle one taxonomy.
func (c *Conductor) workflow(id string) (*core.Workflow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	workflow, ok := c.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrWorkflowNotFound, id)
	}
	return workflow, nil
}

// persist upserts the workflow snapshot into the knowledge store. Persistence
// is best-effort bookkeeping; the in-memory map remains authoritative.
func (c *Conductor) persist(workflow *core.Workflow) {
	if err := c.store.Put(workflowKeyPrefix+workflow.ID, workflow, map[string]any{"type": "workflow"}); err != nil {
		c.logger.Warn("failed to persist workflow", "workflow_id", workflow.ID, "error", err)
	}
}
