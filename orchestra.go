// Package orchestra provides a high-level façade over the conductor, workflow
// engine, capability registry and knowledge store, enabling rapid
// construction of multi-agent orchestration systems. Most applications
// interact with this package by:
//  1. Creating an Orchestra via New() with a completion service
//  2. Registering one or more agents (capability providers)
//  3. Planning workflows from natural language requests (PlanWorkflow)
//  4. Executing them (ExecuteWorkflow) and observing lifecycle events (Subscribe)
//
// The façade delegates planning to conductor.Conductor and scheduling to
// engine.Engine while keeping setup ergonomics concise, and tracks coarse run
// metrics across workflows. All defaults are safe for local development and
// testing; production deployments typically supply a real completion service,
// a durable knowledge backend and a structured logger.
package orchestra

import (
	"context"
	"sync"

	"github.com/hupe1980/orchestra/completion"
	"github.com/hupe1980/orchestra/conductor"
	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/engine"
	"github.com/hupe1980/orchestra/knowledge"
	"github.com/hupe1980/orchestra/logging"
	"github.com/hupe1980/orchestra/registry"
)

// Options configures the Orchestra instance.
type Options struct {
	// EngineConfig tunes approval timeout and event buffering.
	EngineConfig engine.Config
	// Registry overrides the default empty registry.
	Registry *registry.Registry
	// Knowledge overrides the default in-memory knowledge store.
	Knowledge knowledge.Store
	// PlanningTemperature is used for planning completions.
	PlanningTemperature float64
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// MetricsSnapshot carries the coarse run counters tracked by the façade.
type MetricsSnapshot struct {
	WorkflowsPlanned   int64 `json:"workflows_planned"`
	WorkflowsExecuted  int64 `json:"workflows_executed"`
	WorkflowsCompleted int64 `json:"workflows_completed"`
	WorkflowsFailed    int64 `json:"workflows_failed"`
	WorkflowsCancelled int64 `json:"workflows_cancelled"`
}

// Orchestra is the high-level façade aggregating the planner, engine,
// registry and knowledge store.
type Orchestra struct {
	registry  *registry.Registry
	knowledge knowledge.Store
	engine    *engine.Engine
	conductor *conductor.Conductor
	logger    logging.Logger

	metricsMu sync.Mutex
	metrics   MetricsSnapshot
}

// New creates a new Orchestra instance around the given completion service.
// Any unset collaborator defaults to an in-memory implementation.
func New(service completion.Service, optFns ...func(o *Options)) *Orchestra {
	opts := Options{
		EngineConfig:        engine.DefaultConfig,
		PlanningTemperature: 0.7,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(func(o *registry.Options) { o.Logger = opts.Logger })
	}
	if opts.Knowledge == nil {
		opts.Knowledge = knowledge.NewInMemoryStore()
	}

	eng := engine.New(opts.Registry, func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Logger = opts.Logger
	})
	cond := conductor.New(opts.Registry, opts.Knowledge, service, eng, func(o *conductor.Options) {
		o.Temperature = opts.PlanningTemperature
		o.Logger = opts.Logger
	})

	return &Orchestra{
		registry:  opts.Registry,
		knowledge: opts.Knowledge,
		engine:    eng,
		conductor: cond,
		logger:    opts.Logger,
	}
}

// RegisterAgent makes an agent available for planning and dispatch.
func (o *Orchestra) RegisterAgent(agent core.Agent) error {
	return o.registry.Register(agent)
}

// UnregisterAgent removes an agent and its index entries.
func (o *Orchestra) UnregisterAgent(id string) error {
	return o.registry.Unregister(id)
}

// Registry exposes the capability registry for advanced lookups.
func (o *Orchestra) Registry() *registry.Registry { return o.registry }

// PlanWorkflow turns a natural language request into an executable workflow.
func (o *Orchestra) PlanWorkflow(ctx context.Context, request string, workflowContext map[string]any) (*core.Workflow, error) {
	workflow, err := o.conductor.PlanWorkflow(ctx, request, workflowContext)
	if err != nil {
		return nil, err
	}
	o.count(func(m *MetricsSnapshot) { m.WorkflowsPlanned++ })
	return workflow, nil
}

// ExecuteWorkflow runs a planned workflow to completion.
func (o *Orchestra) ExecuteWorkflow(ctx context.Context, id string) error {
	o.count(func(m *MetricsSnapshot) { m.WorkflowsExecuted++ })
	err := o.conductor.ExecuteWorkflow(ctx, id)
	o.observeOutcome(id)
	return err
}

// PauseWorkflow suspends a running workflow at the next group boundary.
func (o *Orchestra) PauseWorkflow(id string) error {
	return o.conductor.PauseWorkflow(id)
}

// ResumeWorkflow re-invokes execution of a paused workflow.
func (o *Orchestra) ResumeWorkflow(ctx context.Context, id string) error {
	err := o.conductor.ResumeWorkflow(ctx, id)
	o.observeOutcome(id)
	return err
}

// CancelWorkflow cancels a workflow cooperatively.
func (o *Orchestra) CancelWorkflow(id string) error {
	if err := o.conductor.CancelWorkflow(id); err != nil {
		return err
	}
	o.count(func(m *MetricsSnapshot) { m.WorkflowsCancelled++ })
	return nil
}

// WorkflowStatus reports the current status of a planned workflow.
func (o *Orchestra) WorkflowStatus(id string) (core.WorkflowStatus, error) {
	return o.conductor.WorkflowStatus(id)
}

// GetWorkflow returns a planned workflow by id.
func (o *Orchestra) GetWorkflow(id string) (*core.Workflow, error) {
	return o.conductor.GetWorkflow(id)
}

// RespondToHumanInteraction resolves a pending approval request, unblocking
// the gated step.
func (o *Orchestra) RespondToHumanInteraction(interactionID string, response any) error {
	return o.engine.Respond(interactionID, response)
}

// Subscribe registers a lifecycle event consumer. See engine.Engine.Subscribe.
func (o *Orchestra) Subscribe() (<-chan core.Event, func()) {
	return o.engine.Subscribe()
}

// EventHistory returns the ordered events emitted for a workflow.
func (o *Orchestra) EventHistory(workflowID string) []core.Event {
	return o.engine.History(workflowID)
}

// AddKnowledge indexes a document used as planning context.
func (o *Orchestra) AddKnowledge(content string, metadata map[string]any) (string, error) {
	return o.knowledge.AddDocument(content, metadata)
}

// SearchKnowledge performs a keyword search over the knowledge store.
func (o *Orchestra) SearchKnowledge(query string, limit int) []knowledge.SearchResult {
	return o.knowledge.Search(query, limit)
}

// Metrics returns a snapshot of the coarse run counters.
func (o *Orchestra) Metrics() MetricsSnapshot {
	o.metricsMu.Lock()
	defer o.metricsMu.Unlock()
	return o.metrics
}

func (o *Orchestra) count(update func(m *MetricsSnapshot)) {
	o.metricsMu.Lock()
	defer o.metricsMu.Unlock()
	update(&o.metrics)
}

// observeOutcome folds the settled workflow status into the counters.
func (o *Orchestra) observeOutcome(id string) {
	status, err := o.conductor.WorkflowStatus(id)
	if err != nil {
		return
	}
	switch status {
	case core.WorkflowStatusCompleted:
		o.count(func(m *MetricsSnapshot) { m.WorkflowsCompleted++ })
	case core.WorkflowStatusFailed:
		o.count(func(m *MetricsSnapshot) { m.WorkflowsFailed++ })
	}
}
