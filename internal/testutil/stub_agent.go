package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/orchestra/core"
)

// StubAgent is a configurable core.Agent for tests. It records every task it
// receives and either delegates to ExecuteFn or returns a canned successful
// result. Safe for concurrent Execute calls.
type StubAgent struct {
	AgentID      string
	AgentName    string
	AgentDomain  string
	Active       bool
	Caps         []core.Capability
	ExecuteFn    func(ctx context.Context, task *core.Task) (*core.ExecutionResult, error)
	ValidateFn   func(input map[string]any) error
	mu           sync.Mutex
	executedTask []*core.Task
}

// NewStubAgent creates an active stub declaring one capability per name, with
// domain "test".
func NewStubAgent(id string, capabilityNames ...string) *StubAgent {
	caps := make([]core.Capability, 0, len(capabilityNames))
	for _, name := range capabilityNames {
		caps = append(caps, core.Capability{ID: "cap-" + name, Name: name, Domain: "test"})
	}
	return &StubAgent{AgentID: id, AgentName: id, AgentDomain: "test", Active: true, Caps: caps}
}

// ID implements core.Agent.
func (a *StubAgent) ID() string { return a.AgentID }

// Name implements core.Agent.
func (a *StubAgent) Name() string { return a.AgentName }

// Description implements core.Agent.
func (a *StubAgent) Description() string { return "stub agent " + a.AgentID }

// Domain implements core.Agent.
func (a *StubAgent) Domain() string { return a.AgentDomain }

// Version implements core.Agent.
func (a *StubAgent) Version() string { return "0.0.1" }

// IsActive implements core.Agent.
func (a *StubAgent) IsActive() bool { return a.Active }

// Capabilities implements core.Agent.
func (a *StubAgent) Capabilities() []core.Capability { return a.Caps }

// ValidateInput delegates to ValidateFn when configured.
func (a *StubAgent) ValidateInput(input map[string]any) error {
	if a.ValidateFn != nil {
		return a.ValidateFn(input)
	}
	return nil
}

// Execute implements core.Agent, recording the task before delegating.
func (a *StubAgent) Execute(ctx context.Context, task *core.Task) (*core.ExecutionResult, error) {
	a.mu.Lock()
	a.executedTask = append(a.executedTask, task)
	a.mu.Unlock()
	if a.ExecuteFn != nil {
		return a.ExecuteFn(ctx, task)
	}
	return &core.ExecutionResult{Success: true, Output: map[string]any{"echo": task.Input}}, nil
}

// ExecutedTasks returns the tasks received so far.
func (a *StubAgent) ExecutedTasks() []*core.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*core.Task, len(a.executedTask))
	copy(out, a.executedTask)
	return out
}

// Executions returns how many tasks were received.
func (a *StubAgent) Executions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.executedTask)
}
