package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/internal/util"
)

// Handler implements one capability of a FunctionAgent.
type Handler func(ctx context.Context, task *core.Task) (*core.ExecutionResult, error)

// FunctionAgent is a generic adapter that exposes plain Go functions as a
// dispatchable agent. Each declared capability maps to one handler; task
// input is validated against the capability's input schema before the handler
// runs.
//
// A FunctionAgent has no internal mutable state besides the embedded
// BaseAgent activity flag and is safe for concurrent use.
type FunctionAgent struct {
	BaseAgent
	handlers map[string]Handler
}

var (
	_ core.Agent          = (*FunctionAgent)(nil)
	_ core.InputValidator = (*FunctionAgent)(nil)
)

// NewFunctionAgent constructs a FunctionAgent. Capabilities are declared via
// WithCapability calls on the returned agent.
//
// Example:
//
//	research := agent.NewFunctionAgent("researcher", "Researcher", "research").
//	    WithCapability(core.Capability{
//	        ID:   "cap-search",
//	        Name: "web_search",
//	        Description: "Search the web for a query",
//	        Domain: "research",
//	        InputSchema: map[string]any{
//	            "type": "object",
//	            "properties": map[string]any{"query": map[string]any{"type": "string"}},
//	            "required": []string{"query"},
//	        },
//	    }, searchHandler)
func NewFunctionAgent(id, name, domain string) *FunctionAgent {
	return &FunctionAgent{
		BaseAgent: NewBaseAgent(id, name, domain),
		handlers:  make(map[string]Handler),
	}
}

// WithCapability declares a capability and binds its handler. Returns the
// agent for chaining.
func (a *FunctionAgent) WithCapability(capability core.Capability, handler Handler) *FunctionAgent {
	a.capabilities = append(a.capabilities, capability)
	a.handlers[capability.Name] = handler
	return a
}

// WithTypedCapability declares a capability whose input schema is derived from
// the payload struct's json tags, then binds its handler. Fields without
// omitempty become required. An explicit InputSchema on the capability wins
// over the derived one. Returns the agent for chaining.
//
// Example:
//
//	type searchInput struct {
//	    Query string `json:"query" description:"Search query"`
//	    Limit int    `json:"limit,omitempty"`
//	}
//
//	research := agent.NewFunctionAgent("researcher", "Researcher", "research").
//	    WithTypedCapability(core.Capability{
//	        ID:     "cap-search",
//	        Name:   "web_search",
//	        Domain: "research",
//	    }, searchInput{}, searchHandler)
func (a *FunctionAgent) WithTypedCapability(capability core.Capability, payload any, handler Handler) *FunctionAgent {
	if capability.InputSchema == nil {
		capability.InputSchema = util.CreateSchema(payload)
	}
	return a.WithCapability(capability, handler)
}

// ValidateInput implements core.InputValidator. The input is accepted when it
// satisfies the schema of at least one declared capability; agents without
// schemas accept any input. The first schema's error is surfaced when every
// schema rejects.
func (a *FunctionAgent) ValidateInput(input map[string]any) error {
	var firstErr error
	schemas := 0
	for _, capability := range a.capabilities {
		if capability.InputSchema == nil {
			continue
		}
		schemas++
		err := util.ValidateParameters(input, capability.InputSchema)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if schemas == 0 {
		return nil
	}
	return firstErr
}

// Execute dispatches the task to the handler bound to its capability name.
func (a *FunctionAgent) Execute(ctx context.Context, task *core.Task) (*core.ExecutionResult, error) {
	handler, ok := a.handlers[task.Type]
	if !ok {
		return nil, fmt.Errorf("agent %s has no handler for capability %s", a.ID(), task.Type)
	}
	return handler(ctx, task)
}
