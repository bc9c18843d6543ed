package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/orchestra/core"
)

func TestBaseAgent_Defaults(t *testing.T) {
	base := NewBaseAgent("a1", "Analyst", "analytics", core.Capability{ID: "c1", Name: "analyze"})

	assert.Equal(t, "a1", base.ID())
	assert.Equal(t, "Analyst", base.Name())
	assert.Equal(t, "Agent Analyst", base.Description())
	assert.Equal(t, "analytics", base.Domain())
	assert.Equal(t, "1.0.0", base.Version())
	assert.True(t, base.IsActive())
	assert.Len(t, base.Capabilities(), 1)

	base.SetDescription("does analysis")
	base.SetVersion("2.1.0")
	base.SetActive(false)
	assert.Equal(t, "does analysis", base.Description())
	assert.Equal(t, "2.1.0", base.Version())
	assert.False(t, base.IsActive())
}

func TestFunctionAgent_ExecuteDispatchesByTaskType(t *testing.T) {
	a := NewFunctionAgent("helper", "Helper", "test").
		WithCapability(core.Capability{ID: "c1", Name: "greet"}, func(_ context.Context, task *core.Task) (*core.ExecutionResult, error) {
			name, _ := task.Input["name"].(string)
			return &core.ExecutionResult{Success: true, Output: map[string]any{"greeting": "hello " + name}}, nil
		}).
		WithCapability(core.Capability{ID: "c2", Name: "fail"}, func(_ context.Context, task *core.Task) (*core.ExecutionResult, error) {
			return nil, errors.New("told to fail")
		})

	task := core.NewTask("wf-1", "greet", map[string]any{"name": "sam"}, 0)
	result, err := a.Execute(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, "hello sam", result.Output["greeting"])

	_, err = a.Execute(context.Background(), core.NewTask("wf-1", "fail", nil, 0))
	assert.EqualError(t, err, "told to fail")

	_, err = a.Execute(context.Background(), core.NewTask("wf-1", "unknown", nil, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler")
}

func TestFunctionAgent_ValidateInput(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"query": map[string]any{"type": "string"}},
		"required":   []string{"query"},
	}

	noop := func(_ context.Context, _ *core.Task) (*core.ExecutionResult, error) {
		return &core.ExecutionResult{Success: true}, nil
	}

	// No schemas: any input passes.
	open := NewFunctionAgent("open", "Open", "test").
		WithCapability(core.Capability{ID: "c1", Name: "anything"}, noop)
	assert.NoError(t, open.ValidateInput(map[string]any{"whatever": 1}))

	strict := NewFunctionAgent("strict", "Strict", "test").
		WithCapability(core.Capability{ID: "c1", Name: "search", InputSchema: schema}, noop)
	assert.NoError(t, strict.ValidateInput(map[string]any{"query": "go"}))
	assert.Error(t, strict.ValidateInput(map[string]any{"query": 42}))
	assert.Error(t, strict.ValidateInput(map[string]any{}))

	// Input passing any one capability schema is accepted.
	mixed := NewFunctionAgent("mixed", "Mixed", "test").
		WithCapability(core.Capability{ID: "c1", Name: "search", InputSchema: schema}, noop).
		WithCapability(core.Capability{ID: "c2", Name: "count", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"n": map[string]any{"type": "integer"}},
			"required":   []string{"n"},
		}}, noop)
	assert.NoError(t, mixed.ValidateInput(map[string]any{"n": 3}))
	assert.Error(t, mixed.ValidateInput(map[string]any{"other": true}))
}

func TestFunctionAgent_WithTypedCapability(t *testing.T) {
	type searchInput struct {
		Query string `json:"query" description:"Search query"`
		Limit int    `json:"limit,omitempty"`
	}

	noop := func(_ context.Context, _ *core.Task) (*core.ExecutionResult, error) {
		return &core.ExecutionResult{Success: true}, nil
	}

	a := NewFunctionAgent("typed", "Typed", "test").
		WithTypedCapability(core.Capability{ID: "c1", Name: "search", Domain: "test"}, searchInput{}, noop)

	require.Len(t, a.Capabilities(), 1)
	schema := a.Capabilities()[0].InputSchema
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"query"}, schema["required"])
	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "string", "description": "Search query"}, properties["query"])

	// The derived schema drives input validation.
	assert.NoError(t, a.ValidateInput(map[string]any{"query": "go"}))
	assert.NoError(t, a.ValidateInput(map[string]any{"query": "go", "limit": 5}))
	assert.Error(t, a.ValidateInput(map[string]any{"limit": 5}))

	// A capability carrying its own schema keeps it.
	explicit := map[string]any{"type": "object", "properties": map[string]any{}}
	b := NewFunctionAgent("explicit", "Explicit", "test").
		WithTypedCapability(core.Capability{ID: "c1", Name: "any", InputSchema: explicit}, searchInput{}, noop)
	assert.Equal(t, explicit, b.Capabilities()[0].InputSchema)
}
