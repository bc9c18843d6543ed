package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/internal/testutil"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := New()
	agent := testutil.NewStubAgent("a1", "analyze")

	require.NoError(t, reg.Register(agent))

	got, ok := reg.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterRejectsMalformedSchema(t *testing.T) {
	reg := New()
	agent := testutil.NewStubAgent("a1")
	agent.Caps = []core.Capability{{
		ID:   "cap-bad",
		Name: "bad",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"x": map[string]any{"type": "string"}},
			"required":   []any{"y"},
		},
	}}

	err := reg.Register(agent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input schema")
}

func TestRegistry_ReplaceSameID(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testutil.NewStubAgent("a1", "analyze")))

	replacement := testutil.NewStubAgent("a1", "summarize")
	require.NoError(t, reg.Register(replacement))

	assert.Empty(t, reg.ByCapability("analyze"))
	assert.Len(t, reg.ByCapability("summarize"), 1)
	assert.Len(t, reg.All(), 1)
}

func TestRegistry_UnregisterPrunesIndexes(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testutil.NewStubAgent("a1", "analyze", "summarize")))
	require.NoError(t, reg.Register(testutil.NewStubAgent("a2", "analyze")))

	require.NoError(t, reg.Unregister("a1"))

	assert.Empty(t, reg.ByCapability("summarize"))
	assert.Len(t, reg.ByCapability("analyze"), 1)
	assert.Len(t, reg.ByDomain("test"), 1)

	assert.ErrorIs(t, reg.Unregister("a1"), ErrAgentNotFound)
}

func TestRegistry_AllReturnsActiveInRegistrationOrder(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testutil.NewStubAgent("b", "x")))
	require.NoError(t, reg.Register(testutil.NewStubAgent("a", "x")))
	inactive := testutil.NewStubAgent("c", "x")
	inactive.Active = false
	require.NoError(t, reg.Register(inactive))

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID())
	assert.Equal(t, "a", all[1].ID())
}

func TestRegistry_Search(t *testing.T) {
	reg := New()
	writer := testutil.NewStubAgent("writer", "write")
	writer.AgentName = "Report Writer"
	writer.AgentDomain = "reporting"
	require.NoError(t, reg.Register(writer))

	analyst := testutil.NewStubAgent("analyst", "analyze")
	analyst.AgentName = "Data Analyst"
	analyst.AgentDomain = "analytics"
	require.NoError(t, reg.Register(analyst))

	retired := testutil.NewStubAgent("retired", "analyze")
	retired.AgentName = "Retired Analyst"
	retired.AgentDomain = "analytics"
	retired.Active = false
	require.NoError(t, reg.Register(retired))

	byDomain := reg.Search(SearchCriteria{Domain: "analytics"})
	assert.Len(t, byDomain, 2) // includes inactive agents

	active := true
	activeOnly := reg.Search(SearchCriteria{Domain: "analytics", IsActive: &active})
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "analyst", activeOnly[0].ID())

	byName := reg.Search(SearchCriteria{Name: "analyst"})
	assert.Len(t, byName, 2) // case-insensitive substring

	conjunctive := reg.Search(SearchCriteria{Domain: "analytics", Capability: "analyze", Name: "data"})
	require.Len(t, conjunctive, 1)
	assert.Equal(t, "analyst", conjunctive[0].ID())

	assert.Empty(t, reg.Search(SearchCriteria{Domain: "missing"}))
}

func TestRegistry_HasCapability(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testutil.NewStubAgent("a1", "analyze")))

	assert.True(t, reg.HasCapability("a1", "analyze"))
	assert.False(t, reg.HasCapability("a1", "summarize"))
	assert.False(t, reg.HasCapability("missing", "analyze"))
}
