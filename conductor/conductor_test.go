package conductor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/orchestra/completion"
	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/engine"
	"github.com/hupe1980/orchestra/internal/testutil"
	"github.com/hupe1980/orchestra/knowledge"
	"github.com/hupe1980/orchestra/registry"
)

type fixture struct {
	conductor *Conductor
	registry  *registry.Registry
	store     *knowledge.InMemoryStore
	service   *completion.MockService
}

func newFixture(t *testing.T, plan string, agents ...core.Agent) *fixture {
	t.Helper()
	reg := registry.New()
	for _, a := range agents {
		require.NoError(t, reg.Register(a))
	}
	store := knowledge.NewInMemoryStore()
	service := completion.NewMockService(plan)
	eng := engine.New(reg)
	return &fixture{
		conductor: New(reg, store, service, eng),
		registry:  reg,
		store:     store,
		service:   service,
	}
}

const validPlan = `{
  "name": "research plan",
  "description": "research and summarize",
  "confidence": 0.85,
  "steps": [
    {"id": "gather", "agentId": "researcher", "taskType": "research", "input": {"topic": "${context.topic}"}},
    {"agentId": "researcher", "taskType": "research", "parallel": true}
  ]
}`

func TestPlanWorkflow(t *testing.T) {
	f := newFixture(t, validPlan, testutil.NewStubAgent("researcher", "research"))

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "research go", map[string]any{"topic": "go"})
	require.NoError(t, err)

	assert.Equal(t, "research plan", workflow.Name)
	assert.Equal(t, core.WorkflowStatusCreated, workflow.Status)
	assert.Equal(t, "conductor", workflow.CreatedBy)
	assert.Equal(t, "research go", workflow.Metadata["request"])
	assert.Equal(t, 0.85, workflow.Metadata["confidence"])

	require.Len(t, workflow.Steps, 2)
	assert.Equal(t, "gather", workflow.Steps[0].ID)
	// Missing step ids are generated from the 1-based position.
	assert.Equal(t, "step_2", workflow.Steps[1].ID)
	assert.True(t, workflow.Steps[1].Parallel)
	assert.NotNil(t, workflow.Steps[1].Input)

	// Steps without a declared retry policy get the default.
	require.NotNil(t, workflow.Steps[0].RetryPolicy)
	assert.Equal(t, core.DefaultRetryPolicy(), *workflow.Steps[0].RetryPolicy)

	// The planned workflow is persisted in the knowledge store.
	persisted, ok := f.store.Get("workflow:" + workflow.ID)
	require.True(t, ok)
	assert.Same(t, workflow, persisted)
}

func TestPlanWorkflow_NilContextBecomesEmpty(t *testing.T) {
	f := newFixture(t, validPlan, testutil.NewStubAgent("researcher", "research"))

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "research go", nil)
	require.NoError(t, err)
	assert.NotNil(t, workflow.Context)
}

func TestPlanWorkflow_RetryPolicyFromWire(t *testing.T) {
	plan := `{
	  "name": "retryable",
	  "confidence": 0.8,
	  "steps": [
	    {"id": "s1", "agentId": "researcher", "taskType": "research",
	     "retryPolicy": {"maxRetries": 2, "backoffStrategy": "linear", "baseDelay": 500, "maxDelay": 2000}}
	  ]
	}`
	f := newFixture(t, plan, testutil.NewStubAgent("researcher", "research"))

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.NoError(t, err)

	policy := workflow.Steps[0].RetryPolicy
	require.NotNil(t, policy)
	assert.Equal(t, 2, policy.MaxRetries)
	assert.Equal(t, core.BackoffLinear, policy.Backoff)
	// Wire delays are milliseconds.
	assert.Equal(t, 500*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 2*time.Second, policy.MaxDelay)
}

func TestPlanWorkflow_InvalidJSON(t *testing.T) {
	f := newFixture(t, "this is not json", testutil.NewStubAgent("researcher", "research"))

	_, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)

	// No workflow object is created for an invalid plan.
	assert.Empty(t, f.store.Search("workflow", 10))
}

func TestPlanWorkflow_CompletionFailure(t *testing.T) {
	f := newFixture(t, "", testutil.NewStubAgent("researcher", "research")) // empty fallback errors

	_, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)
}

func TestPlanWorkflow_UnknownAgent(t *testing.T) {
	f := newFixture(t, validPlan) // registry is empty

	_, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestPlanWorkflow_InactiveAgent(t *testing.T) {
	inactive := testutil.NewStubAgent("researcher", "research")
	inactive.Active = false
	f := newFixture(t, validPlan, inactive)

	_, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestPlanWorkflow_CapabilityMismatch(t *testing.T) {
	f := newFixture(t, validPlan, testutil.NewStubAgent("researcher", "translate"))

	_, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapabilityMismatch)
}

func TestExecuteWorkflow_EndToEnd(t *testing.T) {
	stub := testutil.NewStubAgent("researcher", "research")
	f := newFixture(t, validPlan, stub)

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "go", map[string]any{"topic": "go"})
	require.NoError(t, err)

	require.NoError(t, f.conductor.ExecuteWorkflow(context.Background(), workflow.ID))
	status, err := f.conductor.WorkflowStatus(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, core.WorkflowStatusCompleted, status)
	assert.Equal(t, 2, stub.Executions())

	// The context reference was resolved before dispatch. The two steps form
	// one parallel group, so task order is not deterministic.
	var topics []any
	for _, task := range stub.ExecutedTasks() {
		topics = append(topics, task.Input["topic"])
	}
	assert.Contains(t, topics, "go")
}

func TestWorkflowStatus_ConcurrentWithExecution(t *testing.T) {
	release := make(chan struct{})
	stub := testutil.NewStubAgent("researcher", "research")
	stub.ExecuteFn = func(ctx context.Context, task *core.Task) (*core.ExecutionResult, error) {
		<-release
		return &core.ExecutionResult{Success: true}, nil
	}
	f := newFixture(t, validPlan, stub)

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- f.conductor.ExecuteWorkflow(context.Background(), workflow.ID) }()

	// Poll the status while the engine mutates the workflow. The read is
	// synchronized through the engine, so it must never observe a torn value.
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		for i := 0; i < 200; i++ {
			status, err := f.conductor.WorkflowStatus(workflow.ID)
			assert.NoError(t, err)
			switch status {
			case core.WorkflowStatusCreated, core.WorkflowStatusRunning, core.WorkflowStatusCompleted:
			default:
				t.Errorf("unexpected status %q", status)
			}
		}
	}()

	require.Eventually(t, func() bool {
		status, err := f.conductor.WorkflowStatus(workflow.ID)
		return err == nil && status == core.WorkflowStatusRunning
	}, time.Second, time.Millisecond)

	<-polled
	close(release)
	require.NoError(t, <-errCh)

	status, err := f.conductor.WorkflowStatus(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, core.WorkflowStatusCompleted, status)
}

func TestLifecycle_UnknownWorkflow(t *testing.T) {
	f := newFixture(t, validPlan)

	assert.ErrorIs(t, f.conductor.ExecuteWorkflow(context.Background(), "missing"), engine.ErrWorkflowNotFound)
	assert.ErrorIs(t, f.conductor.PauseWorkflow("missing"), engine.ErrWorkflowNotFound)
	assert.ErrorIs(t, f.conductor.ResumeWorkflow(context.Background(), "missing"), engine.ErrWorkflowNotFound)
	assert.ErrorIs(t, f.conductor.CancelWorkflow("missing"), engine.ErrWorkflowNotFound)

	_, err := f.conductor.WorkflowStatus("missing")
	assert.ErrorIs(t, err, engine.ErrWorkflowNotFound)
	_, err = f.conductor.GetWorkflow("missing")
	assert.ErrorIs(t, err, engine.ErrWorkflowNotFound)
}

func TestCancelWorkflow(t *testing.T) {
	f := newFixture(t, validPlan, testutil.NewStubAgent("researcher", "research"))

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.NoError(t, err)

	require.NoError(t, f.conductor.CancelWorkflow(workflow.ID))
	status, err := f.conductor.WorkflowStatus(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, core.WorkflowStatusCancelled, status)

	// A cancelled workflow cannot be executed.
	assert.ErrorIs(t, f.conductor.ExecuteWorkflow(context.Background(), workflow.ID), engine.ErrWorkflowTerminal)
}

func TestMaterializeRetryPolicy_FillsInvalidFields(t *testing.T) {
	defaults := core.DefaultRetryPolicy()

	negative := -1
	policy := materializeRetryPolicy(&planRetryPolicy{MaxRetries: &negative, BackoffStrategy: "bogus", BaseDelayMillis: 0, MaxDelayMillis: -5})
	require.NotNil(t, policy)
	assert.Equal(t, defaults, *policy)

	assert.Equal(t, defaults, *materializeRetryPolicy(nil))
}

func TestMaterializeRetryPolicy_AbsentVersusZeroMaxRetries(t *testing.T) {
	// An omitted maxRetries keeps the default budget.
	policy := materializeRetryPolicy(&planRetryPolicy{BackoffStrategy: "linear"})
	require.NotNil(t, policy)
	assert.Equal(t, core.DefaultRetryPolicy().MaxRetries, policy.MaxRetries)
	assert.Equal(t, core.BackoffLinear, policy.Backoff)

	// An explicit zero disables retries.
	zero := 0
	policy = materializeRetryPolicy(&planRetryPolicy{MaxRetries: &zero})
	require.NotNil(t, policy)
	assert.Equal(t, 0, policy.MaxRetries)
}

func TestPlanWorkflow_RetryPolicyWithoutMaxRetries(t *testing.T) {
	plan := `{
	  "name": "retryable",
	  "confidence": 0.8,
	  "steps": [
	    {"id": "s1", "agentId": "researcher", "taskType": "research",
	     "retryPolicy": {"backoffStrategy": "linear"}}
	  ]
	}`
	f := newFixture(t, plan, testutil.NewStubAgent("researcher", "research"))

	workflow, err := f.conductor.PlanWorkflow(context.Background(), "go", nil)
	require.NoError(t, err)

	policy := workflow.Steps[0].RetryPolicy
	require.NotNil(t, policy)
	assert.Equal(t, core.DefaultRetryPolicy().MaxRetries, policy.MaxRetries)
	assert.Equal(t, core.BackoffLinear, policy.Backoff)
}
