package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/orchestra/core"
)

// awaitApproval suspends a gated step until its interaction resolves. It
// creates a pending HumanInteraction, emits human_input_required carrying it,
// then blocks on the interaction's done channel — a wait/notify primitive
// signalled by Respond / CancelInteraction — bounded by the configured
// approval timeout. The step's agent is never dispatched unless approval
// completes.
func (e *Engine) awaitApproval(ctx context.Context, workflow *core.Workflow, step core.WorkflowStep) error {
	record := core.NewHumanInteraction(
		workflow.ID,
		step.ID,
		core.InteractionTypeApproval,
		fmt.Sprintf("Approve execution of step %s (%s)?", step.ID, step.TaskType),
	)
	inter := &interaction{record: record, done: make(chan struct{})}

	e.interactionsMu.Lock()
	e.interactions[record.ID] = inter
	e.interactionsMu.Unlock()

	event := core.NewStepEvent(workflow.ID, step.ID, core.EventHumanInputRequired)
	event.Interaction = record
	e.emit(event)
	e.logger.Info("human input required", "workflow_id", workflow.ID, "step_id", step.ID, "interaction_id", record.ID)

	timer := time.NewTimer(e.config.ApprovalTimeout)
	defer timer.Stop()

	select {
	case <-inter.done:
		e.interactionsMu.Lock()
		status := record.Status
		e.interactionsMu.Unlock()
		if status == core.InteractionCancelled {
			return fmt.Errorf("%w: interaction %s", ErrApprovalCancelled, record.ID)
		}
		return nil
	case <-timer.C:
		// Resolve the interaction so a late Respond is rejected instead of
		// approving a step that already failed.
		e.resolve(record.ID, nil, core.InteractionCancelled)
		return fmt.Errorf("%w: interaction %s", ErrApprovalTimeout, record.ID)
	case <-ctx.Done():
		e.resolve(record.ID, nil, core.InteractionCancelled)
		return ctx.Err()
	}
}

// Respond resolves a pending interaction with the given response, unblocking
// the gated step. Responding to an unknown interaction fails with
// ErrInteractionNotFound; responding to an already resolved interaction fails
// with ErrInteractionResolved. An interaction resolves exactly once.
func (e *Engine) Respond(interactionID string, response any) error {
	return e.resolve(interactionID, response, core.InteractionCompleted)
}

// CancelInteraction resolves a pending interaction as cancelled, failing the
// gated step with ErrApprovalCancelled.
func (e *Engine) CancelInteraction(interactionID string) error {
	return e.resolve(interactionID, nil, core.InteractionCancelled)
}

// Interaction returns a known interaction record by id.
func (e *Engine) Interaction(interactionID string) (*core.HumanInteraction, bool) {
	e.interactionsMu.Lock()
	defer e.interactionsMu.Unlock()
	inter, ok := e.interactions[interactionID]
	if !ok {
		return nil, false
	}
	return inter.record, true
}

// resolve performs the single pending → {completed|cancelled} transition and
// closes the wait channel.
func (e *Engine) resolve(interactionID string, response any, status core.InteractionStatus) error {
	e.interactionsMu.Lock()
	defer e.interactionsMu.Unlock()

	inter, ok := e.interactions[interactionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInteractionNotFound, interactionID)
	}
	if inter.record.Status != core.InteractionPending {
		return fmt.Errorf("%w: %s (%s)", ErrInteractionResolved, interactionID, inter.record.Status)
	}

	now := time.Now().UTC()
	inter.record.Status = status
	inter.record.Response = response
	inter.record.RespondedAt = &now
	close(inter.done)
	return nil
}

// pruneResolvedInteractions drops every resolved interaction of a workflow.
// Called once the workflow reaches a terminal state, so the interactions map
// does not grow without bound. Waiters that captured the record before the
// prune still observe its final status.
func (e *Engine) pruneResolvedInteractions(workflowID string) {
	e.interactionsMu.Lock()
	defer e.interactionsMu.Unlock()
	for id, inter := range e.interactions {
		if inter.record.WorkflowID == workflowID && inter.record.Status != core.InteractionPending {
			delete(e.interactions, id)
		}
	}
}

// cancelPendingInteractions resolves every pending interaction of a workflow
// as cancelled. Called when the workflow itself is cancelled so gated steps
// do not linger until the approval timeout.
func (e *Engine) cancelPendingInteractions(workflowID string) {
	e.interactionsMu.Lock()
	defer e.interactionsMu.Unlock()
	for _, inter := range e.interactions {
		if inter.record.WorkflowID != workflowID || inter.record.Status != core.InteractionPending {
			continue
		}
		now := time.Now().UTC()
		inter.record.Status = core.InteractionCancelled
		inter.record.RespondedAt = &now
		close(inter.done)
	}
}
