package core

import "time"

// InteractionStatus represents the lifecycle state of a human interaction.
// An interaction transitions pending → {completed|cancelled} at most once.
type InteractionStatus string

const (
	// InteractionPending marks an interaction awaiting a response.
	InteractionPending InteractionStatus = "pending"
	// InteractionCompleted marks an interaction resolved by a responder.
	InteractionCompleted InteractionStatus = "completed"
	// InteractionCancelled marks an interaction cancelled before a response.
	InteractionCancelled InteractionStatus = "cancelled"
)

// InteractionTypeApproval is the interaction type raised by steps gated on
// human approval before dispatch.
const InteractionTypeApproval = "approval"

// HumanInteraction is a blocking approval / input request raised while a
// workflow step is suspended. It is created when a gated step is reached,
// resolved exactly once by an external responder, and never reused.
type HumanInteraction struct {
	ID          string            `json:"id"`
	WorkflowID  string            `json:"workflow_id"`
	StepID      string            `json:"step_id"`
	Type        string            `json:"type"`
	Prompt      string            `json:"prompt"`
	Options     []string          `json:"options,omitempty"`
	Response    any               `json:"response,omitempty"`
	Status      InteractionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
}

// NewHumanInteraction creates a pending interaction for a workflow step.
func NewHumanInteraction(workflowID, stepID, interactionType, prompt string) *HumanInteraction {
	return &HumanInteraction{
		ID:         NewID(),
		WorkflowID: workflowID,
		StepID:     stepID,
		Type:       interactionType,
		Prompt:     prompt,
		Status:     InteractionPending,
		CreatedAt:  time.Now().UTC(),
	}
}
