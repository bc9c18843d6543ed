package conductor

import "fmt"

var (
	// ErrPlanningFailed is returned when the completion service produced no
	// usable plan: a failed call, non-JSON output or a plan referencing
	// unknown agents or capabilities.
	ErrPlanningFailed = fmt.Errorf("workflow planning failed")
	// ErrUnknownAgent marks a plan step whose agentId is not registered.
	ErrUnknownAgent = fmt.Errorf("plan references unknown agent")
	// ErrCapabilityMismatch marks a plan step whose taskType is not declared
	// by the referenced agent.
	ErrCapabilityMismatch = fmt.Errorf("agent does not declare capability")
)
