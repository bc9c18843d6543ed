package registry

import "fmt"

var (
	// ErrAgentNotFound is returned when no agent with the given id is registered.
	ErrAgentNotFound = fmt.Errorf("agent not found")
)
