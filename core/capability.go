package core

// Capability declaratively describes a named operation an agent exposes.
//
// Input / Output schemas follow the minimal JSON-Schema-like shape used
// elsewhere in the project (type, properties, required). They are structural
// hints validated at registration time, not strict type contracts.
// Capability identity is the ID field; Name is the dispatch key matched
// against WorkflowStep.TaskType.
type Capability struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	InputSchema   map[string]any `json:"input_schema,omitempty"`
	OutputSchema  map[string]any `json:"output_schema,omitempty"`
	Domain        string         `json:"domain"`
	RequiredTools []string       `json:"required_tools,omitempty"`
}
