package conductor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/knowledge"
)

// planSchemaExample documents the exact wire shape the completion service
// must produce. Keeping it verbatim in the prompt is what makes parsing
// reliable across providers.
const planSchemaExample = `{
  "name": "short workflow name",
  "description": "what the workflow achieves",
  "confidence": 0.9,
  "steps": [
    {
      "id": "step_1",
      "agentId": "<id of a listed agent>",
      "taskType": "<capability name declared by that agent>",
      "input": {"key": "value", "from_context": "${context.someKey}", "from_step": "${step.step_1.someOutputKey}"},
      "conditions": [{"field": "output.success", "operator": "equals", "value": true}],
      "parallel": false,
      "humanApprovalRequired": false,
      "retryPolicy": {"maxRetries": 3, "backoffStrategy": "exponential", "baseDelay": 1000, "maxDelay": 10000}
    }
  ]
}`

// buildPlanningPrompt assembles the planning prompt from the request, caller
// context, retrieved knowledge snippets and the active agent catalogue.
func buildPlanningPrompt(request string, context map[string]any, snippets []knowledge.SearchResult, agents []core.Agent) string {
	var sb strings.Builder

	sb.WriteString("You are a workflow planner for a multi-agent system. ")
	sb.WriteString("Decompose the request into an ordered list of steps, each bound to one capability of one listed agent.\n\n")

	sb.WriteString("Request:\n")
	sb.WriteString(request)
	sb.WriteString("\n\n")

	if len(context) > 0 {
		sb.WriteString("Context:\n")
		if raw, err := json.Marshal(context); err == nil {
			sb.Write(raw)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(snippets) > 0 {
		sb.WriteString("Relevant knowledge:\n")
		for _, snippet := range snippets {
			fmt.Fprintf(&sb, "- %s\n", snippet.Content)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Available agents:\n")
	for _, agent := range agents {
		fmt.Fprintf(&sb, "- id=%s name=%q domain=%s: %s\n", agent.ID(), agent.Name(), agent.Domain(), agent.Description())
		for _, capability := range agent.Capabilities() {
			fmt.Fprintf(&sb, "  - capability %q: %s", capability.Name, capability.Description)
			if capability.InputSchema != nil {
				if raw, err := json.Marshal(capability.InputSchema); err == nil {
					fmt.Fprintf(&sb, " input=%s", raw)
				}
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("Rules:\n")
	sb.WriteString("- Use only listed agent ids and capability names.\n")
	sb.WriteString("- Mark a step \"parallel\" only when it can run concurrently with the step directly before it.\n")
	sb.WriteString("- Use \"${context.<key>}\" to read workflow context and \"${step.<id>.<key>}\" to read a prior step's output.\n")
	sb.WriteString("- Require human approval for destructive or externally visible actions.\n\n")

	sb.WriteString("Respond with a single JSON object of this exact shape:\n")
	sb.WriteString(planSchemaExample)
	sb.WriteString("\n")

	return sb.String()
}
