// Package agent provides building blocks for capability providers: BaseAgent
// supplies the identity surface of core.Agent for embedding in concrete
// implementations, and FunctionAgent turns plain Go functions into
// dispatchable agents with schema-validated inputs.
package agent
