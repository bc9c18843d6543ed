// Package conductor implements the planning agent: it turns a natural
// language request into a validated, executable workflow by combining
// knowledge-store context with the registry's agent catalogue, invoking the
// completion service for a JSON plan and materializing it into core types.
// Lifecycle operations are thin delegations to the workflow engine.
package conductor
