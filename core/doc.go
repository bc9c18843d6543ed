// Package core provides the foundational domain types and interfaces used by
// Orchestra. It defines the core abstractions for:
//
//   - Agents (capability providers dispatched by the workflow engine)
//   - Capabilities (named, schema-described operations an agent exposes)
//   - Workflows, steps, retry policies and conditions (the executable plan)
//   - Tasks (the per-step unit of work handed to an agent)
//   - Human interactions (blocking approval / input requests)
//   - Events (immutable lifecycle records emitted during execution)
//
// The package intentionally keeps implementation concerns (planning, engine
// orchestration, concrete agents, knowledge storage) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core
