// Package engine implements the workflow scheduler and state machine. It
// partitions plan steps into execution groups, dispatches them to agents via
// the registry, applies per-step retry and backoff, evaluates post-execution
// conditions, gates steps on human approval, and emits lifecycle events to
// subscribers.
//
// Concurrency model: a single engine instance owns the workflow map, the
// active-execution set and the interaction table. Steps within a group run in
// goroutines; groups run strictly one after another. At most one execution
// per workflow id is admitted at a time; the check-and-mark on the active set
// is atomic. Cancellation is cooperative and coarse: in-flight agent calls
// complete and their results are discarded.
package engine
