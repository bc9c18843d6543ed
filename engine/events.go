package engine

import "github.com/hupe1980/orchestra/core"

// Subscribe registers a lifecycle event consumer and returns its channel plus
// an unsubscribe function. Events for one workflow arrive in causal order.
// The channel is buffered with the configured EventBufferSize; a subscriber
// that stops draining misses overflow events rather than stalling executions.
// Unsubscribe closes the channel.
func (e *Engine) Subscribe() (<-chan core.Event, func()) {
	ch := make(chan core.Event, e.config.EventBufferSize)

	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subsMu.Unlock()

	unsubscribe := func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// History returns the ordered events emitted so far for a workflow. The
// history remains available for inspection after the workflow settles.
func (e *Engine) History(workflowID string) []core.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	events := e.history[workflowID]
	out := make([]core.Event, len(events))
	copy(out, events)
	return out
}

// emit appends the event to the workflow history and fans it out to all
// subscribers. Sends never block; a full subscriber buffer drops the event
// for that subscriber only.
func (e *Engine) emit(event core.Event) {
	e.mu.Lock()
	e.history[event.WorkflowID] = append(e.history[event.WorkflowID], event)
	e.mu.Unlock()

	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
