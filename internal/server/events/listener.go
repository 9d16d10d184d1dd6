package events

// Listener is one connected consumer of hub events.
// Implementations adapt the event stream to a concrete transport
// (SSE response, WebSocket connection, ...).
type Listener interface {
	// Send delivers an event. A returned error removes the listener.
	// It is called with the hub lock held and must not block unbounded.
	Send(Event) error

	// Keepalive sends a transport-level liveness frame that carries no event.
	// The same bound as Send applies.
	Keepalive() error

	// Close releases the transport. It must be safe to call more than once.
	Close() error
}

// Mirror receives a copy of every broadcast event. Publish must not block.
type Mirror interface {
	Publish(Event)
}
