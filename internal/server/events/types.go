// Package events provides the broadcast hub shared by every push transport.
//
// The hub owns the listener registry and the event id sequence. Ids are
// process-wide, strictly increasing and never reused. Each broadcast is
// written to every registered listener while the hub lock is held, so the
// ids any one listener observes are strictly increasing and gap-free from
// the moment it registered. There is no replay.
package events

import "time"

// EventType is the discriminator carried by every event.
type EventType string

// Event types emitted by the gateway.
const (
	// Connection lifecycle.
	Connected      EventType = "connected"
	ServerShutdown EventType = "server-shutdown"

	// Research narration.
	ResearchStarted  EventType = "research-started"
	AgentStatus      EventType = "agent-status"
	PapersFound      EventType = "papers-found"
	Processing       EventType = "processing"
	ResearchComplete EventType = "research-complete"

	// Research outcome.
	Results EventType = "results"
	Error   EventType = "error"
)

// Event is one immutable hub message. ID travels in the transport framing
// (SSE "id:" line), not in the JSON body.
type Event struct {
	ID        int64     `json:"-"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ListenerID identifies a registered listener.
type ListenerID string

// Default payload messages.
const (
	DefaultGreeting = "Connected to SynapseFlow MCP Server"
	ShutdownMessage = "Server is shutting down"
)
