package narration

import (
	"github.com/synapseflow/gateway/internal/server/events"
)

// DeliveryPolicy decides who receives the events of a submission.
type DeliveryPolicy interface {
	Name() string
	Deliver(sub Submission, eventType events.EventType, data any)
}

// GlobalBroadcast delivers every submission's events to all connected
// listeners, not only the submitter.
type GlobalBroadcast struct {
	hub *events.Hub
}

// NewGlobalBroadcast creates the global delivery policy for hub.
func NewGlobalBroadcast(hub *events.Hub) *GlobalBroadcast {
	return &GlobalBroadcast{hub: hub}
}

// Name implements DeliveryPolicy.
func (g *GlobalBroadcast) Name() string {
	return "global-broadcast"
}

// Deliver implements DeliveryPolicy.
func (g *GlobalBroadcast) Deliver(_ Submission, eventType events.EventType, data any) {
	g.hub.Broadcast(eventType, data)
}
