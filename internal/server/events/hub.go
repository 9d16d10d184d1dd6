package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// Hub fans events out to registered listeners.
//
// Delivery runs under the hub lock so every listener sees ids in order.
// A stalled listener therefore holds up Broadcast, Register and Keepalive
// for as long as its Send or Keepalive blocks. Listeners must bound each
// write: the SSE listener sets a per-write deadline of the configured write
// timeout and the WebSocket client only queues, so one broadcast waits at
// most one write timeout per stalled SSE listener.
type Hub struct {
	mu        sync.Mutex
	listeners map[ListenerID]*listenerEntry
	lastID    int64
	closed    bool

	interval time.Duration
	greeting string
	mirror   Mirror
	logger   *zerolog.Logger
	now      func() time.Time
}

type listenerEntry struct {
	id          ListenerID
	listener    Listener
	lastEventID int64
	connectedAt time.Time
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithKeepaliveInterval sets the liveness tick period.
func WithKeepaliveInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithMirror copies every broadcast event to m.
func WithMirror(m Mirror) HubOption {
	return func(h *Hub) {
		h.mirror = m
	}
}

// WithGreeting sets the message carried by the connected event.
func WithGreeting(msg string) HubOption {
	return func(h *Hub) {
		if msg != "" {
			h.greeting = msg
		}
	}
}

// NewHub creates a broadcast hub.
func NewHub(logger *zerolog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		listeners: make(map[ListenerID]*listenerEntry),
		interval:  constants.KeepaliveInterval,
		greeting:  DefaultGreeting,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a listener and sends it a connected event. The connected
// event does not consume an id; it carries the current last id, which is the
// listener's baseline.
func (h *Hub) Register(l Listener) (ListenerID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", errors.ErrHubClosed
	}

	id := ListenerID(uuid.NewString())
	hello := Event{
		ID:        h.lastID,
		Type:      Connected,
		Data:      map[string]any{"message": h.greeting},
		Timestamp: h.now(),
	}
	if err := l.Send(hello); err != nil {
		_ = l.Close()
		return "", errors.NewTransportWriteError(string(id), "register", err)
	}

	h.listeners[id] = &listenerEntry{
		id:          id,
		listener:    l,
		lastEventID: h.lastID,
		connectedAt: hello.Timestamp,
	}

	h.logger.Info().
		Str("listener_id", string(id)).
		Int("total_listeners", len(h.listeners)).
		Msg("Listener connected")

	return id, nil
}

// Unregister removes and closes a listener. It reports whether the listener
// was registered; removing an unknown id is a no-op.
func (h *Hub) Unregister(id ListenerID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.listeners[id]
	if !ok {
		return false
	}
	delete(h.listeners, id)
	_ = entry.listener.Close()

	h.logger.Info().
		Str("listener_id", string(id)).
		Int("total_listeners", len(h.listeners)).
		Msg("Listener disconnected")

	return true
}

// Broadcast assigns the next id to a new event and delivers it to every
// listener. It returns false once the hub is shut down.
func (h *Hub) Broadcast(eventType EventType, data any) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return Event{}, false
	}

	h.lastID++
	ev := Event{
		ID:        h.lastID,
		Type:      eventType,
		Data:      data,
		Timestamp: h.now(),
	}
	h.deliverLocked(ev)

	if h.mirror != nil {
		h.mirror.Publish(ev)
	}

	h.logger.Debug().
		Int64("event_id", ev.ID).
		Str("event_type", string(eventType)).
		Int("listeners", len(h.listeners)).
		Msg("Event broadcasted")

	return ev, true
}

// deliverLocked writes ev to every listener, dropping the ones that fail.
func (h *Hub) deliverLocked(ev Event) {
	for id, entry := range h.listeners {
		if err := entry.listener.Send(ev); err != nil {
			h.dropLocked(id, entry, err)
			continue
		}
		entry.lastEventID = ev.ID
	}
}

func (h *Hub) dropLocked(id ListenerID, entry *listenerEntry, err error) {
	delete(h.listeners, id)
	_ = entry.listener.Close()

	h.logger.Warn().
		Err(errors.NewTransportWriteError(string(id), "hub", err)).
		Str("listener_id", string(id)).
		Int64("last_event_id", entry.lastEventID).
		Int("total_listeners", len(h.listeners)).
		Msg("Removed unreachable listener")
}

// Keepalive sends a liveness frame to every listener. It does not consume
// an event id.
func (h *Hub) Keepalive() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, entry := range h.listeners {
		if err := entry.listener.Keepalive(); err != nil {
			h.dropLocked(id, entry, err)
		}
	}
}

// Run drives the liveness tick until ctx is cancelled, then shuts the hub
// down. Should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			h.Keepalive()
		}
	}
}

// Shutdown broadcasts a terminal server-shutdown event, closes every
// listener and clears the registry. Calling it again does nothing.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.lastID++
	ev := Event{
		ID:        h.lastID,
		Type:      ServerShutdown,
		Data:      map[string]any{"message": ShutdownMessage},
		Timestamp: h.now(),
	}
	if h.mirror != nil {
		h.mirror.Publish(ev)
	}

	count := len(h.listeners)
	for id, entry := range h.listeners {
		if err := entry.listener.Send(ev); err != nil {
			h.logger.Debug().Err(err).Str("listener_id", string(id)).Msg("Shutdown event not delivered")
		}
		_ = entry.listener.Close()
	}
	h.listeners = make(map[ListenerID]*listenerEntry)
	h.closed = true

	h.logger.Info().Int("closed_listeners", count).Msg("Event hub shut down")
}

// ListenerCount returns the number of registered listeners.
func (h *Hub) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// LastEventID returns the id of the most recent broadcast.
func (h *Hub) LastEventID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastID
}

// Closed reports whether Shutdown has run.
func (h *Hub) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
