package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/logging"
)

// Handler serves GET /ws.
type Handler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	timing   Timing
	logger   *zerolog.Logger
}

// NewHandler creates a WebSocket handler. checkOrigin may be nil to accept
// any origin. timing.Keepalive must match the hub's liveness tick.
func NewHandler(hub *events.Hub, checkOrigin func(*http.Request) bool, timing Timing, logger *zerolog.Logger) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		timing: timing,
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and registers it with the hub until the
// peer disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := NewClient(conn, h.timing, h.logger)
	id, err := h.hub.Register(client)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket listener rejected")
		_ = conn.Close()
		return
	}
	client.id = id

	go client.WritePump()
	client.ReadPump()

	if h.hub.Unregister(id) {
		logging.Listener(h.logger, string(id), "websocket").Debug().Msg("WebSocket peer disconnected")
	}
}
