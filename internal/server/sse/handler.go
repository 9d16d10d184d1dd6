package sse

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/logging"
)

// Handler serves GET /stream.
type Handler struct {
	hub          *events.Hub
	writeTimeout time.Duration
	logger       *zerolog.Logger
}

// NewHandler creates an SSE handler bound to hub.
func NewHandler(hub *events.Hub, writeTimeout time.Duration, logger *zerolog.Logger) *Handler {
	if writeTimeout <= 0 {
		writeTimeout = constants.WriteTimeout
	}
	return &Handler{hub: hub, writeTimeout: writeTimeout, logger: logger}
}

// ServeHTTP handles one SSE connection until the client goes away or the
// hub closes the listener.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := NewListener(w, h.writeTimeout)
	if err := l.Open(); err != nil {
		h.logger.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to open SSE stream")
		return
	}

	id, err := h.hub.Register(l)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("SSE listener rejected")
		_ = l.Close()
		return
	}

	log := logging.Listener(h.logger, string(id), "sse")
	log.Debug().Str("remote_addr", r.RemoteAddr).Msg("SSE stream opened")

	select {
	case <-r.Context().Done():
		h.hub.Unregister(id)
		log.Debug().Msg("SSE client went away")
	case <-l.Done():
		log.Debug().Msg("SSE stream closed by hub")
	}
}
