package handlers

import (
	"net/http"
)

// HandleStream handles GET /stream.
// @Summary Event stream
// @Description Server-Sent Events stream of research progress and results
// @Tags realtime
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /stream [get].
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	h.stream.ServeHTTP(w, r)
}

// HandleWebSocket handles GET /ws.
// @Summary WebSocket events
// @Description WebSocket connection receiving the same events as /stream
// @Tags realtime
// @Success 101 "Switching Protocols"
// @Router /ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.websocket.ServeHTTP(w, r)
}
