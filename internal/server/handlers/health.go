package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/synapseflow/gateway/internal/server/response"
)

// readyTimeout bounds the upstream probe behind /ready.
const readyTimeout = 5 * time.Second

// HandleHealth handles GET /health.
// @Summary Health check
// @Description Liveness probe with uptime, protocol and catalog summary
// @Tags health
// @Produce json
// @Success 200 {object} object
// @Router /health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"version":   h.version,
		"uptime":    h.now().Sub(h.started).Truncate(time.Second).String(),
		"protocols": h.protocols,
		"toolCount": h.caps.Catalog().Count(),
		"listeners": h.hub.ListenerCount(),
	})
}

// HandleReady handles GET /ready.
// @Summary Readiness check
// @Description Readiness probe including upstream health
// @Tags health
// @Produce json
// @Success 200 {object} object
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.hub.Closed() {
		response.ServiceUnavailable(w, "Server is shutting down")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	upstream, err := h.caps.Health(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Upstream not ready")
		response.ServiceUnavailable(w, "Upstream service unavailable")
		return
	}

	response.OK(w, map[string]any{
		"status":    "ready",
		"upstream":  upstream,
		"listeners": h.hub.ListenerCount(),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
	})
}
