package handlers

import (
	"context"
	"net/http"

	"github.com/synapseflow/gateway/internal/server/response"
)

const statsCacheKey = "upstream:stats"

// HandleStats handles GET /stats. Upstream statistics are cached briefly.
// Concurrent misses share one load, so the load runs detached from the
// request that started it and is bounded by the upstream timeout instead.
// @Summary Upstream statistics
// @Description Proxies the upstream statistics document
// @Tags research
// @Produce json
// @Success 200 {object} object
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, cached, err := h.cache.Fetch(statsCacheKey, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.loadLimit)
		defer cancel()
		return h.caps.Stats(ctx)
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get stats")
		response.ErrorFromType(w, err)
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	response.OK(w, stats)
}
