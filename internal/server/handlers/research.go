package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/synapseflow/gateway/internal/server/response"
	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/logging"
	"github.com/synapseflow/gateway/pkg/research"
)

// startedMessage is returned with every accepted submission.
const startedMessage = "Research initiated, check SSE stream for updates"

// HandleResearch handles POST /research. It acknowledges at once and
// narrates the submission to every stream listener in the background.
// @Summary Submit research
// @Description Starts a research query; progress and results arrive on /stream
// @Tags research
// @Accept json
// @Produce json
// @Param query body research.Query true "Research query"
// @Success 200 {object} object
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /research [post].
func (h *Handlers) HandleResearch(w http.ResponseWriter, r *http.Request) {
	if h.hub.Closed() {
		response.ServiceUnavailable(w, "Server is shutting down")
		return
	}

	var q research.Query
	body := http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&q); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	sub := h.runner.Start(q)

	logging.FromContext(r.Context()).Info().
		Str("query", q.Query).
		Str("research_request_id", sub.RequestID).
		Msg("Received research query via SSE")

	response.OK(w, map[string]any{
		"status":    "started",
		"message":   startedMessage,
		"requestId": sub.RequestID,
	})
}
