package handlers

import (
	"net/http"

	"github.com/synapseflow/gateway/internal/server/filter"
	"github.com/synapseflow/gateway/internal/server/response"
)

// HandleListTools handles GET /tools.
// @Summary List tools
// @Description Returns the tool catalog, optionally filtered
// @Tags tools
// @Produce json
// @Param source query string false "Tool source"
// @Param category query string false "Category, bare or source:category"
// @Param name_contains query string false "Name substring"
// @Param limit query int false "Maximum results"
// @Param offset query int false "Results to skip"
// @Success 200 {object} object
// @Router /tools [get].
func (h *Handlers) HandleListTools(w http.ResponseWriter, r *http.Request) {
	catalog := h.caps.Catalog()
	f := filter.ParseToolFilter(r)

	list := catalog.Tools()
	if f.Active() {
		list = f.Apply(list)
	}

	response.OK(w, map[string]any{
		"tools": list,
		"count": len(list),
		"total": catalog.Count(),
	})
}

// HandleGetTool handles GET /tools/{name}.
// @Summary Get tool
// @Description Returns one catalog entry by exact name
// @Tags tools
// @Produce json
// @Param name path string true "Tool name"
// @Success 200 {object} tools.Descriptor
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /tools/{name} [get].
func (h *Handlers) HandleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tool, ok := h.caps.Catalog().Lookup(name)
	if !ok {
		response.NotFound(w, "Tool not found", name)
		return
	}
	response.OK(w, tool)
}
