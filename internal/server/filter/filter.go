// Package filter provides query parameter parsing and filtering for the
// tool listing endpoint.
package filter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/synapseflow/gateway/pkg/tools"
)

// ToolFilter contains the filter criteria for tool descriptors.
type ToolFilter struct {
	// Basic filters
	Source       string
	Category     string
	NameContains string

	// Pagination
	Limit  int
	Offset int
}

// ParseToolFilter extracts tool filter parameters from an HTTP request.
// A limit of 0 means no limit.
func ParseToolFilter(r *http.Request) ToolFilter {
	q := r.URL.Query()

	return ToolFilter{
		Source:       q.Get("source"),
		Category:     q.Get("category"),
		NameContains: q.Get("name_contains"),
		Limit:        parseIntOrDefault(q.Get("limit"), 0),
		Offset:       parseIntOrDefault(q.Get("offset"), 0),
	}
}

// Active reports whether any criterion is set.
func (f ToolFilter) Active() bool {
	return f != ToolFilter{}
}

// Apply returns the descriptors that match f, in catalog order.
func (f ToolFilter) Apply(descriptors []tools.Descriptor) []tools.Descriptor {
	results := make([]tools.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if f.matches(d) {
			results = append(results, d)
		}
	}
	return f.paginate(results)
}

// matches checks source, category and name filters.
func (f ToolFilter) matches(d tools.Descriptor) bool {
	source, category, _ := strings.Cut(d.Category, ":")

	if f.Source != "" && !strings.EqualFold(source, f.Source) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(category, f.Category) && !strings.EqualFold(d.Category, f.Category) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	return true
}

func (f ToolFilter) paginate(results []tools.Descriptor) []tools.Descriptor {
	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return []tools.Descriptor{}
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

// parseIntOrDefault parses a non-negative integer or returns def.
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return def
	}
	return i
}
