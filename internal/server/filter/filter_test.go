package filter

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/tools"
)

func defaultTools(t *testing.T) []tools.Descriptor {
	t.Helper()
	c, err := tools.Default()
	require.NoError(t, err)
	return c.Tools()
}

func TestParseToolFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/tools?source=agentdb&category=Indexing&name_contains=tool&limit=3&offset=-2", nil)
	f := ParseToolFilter(r)

	assert.Equal(t, ToolFilter{Source: "agentdb", Category: "Indexing", NameContains: "tool", Limit: 3}, f)
	assert.True(t, f.Active())
	assert.False(t, ParseToolFilter(httptest.NewRequest("GET", "/tools", nil)).Active())
}

func TestApply(t *testing.T) {
	all := defaultTools(t)

	tests := []struct {
		name   string
		filter ToolFilter
		count  int
		first  string
	}{
		{name: "no filter", filter: ToolFilter{}, count: 236, first: "FileOperationsTool1"},
		{name: "source", filter: ToolFilter{Source: "agentdb"}, count: 29, first: "VectorOperationsTool1"},
		{name: "category", filter: ToolFilter{Category: "indexing"}, count: 6, first: "IndexingTool1"},
		{name: "full category", filter: ToolFilter{Category: "agentic-flow:Research Agents"}, count: 8, first: "PaperScraperAgent"},
		{name: "name contains", filter: ToolFilter{NameContains: "agent"}, count: 8 + 21 + 58, first: "AgentCoordinationTool1"},
		{name: "limit", filter: ToolFilter{Source: "sublinear-toolkit", Limit: 5}, count: 5, first: "GraphAlgorithmsTool1"},
		{name: "offset", filter: ToolFilter{Category: "Ranking", Offset: 5}, count: 2, first: "RankingTool6"},
		{name: "offset past end", filter: ToolFilter{Offset: 1000}, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(all)
			require.Len(t, got, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, got[0].Name)
			}
		})
	}
}
