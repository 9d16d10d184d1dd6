package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/tools"
)

func smallCatalog(t *testing.T) *tools.Catalog {
	t.Helper()
	catalog, err := tools.Build(&tools.Declaration{
		Version: 1,
		Sources: []tools.SourceDeclaration{{
			Name: "flow",
			Categories: []tools.CategoryDeclaration{
				{Name: "Memory", Quota: tools.Quota(2)},
				{Name: "Search", Quota: tools.Quota(1)},
			},
		}},
	})
	require.NoError(t, err)
	return catalog
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"wide", FormatWide, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestFormatToolsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTools(&buf, smallCatalog(t).Tools(), FormatWide))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "DESCRIPTION")
	assert.Contains(t, out, "MemoryTool1")
	assert.Contains(t, out, "flow:Search")
}

func TestFormatToolsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTools(&buf, smallCatalog(t).Tools(), FormatJSON))

	var got []tools.Descriptor
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestFormatToolsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTools(&buf, smallCatalog(t).Tools(), FormatYAML))
	assert.Contains(t, buf.String(), "name: MemoryTool1")
}

func TestCategoriesToTableData(t *testing.T) {
	data := CategoriesToTableData(smallCatalog(t))

	assert.Equal(t, []string{"Category", "Tools"}, data.Headers)
	assert.Equal(t, [][]string{
		{"flow:Memory", "2"},
		{"flow:Search", "1"},
		{"Total", "3"},
	}, data.Rows)
}

func TestFormatCategoriesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatCategories(&buf, smallCatalog(t), FormatJSON))
	assert.JSONEq(t, `{"count":3,"categories":{"flow:Memory":2,"flow:Search":1}}`, buf.String())
}

func TestTableFormatterStructFallback(t *testing.T) {
	var buf bytes.Buffer
	info := struct {
		Version string `json:"version"`
		GoOS    string `json:"go_os"`
	}{"1.0.0", "linux"}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, info))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "GO OS")
	assert.Contains(t, out, "1.0.0")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}
