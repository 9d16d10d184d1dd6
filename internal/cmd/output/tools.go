package output

import (
	"io"
	"strconv"

	"github.com/synapseflow/gateway/pkg/tools"
)

// ToolsToTableData converts tool descriptors to table format. Wide output
// adds the description column.
func ToolsToTableData(list []tools.Descriptor, wide bool) Data {
	headers := []string{"Name", "Category"}
	if wide {
		headers = append(headers, "Description")
	}

	rows := make([][]string, 0, len(list))
	for _, d := range list {
		row := []string{d.Name, d.Category}
		if wide {
			row = append(row, d.Description)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// CategoriesToTableData summarizes a catalog as one row per category.
func CategoriesToTableData(catalog *tools.Catalog) Data {
	byCategory := catalog.ByCategory()
	rows := make([][]string, 0, len(byCategory))
	for _, name := range catalog.Categories() {
		rows = append(rows, []string{name, strconv.Itoa(len(byCategory[name]))})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(catalog.Count())})

	return Data{
		Headers:         []string{"Category", "Tools"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// FormatTools writes list in the given format.
func FormatTools(w io.Writer, list []tools.Descriptor, format Format) error {
	var data any = list
	switch format {
	case FormatTable, FormatWide, "":
		data = ToolsToTableData(list, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatCategories writes the per-category summary of catalog.
func FormatCategories(w io.Writer, catalog *tools.Catalog, format Format) error {
	switch format {
	case FormatTable, FormatWide, "":
		return NewFormatter(format).Format(w, CategoriesToTableData(catalog))
	}
	counts := make(map[string]int)
	for name, list := range catalog.ByCategory() {
		counts[name] = len(list)
	}
	return NewFormatter(format).Format(w, map[string]any{
		"count":      catalog.Count(),
		"categories": counts,
	})
}
