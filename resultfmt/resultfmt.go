// Package resultfmt renders a result.NamedVector/result.NamedMatrix as a
// markdown table, grounded on the teacher's datalog/executor table_formatter.go
// (same tablewriter.NewTable + renderer.NewMarkdown + WithHeaderAutoFormat(tw.Off)
// construction, same "strings.Builder + trailing row-count line" output shape).
package resultfmt

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/tanaylab/daf/result"
)

// formatScalarValue converts a boxed scalar/vector element to its display form.
func formatScalarValue(val interface{}) string {
	if val == nil {
		return "nil"
	}
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		return fmt.Sprintf("%.4g", v)
	case float32:
		return fmt.Sprintf("%.4g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func newTable(b *strings.Builder, columns int) *tablewriter.Table {
	alignment := make([]tw.Align, columns)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	return tablewriter.NewTable(b,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

// FormatVector renders a NamedVector as a two-column (entry, value) markdown
// table, or a single-column table when the vector isn't axis-shaped.
func FormatVector(v result.NamedVector) string {
	n := v.Values.Len()
	if n == 0 {
		return "_Empty vector_"
	}
	var b strings.Builder
	hasEntries := len(v.Entries) == n

	columns := 1
	if hasEntries {
		columns = 2
	}
	table := newTable(&b, columns)
	if hasEntries {
		header := v.AxisName
		if header == "" {
			header = "entry"
		}
		table.Header([]string{header, "value"})
	} else {
		table.Header([]string{"value"})
	}

	for i := 0; i < n; i++ {
		row := []string{formatScalarValue(v.Values.At(i))}
		if hasEntries {
			row = append([]string{v.Entries[i]}, row...)
		}
		table.Append(row)
	}
	table.Render()
	b.WriteString(fmt.Sprintf("\n_%d rows_\n", n))
	return b.String()
}

// FormatMatrix renders a NamedMatrix with a header row of column names and a
// leading row-name column.
func FormatMatrix(m result.NamedMatrix) string {
	if m.Values.Rows == 0 || m.Values.Cols == 0 {
		return "_Empty matrix_"
	}
	var b strings.Builder
	table := newTable(&b, m.Values.Cols+1)

	colHeader := m.ColAxisName
	if colHeader == "" {
		colHeader = "column"
	}
	rowHeader := m.RowAxisName
	if rowHeader == "" {
		rowHeader = "row"
	}
	headers := make([]string, m.Values.Cols+1)
	headers[0] = rowHeader + "\\" + colHeader
	for c := 0; c < m.Values.Cols; c++ {
		if c < len(m.ColEntries) {
			headers[c+1] = m.ColEntries[c]
		} else {
			headers[c+1] = fmt.Sprintf("%d", c)
		}
	}
	table.Header(headers)

	for r := 0; r < m.Values.Rows; r++ {
		row := make([]string, m.Values.Cols+1)
		if r < len(m.RowEntries) {
			row[0] = m.RowEntries[r]
		} else {
			row[0] = fmt.Sprintf("%d", r)
		}
		for c := 0; c < m.Values.Cols; c++ {
			row[c+1] = formatScalarValue(m.Values.At(r, c))
		}
		table.Append(row)
	}
	table.Render()
	b.WriteString(fmt.Sprintf("\n_%dx%d matrix_\n", m.Values.Rows, m.Values.Cols))
	return b.String()
}
