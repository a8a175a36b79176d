package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"dirql/internal/table"
)

// nullMarker is how SQL NULL renders in table mode. An actual empty string
// value renders as nothing, so the two stay distinguishable.
const nullMarker = "NULL"

// resultTable renders a query result as auto-sized aligned columns with a
// header row and separator. Numeric columns are right-aligned.
func resultTable(res *table.QueryResult) string {
	if len(res.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(res.Columns))
	for i, name := range res.Columns {
		widths[i] = runewidth.StringWidth(name)
	}
	for _, row := range res.Rows {
		for i := range res.Columns {
			if w := runewidth.StringWidth(cellText(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, name := range res.Columns {
		writeCell(&b, name, widths[i], false, i == len(res.Columns)-1)
	}
	b.WriteByte('\n')
	for i := range res.Columns {
		b.WriteString(strings.Repeat("-", widths[i]))
		if i < len(res.Columns)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteByte('\n')

	for _, row := range res.Rows {
		for i := range res.Columns {
			numeric := i < len(res.Types) && res.Types[i].Numeric()
			writeCell(&b, cellText(row, i), widths[i], numeric, i == len(res.Columns)-1)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// cellText returns the rendered text of one cell, tolerating short rows.
func cellText(row table.Row, i int) string {
	if i >= len(row) || row[i].Null {
		return nullMarker
	}
	return row[i].Text
}

// writeCell pads a value to the column width. The last column is written
// unpadded so lines carry no trailing spaces.
func writeCell(b *strings.Builder, text string, width int, rightAlign, last bool) {
	pad := width - runewidth.StringWidth(text)
	if pad < 0 {
		pad = 0
	}
	switch {
	case last && !rightAlign:
		b.WriteString(text)
	case rightAlign:
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(text)
		if !last {
			b.WriteString("  ")
		}
	default:
		b.WriteString(text)
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString("  ")
	}
}
