package table

import (
	"strconv"
	"strings"
)

// narrowest returns the strictest type that can represent a single value.
func narrowest(value string) ColumnType {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "true", "false":
		return TypeBoolean
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return TypeFloat
	}
	return TypeText
}

// widen merges two observed types into the narrowest type accepting both.
// Integer widens to float, everything else mixed widens to text. Boolean
// only stays boolean against itself.
func widen(a, b ColumnType) ColumnType {
	if a == b {
		return a
	}
	if (a == TypeInteger || a == TypeFloat) && (b == TypeInteger || b == TypeFloat) {
		return TypeFloat
	}
	return TypeText
}

// InferColumns derives the column schema for the given rows: each column is
// assigned the narrowest type that accepts every observed value. Null cells
// and blank strings carry no type information; a column with no observed
// values is text. The reduction is a deterministic fold over rows, so the
// same input always yields the same schema.
func InferColumns(names []string, rows []Row) []Column {
	columns := make([]Column, len(names))
	seen := make([]bool, len(names))

	for i, name := range names {
		columns[i] = Column{Name: name, Type: TypeText}
	}

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(columns) {
				break
			}
			if cell.Null || strings.TrimSpace(cell.Text) == "" {
				continue
			}
			t := narrowest(cell.Text)
			if !seen[i] {
				columns[i].Type = t
				seen[i] = true
				continue
			}
			columns[i].Type = widen(columns[i].Type, t)
		}
	}
	return columns
}
