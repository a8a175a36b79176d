// Package render turns query results and listings into text, either as an
// aligned table or as an indented tree. Rendering is a pure function of its
// input and never touches session state.
package render

import (
	"strings"

	"dirql/internal/table"
)

// Mode selects the output rendering.
type Mode int

const (
	// ModeTable renders results as aligned columns.
	ModeTable Mode = iota
	// ModeTree renders results as an indented hierarchy.
	ModeTree
)

// String returns the mode name as used by the .mode meta-command.
func (m Mode) String() string {
	if m == ModeTree {
		return "tree"
	}
	return "table"
}

// ParseMode parses a .mode argument.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return ModeTable, true
	case "tree":
		return ModeTree, true
	default:
		return ModeTable, false
	}
}

// Result renders a query result in the given mode.
func Result(res *table.QueryResult, mode Mode) string {
	if mode == ModeTree {
		return Tree(resultTree(res))
	}
	return resultTable(res)
}
