// Package table holds the relational model shared by the loader, the SQL
// engine binding, and the renderer: tables bound to source files, inferred
// column types, and transient query results.
package table

// ColumnType is the inferred SQL type of a column.
type ColumnType int

const (
	// TypeText represents a TEXT column. It is the widest type and the
	// fallback for mixed or ambiguous columns.
	TypeText ColumnType = iota
	// TypeInteger represents an INTEGER column.
	TypeInteger
	// TypeFloat represents a REAL column.
	TypeFloat
	// TypeBoolean represents a boolean column, stored as INTEGER 0/1.
	TypeBoolean
)

// String returns the human-readable type name used in tree listings.
func (ct ColumnType) String() string {
	switch ct {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// SQLType returns the SQLite storage type used in CREATE TABLE statements.
func (ct ColumnType) SQLType() string {
	switch ct {
	case TypeInteger, TypeBoolean:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Numeric reports whether values of this type are right-aligned when
// rendered.
func (ct ColumnType) Numeric() bool {
	return ct == TypeInteger || ct == TypeFloat
}

// Column is one column of a table schema: a name plus its inferred type.
type Column struct {
	Name string
	Type ColumnType
}

// Cell is a single field value. Null distinguishes a missing value from an
// empty string, which matters for sparse TOML/YAML rows and SQL NULLs.
type Cell struct {
	Text string
	Null bool
}

// NewCell returns a non-null cell holding s.
func NewCell(s string) Cell {
	return Cell{Text: s}
}

// NullCell returns the null cell.
func NullCell() Cell {
	return Cell{Null: true}
}

// Row is an ordered sequence of cells matching the column order.
type Row []Cell

// NewRow builds a row of non-null cells from plain strings.
func NewRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = NewCell(v)
	}
	return row
}

// Equal compares two rows cell by cell.
func (r Row) Equal(r2 Row) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, c := range r {
		if c != r2[i] {
			return false
		}
	}
	return true
}

// Table is an in-session named relation derived from one source file.
// Columns keep the order they appeared in the source.
type Table struct {
	name       string
	columns    []Column
	rows       []Row
	sourcePath string
}

// New creates a table, inferring column types from the rows.
func New(name string, columnNames []string, rows []Row, sourcePath string) *Table {
	return &Table{
		name:       name,
		columns:    InferColumns(columnNames, rows),
		sourcePath: sourcePath,
		rows:       rows,
	}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns the ordered column schema.
func (t *Table) Columns() []Column {
	return t.columns
}

// Rows returns the table rows in source order.
func (t *Table) Rows() []Row {
	return t.rows
}

// SourcePath returns the path of the file the table was loaded from.
func (t *Table) SourcePath() string {
	return t.sourcePath
}

// Rename returns a copy of the table under a different name. Used when a
// derived name collides and a numeric suffix is appended.
func (t *Table) Rename(name string) *Table {
	clone := *t
	clone.name = name
	return &clone
}

// QueryResult is the transient outcome of one statement: ordered column
// names with their types, and the result rows.
type QueryResult struct {
	Columns []string
	Types   []ColumnType
	Rows    []Row
}
