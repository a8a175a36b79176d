// Package engine binds session tables to an in-memory SQLite database and
// executes SQL statements against them.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"dirql/internal/table"
)

var (
	// ErrRegister is returned when a table cannot be registered with the
	// engine (e.g. a reserved name). Registration is transactional: on
	// failure the engine holds no trace of the table.
	ErrRegister = errors.New("engine registration failed")

	// ErrSQL is returned for statement failures: syntax errors, unknown
	// tables or columns, type mismatches. The engine message is preserved.
	ErrSQL = errors.New("sql error")
)

// Engine wraps one in-memory SQLite database for the lifetime of a session.
type Engine struct {
	db *sql.DB
}

// New opens a fresh in-memory database.
func New(ctx context.Context) (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// The registry is single-writer and tables reference one shared
	// in-memory database, so the pool must not open extra connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Register creates the table and inserts all its rows in one transaction.
// With replace set, an existing table of the same name is dropped first
// inside the same transaction, so a failed replacement leaves the old
// table intact.
func (e *Engine) Register(ctx context.Context, tbl *table.Table, replace bool) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRegister, tbl.Name(), err)
	}
	if err := e.registerInTx(ctx, tx, tbl, replace); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s: %v", ErrRegister, tbl.Name(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRegister, tbl.Name(), err)
	}
	return nil
}

func (e *Engine) registerInTx(ctx context.Context, tx *sql.Tx, tbl *table.Table, replace bool) error {
	if replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(tbl.Name()))); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, createTableStatement(tbl)); err != nil {
		return err
	}
	if len(tbl.Rows()) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, insertStatement(tbl))
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()

	args := make([]any, len(tbl.Columns()))
	for _, row := range tbl.Rows() {
		for i := range args {
			args[i] = nil
			if i < len(row) && !row[i].Null {
				args[i] = row[i].Text
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Deregister drops a table. Dropping an unknown table is not an error, so
// deregistration is idempotent.
func (e *Engine) Deregister(ctx context.Context, name string) error {
	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("%w: drop %s: %v", ErrRegister, name, err)
	}
	return nil
}

// Query runs one statement and materializes the result set, preserving
// column order and row order.
func (e *Engine) Query(ctx context.Context, query string) (*table.QueryResult, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQL, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQL, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQL, err)
	}

	result := &table.QueryResult{
		Columns: columns,
		Types:   make([]table.ColumnType, len(types)),
	}
	for i, ct := range types {
		result.Types[i] = columnTypeFromSQL(ct.DatabaseTypeName())
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSQL, err)
		}
		row := make(table.Row, len(columns))
		for i, v := range values {
			row[i] = cellFromValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQL, err)
	}
	return result, nil
}

// createTableStatement builds the typed CREATE TABLE for a loaded table.
func createTableStatement(tbl *table.Table) string {
	defs := make([]string, len(tbl.Columns()))
	for i, col := range tbl.Columns() {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type.SQLType())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tbl.Name()), strings.Join(defs, ", "))
}

// insertStatement builds the parameterized INSERT for a loaded table.
func insertStatement(tbl *table.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.Columns())), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(tbl.Name()), placeholders)
}

// quoteIdent brackets an identifier the SQLite way.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "") + "]"
}

// columnTypeFromSQL maps a SQLite declared type back to the session's
// column type, used by the renderer for alignment.
func columnTypeFromSQL(declared string) table.ColumnType {
	switch strings.ToUpper(declared) {
	case "INTEGER", "INT", "BIGINT":
		return table.TypeInteger
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC":
		return table.TypeFloat
	default:
		return table.TypeText
	}
}

// cellFromValue converts a scanned driver value into a cell, keeping NULL
// distinct from the empty string.
func cellFromValue(v any) table.Cell {
	switch s := v.(type) {
	case nil:
		return table.NullCell()
	case []byte:
		return table.NewCell(string(s))
	case string:
		return table.NewCell(s)
	case int64:
		return table.NewCell(fmt.Sprintf("%d", s))
	case float64:
		return table.NewCell(strconv.FormatFloat(s, 'g', -1, 64))
	case bool:
		if s {
			return table.NewCell("true")
		}
		return table.NewCell("false")
	default:
		return table.NewCell(fmt.Sprintf("%v", s))
	}
}
