package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"dirql/internal/table"
)

// parseDelimited reads a CSV or TSV stream: first row is the header, every
// following row must have the same field count. Ragged rows are a parse
// error for the whole file, keeping loads all-or-nothing.
func parseDelimited(r io.Reader, delimiter rune, format Format, path string) ([]string, []table.Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	// FieldsPerRecord stays at 0 so the reader enforces a consistent field
	// count against the header row.

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
		}
		return nil, nil, parseErrorf(path, format.String(), err)
	}
	if err := validateColumnNames(header, path); err != nil {
		return nil, nil, err
	}

	var rows []table.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, parseErrorf(path, format.String(), err)
		}
		rows = append(rows, table.NewRow(record...))
	}
	return header, rows, nil
}

// validateColumnNames rejects empty and duplicate column names.
func validateColumnNames(names []string, path string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: %s: empty column name", ErrParse, path)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s: %q", ErrDuplicateColumn, path, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
