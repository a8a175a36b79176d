package loader

import (
	"io"

	toml "github.com/pelletier/go-toml/v2"

	"dirql/internal/table"
)

// parseTOML decodes a TOML document and flattens it to relational shape.
func parseTOML(r io.Reader, path string) ([]string, []table.Row, error) {
	var doc map[string]any
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, parseErrorf(path, FormatTOML.String(), err)
	}
	columns, rows, err := documentToRelation(doc, path, FormatTOML)
	if err != nil {
		return nil, nil, err
	}
	if err := validateColumnNames(columns, path); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}
