package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"dirql/internal/table"
)

// parseYAML decodes a YAML document and flattens it to relational shape.
// A top-level sequence of mappings becomes the rows directly; a top-level
// mapping follows the same sectioning policy as TOML.
func parseYAML(r io.Reader, path string) ([]string, []table.Row, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
		}
		return nil, nil, parseErrorf(path, FormatYAML.String(), err)
	}
	columns, rows, err := documentToRelation(normalizeYAML(doc), path, FormatYAML)
	if err != nil {
		return nil, nil, err
	}
	if err := validateColumnNames(columns, path); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

// normalizeYAML rewrites map[any]any nodes (produced for non-string keys)
// into map[string]any so the flattener sees one mapping shape.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
