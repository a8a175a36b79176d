package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"dirql/internal/table"
)

// sectionColumn is the synthetic first column naming the top-level key a
// row came from when a document's rows are produced by table-valued keys.
const sectionColumn = "section"

// documentToRelation converts a decoded TOML/YAML document into a single
// relational shape:
//
//   - a top-level sequence of mappings becomes one row per element;
//   - otherwise each top-level table-valued key (a mapping, or an array of
//     mappings) produces rows, tagged with a leading section column;
//   - a document with only scalar top-level keys becomes a single row.
//
// One level of nesting maps to dotted column names; deeper values are
// serialized as strings. Key order inside decoded mappings is not
// observable, so columns are ordered by sorted name, which keeps the shape
// deterministic for identical input.
func documentToRelation(doc any, path string, format Format) ([]string, []table.Row, error) {
	switch v := doc.(type) {
	case []any:
		maps, ok := asMapSlice(v)
		if !ok {
			return nil, nil, parseErrorf(path, format.String(), fmt.Errorf("top-level sequence must contain mappings"))
		}
		return relationFromMaps(maps)
	case map[string]any:
		return relationFromDocumentMap(v)
	case nil:
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	default:
		return nil, nil, parseErrorf(path, format.String(), fmt.Errorf("top-level value must be a mapping or sequence, got %T", doc))
	}
}

// relationFromDocumentMap handles a top-level mapping document.
func relationFromDocumentMap(doc map[string]any) ([]string, []table.Row, error) {
	type sectionEntry struct {
		section string
		fields  map[string]table.Cell
	}

	var entries []sectionEntry
	for _, key := range sortedKeys(doc) {
		switch v := doc[key].(type) {
		case map[string]any:
			entries = append(entries, sectionEntry{section: key, fields: flattenMapping(v)})
		case []any:
			maps, ok := asMapSlice(v)
			if !ok {
				continue // scalar array: only relevant in the single-row shape
			}
			for _, m := range maps {
				entries = append(entries, sectionEntry{section: key, fields: flattenMapping(m)})
			}
		}
	}

	// Only scalar keys: the document is a single row.
	if len(entries) == 0 {
		fields := flattenMapping(doc)
		columns := sortedFieldNames(fields)
		if len(columns) == 0 {
			return nil, nil, ErrEmptyFile
		}
		return columns, []table.Row{rowFromFields(columns, fields)}, nil
	}

	// Union of field names across sections, with the section tag first.
	union := make(map[string]struct{})
	for _, e := range entries {
		for name := range e.fields {
			union[name] = struct{}{}
		}
	}
	columns := append([]string{sectionColumn}, sortedSet(union)...)

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		row := make(table.Row, 0, len(columns))
		row = append(row, table.NewCell(e.section))
		row = append(row, rowFromFields(columns[1:], e.fields)...)
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// relationFromMaps builds rows from a flat list of mappings, as produced by
// a top-level YAML sequence.
func relationFromMaps(maps []map[string]any) ([]string, []table.Row, error) {
	if len(maps) == 0 {
		return nil, nil, ErrEmptyFile
	}
	union := make(map[string]struct{})
	flattened := make([]map[string]table.Cell, 0, len(maps))
	for _, m := range maps {
		fields := flattenMapping(m)
		flattened = append(flattened, fields)
		for name := range fields {
			union[name] = struct{}{}
		}
	}
	columns := sortedSet(union)

	rows := make([]table.Row, 0, len(flattened))
	for _, fields := range flattened {
		rows = append(rows, rowFromFields(columns, fields))
	}
	return columns, rows, nil
}

// flattenMapping flattens one mapping a single level deep: scalar values
// keep their key, nested mapping values become dotted names, and anything
// deeper or non-scalar is serialized to a string.
func flattenMapping(m map[string]any) map[string]table.Cell {
	fields := make(map[string]table.Cell, len(m))
	for key, value := range m {
		if cell, ok := scalarCell(value); ok {
			fields[key] = cell
			continue
		}
		nested, ok := value.(map[string]any)
		if !ok {
			fields[key] = table.NewCell(serializeValue(value))
			continue
		}
		for subKey, subValue := range nested {
			dotted := key + "." + subKey
			if cell, ok := scalarCell(subValue); ok {
				fields[dotted] = cell
				continue
			}
			fields[dotted] = table.NewCell(serializeValue(subValue))
		}
	}
	return fields
}

// scalarCell converts a decoded scalar into a cell. The second return is
// false for mappings, sequences, and other composite values.
func scalarCell(v any) (table.Cell, bool) {
	switch s := v.(type) {
	case nil:
		return table.NullCell(), true
	case string:
		return table.NewCell(s), true
	case bool:
		return table.NewCell(strconv.FormatBool(s)), true
	case int:
		return table.NewCell(strconv.Itoa(s)), true
	case int64:
		return table.NewCell(strconv.FormatInt(s, 10)), true
	case uint64:
		return table.NewCell(strconv.FormatUint(s, 10)), true
	case float64:
		return table.NewCell(strconv.FormatFloat(s, 'g', -1, 64)), true
	case time.Time:
		return table.NewCell(s.Format(time.RFC3339)), true
	default:
		return table.Cell{}, false
	}
}

// serializeValue renders a composite value as a compact string. JSON keeps
// the result one line and round-trippable for inspection.
func serializeValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// rowFromFields assembles cells in column order, null for absent fields.
func rowFromFields(columns []string, fields map[string]table.Cell) table.Row {
	row := make(table.Row, len(columns))
	for i, name := range columns {
		cell, ok := fields[name]
		if !ok {
			cell = table.NullCell()
		}
		row[i] = cell
	}
	return row
}

// asMapSlice narrows a decoded sequence to mappings, failing on any other
// element type.
func asMapSlice(list []any) ([]map[string]any, bool) {
	maps := make([]map[string]any, 0, len(list))
	for _, elem := range list {
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, false
		}
		maps = append(maps, m)
	}
	return maps, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFieldNames(m map[string]table.Cell) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedSet(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
