// Package loader turns structured data files into relational tables. It
// detects the file format from the extension or from a content sample,
// invokes the matching parser, and derives a SQL identifier for the result.
package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned when a file's format cannot be
	// determined from its extension or content.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrParse is returned when file content does not conform to the
	// detected format (ragged CSV rows, invalid TOML, and so on).
	ErrParse = errors.New("parse error")

	// ErrEmptyFile is returned when a file holds no usable records.
	ErrEmptyFile = errors.New("empty data source")

	// ErrDuplicateColumn is returned when a file declares the same column
	// name twice.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// parseErrorf wraps a format-level failure so callers can match ErrParse
// while keeping the offending file in the message.
func parseErrorf(path, format string, err error) error {
	return fmt.Errorf("%w: %s (%s): %v", ErrParse, path, format, err)
}
