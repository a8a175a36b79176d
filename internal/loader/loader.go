package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"dirql/internal/table"
)

// Load parses one file into a table. The table name is derived from the
// file name; registration with the SQL engine is the session's job so that
// registry and engine stay a single atomic unit.
//
// Format detection goes by extension first. For files without a recognized
// extension the content is sniffed; sniffing failure yields
// ErrUnknownFormat. IO failures are returned with the path wrapped in.
func Load(ctx context.Context, path string, log *logrus.Logger) (*table.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	format := formatFromExtension(abs)
	compression := compressionFromPath(abs)

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if format == FormatUnknown {
		// No recognized extension: read the whole file once and sniff.
		// Sniffed files are small config-style files, so buffering is fine.
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", abs, err)
		}
		format = sniffFormat(data)
		if format == FormatUnknown {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, abs)
		}
		log.WithFields(logrus.Fields{"path": abs, "format": format.String()}).
			Debug("format detected by content sniffing")
		return parseToTable(ctx, bytes.NewReader(data), format, abs)
	}

	if format.binary() {
		return parseToTable(ctx, f, format, abs)
	}

	reader, closeReader, err := newDecompressedReader(f, compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	defer func() {
		_ = closeReader()
	}()
	return parseToTable(ctx, reader, format, abs)
}

// parseToTable dispatches to the format parser and builds the table.
func parseToTable(ctx context.Context, r io.Reader, format Format, path string) (*table.Table, error) {
	var (
		header []string
		rows   []table.Row
		err    error
	)
	switch format {
	case FormatCSV:
		header, rows, err = parseDelimited(r, ',', format, path)
	case FormatTSV:
		header, rows, err = parseDelimited(r, '\t', format, path)
	case FormatTOML:
		header, rows, err = parseTOML(r, path)
	case FormatYAML:
		header, rows, err = parseYAML(r, path)
	case FormatXLSX:
		header, rows, err = parseXLSX(r, path)
	case FormatParquet:
		header, rows, err = parseParquet(ctx, r, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, err
	}
	return table.New(TableNameFromPath(path), header, rows, path), nil
}
