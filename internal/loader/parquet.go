package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"dirql/internal/table"
)

// parseParquet reads a Parquet file through the Arrow reader. Parquet needs
// random access, so the stream is buffered in memory first.
func parseParquet(ctx context.Context, r io.Reader, path string) ([]string, []table.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read parquet data from %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, parseErrorf(path, FormatParquet.String(), err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, nil, parseErrorf(path, FormatParquet.String(), err)
	}

	arrowTable, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, parseErrorf(path, FormatParquet.String(), err)
	}
	defer arrowTable.Release()

	schema := arrowTable.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := validateColumnNames(header, path); err != nil {
		return nil, nil, err
	}

	reader := array.NewTableReader(arrowTable, 0)
	defer reader.Release()

	var rows []table.Row
	for reader.Next() {
		batch := reader.Record()
		numRows := int(batch.NumRows())
		for i := 0; i < numRows; i++ {
			row := make(table.Row, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					row[j] = table.NullCell()
					continue
				}
				row[j] = table.NewCell(col.ValueStr(i))
			}
			rows = append(rows, row)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, nil, parseErrorf(path, FormatParquet.String(), err)
	}
	return header, rows, nil
}
