package loader

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"dirql/internal/table"
)

// parseXLSX loads the first sheet of a workbook: first row is the header,
// later rows are records. Short rows are padded with nulls so every row
// matches the header width.
func parseXLSX(r io.Reader, path string) ([]string, []table.Row, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, parseErrorf(path, FormatXLSX.String(), err)
	}
	defer func() {
		_ = book.Close()
	}()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: %s: no sheets", ErrEmptyFile, path)
	}

	iter, err := book.Rows(sheets[0])
	if err != nil {
		return nil, nil, parseErrorf(path, FormatXLSX.String(), err)
	}
	defer iter.Close()

	var (
		header []string
		rows   []table.Row
	)
	for iter.Next() {
		record, err := iter.Columns()
		if err != nil {
			return nil, nil, parseErrorf(path, FormatXLSX.String(), err)
		}
		if header == nil {
			if len(record) == 0 {
				continue // leading blank rows before the header
			}
			if err := validateColumnNames(record, path); err != nil {
				return nil, nil, err
			}
			header = record
			continue
		}
		row := make(table.Row, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = table.NewCell(record[i])
			} else {
				row[i] = table.NullCell()
			}
		}
		rows = append(rows, row)
	}
	if err := iter.Error(); err != nil {
		return nil, nil, parseErrorf(path, FormatXLSX.String(), err)
	}
	if header == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return header, rows, nil
}
