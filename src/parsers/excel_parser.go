package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/ordena/backend/src/models"
	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first sheet of an OOXML .xlsx workbook. Cells come
// back in their text representation, never as raw numeric or date types, so
// the normalizer sees the same shape the CSV path produces.
type ExcelParser struct{}

func NewExcelParser() *ExcelParser {
	return &ExcelParser{}
}

func (p *ExcelParser) Parse(file io.Reader) ([]models.Product, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrDecode, sheets[0], err)
	}
	if len(sheetRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(sheetRows[0]))
	for i, h := range sheetRows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []models.RawRow
	for _, record := range sheetRows[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(models.RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			// genuinely empty cells keep their key with an empty string
			var v string
			if i < len(record) {
				v = strings.TrimSpace(record[i])
			}
			row[h] = v
		}
		rows = append(rows, row)
	}

	return NormalizeRows(rows)
}
