package parsers

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/username/ordena/backend/src/models"
)

// LegacyExcelParser reads the first sheet of a BIFF .xls workbook. Excel has
// kept the .xls suffix alive long past the format change, so files named .xls
// that actually carry an OOXML archive are handed to the .xlsx path.
type LegacyExcelParser struct{}

func NewLegacyExcelParser() *LegacyExcelParser {
	return &LegacyExcelParser{}
}

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

func (p *LegacyExcelParser) Parse(file io.Reader) ([]models.Product, error) {
	// The BIFF reader needs random access; uploads are size-capped, so
	// buffering the stream is fine.
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read workbook: %v", ErrDecode, err)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return NewExcelParser().Parse(bytes.NewReader(data))
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrDecode, err)
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, ErrEmptyFile
	}
	if sheet.GetNumberRows() == 0 {
		return nil, ErrEmptyFile
	}

	headerRow, err := sheet.GetRow(0)
	if err != nil {
		return nil, fmt.Errorf("%w: read header row: %v", ErrDecode, err)
	}
	var headers []string
	for _, cell := range headerRow.GetCols() {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell.GetString())))
	}

	var rows []models.RawRow
	for i := 1; i < sheet.GetNumberRows(); i++ {
		r, rowErr := sheet.GetRow(i)
		if rowErr != nil {
			continue
		}
		record := make([]string, len(headers))
		for j := range headers {
			if cell, colErr := r.GetCol(j); colErr == nil {
				record[j] = strings.TrimSpace(cell.GetString())
			}
		}
		if isBlankRecord(record) {
			continue
		}
		row := make(models.RawRow, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return NormalizeRows(rows)
}
