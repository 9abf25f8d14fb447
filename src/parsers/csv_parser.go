package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/username/ordena/backend/src/models"
)

// CSVParser reads comma-delimited UTF-8 files with a header row first.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(file io.Reader) ([]models.Product, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", ErrDecode, err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV records: %v", ErrDecode, err)
	}

	var rows []models.RawRow
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		row := make(models.RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
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
