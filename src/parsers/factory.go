package parsers

import (
	"fmt"
	"strings"
)

// GetParser picks a parser by filename suffix alone; no content sniffing.
func GetParser(fileName string) (Parser, error) {
	name := strings.ToLower(strings.TrimSpace(fileName))
	switch {
	case strings.HasSuffix(name, ".csv"):
		return NewCSVParser(), nil
	case strings.HasSuffix(name, ".xlsx"):
		return NewExcelParser(), nil
	case strings.HasSuffix(name, ".xls"):
		return NewLegacyExcelParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q (use .csv, .xlsx or .xls)", ErrUnsupportedFormat, fileName)
	}
}
