package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParser(t *testing.T) {
	tests := []struct {
		fileName string
		want     interface{}
		wantErr  bool
	}{
		{"productos.csv", &CSVParser{}, false},
		{"PRODUCTOS.CSV", &CSVParser{}, false},
		{"catalogo.xlsx", &ExcelParser{}, false},
		{"catalogo.XLSX", &ExcelParser{}, false},
		{"legacy.xls", &LegacyExcelParser{}, false},
		{"LEGACY.XLS", &LegacyExcelParser{}, false},
		{"notes.txt", nil, true},
		{"archive.csv.zip", nil, true},
		{"noextension", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			parser, err := GetParser(tt.fileName)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, parser)
		})
	}
}
