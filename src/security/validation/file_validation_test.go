package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	allowed := []string{
		"text/csv",
		"application/csv",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"TEXT/CSV",
	}
	for _, ct := range allowed {
		assert.NoError(t, ValidateClientContentType(ct), ct)
	}

	disallowed := []string{"application/pdf", "image/png", "text/html", ""}
	for _, ct := range disallowed {
		assert.Error(t, ValidateClientContentType(ct), ct)
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr bool
	}{
		{
			name:    "plain CSV text",
			content: []byte("nombre_producto,stock\nWidget,5\n"),
			want:    "text/plain",
		},
		{
			name:    "xlsx zip signature",
			content: append([]byte{0x50, 0x4b, 0x03, 0x04}, []byte("rest of workbook")...),
			want:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
		{
			name:    "legacy xls ole signature",
			content: append([]byte{0xd0, 0xcf, 0x11, 0xe0}, make([]byte, 32)...),
			want:    "application/vnd.ms-excel",
		},
		{
			name:    "png is rejected",
			content: []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bytes.NewReader(tt.content)
			detected, err := ValidateFileContentByMagicBytes(reader)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, detected)

			// the reader is rewound so the parser sees the full file
			pos, err := reader.Seek(0, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(0), pos)
		})
	}
}

func TestValidateFileContentByMagicBytesNilFile(t *testing.T) {
	_, err := ValidateFileContentByMagicBytes(nil)
	assert.Error(t, err)
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+1234", "'+1234"},
		{"-discount", "'-discount"},
		{"@handle", "'@handle"},
		{"  =padded", "'  =padded"},
		{"Teclado", "Teclado"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeForFormulaInjection(tt.input), tt.input)
	}
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "productos.csv", StripUnprintable("produc\x00tos.csv"))
	assert.Equal(t, "line1\nline2\ttab", StripUnprintable("line1\nline2\ttab"))
	assert.Equal(t, "clean", StripUnprintable("clean"))
	assert.Equal(t, strings.Repeat("a", 3), StripUnprintable("a\x1ba\x07a"))
}
