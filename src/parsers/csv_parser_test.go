package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParserParse(t *testing.T) {
	input := strings.Join([]string{
		" Fecha , NOMBRE_PRODUCTO ,descripcion,cantidad/stock,precio_unitario,cantidad_unds_vendidas,orden",
		"2024-01-15,Teclado,Mecánico,50,25.99,10,1",
		"",
		"2024-01-16,Ratón,,30,15.50,5,2",
	}, "\n")

	parser := NewCSVParser()
	products, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, products, 2, "blank lines are skipped")

	assert.Equal(t, "Teclado", products[0].Name)
	assert.Equal(t, "Mecánico", products[0].Description)
	assert.Equal(t, 50, products[0].Stock)
	assert.Equal(t, 25.99, products[0].UnitPrice)
	assert.Equal(t, 10, products[0].UnitsSold)
	assert.Equal(t, 1, products[0].CurrentRank)

	assert.Equal(t, "Ratón", products[1].Name)
	assert.Equal(t, "", products[1].Description)
	assert.Equal(t, 2, products[1].CurrentRank)
}

func TestCSVParserByteOrderMark(t *testing.T) {
	input := "\ufeffnombre_producto,stock\nWidget,3\n"

	products, err := NewCSVParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, 3, products[0].Stock)
}

func TestCSVParserMissingName(t *testing.T) {
	input := strings.Join([]string{
		"nombre_producto,stock",
		"Widget,5",
		",7",
	}, "\n")

	products, err := NewCSVParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, products)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 3, missing.Row)
}

func TestCSVParserEmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"zero bytes", ""},
		{"header only", "nombre_producto,stock\n"},
		{"header and blank lines", "nombre_producto,stock\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrEmptyFile)
		})
	}
}

func TestCSVParserDecodeError(t *testing.T) {
	// bare quote inside an unquoted field is a CSV syntax error
	input := "nombre_producto,descripcion\nWidget,bad\"quote\"here\n"

	_, err := NewCSVParser().Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrDecode)
}
