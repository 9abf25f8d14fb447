package parsers

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/ordena/backend/src/models"
)

// Accepted header spellings per canonical field, in priority order. The
// first alias present with a non-empty value wins, so these must stay
// ordered lists rather than sets.
var (
	dateAliases        = []string{"fecha", "date", "fecha_venta"}
	nameAliases        = []string{"nombre_producto", "producto", "nombre", "product", "name"}
	descriptionAliases = []string{"descripcion", "description", "desc"}
	stockAliases       = []string{"stock", "cantidad", "cantidad/stock", "inventory"}
	priceAliases       = []string{"precio_unitario", "precio", "price", "precio_unit"}
	unitsSoldAliases   = []string{"cantidad_unds_vendidas", "vendidas", "cantidad_vendida", "sold", "ventas"}
	rankAliases        = []string{"orden", "orden_actual", "posicion", "order", "position"}
)

// NormalizeRows converts raw rows into canonical product records. Row keys
// must already be trimmed and lowercased by the caller. Every field except
// the product name falls back to a documented default; a row without a
// resolvable product name aborts the whole batch.
func NormalizeRows(rows []models.RawRow) ([]models.Product, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	ingestionDate := time.Now().Format("2006-01-02")

	products := make([]models.Product, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(resolveColumn(row, nameAliases))
		if name == "" {
			// +2: data rows are 1-based and sit below the header row
			return nil, &MissingFieldError{Row: i + 2}
		}

		date := resolveColumn(row, dateAliases)
		if date == "" {
			date = ingestionDate
		}

		p := models.Product{
			ID:          newProductID(),
			Date:        date,
			Name:        name,
			Description: resolveColumn(row, descriptionAliases),
			Stock:       lenientInt(resolveColumn(row, stockAliases)),
			UnitPrice:   lenientFloat(resolveColumn(row, priceAliases)),
			UnitsSold:   lenientInt(resolveColumn(row, unitsSoldAliases)),
			CurrentRank: lenientInt(resolveColumn(row, rankAliases)),
		}
		if p.CurrentRank < 1 {
			p.CurrentRank = i + 1
		}
		products = append(products, p)
	}

	return products, nil
}

// newProductID generates a batch-unique identifier. Identifiers are not
// stable across re-ingestion of the same file.
func newProductID() string {
	return "prod_" + uuid.NewString()
}

// resolveColumn scans the alias list in priority order and returns the
// first non-empty value, or "" when no alias matches.
func resolveColumn(row models.RawRow, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

// lenientInt coerces a numeric cell to a non-negative integer, truncating
// toward zero. Unparsable or missing values default to 0; malformed numeric
// cells must never abort ingestion of an otherwise valid row.
func lenientInt(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	n := int(f)
	if n < 0 {
		return 0
	}
	return n
}

// lenientFloat coerces a numeric cell to a non-negative float with the same
// leniency policy as lenientInt.
func lenientFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// isBlankRecord reports whether every cell of a record is empty or whitespace.
func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
