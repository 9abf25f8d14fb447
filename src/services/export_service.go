package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/security/validation"
)

// exportHeader is the fixed export column order. orden_sugerido falls back
// to orden_anterior for records no scoring pass has touched, so an exported
// file always re-imports cleanly.
var exportHeader = []string{
	"fecha", "nombre_producto", "descripcion", "stock",
	"precio_unitario", "cantidad_vendida", "orden_anterior", "orden_sugerido",
}

func (s *analysisServiceImpl) ExportCSV(w io.Writer) error {
	products, err := s.ListProducts()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return ErrNoProducts
	}

	// Export in the suggested order when one exists.
	sort.SliceStable(products, func(i, j int) bool {
		return effectiveRank(products[i]) < effectiveRank(products[j])
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, p := range products {
		record := []string{
			p.Date,
			validation.SanitizeForFormulaInjection(p.Name),
			validation.SanitizeForFormulaInjection(p.Description),
			strconv.Itoa(p.Stock),
			strconv.FormatFloat(p.UnitPrice, 'f', -1, 64),
			strconv.Itoa(p.UnitsSold),
			strconv.Itoa(p.CurrentRank),
			strconv.Itoa(effectiveRank(p)),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing CSV record for %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func effectiveRank(p models.Product) int {
	if p.Scored() {
		return *p.SuggestedRank
	}
	return p.CurrentRank
}

// TemplateCSV writes the illustrative template offered for download. Its
// headers must stay within the ingestion alias table or filled-in templates
// would not round-trip.
func (s *analysisServiceImpl) TemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"fecha", "nombre_producto", "descripcion", "cantidad/stock", "precio_unitario", "cantidad_unds_vendidas", "orden"},
		{"2024-01-15", "Producto Ejemplo 1", "Descripción del producto", "50", "25.99", "10", "1"},
		{"2024-01-15", "Producto Ejemplo 2", "Otra descripción", "30", "15.50", "5", "2"},
	}
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing template record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
