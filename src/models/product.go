package models

// RawRow is one row of tabular input before normalization: a free-form
// mapping from column label to cell text. Header spelling and casing vary
// across sources; keys are expected to be trimmed and lowercased by the
// parser that produced the row.
type RawRow map[string]string

// Product is the canonical product record produced by the row normalizer.
// Each parser populates the first block of fields; the scoring engine fills
// in the second block during an analysis pass. Records are otherwise
// immutable: applying a suggested order produces new records.
type Product struct {
	// --- Fields populated by the parser/normalizer ---
	ID          string  `json:"id"`
	Date        string  `json:"fecha"`
	Name        string  `json:"nombre_producto"`
	Description string  `json:"descripcion"`
	Stock       int     `json:"stock"`
	UnitPrice   float64 `json:"precio_unitario"`
	UnitsSold   int     `json:"cantidad_vendida"`
	CurrentRank int     `json:"orden_actual"`

	// --- Fields filled by the scoring engine ---
	Score         float64 `json:"score,omitempty"`
	SuggestedRank *int    `json:"orden_sugerido"`
	RankDelta     int     `json:"cambio"`
	Justification string  `json:"razon,omitempty"`
}

// Scored reports whether a scoring pass has assigned this record a
// suggested rank.
func (p *Product) Scored() bool {
	return p.SuggestedRank != nil
}
