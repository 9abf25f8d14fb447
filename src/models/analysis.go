package models

import "time"

// AnalysisMetrics are the batch-level aggregates computed once per scoring
// pass, derived by simple reduction over the analyzed products.
type AnalysisMetrics struct {
	TotalUnitsSold   int     `json:"total_ventas"`
	TotalStock       int     `json:"total_stock"`
	InventoryValue   float64 `json:"valor_inventario"`
	AverageUnitsSold float64 `json:"promedio_ventas"`
}

// AnalysisResult is the outcome of one scoring pass: the batch reordered by
// score with suggested ranks and justifications attached, plus aggregates.
type AnalysisResult struct {
	Products      []Product       `json:"products"`
	TotalProducts int             `json:"total_products"`
	ChangesCount  int             `json:"changes_count"`
	Timestamp     time.Time       `json:"timestamp"`
	Metrics       AnalysisMetrics `json:"metrics"`
}

// AnalysisRecord is one persisted row of the analysis history.
type AnalysisRecord struct {
	ID               int64     `json:"id"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
	TotalProducts    int       `json:"total_products"`
	ChangesCount     int       `json:"changes_count"`
	TotalUnitsSold   int       `json:"total_ventas"`
	TotalStock       int       `json:"total_stock"`
	InventoryValue   float64   `json:"valor_inventario"`
	AverageUnitsSold float64   `json:"promedio_ventas"`
}
