package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/ordena/backend/src/database"
	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/parsers"
	"github.com/username/ordena/backend/src/processors"
)

const (
	ckLatestAnalysisResult = "agg_latest_analysis_result"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analysisServiceImpl struct {
	analyzer    processors.Analyzer
	resultCache *cache.Cache
}

func NewAnalysisService(analyzer processors.Analyzer, resultCache *cache.Cache) AnalysisService {
	return &analysisServiceImpl{
		analyzer:    analyzer,
		resultCache: resultCache,
	}
}

// ProcessUpload parses the uploaded file and replaces the stored batch
// wholesale. Ingestion is all-or-nothing: any parse or normalization
// failure leaves the previous batch untouched.
func (s *analysisServiceImpl) ProcessUpload(fileReader io.Reader, fileName string) ([]models.Product, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "fileName", fileName)

	parser, err := parsers.GetParser(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	products, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec("DELETE FROM products"); err != nil {
		return nil, fmt.Errorf("error clearing previous batch: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO products (id, date, name, description, stock, unit_price, units_sold, current_rank) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(p.ID, p.Date, p.Name, p.Description, p.Stock, p.UnitPrice, p.UnitsSold, p.CurrentRank); err != nil {
			return nil, fmt.Errorf("error inserting product %q: %w", p.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing batch: %w", err)
	}

	s.invalidateCache()

	logger.L.Info("ProcessUpload END", "fileName", fileName, "productCount", len(products), "duration", time.Since(overallStartTime))
	return products, nil
}

// AnalyzeProducts runs the configured analyzer over the stored batch,
// persists the suggested ranking, and appends one history row per pass.
func (s *analysisServiceImpl) AnalyzeProducts(ctx context.Context) (*models.AnalysisResult, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	result, err := s.analyzer.Analyze(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`UPDATE products SET suggested_rank = ?, rank_delta = ?, score = ?, justification = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	if err != nil {
		return nil, fmt.Errorf("error preparing update statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range result.Products {
		if _, err := stmt.Exec(p.SuggestedRank, p.RankDelta, p.Score, p.Justification, p.ID); err != nil {
			return nil, fmt.Errorf("error storing suggestion for product %q: %w", p.Name, err)
		}
	}

	m := result.Metrics
	if _, err := dbTx.Exec(`INSERT INTO analysis_history (analyzed_at, total_products, changes_count, total_units_sold, total_stock, inventory_value, average_units_sold) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.Timestamp, result.TotalProducts, result.ChangesCount, m.TotalUnitsSold, m.TotalStock, m.InventoryValue, m.AverageUnitsSold); err != nil {
		return nil, fmt.Errorf("error recording analysis history: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing analysis: %w", err)
	}

	s.resultCache.Set(ckLatestAnalysisResult, result, DefaultCacheExpiration)

	logger.L.Info("Analysis pass complete", "totalProducts", result.TotalProducts, "changes", result.ChangesCount)
	return result, nil
}

func (s *analysisServiceImpl) LatestAnalysisResult() (*models.AnalysisResult, error) {
	if cached, found := s.resultCache.Get(ckLatestAnalysisResult); found {
		logger.L.Debug("Cache hit for latest analysis result")
		return cached.(*models.AnalysisResult), nil
	}
	return nil, ErrNoAnalysis
}

// ApplySuggestedOrder promotes suggested ranks to current ranks and clears
// the suggestions for the next scoring pass.
func (s *analysisServiceImpl) ApplySuggestedOrder() ([]models.Product, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	applied := processors.ApplySuggestedRanks(products)

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`UPDATE products SET current_rank = ?, suggested_rank = NULL, rank_delta = 0, score = 0, justification = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	if err != nil {
		return nil, fmt.Errorf("error preparing update statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range applied {
		if _, err := stmt.Exec(p.CurrentRank, p.ID); err != nil {
			return nil, fmt.Errorf("error applying rank for product %q: %w", p.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing applied order: %w", err)
	}

	s.invalidateCache()
	logger.L.Info("Applied suggested order", "productCount", len(applied))
	return applied, nil
}

func (s *analysisServiceImpl) ListProducts() ([]models.Product, error) {
	rows, err := database.DB.Query(`SELECT id, date, name, description, stock, unit_price, units_sold, current_rank, suggested_rank, rank_delta, score, justification FROM products ORDER BY current_rank ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over product rows: %w", err)
	}
	return products, nil
}

func (s *analysisServiceImpl) CreateProduct(p models.Product) (*models.Product, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	}
	if p.ID == "" {
		p.ID = "prod_" + uuid.NewString()
	}
	if p.Date == "" {
		p.Date = time.Now().Format("2006-01-02")
	}
	if p.Stock < 0 || p.UnitPrice < 0 || p.UnitsSold < 0 {
		return nil, fmt.Errorf("%w: stock, price and units sold must be non-negative", ErrInvalidProduct)
	}
	if p.CurrentRank < 1 {
		if err := database.DB.QueryRow(`SELECT COALESCE(MAX(current_rank), 0) + 1 FROM products`).Scan(&p.CurrentRank); err != nil {
			return nil, fmt.Errorf("error assigning rank: %w", err)
		}
	}
	p.SuggestedRank = nil
	p.RankDelta = 0
	p.Score = 0
	p.Justification = ""

	_, err := database.DB.Exec(`INSERT INTO products (id, date, name, description, stock, unit_price, units_sold, current_rank) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Date, p.Name, p.Description, p.Stock, p.UnitPrice, p.UnitsSold, p.CurrentRank)
	if err != nil {
		return nil, fmt.Errorf("error inserting product %q: %w", p.Name, err)
	}

	s.invalidateCache()
	return &p, nil
}

func (s *analysisServiceImpl) UpdateProduct(p models.Product) (*models.Product, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidProduct)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	}
	if p.Stock < 0 || p.UnitPrice < 0 || p.UnitsSold < 0 {
		return nil, fmt.Errorf("%w: stock, price and units sold must be non-negative", ErrInvalidProduct)
	}

	res, err := database.DB.Exec(`UPDATE products SET date = ?, name = ?, description = ?, stock = ?, unit_price = ?, units_sold = ?, current_rank = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Date, p.Name, p.Description, p.Stock, p.UnitPrice, p.UnitsSold, p.CurrentRank, p.ID)
	if err != nil {
		return nil, fmt.Errorf("error updating product %q: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrProductNotFound
	}

	s.invalidateCache()
	return &p, nil
}

func (s *analysisServiceImpl) DeleteProduct(id string) error {
	res, err := database.DB.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting product %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	s.invalidateCache()
	return nil
}

func (s *analysisServiceImpl) DeleteAllProducts() error {
	if _, err := database.DB.Exec(`DELETE FROM products`); err != nil {
		return fmt.Errorf("error deleting products: %w", err)
	}
	s.invalidateCache()
	return nil
}

func (s *analysisServiceImpl) GetAnalysisHistory() ([]models.AnalysisRecord, error) {
	rows, err := database.DB.Query(`SELECT id, analyzed_at, total_products, changes_count, total_units_sold, total_stock, inventory_value, average_units_sold FROM analysis_history ORDER BY analyzed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying analysis history: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		if scanErr := rows.Scan(&rec.ID, &rec.AnalyzedAt, &rec.TotalProducts, &rec.ChangesCount, &rec.TotalUnitsSold, &rec.TotalStock, &rec.InventoryValue, &rec.AverageUnitsSold); scanErr != nil {
			return nil, fmt.Errorf("error scanning history row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over history rows: %w", err)
	}
	return records, nil
}

func (s *analysisServiceImpl) invalidateCache() {
	s.resultCache.Delete(ckLatestAnalysisResult)
	logger.L.Debug("Invalidated analysis result cache")
}

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	var suggested sql.NullInt64
	if err := rows.Scan(&p.ID, &p.Date, &p.Name, &p.Description, &p.Stock, &p.UnitPrice, &p.UnitsSold, &p.CurrentRank, &suggested, &p.RankDelta, &p.Score, &p.Justification); err != nil {
		return models.Product{}, fmt.Errorf("error scanning product row: %w", err)
	}
	if suggested.Valid {
		rank := int(suggested.Int64)
		p.SuggestedRank = &rank
	}
	return p, nil
}
