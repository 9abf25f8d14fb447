package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/ordena/backend/src/database"
	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/parsers"
	"github.com/username/ordena/backend/src/processors"
)

// catalogCSV holds two products with opposite score profiles: Teclado
// scores 70 (rank 2 -> 1), Monitor scores 12 (rank 1 -> 2).
const catalogCSV = "fecha,nombre_producto,descripcion,cantidad/stock,precio_unitario,cantidad_unds_vendidas,orden\n" +
	"2024-01-15,Monitor,Pantalla,100,10,1,1\n" +
	"2024-01-15,Teclado,Mecánico,10,100,5,2\n"

func setupTestService(t *testing.T) AnalysisService {
	t.Helper()
	logger.InitLogger("error")

	// modernc sqlite gives every pool connection its own :memory: database,
	// so tests need a real file.
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	resultCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	analyzer := processors.NewHeuristicAnalyzer(processors.NewScoringProcessor())
	return NewAnalysisService(analyzer, resultCache)
}

func uploadCatalog(t *testing.T, service AnalysisService) {
	t.Helper()
	_, err := service.ProcessUpload(strings.NewReader(catalogCSV), "productos.csv")
	require.NoError(t, err)
}

func TestProcessUploadStoresBatch(t *testing.T) {
	service := setupTestService(t)

	uploaded, err := service.ProcessUpload(strings.NewReader(catalogCSV), "productos.csv")
	require.NoError(t, err)
	require.Len(t, uploaded, 2)

	stored, err := service.ListProducts()
	require.NoError(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, "Monitor", stored[0].Name)
	assert.Equal(t, 1, stored[0].CurrentRank)
	assert.Equal(t, 100, stored[0].Stock)
	assert.Equal(t, 10.0, stored[0].UnitPrice)
	assert.Nil(t, stored[0].SuggestedRank)

	assert.Equal(t, "Teclado", stored[1].Name)
	assert.Equal(t, 2, stored[1].CurrentRank)
}

func TestProcessUploadReplacesPreviousBatch(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	replacement := "nombre_producto,stock\nCable,3\n"
	_, err := service.ProcessUpload(strings.NewReader(replacement), "otros.csv")
	require.NoError(t, err)

	stored, err := service.ListProducts()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Cable", stored[0].Name)
}

func TestProcessUploadFailureKeepsPreviousBatch(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	broken := "nombre_producto,stock\nWidget,5\n,7\n"
	_, err := service.ProcessUpload(strings.NewReader(broken), "roto.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)

	var missing *parsers.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 3, missing.Row)

	stored, err := service.ListProducts()
	require.NoError(t, err)
	assert.Len(t, stored, 2, "a failed upload must not touch the stored batch")
}

func TestProcessUploadUnsupportedFormat(t *testing.T) {
	service := setupTestService(t)

	_, err := service.ProcessUpload(strings.NewReader("anything"), "notas.txt")
	assert.ErrorIs(t, err, ErrParsingFailed)
	assert.ErrorIs(t, err, parsers.ErrUnsupportedFormat)
}

func TestAnalyzeProductsPersistsAndCaches(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	result, err := service.AnalyzeProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, 2, result.TotalProducts)
	assert.Equal(t, 2, result.ChangesCount)
	assert.Equal(t, "Teclado", result.Products[0].Name)

	// suggestions are persisted on the stored rows
	stored, err := service.ListProducts()
	require.NoError(t, err)
	require.Len(t, stored, 2)

	monitor, teclado := stored[0], stored[1]
	require.NotNil(t, monitor.SuggestedRank)
	assert.Equal(t, 2, *monitor.SuggestedRank)
	assert.Equal(t, -1, monitor.RankDelta)
	assert.Equal(t, 12.0, monitor.Score)
	assert.NotEmpty(t, monitor.Justification)

	require.NotNil(t, teclado.SuggestedRank)
	assert.Equal(t, 1, *teclado.SuggestedRank)
	assert.Equal(t, 70.0, teclado.Score)

	// the pass is cached as the latest result
	latest, err := service.LatestAnalysisResult()
	require.NoError(t, err)
	assert.Equal(t, result, latest)

	// and recorded in the history
	history, err := service.GetAnalysisHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].TotalProducts)
	assert.Equal(t, 2, history[0].ChangesCount)
	assert.Equal(t, 6, history[0].TotalUnitsSold)
	assert.Equal(t, 110, history[0].TotalStock)
	assert.Equal(t, 2000.0, history[0].InventoryValue)
	assert.Equal(t, 3.0, history[0].AverageUnitsSold)
	assert.False(t, history[0].AnalyzedAt.IsZero())
}

func TestAnalyzeProductsEmptyCatalog(t *testing.T) {
	service := setupTestService(t)

	_, err := service.AnalyzeProducts(context.Background())
	assert.ErrorIs(t, err, ErrNoProducts)
}

func TestLatestAnalysisResultBeforeAnyPass(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	_, err := service.LatestAnalysisResult()
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

func TestApplySuggestedOrder(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	_, err := service.AnalyzeProducts(context.Background())
	require.NoError(t, err)

	applied, err := service.ApplySuggestedOrder()
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "Teclado", applied[0].Name)
	assert.Equal(t, 1, applied[0].CurrentRank)

	stored, err := service.ListProducts()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Teclado", stored[0].Name)
	assert.Equal(t, 1, stored[0].CurrentRank)
	assert.Nil(t, stored[0].SuggestedRank)
	assert.Equal(t, 0, stored[0].RankDelta)
	assert.Equal(t, 0.0, stored[0].Score)
	assert.Equal(t, "", stored[0].Justification)

	// applying the order invalidates the cached analysis
	_, err = service.LatestAnalysisResult()
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

func TestApplySuggestedOrderEmptyCatalog(t *testing.T) {
	service := setupTestService(t)

	_, err := service.ApplySuggestedOrder()
	assert.ErrorIs(t, err, ErrNoProducts)
}

func TestCreateProductDefaults(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	created, err := service.CreateProduct(models.Product{Name: "Cable", Stock: 5, UnitPrice: 2.5})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ID, "prod_"))
	assert.Equal(t, time.Now().Format("2006-01-02"), created.Date)
	assert.Equal(t, 3, created.CurrentRank, "new products append to the end of the ranking")
	assert.Nil(t, created.SuggestedRank)

	stored, err := service.ListProducts()
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Cable", stored[2].Name)
}

func TestCreateProductValidation(t *testing.T) {
	service := setupTestService(t)

	_, err := service.CreateProduct(models.Product{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = service.CreateProduct(models.Product{Name: "Cable", Stock: -1})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestUpdateProduct(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	stored, err := service.ListProducts()
	require.NoError(t, err)

	target := stored[0]
	target.Name = "Monitor 4K"
	target.Stock = 42

	updated, err := service.UpdateProduct(target)
	require.NoError(t, err)
	assert.Equal(t, "Monitor 4K", updated.Name)

	stored, err = service.ListProducts()
	require.NoError(t, err)
	assert.Equal(t, "Monitor 4K", stored[0].Name)
	assert.Equal(t, 42, stored[0].Stock)
}

func TestUpdateProductNotFound(t *testing.T) {
	service := setupTestService(t)

	_, err := service.UpdateProduct(models.Product{ID: "prod_missing", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	stored, err := service.ListProducts()
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(stored[0].ID))

	remaining, err := service.ListProducts()
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	assert.ErrorIs(t, service.DeleteProduct("prod_missing"), ErrProductNotFound)
}

func TestDeleteAllProducts(t *testing.T) {
	service := setupTestService(t)
	uploadCatalog(t, service)

	require.NoError(t, service.DeleteAllProducts())

	remaining, err := service.ListProducts()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(ctx context.Context, products []models.Product) (*models.AnalysisResult, error) {
	return nil, errors.New("backend unavailable")
}

func TestAnalyzeProductsAnalyzerFailure(t *testing.T) {
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })

	resultCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	service := NewAnalysisService(failingAnalyzer{}, resultCache)

	_, err := service.ProcessUpload(strings.NewReader(catalogCSV), "productos.csv")
	require.NoError(t, err)

	_, err = service.AnalyzeProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")

	// a failed pass must not leave a cached result behind
	_, err = service.LatestAnalysisResult()
	assert.ErrorIs(t, err, ErrNoAnalysis)
}
