package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/ordena/backend/src/models"
)

var (
	// ErrParsingFailed classifies any ingestion failure: unsupported format,
	// decode errors, empty files, and normalization failures all wrap it.
	ErrParsingFailed = errors.New("error parsing uploaded file")

	// ErrNoProducts is returned when an operation needs a loaded batch and
	// the catalog is empty.
	ErrNoProducts = errors.New("no products loaded")

	// ErrNoAnalysis is returned when no scoring pass has run yet.
	ErrNoAnalysis = errors.New("no analysis result available")

	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// AnalysisService defines the interface for the catalog and analysis logic
// exposed to the HTTP layer.
type AnalysisService interface {
	ProcessUpload(fileReader io.Reader, fileName string) ([]models.Product, error)
	AnalyzeProducts(ctx context.Context) (*models.AnalysisResult, error)
	LatestAnalysisResult() (*models.AnalysisResult, error)
	ApplySuggestedOrder() ([]models.Product, error)

	ListProducts() ([]models.Product, error)
	CreateProduct(p models.Product) (*models.Product, error)
	UpdateProduct(p models.Product) (*models.Product, error)
	DeleteProduct(id string) error
	DeleteAllProducts() error

	ExportCSV(w io.Writer) error
	TemplateCSV(w io.Writer) error
	GetAnalysisHistory() ([]models.AnalysisRecord, error)
}
