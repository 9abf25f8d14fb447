package processors

import (
	"context"

	"github.com/username/ordena/backend/src/models"
)

// Analyzer is the swappable scoring provider. The heuristic implementation
// is the real logic today; the mock-remote wrapper simulates the latency of
// the analysis API that would eventually replace it.
type Analyzer interface {
	Analyze(ctx context.Context, products []models.Product) (*models.AnalysisResult, error)
}
