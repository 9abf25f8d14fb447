package processors

import (
	"context"
	"time"

	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/models"
)

// HeuristicAnalyzer runs the local scoring engine directly. This is the
// provider the product actually ships with.
type HeuristicAnalyzer struct {
	scorer *ScoringProcessor
}

func NewHeuristicAnalyzer(scorer *ScoringProcessor) *HeuristicAnalyzer {
	return &HeuristicAnalyzer{scorer: scorer}
}

func (a *HeuristicAnalyzer) Analyze(ctx context.Context, products []models.Product) (*models.AnalysisResult, error) {
	return a.scorer.Process(products), nil
}

// MockRemoteAnalyzer wraps another Analyzer with a fixed artificial delay,
// standing in for the remote analysis API until it exists.
type MockRemoteAnalyzer struct {
	inner Analyzer
	delay time.Duration
}

func NewMockRemoteAnalyzer(inner Analyzer, delay time.Duration) *MockRemoteAnalyzer {
	return &MockRemoteAnalyzer{inner: inner, delay: delay}
}

func (a *MockRemoteAnalyzer) Analyze(ctx context.Context, products []models.Product) (*models.AnalysisResult, error) {
	if logger.L != nil {
		logger.L.Debug("Simulating remote analysis call", "delay", a.delay, "productCount", len(products))
	}
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return a.inner.Analyze(ctx, products)
}
