package processors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/utils"
)

// Score weights and justification thresholds. Fixed constants, not learned
// or configurable. The thresholds explain rank changes; they are unrelated
// to the score formula itself.
const (
	salesWeight    = 10.0
	stockNumerator = 100.0
	priceWeight    = 0.1

	highSalesThreshold     = 5
	lowStockThreshold      = 20
	highValueThreshold     = 50.0
	lowSalesThreshold      = 3
	highInventoryThreshold = 50
)

// ScoringProcessor computes a priority score per product, derives the
// suggested display order, and explains each change.
type ScoringProcessor struct{}

func NewScoringProcessor() *ScoringProcessor {
	return &ScoringProcessor{}
}

// Process scores the batch, derives suggested ranks from the score-descending
// ordering, and attaches a justification per product. The input slice is not
// mutated; callers get fresh records.
func (sp *ScoringProcessor) Process(products []models.Product) *models.AnalysisResult {
	scored := make([]models.Product, len(products))
	copy(scored, products)
	for i := range scored {
		scored[i].Score = computeScore(scored[i])
	}

	// Stable sort: identical scores keep their input order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	changes := 0
	for i := range scored {
		rank := i + 1
		scored[i].SuggestedRank = &rank
		scored[i].RankDelta = scored[i].CurrentRank - rank
		scored[i].Justification = justification(scored[i], scored[i].RankDelta)
		if scored[i].RankDelta != 0 {
			changes++
		}
	}

	return &models.AnalysisResult{
		Products:      scored,
		TotalProducts: len(scored),
		ChangesCount:  changes,
		Timestamp:     time.Now().UTC(),
		Metrics:       calculateMetrics(products),
	}
}

// computeScore combines sales volume, stock pressure, and price. Division by
// stock is guarded so zero stock yields a zero component, never Inf or NaN.
func computeScore(p models.Product) float64 {
	salesComponent := float64(p.UnitsSold) * salesWeight
	stockComponent := 0.0
	if p.Stock > 0 {
		stockComponent = stockNumerator / float64(p.Stock)
	}
	priceComponent := p.UnitPrice * priceWeight
	return salesComponent + stockComponent + priceComponent
}

// rankRule pairs a predicate with the phrase it contributes to the
// justification. Rules evaluate in fixed order and join with ", ".
type rankRule struct {
	applies func(models.Product) bool
	phrase  string
}

var movedUpRules = []rankRule{
	{func(p models.Product) bool { return p.UnitsSold > highSalesThreshold }, "high sales volume"},
	{func(p models.Product) bool { return p.Stock < lowStockThreshold }, "limited stock"},
	{func(p models.Product) bool { return p.UnitPrice > highValueThreshold }, "high value"},
}

var movedDownRules = []rankRule{
	{func(p models.Product) bool { return p.UnitsSold < lowSalesThreshold }, "low sales"},
	{func(p models.Product) bool { return p.Stock > highInventoryThreshold }, "high inventory"},
}

func triggeredPhrases(p models.Product, rules []rankRule, fallback string) string {
	var phrases []string
	for _, r := range rules {
		if r.applies(p) {
			phrases = append(phrases, r.phrase)
		}
	}
	if len(phrases) == 0 {
		return fallback
	}
	return strings.Join(phrases, ", ")
}

func justification(p models.Product, delta int) string {
	switch {
	case delta == 0:
		return "Maintains optimal position"
	case delta > 0:
		return fmt.Sprintf("Moved up %d positions: %s", delta,
			triggeredPhrases(p, movedUpRules, "better performance"))
	default:
		return fmt.Sprintf("Moved down %d positions: %s", utils.AbsInt(delta),
			triggeredPhrases(p, movedDownRules, "lower priority"))
	}
}

// calculateMetrics reduces the batch to its aggregates.
func calculateMetrics(products []models.Product) models.AnalysisMetrics {
	var totalSold, totalStock int
	var inventoryValue float64
	for _, p := range products {
		totalSold += p.UnitsSold
		totalStock += p.Stock
		inventoryValue += float64(p.Stock) * p.UnitPrice
	}
	avg := 0.0
	if len(products) > 0 {
		avg = utils.RoundFloat(float64(totalSold)/float64(len(products)), 2)
	}
	return models.AnalysisMetrics{
		TotalUnitsSold:   totalSold,
		TotalStock:       totalStock,
		InventoryValue:   utils.RoundFloat(inventoryValue, 2),
		AverageUnitsSold: avg,
	}
}

// ApplySuggestedRanks promotes each record's suggested rank to its current
// rank and clears the suggestion for the next scoring pass. Copy and
// replace, not in-place mutation. Records added after the pass carry no
// suggestion and may collide with a promoted rank, so the final ordering is
// renumbered to keep ranks unique and dense.
func ApplySuggestedRanks(products []models.Product) []models.Product {
	applied := make([]models.Product, len(products))
	copy(applied, products)
	for i := range applied {
		if applied[i].SuggestedRank != nil {
			applied[i].CurrentRank = *applied[i].SuggestedRank
		}
		applied[i].SuggestedRank = nil
		applied[i].RankDelta = 0
		applied[i].Justification = ""
		applied[i].Score = 0
	}
	sort.SliceStable(applied, func(i, j int) bool {
		return applied[i].CurrentRank < applied[j].CurrentRank
	})
	for i := range applied {
		applied[i].CurrentRank = i + 1
	}
	return applied
}
