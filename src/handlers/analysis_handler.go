package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/services"
	"github.com/username/ordena/backend/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: service,
	}
}

// HandleAnalyze runs one scoring pass over the loaded batch. With the mock
// provider configured this includes the simulated network delay, so the
// request context is passed through for cancellation.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysisService.AnalyzeProducts(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoProducts):
			utils.SendJSONError(w, "No products loaded. Upload a catalog file first.", http.StatusConflict)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logger.L.Info("Analysis canceled by client", "error", err)
			utils.SendJSONError(w, "Analysis canceled", http.StatusRequestTimeout)
		default:
			logger.L.Error("Error analyzing products", "error", err)
			utils.SendJSONError(w, "An internal error occurred while analyzing products.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for analysis result", "error", err)
	}
}

// HandleGetLatestAnalysis serves the most recent analysis result from the
// report cache without triggering a new scoring pass.
func (h *AnalysisHandler) HandleGetLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.analysisService.LatestAnalysisResult()
	if err != nil {
		if errors.Is(err, services.ErrNoAnalysis) {
			utils.SendJSONError(w, "No analysis has been run yet", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving latest analysis result", "error", err)
		utils.SendJSONError(w, "An internal error occurred.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for latest analysis", "error", err)
	}
}

// HandleApplyOrder promotes the suggested ranking to the current one.
func (h *AnalysisHandler) HandleApplyOrder(w http.ResponseWriter, r *http.Request) {
	products, err := h.analysisService.ApplySuggestedOrder()
	if err != nil {
		if errors.Is(err, services.ErrNoProducts) {
			utils.SendJSONError(w, "No products loaded. Upload a catalog file first.", http.StatusConflict)
			return
		}
		logger.L.Error("Error applying suggested order", "error", err)
		utils.SendJSONError(w, "An internal error occurred while applying the new order.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		logger.L.Error("Error encoding JSON response for applied order", "error", err)
	}
}

// HandleGetAnalysisHistory lists past scoring passes, newest first.
func (h *AnalysisHandler) HandleGetAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.analysisService.GetAnalysisHistory()
	if err != nil {
		logger.L.Error("Error retrieving analysis history", "error", err)
		utils.SendJSONError(w, "An internal error occurred while retrieving history.", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		logger.L.Error("Error encoding JSON response for analysis history", "error", err)
	}
}
