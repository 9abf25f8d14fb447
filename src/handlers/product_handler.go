package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/models"
	"github.com/username/ordena/backend/src/services"
	"github.com/username/ordena/backend/src/utils"
)

type ProductHandler struct {
	analysisService services.AnalysisService
}

func NewProductHandler(service services.AnalysisService) *ProductHandler {
	return &ProductHandler{
		analysisService: service,
	}
}

// HandleListProducts returns the current batch in current-rank order, with
// ETag support so unchanged catalogs answer 304.
func (h *ProductHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.analysisService.ListProducts()
	if err != nil {
		logger.L.Error("Error retrieving products", "error", err)
		utils.SendJSONError(w, "An internal error occurred while retrieving products.", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	currentETag, etagErr := utils.GenerateETag(products)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for product list", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		logger.L.Error("Error encoding JSON response for product list", "error", err)
	}
}

func (h *ProductHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.SendJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	created, err := h.analysisService.CreateProduct(p)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProduct) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Error creating product", "error", err)
		utils.SendJSONError(w, "An internal error occurred while creating the product.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		logger.L.Error("Error encoding JSON response for created product", "error", err)
	}
}

func (h *ProductHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Product id is required", http.StatusBadRequest)
		return
	}

	var p models.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.SendJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	p.ID = id

	updated, err := h.analysisService.UpdateProduct(p)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidProduct):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrProductNotFound):
			utils.SendJSONError(w, fmt.Sprintf("Product %q not found", id), http.StatusNotFound)
		default:
			logger.L.Error("Error updating product", "productID", id, "error", err)
			utils.SendJSONError(w, "An internal error occurred while updating the product.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		logger.L.Error("Error encoding JSON response for updated product", "productID", id, "error", err)
	}
}

func (h *ProductHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.SendJSONError(w, "Product id is required", http.StatusBadRequest)
		return
	}

	if err := h.analysisService.DeleteProduct(id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("Product %q not found", id), http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting product", "productID", id, "error", err)
		utils.SendJSONError(w, "An internal error occurred while deleting the product.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) HandleDeleteAllProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.analysisService.DeleteAllProducts(); err != nil {
		logger.L.Error("Error deleting all products", "error", err)
		utils.SendJSONError(w, "An internal error occurred while clearing the catalog.", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExportCSV serves the batch as a CSV download in the fixed export
// column order. The export is buffered so errors can still answer with a
// JSON status instead of a half-written body.
func (h *ProductHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.analysisService.ExportCSV(&buf); err != nil {
		if errors.Is(err, services.ErrNoProducts) {
			utils.SendJSONError(w, "No products loaded. Upload a catalog file first.", http.StatusConflict)
			return
		}
		logger.L.Error("Error exporting products", "error", err)
		utils.SendJSONError(w, "An internal error occurred while exporting.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="productos_ordenados.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		logger.L.Error("Error streaming CSV export", "error", err)
	}
}

// HandleTemplateCSV serves the illustrative template for users to fill in.
func (h *ProductHandler) HandleTemplateCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="template_productos.csv"`)
	if err := h.analysisService.TemplateCSV(w); err != nil {
		logger.L.Error("Error streaming CSV template", "error", err)
	}
}
