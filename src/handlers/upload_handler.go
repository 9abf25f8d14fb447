package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/ordena/backend/src/config"
	"github.com/username/ordena/backend/src/logger"
	"github.com/username/ordena/backend/src/parsers"
	"github.com/username/ordena/backend/src/security/validation"
	"github.com/username/ordena/backend/src/services"
	"github.com/username/ordena/backend/src/utils"
)

type UploadHandler struct {
	analysisService services.AnalysisService
}

func NewUploadHandler(service services.AnalysisService) *UploadHandler {
	return &UploadHandler{
		analysisService: service,
	}
}

// HandleUpload ingests one catalog file. The previous batch is replaced in
// full on success and left untouched on any failure.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB (header check)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	fileName := validation.StripUnprintable(fileHeader.Filename)

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileName, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated by magic bytes", "filename", fileName, "clientType", clientContentType, "detectedType", detectedContentType)

	products, err := h.analysisService.ProcessUpload(file, fileName)
	if err != nil {
		var missing *parsers.MissingFieldError
		switch {
		case errors.As(err, &missing):
			logger.L.Warn("Upload rejected: row missing product name", "filename", fileName, "row", missing.Row)
			utils.SendJSONError(w, fmt.Sprintf("Row %d is missing the product name", missing.Row), http.StatusBadRequest)
		case errors.Is(err, parsers.ErrUnsupportedFormat):
			utils.SendJSONError(w, "Unsupported file format. Use CSV or Excel (.xlsx, .xls)", http.StatusBadRequest)
		case errors.Is(err, parsers.ErrEmptyFile):
			utils.SendJSONError(w, "The file contains no data rows", http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Upload processing failed due to parsing errors", "filename", fileName, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error reading file: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing upload", "filename", fileName, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(products); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "error", err)
	}
}
