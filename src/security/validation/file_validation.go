package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/ordena/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // .xls, also used for CSV by older Excel
	"text/plain":               true, // CSVs are often plain text
	"application/octet-stream": true, // fallback, but be more cautious
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
}

// xlsxMagic is the ZIP local file header every .xlsx starts with.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// xlsMagic is the OLE compound document header of legacy .xls files.
var xlsMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	if allowed, exists := AllowedClientContentTypes[strings.ToLower(contentType)]; !exists || !allowed {
		if logger.L != nil {
			logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		}
		return fmt.Errorf("client-declared file type '%s' is not allowed for catalog upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// CSV uploads must look like text; spreadsheet uploads must carry the ZIP or
// OLE signature. Returns the detected content type.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512) // first 512 bytes are enough for MIME detection
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the read pointer so the actual parser sees the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	head := buffer[:n]
	if bytes.HasPrefix(head, xlsxMagic) {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	if bytes.HasPrefix(head, xlsMagic) {
		return "application/vnd.ms-excel", nil
	}

	detectedContentType := http.DetectContentType(head)
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	// For CSV we mainly care that it's text-based and not something
	// malicious like an executable. octet-stream is allowed; strict parsing
	// later will reject anything that is not actually CSV.
	allowedDetectedTypes := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true,
		"application/zip":          true, // .xlsx detected by sniffing rather than prefix
	}

	if !allowedDetectedTypes[detectedContentType] {
		if logger.L != nil {
			logger.L.Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detectedContentType)
		}
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not consistent with a CSV or spreadsheet file", detectedContentType)
	}

	if logger.L != nil {
		logger.L.Debug("File content type (magic bytes) validated", "detectedContentType", detectedContentType)
	}
	return detectedContentType, nil
}
