package parsers

import (
	"errors"
	"fmt"
	"io"

	"github.com/username/ordena/backend/src/models"
)

var (
	// ErrUnsupportedFormat is returned when the file extension is not one of
	// the recognized families (.csv, .xlsx, .xls).
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when a file decodes cleanly but holds no data rows.
	ErrEmptyFile = errors.New("file contains no data rows")

	// ErrDecode wraps corrupt-file and unreadable-byte failures.
	ErrDecode = errors.New("file could not be decoded")
)

// MissingFieldError reports a row whose product name could not be resolved
// under any accepted alias. Ingestion is all-or-nothing, so the whole batch
// is discarded when this is returned.
type MissingFieldError struct {
	Row int // row number in the source file, counting the header row
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("row %d: missing product name", e.Row)
}

// Parser turns one source format into canonical product records. All
// implementations converge on NormalizeRows, so output shape is identical
// regardless of source format.
type Parser interface {
	Parse(file io.Reader) ([]models.Product, error)
}
