// Package ocr extracts text from card images.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cardintel-cli/internal/config"
)

// Reader extracts text content from an image file.
type Reader interface {
	Text(ctx context.Context, imagePath string) (string, error)
}

// NewReader creates a Reader based on config.
func NewReader(cfg config.OCRConfig) (Reader, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg.TesseractPath), nil
	case "sidecar":
		return NewSidecar(), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
