package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Sidecar reads OCR text from a .txt file next to the image, for workflows
// where OCR ran out-of-band.
type Sidecar struct{}

// NewSidecar creates a Sidecar reader.
func NewSidecar() *Sidecar {
	return &Sidecar{}
}

// Text reads <image>.txt, falling back to the image path with its extension
// replaced by .txt.
func (s *Sidecar) Text(_ context.Context, imagePath string) (string, error) {
	candidates := []string{
		imagePath + ".txt",
		strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt",
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
	}
	return "", eris.Errorf("ocr: no sidecar text for %s", imagePath)
}
