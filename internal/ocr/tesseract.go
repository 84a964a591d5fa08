package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// Tesseract extracts text from images using the tesseract CLI tool.
type Tesseract struct {
	binPath string
}

// NewTesseract creates a Tesseract reader. If binPath is empty, "tesseract"
// is used.
func NewTesseract(binPath string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Tesseract{binPath: binPath}
}

// Text runs tesseract on the given image and returns stdout.
func (t *Tesseract) Text(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binPath, imagePath, "stdout")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: tesseract failed for %s: %s", imagePath, stderr.String())
	}

	return stdout.String(), nil
}
