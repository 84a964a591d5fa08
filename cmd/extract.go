package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/cardintel-cli/internal/extract"
	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/ocr"
)

var extractCmd = &cobra.Command{
	Use:   "extract <front-image> [back-image]",
	Short: "Extract card metadata from one or two image sides",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reader, err := ocr.NewReader(cfg.OCR)
		if err != nil {
			return err
		}

		rec, err := extractCard(ctx, reader, args[0], backPath(args))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func backPath(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

// extractCard runs OCR and extraction for a front image and an optional
// back image, merging the two sides. OCR failures degrade to empty text.
func extractCard(ctx context.Context, reader ocr.Reader, frontPath, backImagePath string) (model.CardRecord, error) {
	frontText, err := reader.Text(ctx, frontPath)
	if err != nil {
		frontText = ""
	}
	front := extract.ClassifyAndExtract(frontText, filepath.Base(frontPath))

	var back *model.CardRecord
	if backImagePath != "" {
		backText, err := reader.Text(ctx, backImagePath)
		if err != nil {
			backText = ""
		}
		b := extract.ClassifyAndExtract(backText, filepath.Base(backImagePath))
		back = &b
	}

	player := extract.PlayerFromFilename(filepath.Base(frontPath))
	return extract.MergeDualSide(front, back, player), nil
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
