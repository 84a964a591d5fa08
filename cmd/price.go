package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/ocr"
)

var priceCmd = &cobra.Command{
	Use:   "price <front-image> [back-image]",
	Short: "Extract card metadata and resolve its market price",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		reader, err := ocr.NewReader(cfg.OCR)
		if err != nil {
			return err
		}

		rec, err := extractCard(ctx, reader, args[0], backPath(args))
		if err != nil {
			return err
		}

		quote := initResolver(st).Resolve(ctx, rec)

		out := struct {
			Card  model.CardRecord  `json:"card"`
			Quote *model.PriceQuote `json:"quote"`
		}{Card: rec, Quote: quote}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
