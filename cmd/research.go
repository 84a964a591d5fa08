package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/cardintel-cli/internal/export"
	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/pricing"
)

var (
	researchXLSX string
	researchJSON string
)

var researchCmd = &cobra.Command{
	Use:   "research <cards.yaml>",
	Short: "Research market prices for a list of card definitions",
	Long:  "Reads card definitions with search variations from a YAML file, pools sold prices across the variations for each card, and exports aggregated pricing with confidence bands.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cards, err := loadResearchCards(args[0])
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			return eris.Errorf("no card definitions in %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		scraper := initScraper(st)
		rcfg := pricing.ResearchConfig{
			MarkupPercent: cfg.Pricing.ResearchMarkupPercent,
			MaxResults:    8,
		}

		results := make([]model.ResearchResult, 0, len(cards))
		for _, card := range cards {
			zap.L().Info("research: card", zap.String("name", card.Name))
			results = append(results, pricing.ResearchCard(ctx, scraper, card, rcfg))
		}

		stamp := time.Now().Format("20060102_150405")
		xlsxPath := researchXLSX
		if xlsxPath == "" {
			xlsxPath = fmt.Sprintf("card_pricing_%s.xlsx", stamp)
		}
		jsonPath := researchJSON
		if jsonPath == "" {
			jsonPath = fmt.Sprintf("card_pricing_%s.json", stamp)
		}

		if err := export.WriteResultsXLSX(results, xlsxPath); err != nil {
			return err
		}
		if err := export.WriteResultsJSON(results, jsonPath); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Wrote %s and %s\n", xlsxPath, jsonPath)
		return nil
	},
}

func loadResearchCards(path string) ([]model.ResearchCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read card definitions %s", path)
	}

	var doc struct {
		Cards []model.ResearchCard `yaml:"cards"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse card definitions %s", path)
	}
	return doc.Cards, nil
}

func init() {
	researchCmd.Flags().StringVar(&researchXLSX, "xlsx", "", "xlsx output path (default card_pricing_<timestamp>.xlsx)")
	researchCmd.Flags().StringVar(&researchJSON, "json", "", "json output path (default card_pricing_<timestamp>.json)")
	rootCmd.AddCommand(researchCmd)
}
