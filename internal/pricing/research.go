package pricing

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/cardintel-cli/internal/marketplace"
	"github.com/sells-group/cardintel-cli/internal/model"
)

// ResearchConfig tunes the standalone research tool.
type ResearchConfig struct {
	MarkupPercent float64
	MaxResults    int
}

// ResearchCard pools sold prices across a card's search variations and
// aggregates them with the research variant's wider trim.
func ResearchCard(ctx context.Context, scraper marketplace.Scraper, card model.ResearchCard, cfg ResearchConfig) model.ResearchResult {
	if cfg.MarkupPercent == 0 {
		cfg.MarkupPercent = 15
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 8
	}

	result := model.ResearchResult{
		CardName: card.Name,
		Player:   card.Player,
		Grade:    card.Grade,
	}

	var pooled []float64
	for _, query := range card.SearchVariations {
		prices := scraper.FetchSoldPrices(ctx, query, cfg.MaxResults)
		if len(prices) > 0 {
			pooled = append(pooled, prices...)
			result.SuccessfulSearches++
		}
		zap.L().Debug("research: search variation done",
			zap.String("card", card.Name),
			zap.String("query", query),
			zap.Int("found", len(prices)),
		)
	}

	quote := Aggregate(pooled, cfg.MarkupPercent, VariantResearch)
	if quote == nil {
		result.Error = "no sold listings found"
		result.Confidence = model.MarketConfidenceLow
		return result
	}

	result.TotalListings = quote.SampleSize
	result.AverageSoldPrice = quote.AverageSoldPrice
	result.MedianSoldPrice = quote.MedianSoldPrice
	result.MinSoldPrice = quote.MinSoldPrice
	result.MaxSoldPrice = quote.MaxSoldPrice
	result.RecommendedListing = quote.ListingPrice
	result.Confidence = model.MarketConfidenceFor(quote.SampleSize)
	return result
}
