package model

// ResearchCard defines one card to research, loaded from a YAML definitions
// file. Each search variation is scraped independently and the results are
// pooled.
type ResearchCard struct {
	Name             string   `json:"name" yaml:"name"`
	Player           string   `json:"player" yaml:"player"`
	Grade            string   `json:"grade,omitempty" yaml:"grade,omitempty"`
	SearchVariations []string `json:"search_variations" yaml:"search_variations"`
}

// MarketConfidence bands based on how many sold listings backed the result.
type MarketConfidence string

const (
	MarketConfidenceHigh   MarketConfidence = "High"
	MarketConfidenceMedium MarketConfidence = "Medium"
	MarketConfidenceLow    MarketConfidence = "Low"
)

// MarketConfidenceFor assigns a band from the pooled listing count.
func MarketConfidenceFor(listings int) MarketConfidence {
	switch {
	case listings >= 10:
		return MarketConfidenceHigh
	case listings >= 5:
		return MarketConfidenceMedium
	default:
		return MarketConfidenceLow
	}
}

// ResearchResult is the pooled pricing outcome for one researched card.
type ResearchResult struct {
	CardName           string           `json:"card_name"`
	Player             string           `json:"player"`
	Grade              string           `json:"grade,omitempty"`
	TotalListings      int              `json:"total_listings_found"`
	SuccessfulSearches int              `json:"successful_searches"`
	AverageSoldPrice   float64          `json:"average_sold_price"`
	MedianSoldPrice    float64          `json:"median_sold_price"`
	MinSoldPrice       float64          `json:"min_sold_price"`
	MaxSoldPrice       float64          `json:"max_sold_price"`
	RecommendedListing float64          `json:"recommended_listing_price"`
	Confidence         MarketConfidence `json:"market_confidence"`
	Error              string           `json:"error,omitempty"`
}
