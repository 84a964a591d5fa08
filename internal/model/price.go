package model

// PriceSource tags which tier of the resolution chain produced a quote.
type PriceSource string

const (
	SourceLocalDatabase PriceSource = "local_database"
	SourceEbayAPI       PriceSource = "ebay_api"
	SourceFallback      PriceSource = "fallback"
)

// PriceConfidence is the qualitative confidence of a resolved quote.
type PriceConfidence string

const (
	ConfidenceHigh   PriceConfidence = "high"
	ConfidenceMedium PriceConfidence = "medium"
	ConfidenceLow    PriceConfidence = "low"
)

// PriceQuote is the result of a pricing request. Median/min/max are
// populated only by the research aggregation variant.
type PriceQuote struct {
	SoldPrices       []float64       `json:"sold_prices"`
	AverageSoldPrice float64         `json:"average_sold_price"`
	MedianSoldPrice  float64         `json:"median_sold_price,omitempty"`
	MinSoldPrice     float64         `json:"min_sold_price,omitempty"`
	MaxSoldPrice     float64         `json:"max_sold_price,omitempty"`
	ListingPrice     float64         `json:"listing_price"` // average x (1 + markup/100)
	MarkupPercent    float64         `json:"markup_percent"`
	SampleSize       int             `json:"sample_size"`
	Source           PriceSource     `json:"source,omitempty"`
	Confidence       PriceConfidence `json:"confidence,omitempty"`
}
