package pricing

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// Variant selects the outlier-trimming parameterization. The pipeline
// variant trims at 2 standard deviations. The research variant trims at 3
// but keeps the trim only when it retains at least 70% of samples.
type Variant int

const (
	VariantPipeline Variant = iota
	VariantResearch
)

const researchRetentionFloor = 0.7

// Aggregate computes robust statistics over sold prices and derives a
// markup-adjusted listing price. Returns nil on empty input. Source and
// confidence tags are the caller's to assign.
func Aggregate(prices []float64, markupPercent float64, variant Variant) *model.PriceQuote {
	if len(prices) == 0 {
		return nil
	}

	sample := prices
	if len(prices) > 2 {
		trimmed := trimOutliers(prices, variant)
		if len(trimmed) > 0 {
			sample = trimmed
		}
	}

	avg, _ := stats.Mean(stats.Float64Data(sample))
	quote := &model.PriceQuote{
		SoldPrices:       prices,
		AverageSoldPrice: round2(avg),
		ListingPrice:     round2(avg * (1 + markupPercent/100)),
		MarkupPercent:    markupPercent,
		SampleSize:       len(sample),
	}

	if variant == VariantResearch {
		median, _ := stats.Median(stats.Float64Data(sample))
		min, _ := stats.Min(stats.Float64Data(sample))
		max, _ := stats.Max(stats.Float64Data(sample))
		quote.MedianSoldPrice = round2(median)
		quote.MinSoldPrice = round2(min)
		quote.MaxSoldPrice = round2(max)
	}

	return quote
}

// trimOutliers drops samples farther than k standard deviations from the
// mean. The research variant abandons the trim when it would discard more
// than 30% of the data.
func trimOutliers(prices []float64, variant Variant) []float64 {
	mean, _ := stats.Mean(stats.Float64Data(prices))
	stdev, _ := stats.StandardDeviationPopulation(stats.Float64Data(prices))
	if stdev == 0 {
		return prices
	}

	k := 2.0
	if variant == VariantResearch {
		k = 3.0
	}

	var kept []float64
	for _, p := range prices {
		if math.Abs(p-mean) <= k*stdev {
			kept = append(kept, p)
		}
	}

	if variant == VariantResearch {
		if float64(len(kept)) < researchRetentionFloor*float64(len(prices)) {
			return prices
		}
	}
	return kept
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
