// Package marketplace fetches sold-listing prices from online marketplaces.
// Scrapes are best-effort: every network or parse failure degrades to an
// empty price list, never an error.
package marketplace

import "context"

// Scraper fetches recent sold prices for a search query.
type Scraper interface {
	FetchSoldPrices(ctx context.Context, query string, maxResults int) []float64
}
