package marketplace

import (
	"context"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/cardintel-cli/internal/fetcher"
	"github.com/sells-group/cardintel-cli/internal/resilience"
)

const defaultEbayBaseURL = "https://www.ebay.com/sch/i.html"

// EbayScraper scrapes eBay's completed-listings search results.
type EbayScraper struct {
	fetcher fetcher.Fetcher
	cache   PriceCache
	baseURL string
	breaker *resilience.CircuitBreaker
}

// EbayOption customizes an EbayScraper.
type EbayOption func(*EbayScraper)

// WithBaseURL overrides the search endpoint. Used by tests.
func WithBaseURL(u string) EbayOption {
	return func(s *EbayScraper) { s.baseURL = u }
}

// WithCircuitBreaker overrides the default breaker config.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) EbayOption {
	return func(s *EbayScraper) { s.breaker = resilience.NewCircuitBreaker(cfg) }
}

// NewEbayScraper creates a scraper over the given fetcher and cache.
func NewEbayScraper(f fetcher.Fetcher, cache PriceCache, opts ...EbayOption) *EbayScraper {
	s := &EbayScraper{
		fetcher: f,
		cache:   cache,
		baseURL: defaultEbayBaseURL,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	priceSpanRe = regexp.MustCompile(`(?is)<span[^>]*class="[^"]*s-item__price[^"]*"[^>]*>(.*?)</span>`)
	priceNumRe  = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
)

// FetchSoldPrices returns up to maxResults sold prices in document order.
// Failures of any kind return an empty slice.
func (s *EbayScraper) FetchSoldPrices(ctx context.Context, query string, maxResults int) []float64 {
	if prices, ok := s.cache.Get(ctx, query, maxResults); ok {
		zap.L().Debug("ebay: cache hit", zap.String("query", query), zap.Int("count", len(prices)))
		return prices
	}

	html, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (string, error) {
		body, err := s.fetcher.Download(ctx, s.searchURL(query))
		if err != nil {
			return "", err
		}
		defer body.Close()

		raw, err := io.ReadAll(io.LimitReader(body, 4*1024*1024))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		zap.L().Warn("ebay: circuit open, skipping fetch", zap.String("query", query))
		return nil
	}
	if err != nil {
		zap.L().Warn("ebay: fetch failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	prices := parsePrices(html, maxResults)
	s.cache.Set(ctx, query, maxResults, prices)

	zap.L().Info("ebay: fetched sold prices",
		zap.String("query", query),
		zap.Int("count", len(prices)),
	)
	return prices
}

func (s *EbayScraper) searchURL(query string) string {
	params := url.Values{}
	params.Set("_from", "R40")
	params.Set("_nkw", query)
	params.Set("_sacat", "0")
	params.Set("LH_Sold", "1")
	params.Set("LH_Complete", "1")
	params.Set("_sop", "13")
	return s.baseURL + "?" + params.Encode()
}

// parsePrices extracts numeric prices from s-item__price spans. Range
// listings ("$10.00 to $15.00") contribute their first price only.
func parsePrices(html string, maxResults int) []float64 {
	var prices []float64
	for _, m := range priceSpanRe.FindAllStringSubmatch(html, -1) {
		if maxResults > 0 && len(prices) >= maxResults {
			break
		}
		text := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
		num := priceNumRe.FindStringSubmatch(text)
		if num == nil {
			continue
		}
		p, err := strconv.ParseFloat(strings.ReplaceAll(num[1], ",", ""), 64)
		if err != nil {
			continue
		}
		prices = append(prices, p)
	}
	return prices
}
