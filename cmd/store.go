package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/cardintel-cli/internal/fetcher"
	"github.com/sells-group/cardintel-cli/internal/marketplace"
	"github.com/sells-group/cardintel-cli/internal/pricing"
	"github.com/sells-group/cardintel-cli/internal/resilience"
	"github.com/sells-group/cardintel-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "cardintel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initScraper builds the eBay scraper over the configured fetcher and the
// store-backed price cache.
func initScraper(st store.Store) *marketplace.EbayScraper {
	delay := time.Duration(cfg.Scrape.DelaySecs) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Scrape.UserAgent,
		Timeout:    time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Scrape.Retries,
		RateLimiters: map[string]*rate.Limiter{
			"www.ebay.com": rate.NewLimiter(rate.Every(delay), 1),
			"ebay.com":     rate.NewLimiter(rate.Every(delay), 1),
		},
	})

	cache := marketplace.NewStoreCache(st, time.Duration(cfg.Scrape.CacheTTLHours)*time.Hour)
	breaker := resilience.FromCircuitConfig(cfg.Scrape.BreakerFailures, cfg.Scrape.BreakerResetSecs)
	return marketplace.NewEbayScraper(f, cache, marketplace.WithCircuitBreaker(breaker))
}

func initResolver(st store.Store) *pricing.Resolver {
	return pricing.NewResolver(st, initScraper(st), pricing.ResolverConfig{
		MarkupPercent: cfg.Pricing.MarkupPercent,
		MaxResults:    cfg.Scrape.MaxResults,
		FallbackValue: cfg.Pricing.FallbackValue,
		WriteBack:     cfg.Pricing.WriteBack,
	})
}
