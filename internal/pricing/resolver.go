package pricing

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/cardintel-cli/internal/marketplace"
	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/store"
)

// resolveState tracks progress through the resolution chain.
type resolveState int

const (
	stateLocalLookup resolveState = iota
	stateRemoteLookup
	stateFallback
	stateResolved
)

// ResolverConfig tunes the hybrid resolver.
type ResolverConfig struct {
	MarkupPercent float64
	MaxResults    int
	FallbackValue float64
	WriteBack     bool
}

// Resolver prices a card record by local table lookup, then a marketplace
// scrape, then a fixed fallback.
type Resolver struct {
	store   store.Store
	scraper marketplace.Scraper
	cfg     ResolverConfig
}

// NewResolver builds a Resolver. Zero config fields get production defaults.
func NewResolver(s store.Store, scraper marketplace.Scraper, cfg ResolverConfig) *Resolver {
	if cfg.MarkupPercent == 0 {
		cfg.MarkupPercent = 18
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 5
	}
	if cfg.FallbackValue == 0 {
		cfg.FallbackValue = 1.0
	}
	return &Resolver{store: s, scraper: scraper, cfg: cfg}
}

// Resolve is total: it always returns a quote, never an error. Exactly one
// of local_database, ebay_api, or fallback tags the result.
func (r *Resolver) Resolve(ctx context.Context, rec model.CardRecord) *model.PriceQuote {
	state := stateLocalLookup
	var quote *model.PriceQuote

	for state != stateResolved {
		switch state {
		case stateLocalLookup:
			if quote = r.localLookup(ctx, rec); quote != nil {
				state = stateResolved
			} else {
				state = stateRemoteLookup
			}
		case stateRemoteLookup:
			if quote = r.remoteLookup(ctx, rec); quote != nil {
				state = stateResolved
			} else {
				state = stateFallback
			}
		case stateFallback:
			quote = r.fallback()
			state = stateResolved
		}
	}
	return quote
}

// localLookup matches the reference table exactly, then fuzzily. Store
// errors are logged and treated as misses.
func (r *Resolver) localLookup(ctx context.Context, rec model.CardRecord) *model.PriceQuote {
	if r.store == nil || rec.Player == "" || rec.Year == "" {
		return nil
	}
	year, err := strconv.Atoi(rec.Year)
	if err != nil {
		return nil
	}

	q := store.EntryQuery{
		Player:       rec.Player,
		Year:         year,
		SetName:      rec.Set,
		Manufacturer: rec.Manufacturer,
		CardNumber:   rec.CardNumber,
	}

	entry, err := r.store.FindEntry(ctx, q)
	if err != nil {
		zap.L().Warn("pricing: local lookup failed", zap.String("player", rec.Player), zap.Error(err))
		return nil
	}
	if entry == nil {
		entry, err = r.store.FindEntryFuzzy(ctx, q)
		if err != nil {
			zap.L().Warn("pricing: fuzzy lookup failed", zap.String("player", rec.Player), zap.Error(err))
			return nil
		}
	}
	if entry == nil {
		return nil
	}

	price := entry.PriceFor(rec.Condition())
	if price <= 0 {
		return nil
	}

	zap.L().Debug("pricing: local hit",
		zap.String("player", entry.PlayerName),
		zap.Int("year", entry.Year),
		zap.Float64("price", price),
	)
	return &model.PriceQuote{
		AverageSoldPrice: price,
		ListingPrice:     round2(price * (1 + r.cfg.MarkupPercent/100)),
		MarkupPercent:    r.cfg.MarkupPercent,
		SampleSize:       entry.SampleSize,
		Source:           model.SourceLocalDatabase,
		Confidence:       model.ConfidenceHigh,
	}
}

func (r *Resolver) remoteLookup(ctx context.Context, rec model.CardRecord) *model.PriceQuote {
	if r.scraper == nil {
		return nil
	}
	query := BuildSearchQuery(rec)
	if query == "sold" {
		return nil
	}

	prices := r.scraper.FetchSoldPrices(ctx, query, r.cfg.MaxResults)
	quote := Aggregate(prices, r.cfg.MarkupPercent, VariantPipeline)
	if quote == nil {
		return nil
	}

	quote.Source = model.SourceEbayAPI
	quote.Confidence = model.ConfidenceMedium

	if r.cfg.WriteBack {
		r.writeBack(ctx, rec, quote)
	}
	return quote
}

// writeBack caches a remote result in the reference table so the next
// identical lookup resolves locally. Failures are logged, never surfaced.
func (r *Resolver) writeBack(ctx context.Context, rec model.CardRecord, quote *model.PriceQuote) {
	if r.store == nil {
		return
	}
	year, err := strconv.Atoi(rec.Year)
	if err != nil {
		return
	}

	entry := model.LocalCardEntry{
		Year:         year,
		Manufacturer: rec.Manufacturer,
		SetName:      rec.Set,
		PlayerName:   rec.Player,
		CardNumber:   rec.CardNumber,
		Parallel:     rec.Parallel,
		SampleSize:   quote.SampleSize,
	}
	switch rec.Condition() {
	case model.ConditionPSA10:
		entry.AvgPSA10Price = quote.AverageSoldPrice
	case model.ConditionPSA9:
		entry.AvgPSA9Price = quote.AverageSoldPrice
	default:
		entry.AvgRawPrice = quote.AverageSoldPrice
	}

	if err := r.store.UpsertEntry(ctx, entry); err != nil {
		zap.L().Warn("pricing: write-back failed", zap.String("player", rec.Player), zap.Error(err))
	}
}

func (r *Resolver) fallback() *model.PriceQuote {
	return &model.PriceQuote{
		AverageSoldPrice: r.cfg.FallbackValue,
		ListingPrice:     r.cfg.FallbackValue,
		SampleSize:       0,
		Source:           model.SourceFallback,
		Confidence:       model.ConfidenceLow,
	}
}
