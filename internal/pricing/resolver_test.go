package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/store"
)

// fakeStore is an in-memory Store stub for resolver tests.
type fakeStore struct {
	entry      *model.LocalCardEntry
	fuzzyEntry *model.LocalCardEntry
	findErr    error
	upserted   []model.LocalCardEntry
}

func (f *fakeStore) FindEntry(_ context.Context, _ store.EntryQuery) (*model.LocalCardEntry, error) {
	return f.entry, f.findErr
}

func (f *fakeStore) FindEntryFuzzy(_ context.Context, _ store.EntryQuery) (*model.LocalCardEntry, error) {
	return f.fuzzyEntry, nil
}

func (f *fakeStore) UpsertEntry(_ context.Context, entry model.LocalCardEntry) error {
	f.upserted = append(f.upserted, entry)
	return nil
}

func (f *fakeStore) UpdateEntryPrice(context.Context, string, model.Condition, float64, int) error {
	return nil
}

func (f *fakeStore) SearchEntries(context.Context, string, int) ([]model.LocalCardEntry, error) {
	return nil, nil
}

func (f *fakeStore) GetCachedPrices(context.Context, string) ([]float64, error) { return nil, nil }
func (f *fakeStore) SetCachedPrices(context.Context, string, []float64, time.Duration) error {
	return nil
}
func (f *fakeStore) DeleteExpiredPrices(context.Context) (int, error) { return 0, nil }
func (f *fakeStore) Migrate(context.Context) error                    { return nil }
func (f *fakeStore) Close() error                                     { return nil }

// fakeScraper returns canned prices and records queries.
type fakeScraper struct {
	prices  []float64
	queries []string
}

func (f *fakeScraper) FetchSoldPrices(_ context.Context, query string, _ int) []float64 {
	f.queries = append(f.queries, query)
	return f.prices
}

var testRecord = model.CardRecord{
	Player: "Paul Skenes",
	Year:   "2024",
	Set:    "Topps Chrome",
}

func TestResolve_LocalHit(t *testing.T) {
	st := &fakeStore{entry: &model.LocalCardEntry{
		PlayerName:  "Paul Skenes",
		Year:        2024,
		AvgRawPrice: 100,
		SampleSize:  12,
	}}
	scraper := &fakeScraper{prices: []float64{999}}
	r := NewResolver(st, scraper, ResolverConfig{MarkupPercent: 18})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)

	assert.Equal(t, model.SourceLocalDatabase, quote.Source)
	assert.Equal(t, model.ConfidenceHigh, quote.Confidence)
	assert.InDelta(t, 100.0, quote.AverageSoldPrice, 0.001)
	assert.InDelta(t, 118.0, quote.ListingPrice, 0.001)
	assert.Equal(t, 12, quote.SampleSize)
	// Remote tier never consulted.
	assert.Empty(t, scraper.queries)
}

func TestResolve_FuzzyHit(t *testing.T) {
	st := &fakeStore{fuzzyEntry: &model.LocalCardEntry{
		PlayerName:  "Paul Skenes",
		Year:        2023,
		AvgRawPrice: 50,
	}}
	r := NewResolver(st, &fakeScraper{}, ResolverConfig{})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)
	assert.Equal(t, model.SourceLocalDatabase, quote.Source)
	assert.InDelta(t, 50.0, quote.AverageSoldPrice, 0.001)
}

func TestResolve_GradedUsesConditionPrice(t *testing.T) {
	st := &fakeStore{entry: &model.LocalCardEntry{
		PlayerName:    "Paul Skenes",
		Year:          2024,
		AvgRawPrice:   100,
		AvgPSA10Price: 500,
	}}
	r := NewResolver(st, &fakeScraper{}, ResolverConfig{MarkupPercent: 18})

	rec := testRecord
	rec.Graded = true
	rec.Grade = "10"
	quote := r.Resolve(context.Background(), rec)
	require.NotNil(t, quote)
	assert.InDelta(t, 500.0, quote.AverageSoldPrice, 0.001)
}

func TestResolve_RemoteWhenLocalMisses(t *testing.T) {
	st := &fakeStore{}
	scraper := &fakeScraper{prices: []float64{90, 100, 110}}
	r := NewResolver(st, scraper, ResolverConfig{MarkupPercent: 18, WriteBack: true})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)

	assert.Equal(t, model.SourceEbayAPI, quote.Source)
	assert.Equal(t, model.ConfidenceMedium, quote.Confidence)
	assert.InDelta(t, 100.0, quote.AverageSoldPrice, 0.001)
	require.Len(t, scraper.queries, 1)
	assert.Contains(t, scraper.queries[0], `"Paul Skenes"`)

	// Remote result written back for the next lookup.
	require.Len(t, st.upserted, 1)
	assert.Equal(t, "Paul Skenes", st.upserted[0].PlayerName)
	assert.InDelta(t, 100.0, st.upserted[0].AvgRawPrice, 0.001)
}

func TestResolve_NoWriteBackWhenDisabled(t *testing.T) {
	st := &fakeStore{}
	scraper := &fakeScraper{prices: []float64{100}}
	r := NewResolver(st, scraper, ResolverConfig{WriteBack: false})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)
	assert.Empty(t, st.upserted)
}

func TestResolve_FallbackWhenScrapeEmpty(t *testing.T) {
	r := NewResolver(&fakeStore{}, &fakeScraper{}, ResolverConfig{FallbackValue: 1.0})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)

	assert.Equal(t, model.SourceFallback, quote.Source)
	assert.Equal(t, model.ConfidenceLow, quote.Confidence)
	assert.InDelta(t, 1.0, quote.ListingPrice, 0.001)
	assert.Zero(t, quote.SampleSize)
}

func TestResolve_StoreErrorDegradesToNextTier(t *testing.T) {
	st := &fakeStore{findErr: errors.New("db down")}
	scraper := &fakeScraper{prices: []float64{100}}
	r := NewResolver(st, scraper, ResolverConfig{})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)
	assert.Equal(t, model.SourceEbayAPI, quote.Source)
}

func TestResolve_EmptyRecordSkipsRemote(t *testing.T) {
	scraper := &fakeScraper{prices: []float64{100}}
	r := NewResolver(&fakeStore{}, scraper, ResolverConfig{FallbackValue: 1.0})

	quote := r.Resolve(context.Background(), model.CardRecord{})
	require.NotNil(t, quote)

	// "sold" alone is no query; the scraper must not be called.
	assert.Empty(t, scraper.queries)
	assert.Equal(t, model.SourceFallback, quote.Source)
}

func TestResolve_NeverNil(t *testing.T) {
	r := NewResolver(nil, nil, ResolverConfig{})
	quote := r.Resolve(context.Background(), model.CardRecord{})
	require.NotNil(t, quote)
	assert.Equal(t, model.SourceFallback, quote.Source)
}

func TestResolve_ZeroPriceEntryMisses(t *testing.T) {
	// An entry with no price for the requested condition is not a hit.
	st := &fakeStore{entry: &model.LocalCardEntry{PlayerName: "Paul Skenes", Year: 2024}}
	scraper := &fakeScraper{prices: []float64{80}}
	r := NewResolver(st, scraper, ResolverConfig{})

	quote := r.Resolve(context.Background(), testRecord)
	require.NotNil(t, quote)
	assert.Equal(t, model.SourceEbayAPI, quote.Source)
}
