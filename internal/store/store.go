package store

import (
	"context"
	"strings"
	"time"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// EntryQuery specifies criteria for matching local card entries. Player and
// Year are required by callers; the rest tighten the match when present.
type EntryQuery struct {
	Player       string `json:"player"`
	Year         int    `json:"year"`
	SetName      string `json:"set_name,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	CardNumber   string `json:"card_number,omitempty"`
}

// Store defines the persistence interface for the card reference table and
// the sold-price cache.
type Store interface {
	// Card reference table
	FindEntry(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error)
	FindEntryFuzzy(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error)
	UpsertEntry(ctx context.Context, entry model.LocalCardEntry) error
	UpdateEntryPrice(ctx context.Context, id string, cond model.Condition, price float64, sampleSize int) error
	SearchEntries(ctx context.Context, player string, limit int) ([]model.LocalCardEntry, error)

	// Sold-price cache
	GetCachedPrices(ctx context.Context, key string) ([]float64, error)
	SetCachedPrices(ctx context.Context, key string, prices []float64, ttl time.Duration) error
	DeleteExpiredPrices(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// manufacturerAliasGroups expand a manufacturer into the brand names it
// publishes under, for fuzzy matching.
var manufacturerAliasGroups = [][]string{
	{"TOPPS", "BOWMAN"},
	{"PANINI", "PRIZM", "SELECT", "MOSAIC", "OPTIC", "DONRUSS", "SCORE"},
	{"UPPER DECK", "UD"},
}

// ManufacturerAliases returns the manufacturer plus every alias in its
// group. An unknown manufacturer returns itself alone.
func ManufacturerAliases(manufacturer string) []string {
	upper := strings.ToUpper(strings.TrimSpace(manufacturer))
	if upper == "" {
		return nil
	}
	for _, group := range manufacturerAliasGroups {
		for _, name := range group {
			if strings.Contains(upper, name) {
				return group
			}
		}
	}
	return []string{upper}
}
