package model

import "time"

// LocalCardEntry is a row in the local reference table of known card
// editions and their average market values. Rows are immutable except for
// price refreshes written back by the pricing resolver and the seeder.
type LocalCardEntry struct {
	ID            string    `json:"id" yaml:"id"`
	Sport         string    `json:"sport" yaml:"sport"` // MLB, NBA, NFL, NHL
	Year          int       `json:"year" yaml:"year"`
	Manufacturer  string    `json:"manufacturer" yaml:"manufacturer"`
	SetName       string    `json:"set_name" yaml:"set_name"`
	PlayerName    string    `json:"player_name" yaml:"player_name"`
	CardNumber    string    `json:"card_number" yaml:"card_number"`
	Parallel      string    `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	AvgRawPrice   float64   `json:"avg_raw_price" yaml:"avg_raw_price"`
	AvgPSA9Price  float64   `json:"avg_psa9_price" yaml:"avg_psa9_price"`
	AvgPSA10Price float64   `json:"avg_psa10_price" yaml:"avg_psa10_price"`
	SampleSize    int       `json:"sample_size" yaml:"sample_size"`
	LastUpdated   time.Time `json:"last_updated" yaml:"last_updated,omitempty"`
}

// PriceFor returns the stored average price for the given condition.
// Zero means no price is known for that condition.
func (e LocalCardEntry) PriceFor(cond Condition) float64 {
	switch cond {
	case ConditionPSA10:
		return e.AvgPSA10Price
	case ConditionPSA9:
		return e.AvgPSA9Price
	default:
		return e.AvgRawPrice
	}
}
