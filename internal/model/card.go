// Package model holds the core data types shared across the card
// intelligence pipeline: extracted card records, price quotes, and local
// reference table entries.
package model

// ExtractionMethod describes what evidence produced a CardRecord.
type ExtractionMethod string

const (
	MethodFilenameOnly ExtractionMethod = "filename-only" // OCR unavailable, filename name only
	MethodFilenameOCR  ExtractionMethod = "filename+OCR"  // single image, filename + OCR text
	MethodMerged       ExtractionMethod = "merged"        // front and back evidence combined
)

// CardRecord is the structured metadata extracted for one trading card.
// Every field except Player is independently optional; extraction failures
// degrade to empty fields, never to an error.
type CardRecord struct {
	Player               string           `json:"player"`
	Set                  string           `json:"set,omitempty"`
	Year                 string           `json:"year,omitempty"`
	CardNumber           string           `json:"card_number,omitempty"`
	Parallel             string           `json:"parallel,omitempty"`
	Manufacturer         string           `json:"manufacturer,omitempty"`
	Features             string           `json:"features,omitempty"` // comma list, e.g. "Rookie, Auto"
	Graded               bool             `json:"graded"`
	Grade                string           `json:"grade,omitempty"`           // "1"-"10", set only when Graded
	GradingCompany       string           `json:"grading_company,omitempty"` // set only when Graded
	CertNumber           string           `json:"cert_number,omitempty"`     // 8+ digits, set only when Graded
	ExtractionConfidence float64          `json:"extraction_confidence"`
	ExtractionMethod     ExtractionMethod `json:"extraction_method"`
}

// Condition is the card condition a price lookup is asked for.
type Condition string

const (
	ConditionRaw   Condition = "raw"
	ConditionPSA9  Condition = "psa9"
	ConditionPSA10 Condition = "psa10"
)

// Condition derives the pricing condition from the record's grading state.
// Only PSA 9 and PSA 10 carry their own price columns in the local table;
// every other grade prices as raw.
func (r CardRecord) Condition() Condition {
	if !r.Graded {
		return ConditionRaw
	}
	switch r.Grade {
	case "10":
		return ConditionPSA10
	case "9":
		return ConditionPSA9
	default:
		return ConditionRaw
	}
}
