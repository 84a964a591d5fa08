// Package pricing resolves a market price for an extracted card record,
// preferring a local reference table, falling back to a marketplace scrape,
// and finally to a fixed default.
package pricing

import (
	"fmt"
	"strings"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// genericSetTokens add noise to marketplace searches because sellers list
// them inconsistently.
var genericSetTokens = []string{"Chrome"}

// BuildSearchQuery assembles a deterministic sold-listings search string
// for a card record. An unusable record degrades to the bare token "sold",
// which callers treat as no query at all.
func BuildSearchQuery(rec model.CardRecord) string {
	var parts []string

	if rec.Player != "" {
		parts = append(parts, fmt.Sprintf("%q", rec.Player))
	}
	if rec.Year != "" {
		parts = append(parts, rec.Year)
	}

	set := rec.Set
	for _, tok := range genericSetTokens {
		set = strings.ReplaceAll(set, tok, "")
	}
	set = strings.Join(strings.Fields(set), " ")
	switch {
	case len(set) > 3:
		parts = append(parts, set)
	case rec.Manufacturer != "":
		parts = append(parts, rec.Manufacturer)
	}

	if rec.Parallel != "" {
		if quotableParallel(rec.Parallel) {
			parts = append(parts, fmt.Sprintf("%q", rec.Parallel))
		} else {
			parts = append(parts, rec.Parallel)
		}
	}

	if strings.Contains(strings.ToUpper(rec.Features), "ROOKIE") {
		parts = append(parts, "rookie")
	}

	if rec.CardNumber != "" && len(rec.CardNumber) <= 4 {
		parts = append(parts, "#"+rec.CardNumber)
	}

	if rec.Graded {
		company := rec.GradingCompany
		if company == "" {
			company = "PSA"
		}
		if rec.Grade != "" {
			parts = append(parts, fmt.Sprintf("%q", company+" "+rec.Grade))
		} else {
			parts = append(parts, company)
		}
	}

	parts = append(parts, "sold")
	return strings.Join(parts, " ")
}

// quotableParallel reports whether the parallel is a multi-word or numbered
// term that sellers list verbatim.
func quotableParallel(p string) bool {
	lower := strings.ToLower(p)
	return strings.Contains(p, "/") ||
		strings.Contains(lower, "superfractor") ||
		strings.Contains(lower, "refractor")
}
