package extract

import (
	"strings"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// Weighted contribution of each identity field to the merged confidence.
const (
	playerWeight = 0.30
	yearWeight   = 0.25
	numberWeight = 0.25
	setWeight    = 0.20
)

// MergeDualSide combines the front and back extractions of one card. The
// front leads; the back fills gaps and wins year, card number, and cert
// number when its value is strictly longer. The player name from the
// filename always wins when present.
func MergeDualSide(front model.CardRecord, back *model.CardRecord, player string) model.CardRecord {
	merged := front

	if back != nil {
		merged.Year = preferLonger(front.Year, back.Year)
		merged.CardNumber = preferLonger(front.CardNumber, back.CardNumber)
		merged.CertNumber = preferLonger(front.CertNumber, back.CertNumber)

		if merged.Set == "" {
			merged.Set = back.Set
		}
		if merged.Manufacturer == "" {
			merged.Manufacturer = back.Manufacturer
		}
		if merged.Parallel == "" {
			merged.Parallel = back.Parallel
		}
		merged.Features = mergeFeatures(front.Features, back.Features)

		merged.Graded = front.Graded || back.Graded
		if !front.Graded && back.Graded {
			merged.Grade = back.Grade
			merged.GradingCompany = back.GradingCompany
			if merged.CertNumber == "" {
				merged.CertNumber = back.CertNumber
			}
		}
	}

	if player != "" {
		merged.Player = player
	}

	merged.ExtractionConfidence = dualSideConfidence(merged, back != nil)
	if back != nil {
		merged.ExtractionMethod = model.MethodMerged
	}
	return merged
}

// preferLonger keeps the front value unless the back's is strictly longer.
func preferLonger(front, back string) string {
	if front == "" || len(back) > len(front) {
		return back
	}
	return front
}

// mergeFeatures unions two comma lists, front order first.
func mergeFeatures(front, back string) string {
	if front == "" {
		return back
	}
	if back == "" {
		return front
	}
	seen := make(map[string]bool)
	var out []string
	for _, list := range []string{front, back} {
		for _, f := range strings.Split(list, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			key := strings.ToUpper(f)
			if !seen[key] {
				seen[key] = true
				out = append(out, f)
			}
		}
	}
	return strings.Join(out, ", ")
}

// saneYear accepts values a card could plausibly carry.
func saneYear(y string) bool {
	return len(y) == 4 && (strings.HasPrefix(y, "19") || strings.HasPrefix(y, "20"))
}

// saneCardNumber rejects values too long to be a print-run position.
func saneCardNumber(n string) bool {
	return len(n) > 0 && len(n) <= 8
}

// dualSideConfidence scores the merged record. Each identity field earns
// its weight in full when the value passes a sanity check, 80% otherwise.
// Extras earn small bonuses and merging both sides earns one more.
func dualSideConfidence(rec model.CardRecord, hasBack bool) float64 {
	var c float64

	if rec.Player != "" {
		c += playerWeight
	}
	if rec.Year != "" {
		if saneYear(rec.Year) {
			c += yearWeight
		} else {
			c += yearWeight * 0.8
		}
	}
	if rec.CardNumber != "" {
		if saneCardNumber(rec.CardNumber) {
			c += numberWeight
		} else {
			c += numberWeight * 0.8
		}
	}
	if rec.Set != "" {
		c += setWeight
	}

	if rec.Parallel != "" {
		c += 0.025
	}
	if rec.Manufacturer != "" {
		c += 0.025
	}
	if rec.Features != "" {
		c += 0.025
	}
	if rec.Graded {
		c += 0.025
	}
	if hasBack {
		c += 0.05
	}

	return round2(clamp01(c))
}
