// Package extract turns raw OCR text and image filenames into structured
// card records. Field extraction is an ordered cascade of
// pattern-match-with-validator rules; the first match that passes
// validation wins. Extraction is best-effort and total: it never errors,
// it just leaves fields empty and reports a confidence score.
package extract

import (
	"math"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// ClassifyAndExtract builds a card record from one side's OCR text. The
// filename supplies the player name; empty OCR text degrades to a
// filename-only record.
func ClassifyAndExtract(text, filename string) model.CardRecord {
	player := PlayerFromFilename(filename)

	if len(normalizeSpace(text)) == 0 {
		rec := model.CardRecord{
			Player:           player,
			ExtractionMethod: model.MethodFilenameOnly,
		}
		if player != "" {
			rec.ExtractionConfidence = 0.3
		}
		return rec
	}

	var rec model.CardRecord
	if IsGraded(text) {
		rec = extractGraded(text, player)
	} else {
		rec = extractRaw(text, player)
	}
	rec.ExtractionMethod = model.MethodFilenameOCR
	rec.ExtractionConfidence = singleSideConfidence(rec)
	return rec
}

// singleSideConfidence scores one side's record: a third of a point for
// each of the identity fields, plus a bonus for extras. Graded records get
// the bonus inherently, the slab label being extra signal on its own.
func singleSideConfidence(rec model.CardRecord) float64 {
	found := 0
	if rec.Player != "" {
		found++
	}
	if rec.Set != "" {
		found++
	}
	if rec.Year != "" {
		found++
	}
	c := float64(found) / 3.0

	if rec.Graded || rec.Parallel != "" || rec.Features != "" {
		c += 0.2
	}
	return round2(clamp01(c))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
