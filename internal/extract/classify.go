package extract

import "regexp"

// Primary indicators are near-certain evidence of a PSA slab label.
var primaryGradedIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bPSA\s+\d+\b`),
	regexp.MustCompile(`(?i)\bPROFESSIONAL\s+SPORTS\s+AUTHENTICATOR\b`),
	regexp.MustCompile(`(?i)\bCERT\s*#?\s*\d{8,}\b`),
	regexp.MustCompile(`(?i)\bCERTIFICATION\s*#?\s*\d{8,}\b`),
}

// Secondary indicators are supportive but individually weak.
var secondaryGradedIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bPSA\b`),
	regexp.MustCompile(`(?i)\bGRADE\s*:?\s*\d+\b`),
	regexp.MustCompile(`(?i)\bAUTHENTIC\b`),
	regexp.MustCompile(`(?i)\bGRADED\b`),
}

// PSA labels carry a QR code; OCR often picks up its caption text.
var qrIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)QR`),
	regexp.MustCompile(`(?i)SCAN`),
	regexp.MustCompile(`(?i)CODE`),
}

// IsGraded decides whether OCR text describes a professionally graded
// card. Graded when at least one primary indicator matches, or when two
// or more secondary indicators combine with a QR indicator. This gates
// which extraction path runs; misclassification is an accepted heuristic
// risk, never an error.
func IsGraded(text string) bool {
	if countMatches(primaryGradedIndicators, text) >= 1 {
		return true
	}
	return countMatches(secondaryGradedIndicators, text) >= 2 &&
		countMatches(qrIndicators, text) >= 1
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}
