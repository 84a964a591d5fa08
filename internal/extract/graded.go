package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// validGrade accepts PSA's 1-10 scale, halves included.
func validGrade(v, _ string) bool {
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && n >= 1 && n <= 10
}

// gradeRules cascade from the most explicit slab-label wording downward.
var gradeRules = []fieldRule{
	{pattern: regexp.MustCompile(`(?i)\bPSA\s+(\d+(?:\.\d+)?)\s+GEM\s+MINT\b`), validate: validGrade},
	{pattern: regexp.MustCompile(`(?i)\bPSA\s+(\d+(?:\.\d+)?)\b`), validate: validGrade},
	{pattern: regexp.MustCompile(`(?i)\bGRADE\s*:?\s*(\d+(?:\.\d+)?)\b`), validate: validGrade},
	{pattern: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s+PSA\b`), validate: validGrade},
	{pattern: regexp.MustCompile(`(?i)\bMINT\s+(\d+(?:\.\d+)?)\b`), validate: validGrade},
	{pattern: regexp.MustCompile(`(?i)\bGEM\s+MINT\s+(\d+(?:\.\d+)?)\b`), validate: validGrade},
}

// validCert rejects short numbers and anything that starts with a year,
// which would be a date on the label rather than a cert.
func validCert(v, _ string) bool {
	if len(v) < 8 {
		return false
	}
	prefix, err := strconv.Atoi(v[:4])
	return err == nil && (prefix < 1900 || prefix > 2030)
}

var certRules = []fieldRule{
	{pattern: regexp.MustCompile(`(?i)\bCERT\s*#?\s*(\d{8,})\b`), validate: validCert},
	{pattern: regexp.MustCompile(`(?i)\bCERTIFICATION\s*#?\s*(\d{8,})\b`), validate: validCert},
	{pattern: regexp.MustCompile(`(?i)\bPSA\s*#\s*(\d{8,})\b`), validate: validCert},
	{pattern: regexp.MustCompile(`#\s*(\d{8,})\b`), validate: validCert},
	{pattern: regexp.MustCompile(`\b(\d{8,})\b`), validate: validCert},
}

// Slab labels usually pin the year next to the brand name.
var gradedYearRules = []fieldRule{
	{pattern: regexp.MustCompile(`(?i)\b(20[0-2]\d)\s+(?:TOPPS|BOWMAN|PANINI|DONRUSS|FLEER|UPPER\s+DECK|SCORE|LEAF)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(?:TOPPS|BOWMAN|PANINI|DONRUSS|FLEER|UPPER\s+DECK|SCORE|LEAF)\b.{0,20}\b(20[0-2]\d)\b`)},
	{pattern: regexp.MustCompile(`©\s*(20[0-2]\d)\b`)},
	{pattern: regexp.MustCompile(`\b(20[0-2]\d)\b`)},
	{pattern: regexp.MustCompile(`\b(19[89]\d)\b`)},
}

var gradedSetRules = []fieldRule{
	{pattern: regexp.MustCompile(`(?i)\b(TOPPS\s+CHROME|BOWMAN\s+CHROME|PANINI\s+PRIZM|TOPPS\s+SERIES\s*\d*|BOWMAN\s+STERLING|TOPPS\s+FINEST|TOPPS\s+HERITAGE)\b`)},
	{pattern: regexp.MustCompile(`(?im)\b((?:TOPPS|BOWMAN|PANINI|DONRUSS|FLEER|UPPER\s+DECK)(?:\s+[A-Z][A-Za-z]+){1,2})$`)},
	{pattern: regexp.MustCompile(`(?i)\b(CHROME|PRIZM|SELECT|MOSAIC|OPTIC|STERLING|FINEST|HERITAGE|SERIES)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(TOPPS|BOWMAN|PANINI|DONRUSS|FLEER|UPPER\s+DECK)\b`)},
}

// manufacturerFromSet infers the manufacturer a product line belongs to.
func manufacturerFromSet(set string) string {
	upper := strings.ToUpper(set)
	switch {
	case strings.Contains(upper, "TOPPS"), strings.Contains(upper, "BOWMAN"):
		return "TOPPS"
	case strings.Contains(upper, "PANINI"), strings.Contains(upper, "PRIZM"),
		strings.Contains(upper, "SELECT"), strings.Contains(upper, "MOSAIC"),
		strings.Contains(upper, "OPTIC"):
		return "PANINI"
	case strings.Contains(upper, "DONRUSS"):
		return "DONRUSS"
	case strings.Contains(upper, "FLEER"), strings.Contains(upper, "UPPER"):
		return "UPPER DECK"
	}
	return ""
}

func extractGradedCardNumber(text, year string) string {
	notYear := func(v, _ string) bool {
		return v != year && !isYearLike(v)
	}
	rules := []fieldRule{
		{pattern: regexp.MustCompile(`#\s*([A-Z]*\d{1,4}[A-Z]?)\b`), validate: notYear},
		{pattern: regexp.MustCompile(`(?i)\bNO\.\s*([A-Z]*\d{1,4}[A-Z]?)\b`), validate: notYear},
		{pattern: regexp.MustCompile(`(?i)\bCARD\s*#?\s*([A-Z]*\d{1,4}[A-Z]?)\b`), validate: notYear},
		{pattern: regexp.MustCompile(`\b([A-Z]{1,3}-?\d{1,4})\b`), validate: notYear},
	}
	return firstMatch(rules, text)
}

var gradedFeatureKeywords = []string{
	"ROOKIE", "RC", "AUTO", "AUTOGRAPH", "PATCH",
	"JERSEY", "RELIC", "MEMORABILIA", "SERIAL", "NUMBERED",
	"1ST BOWMAN", "FIRST BOWMAN",
}

// extractGraded is the extraction path for slabbed cards. The slab label is
// a more structured surface than a raw card back, so it gets its own
// pattern cascades.
func extractGraded(text, player string) model.CardRecord {
	rec := model.CardRecord{
		Player:         player,
		Graded:         true,
		GradingCompany: "PSA",
	}

	rec.Grade = firstMatch(gradeRules, text)
	rec.CertNumber = firstMatch(certRules, text)
	rec.Year = firstMatch(gradedYearRules, text)
	rec.CardNumber = extractGradedCardNumber(text, rec.Year)
	rec.Parallel = extractParallel(gradedParallelGroups, text)
	rec.Features = extractFeatures(gradedFeatureKeywords, text)

	if set := firstMatch(gradedSetRules, text); len(set) > 3 {
		rec.Set = titleCase(normalizeSpace(set))
		rec.Manufacturer = manufacturerFromSet(set)
	}

	return rec
}
