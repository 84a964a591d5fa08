package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/cardintel-cli/internal/model"
)

var (
	recentYearRe  = regexp.MustCompile(`\b(20[0-2]\d)\b`)
	vintageYearRe = regexp.MustCompile(`\b(19[89]\d)\b`)
)

// extractYear prefers the maximum of all 20xx matches (cards often list
// earlier seasons in stat lines), falling back to a single 198x/199x match.
func extractYear(text string) string {
	years := recentYearRe.FindAllString(text, -1)
	if len(years) > 0 {
		maxYear := years[0]
		for _, y := range years[1:] {
			if y > maxYear {
				maxYear = y
			}
		}
		return maxYear
	}
	if m := vintageYearRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// isYearLike reports whether a token is a plausible 4-digit card year.
func isYearLike(v string) bool {
	if len(v) != 4 {
		return false
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1900 && n <= 2030
}

var (
	explicitNumberRe = regexp.MustCompile(`(?i)(?:No\.|#|Card\s*#)\s*([A-Z0-9-]+)`)
	mfrStyleNumberRe = regexp.MustCompile(`\b([A-Z]{1,3}-?\d{1,4}[A-Z]?)\b`)
	bareNumberRe     = regexp.MustCompile(`\b\d{1,4}\b`)
)

// measurementKeywords mark height/weight stat blocks on card backs; bare
// numbers near them are body stats, not card numbers.
var measurementKeywords = []string{"H:", "W:", "HEIGHT", "WEIGHT", "LBS", "KG"}

const measurementWindow = 20

// extractRawCardNumber resolves the card number by cascade: an explicit
// No./#/Card# token, a manufacturer-style alphanumeric token, then a bare
// 1-4 digit number that is not a year, not >500, and not adjacent to a
// measurement keyword. The extracted year is never accepted as a number.
func extractRawCardNumber(text, year string) string {
	notYear := func(v, _ string) bool {
		return v != year && !isYearLike(v)
	}
	rules := []fieldRule{
		{pattern: explicitNumberRe, validate: notYear},
		{pattern: mfrStyleNumberRe, validate: notYear},
	}
	if v := firstMatch(rules, text); v != "" {
		return v
	}

	upper := strings.ToUpper(text)
	for _, loc := range bareNumberRe.FindAllStringIndex(text, -1) {
		v := text[loc[0]:loc[1]]
		n, err := strconv.Atoi(v)
		if err != nil || v == year || (n >= 1900 && n <= 2030) || n > 500 {
			continue
		}
		if nearMeasurement(upper, loc[0], loc[1]) {
			continue
		}
		return v
	}
	return ""
}

// nearMeasurement checks a +/-20 character window around [start,end) for
// measurement keywords.
func nearMeasurement(upper string, start, end int) bool {
	lo := start - measurementWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + measurementWindow
	if hi > len(upper) {
		hi = len(upper)
	}
	window := upper[lo:hi]
	for _, kw := range measurementKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// manufacturerFamily groups the brand keywords that identify one
// manufacturer's product lines. Families are checked in order.
type manufacturerFamily struct {
	name     string
	keywords []string
}

var manufacturerFamilies = []manufacturerFamily{
	{"TOPPS", []string{"TOPPS", "BOWMAN", "CHROME"}},
	{"PANINI", []string{"PANINI", "PRIZM", "SELECT", "MOSAIC", "OPTIC", "DONRUSS"}},
	{"UPPER DECK", []string{"UPPER DECK", "UD"}},
	{"FLEER", []string{"FLEER"}},
	{"SCORE", []string{"SCORE"}},
	{"WILD CARD", []string{"WILD CARD"}},
	{"LEAF", []string{"LEAF"}},
	{"SAGE", []string{"SAGE"}},
	{"PRESS PASS", []string{"PRESS PASS"}},
}

var (
	leadingSymbolRe  = regexp.MustCompile(`^[@#&*]`)
	trailingCardsRe  = regexp.MustCompile(`(?i)Cards?$`)
	fourDigitYearRe  = regexp.MustCompile(`\d{4}`)
	numberTokenRe    = regexp.MustCompile(`#\s*[A-Za-z0-9-]+`)
	copyrightLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Copyright\s+\d{4}\s+([^,.\n]+)`),
		regexp.MustCompile(`(?i)©\s*\d{4}\s+([^,.\n]+)`),
	}
	corpSuffixRe = regexp.MustCompile(`(?i)\s+(Inc\.?|LLC\.?|Corp\.?)`)
)

// extractSetAndManufacturer scans non-empty lines for manufacturer keyword
// families. Matching lines are cleaned (leading symbols, trailing
// "Card(s)", years, #-tokens, player-name substrings) and the shortest
// cleaned candidate becomes the set. A copyright line is the fallback when
// no keyword line matched.
func extractSetAndManufacturer(text, player string) (set, manufacturer string) {
	var candidates []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		for _, fam := range manufacturerFamilies {
			if !containsAny(upper, fam.keywords) {
				continue
			}
			clean := cleanSetLine(line, player)
			if len(clean) > 3 {
				candidates = append(candidates, clean)
				if manufacturer == "" {
					manufacturer = fam.name
				}
			}
			break
		}
	}

	if len(candidates) == 0 {
		for _, re := range copyrightLineRes {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			company := strings.TrimSpace(corpSuffixRe.ReplaceAllString(m[1], ""))
			if len(company) > 3 {
				candidates = append(candidates, company)
				if manufacturer == "" {
					manufacturer = strings.ToUpper(company)
				}
			}
		}
	}

	if len(candidates) == 0 {
		return "", manufacturer
	}

	// Shorter candidates are cleaner product names.
	unique := dedupeStrings(candidates)
	sort.SliceStable(unique, func(i, j int) bool { return len(unique[i]) < len(unique[j]) })
	return titleCase(unique[0]), manufacturer
}

// cleanSetLine strips everything from a brand line that is not the product
// name itself.
func cleanSetLine(line, player string) string {
	clean := leadingSymbolRe.ReplaceAllString(line, "")
	clean = trailingCardsRe.ReplaceAllString(strings.TrimSpace(clean), "")
	clean = fourDigitYearRe.ReplaceAllString(clean, "")
	clean = numberTokenRe.ReplaceAllString(clean, "")

	for _, word := range strings.Fields(player) {
		wordRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		clean = wordRe.ReplaceAllString(clean, "")
	}
	return normalizeSpace(clean)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// rawFeatureKeywords are checked for presence anywhere in the OCR text.
var rawFeatureKeywords = []string{
	"ROOKIE", "RC", "AUTO", "AUTOGRAPH", "PATCH",
	"JERSEY", "RELIC", "MEMORABILIA", "SERIAL", "NUMBERED",
}

// extractFeatures joins every present keyword as a comma list. Keywords
// match on word boundaries so RC does not fire inside MARCH.
func extractFeatures(keywords []string, text string) string {
	upper := strings.ToUpper(text)
	var found []string
	for _, kw := range keywords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if re.MatchString(upper) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return ""
	}
	return titleCase(strings.Join(found, ", "))
}

// extractRaw is the extraction path for ungraded cards.
func extractRaw(text, player string) model.CardRecord {
	rec := model.CardRecord{Player: player}

	rec.Year = extractYear(text)
	rec.CardNumber = extractRawCardNumber(text, rec.Year)
	rec.Parallel = extractParallel(rawParallelGroups, text)
	rec.Set, rec.Manufacturer = extractSetAndManufacturer(text, player)
	rec.Features = extractFeatures(rawFeatureKeywords, text)

	return rec
}
