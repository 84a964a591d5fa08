package extract

import (
	"regexp"
	"strings"
)

// parallelGroup is one ordered pattern group in the parallel cascade.
// accept can veto a match based on its surrounding text (RE2 has no
// lookahead, so "Chrome Card" exclusions live here).
type parallelGroup struct {
	pattern *regexp.Regexp
	accept  func(text string, start, end int) bool
}

// rawParallelGroups match parallel/rarity terms on raw card fronts.
var rawParallelGroups = []parallelGroup{
	{pattern: regexp.MustCompile(`\b(\d{1,3}/\d{1,4})\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(SUPERFRACTOR|REFRACTOR|GOLD\s+REFRACTOR|SILVER\s+REFRACTOR|BLACK\s+REFRACTOR)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(AUTO|AUTOGRAPH|SIGNATURE)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(PATCH|JERSEY|RELIC|MEMORABILIA)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(RC|ROOKIE|ROOKIE\s+PATCH\s+AUTO|RPA)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(GOLD|SILVER|BLACK|RED|BLUE|GREEN|ORANGE|PURPLE)\s+(?:REFRACTOR|PARALLEL|PRIZM)\b`)},
	{
		pattern: regexp.MustCompile(`(?i)\b(CHROME|PRIZM|OPTIC|SELECT|MOSAIC)\b`),
		accept:  notFollowedByCard,
	},
}

// gradedParallelGroups are the PSA-label variants; slabs print the exact
// parallel on the flip so the terms are narrower.
var gradedParallelGroups = []parallelGroup{
	{pattern: regexp.MustCompile(`\b(\d{1,3}/\d{1,4})\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(SUPERFRACTOR|REFRACTOR|GOLD\s+REFRACTOR|SILVER\s+REFRACTOR|BLACK\s+REFRACTOR)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(AUTO|AUTOGRAPH|SIGNATURE)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(PATCH|JERSEY|RELIC|MEMORABILIA)\b`)},
	{pattern: regexp.MustCompile(`(?i)\b(RC|ROOKIE|1ST\s+BOWMAN|ROOKIE\s+PATCH\s+AUTO|RPA)\b`)},
	{
		pattern: regexp.MustCompile(`(?i)\b(CHROME|PRIZM|REFRACTOR)\b`),
		accept:  notFollowedByCard,
	},
	{pattern: regexp.MustCompile(`(?i)\b(GOLD|SILVER|BLACK|RED|BLUE|GREEN|ORANGE|PURPLE)\s+(?:REFRACTOR|PARALLEL|PRIZM)\b`)},
}

var trailingCardRe = regexp.MustCompile(`(?i)^\s+(ROOKIE\s+)?CARD\b`)

// notFollowedByCard rejects base-product terms used as nouns, like
// "Chrome Card" or "Prizm Rookie Card".
func notFollowedByCard(text string, _, end int) bool {
	return !trailingCardRe.MatchString(text[end:])
}

// parallelPriority is the fixed output ordering applied after a numbered
// fraction. Remaining matches keep their collected order.
var parallelPriority = []string{
	"ROOKIE", "RC", "RPA", "AUTO", "AUTOGRAPH",
	"PATCH", "JERSEY", "RELIC",
	"GOLD", "SILVER", "BLACK", "RED", "BLUE", "GREEN", "ORANGE", "PURPLE",
}

// extractParallel collects matches from the ordered groups, deduplicates,
// re-orders by priority and joins them title-cased. Returns "" when
// nothing matched.
func extractParallel(groups []parallelGroup, text string) string {
	var found []string
	seen := map[string]bool{}

	for _, g := range groups {
		for _, idx := range g.pattern.FindAllStringSubmatchIndex(text, -1) {
			if g.accept != nil && !g.accept(text, idx[0], idx[1]) {
				continue
			}
			// First capture group, normalized for dedup.
			value := normalizeSpace(strings.ToUpper(text[idx[2]:idx[3]]))
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			found = append(found, value)
		}
	}

	if len(found) == 0 {
		return ""
	}
	return titleCase(strings.Join(orderParallels(found), " "))
}

// orderParallels puts numbered fractions first, then priority terms in
// their fixed order, then whatever else was collected.
func orderParallels(found []string) []string {
	taken := make(map[string]bool, len(found))
	var ordered []string

	for _, v := range found {
		if strings.Contains(v, "/") {
			ordered = append(ordered, v)
			taken[v] = true
		}
	}
	for _, p := range parallelPriority {
		for _, v := range found {
			if v == p && !taken[v] {
				ordered = append(ordered, v)
				taken[v] = true
			}
		}
	}
	for _, v := range found {
		if !taken[v] {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
