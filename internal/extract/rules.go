package extract

import "regexp"

// fieldRule pairs a pattern with an optional validator. Rules are
// evaluated in order; the first match that passes validation wins.
// Keeping the cascade as an explicit list makes each rule independently
// testable instead of burying it in nested conditionals.
type fieldRule struct {
	pattern  *regexp.Regexp
	validate func(value, text string) bool // nil accepts any match
}

// firstMatch runs a rule cascade against text. The returned value is the
// first capture group when the pattern has one, otherwise the whole
// match. Returns "" when no rule accepts.
func firstMatch(rules []fieldRule, text string) string {
	for _, r := range rules {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			value := m[0]
			if len(m) > 1 {
				value = m[1]
			}
			if r.validate == nil || r.validate(value, text) {
				return value
			}
		}
	}
	return ""
}
