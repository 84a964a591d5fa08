package extract

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// filenameSuffixes are stripped from the filename stem before deriving a
// player name. Covers dual-side suffixes and duplicate-shot numbering.
var filenameSuffixes = []string{"-front", "-back", "-2", "-3", "(1)", "(2)", "(3)"}

// PlayerFromFilename derives a player name from an image filename.
// "paul-skenes-front.jpg" becomes "Paul Skenes". Returns "" when the
// stem carries no hyphen-separated name. Deterministic, no OCR input.
func PlayerFromFilename(path string) string {
	stem := filepath.Base(path)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	for _, suffix := range filenameSuffixes {
		stem = strings.ReplaceAll(stem, suffix, "")
	}
	stem = strings.TrimSpace(stem)

	if !strings.Contains(stem, "-") {
		return ""
	}
	return titleCase(strings.ReplaceAll(stem, "-", " "))
}

// titleCase title-cases a string. cases.Caser is not safe for concurrent
// use, so a fresh one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
