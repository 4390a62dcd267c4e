package schema

import (
	"regexp"
	"strings"
)

// Replacements for typographic characters the PDF extractors leave behind.
// Smart quotes and dashes are normalized to their ASCII equivalents; glyphs
// from the Unicode private use area (checkbox symbols from embedded fonts)
// are stripped outright.
var asciiReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	" ", " ",
)

var (
	privateUseArea = regexp.MustCompile(`[\x{E000}-\x{F8FF}]`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

// CleanText normalizes stray extractor artifacts in human-visible text
func CleanText(s string) string {
	s = privateUseArea.ReplaceAllString(s, "")
	s = asciiReplacer.Replace(s)
	return strings.TrimSpace(s)
}

// CleanHTML normalizes artifacts in HTML text payloads and collapses runs of
// whitespace left by line re-joining
func CleanHTML(s string) string {
	s = privateUseArea.ReplaceAllString(s, "")
	s = asciiReplacer.Replace(s)
	s = strings.ReplaceAll(s, `\_`, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// EnsureParagraph wraps text in <p> tags unless it already is HTML
func EnsureParagraph(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "<p>") {
		return s
	}
	return "<p>" + s + "</p>"
}
