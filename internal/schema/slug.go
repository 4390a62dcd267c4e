package schema

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Slugify converts free text into a lowercase underscore-separated key.
// The transform is idempotent: slugifying a slug returns the same slug.
func Slugify(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}

	// Decompose accented characters and drop the combining marks
	decomposed := norm.NFKD.String(text)
	var b strings.Builder
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}

	slug := nonAlphanumeric.ReplaceAllString(b.String(), "_")
	slug = strings.ToLower(strings.Trim(slug, "_"))
	if slug == "" {
		return fallback
	}
	return slug
}

// SlugifyKey is Slugify with the default "field" fallback
func SlugifyKey(text string) string {
	return Slugify(text, "field")
}

// SlugifyOption is Slugify with the default "option" fallback used for
// radio/checkbox option values
func SlugifyOption(text string) string {
	return Slugify(text, "option")
}
