package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dentalforms/formspec/internal/schema"
)

var nonTitleChars = regexp.MustCompile(`[^\w\s]`)

// NormalizeTitle maps a raw label to its canonical display title. Unknown
// labels are cleaned up and title-cased.
func (t *Tables) NormalizeTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	// OCR sometimes glues a leading checkbox "No" onto the label
	if rest, ok := strings.CutPrefix(lower, "no "); ok && len(rest) > 2 {
		if containsAny(rest, "name", "school", "address", "phone") {
			raw = strings.TrimSpace(raw[3:])
			lower = rest
		}
	}

	if canonical, ok := t.TitleSynonyms[lower]; ok {
		return canonical
	}

	cleaned := nonTitleChars.ReplaceAllString(raw, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "Field"
	}
	return titleCase(cleaned)
}

// KeyFor derives the reference key for a canonical title, qualified by
// section where the same field recurs across plan blocks
func (t *Tables) KeyFor(title, section string) string {
	lower := strings.ToLower(strings.TrimSpace(title))

	if key, ok := t.CanonicalKeys[lower]; ok {
		return key
	}

	key := schema.SlugifyKey(title)
	if t.SectionQualified[lower] && section == SectionSecondaryPlan {
		return key + "_2"
	}
	return key
}

// keyRegistry tracks keys already emitted so repeats get numbered suffixes in
// document order
type keyRegistry struct {
	seen map[string]bool
}

func newKeyRegistry() *keyRegistry {
	return &keyRegistry{seen: make(map[string]bool)}
}

// Claim returns key, or key_2, key_3... if already taken, and records the
// result
func (r *keyRegistry) Claim(key string) string {
	if key == "" {
		key = "field"
	}
	final := key
	for n := 2; r.seen[final]; n++ {
		final = key + "_" + strconv.Itoa(n)
	}
	r.seen[final] = true
	return final
}

// Has reports whether the exact key has been claimed
func (r *keyRegistry) Has(key string) bool {
	return r.seen[key]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
