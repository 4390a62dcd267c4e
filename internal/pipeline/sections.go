package pipeline

import (
	"regexp"
	"strings"
)

// initialWord matches a standalone "initial" that is not a middle initial
var (
	initialWord       = regexp.MustCompile(`\binitial\b`)
	middleInitialWord = regexp.MustCompile(`\b(middle|mi)\s+initial\b`)
)

// SectionTracker assigns every line a form section. Explicit headers set the
// section for everything after them; between headers, keyword evidence from
// the line and a window of surrounding lines can reroute an individual field.
type SectionTracker struct {
	// ContextWindow is how many lines around the current one count as
	// context when disambiguating
	ContextWindow int

	tables  *Tables
	headers map[int]string
}

// NewSectionTracker builds a tracker over the document's lines, pre-scanning
// for section headers with the given rule tables
func NewSectionTracker(lines []string, contextWindow int, tables *Tables) *SectionTracker {
	t := &SectionTracker{
		ContextWindow: contextWindow,
		tables:        tables,
		headers:       make(map[int]string),
	}
	t.scanHeaders(lines)
	return t
}

func (t *SectionTracker) scanHeaders(lines []string) {
	for i, line := range lines {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}

		if after, ok := strings.CutPrefix(clean, "##"); ok {
			header := strings.TrimSpace(strings.TrimLeft(after, "#"))
			t.headers[i] = t.canonicalSectionName(header)
			continue
		}

		lower := strings.ToLower(clean)
		for _, hp := range t.tables.Headers {
			matched := false
			for _, phrase := range hp.phrases {
				if strings.Contains(lower, phrase) {
					matched = true
					break
				}
			}
			if matched && len(clean) < 60 && !strings.Contains(clean, "_") {
				t.headers[i] = hp.section
				break
			}
		}
	}
}

// canonicalSectionName maps a free-form header to a known section where
// possible, keeping the header text otherwise
func (t *SectionTracker) canonicalSectionName(header string) string {
	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "patient information"):
		return SectionPatientInfo
	case strings.Contains(lower, "children") || strings.Contains(lower, "minor"):
		return SectionChildren
	case strings.Contains(lower, "secondary dental"):
		return SectionSecondaryPlan
	case strings.Contains(lower, "primary dental") || strings.Contains(lower, "dental benefit plan"):
		return SectionPrimaryPlan
	case strings.Contains(lower, "medical") || strings.Contains(lower, "health"):
		return SectionMedical
	case strings.Contains(lower, "signature") || strings.Contains(lower, "consent"):
		return SectionSignature
	default:
		return header
	}
}

// HeaderAt reports whether line i is a section header
func (t *SectionTracker) HeaderAt(i int) (string, bool) {
	s, ok := t.headers[i]
	return s, ok
}

// CurrentSection returns the section set by the most recent header at or
// before line i
func (t *SectionTracker) CurrentSection(i int) string {
	current := SectionPatientInfo
	best := -1
	for idx, section := range t.headers {
		if idx <= i && idx > best {
			best = idx
			current = section
		}
	}
	return current
}

// SectionFor resolves the section a field on line i belongs to, using keyword
// evidence from the line and its context to override the running section when
// the form interleaves topics
func (t *SectionTracker) SectionFor(lines []string, i int) string {
	current := t.CurrentSection(i)
	text := ""
	if i < len(lines) {
		text = lines[i]
	}
	textLower := strings.ToLower(text)
	contextLower := strings.ToLower(strings.Join(t.context(lines, i), " "))

	// Explicit indicators in context take precedence
	switch {
	case containsAny(contextLower, "for children/minors only", "responsible party"):
		return SectionChildren
	case strings.Contains(contextLower, "secondary dental plan"):
		return SectionSecondaryPlan
	case containsAny(contextLower, "primary dental plan", "dental benefit plan information primary") &&
		!strings.Contains(contextLower, "secondary"):
		return SectionPrimaryPlan
	}

	// Insurance vocabulary routes to a plan section, side chosen by context
	if containsAny(textLower, "insurance", "dental plan", "group number", "id number",
		"plan/group", "name of insured", "patient relationship to insured") {
		if containsAny(contextLower, "secondary", "second") {
			return SectionSecondaryPlan
		}
		return SectionPrimaryPlan
	}

	if containsAny(textLower, "medical", "health", "history", "condition", "medication", "allerg", "surgery") {
		return SectionMedical
	}

	// Emergency contact stays with the main patient block unless we are in
	// minors territory
	if containsAny(textLower, "emergency", "notify") && !strings.Contains(contextLower, "minor") {
		return SectionPatientInfo
	}

	if containsAny(textLower, "minor", "children", "parent", "guardian", "custody", "school", "responsible party") {
		return SectionChildren
	}

	if containsAny(textLower, "signature", "consent", "terms", "agree", "responsibilities", "payment", "scheduling") ||
		(initialWord.MatchString(textLower) && !middleInitialWord.MatchString(textLower)) {
		return SectionSignature
	}

	if containsAny(textLower, "first name", "last name", "nickname", "date of birth", "birthdate",
		"sex", "marital", "ssn", "social security") {
		return SectionPatientInfo
	}

	// Address and phone lines belong to whichever block the context names
	if containsAny(textLower, "street", "city", "state", "zip", "address", "phone",
		"mobile", "home", "work", "e-mail", "email") {
		switch {
		case containsAny(contextLower, "minor", "children", "responsible party"):
			return SectionChildren
		case containsAny(contextLower, "insurance", "dental plan"):
			if strings.Contains(contextLower, "secondary") {
				return SectionSecondaryPlan
			}
			return SectionPrimaryPlan
		default:
			return SectionPatientInfo
		}
	}

	if containsAny(textLower, "employed", "employer", "occupation") {
		if containsAny(contextLower, "different from above", "minor") {
			return SectionChildren
		}
		return SectionPatientInfo
	}

	return current
}

// context returns up to ContextWindow lines preceding line i. Looking back
// rather than ahead keeps a field attached to the block that introduced it.
func (t *SectionTracker) context(lines []string, i int) []string {
	lo := i - t.ContextWindow
	if lo < 0 {
		lo = 0
	}
	if i > len(lines) {
		i = len(lines)
	}
	return lines[lo:i]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
