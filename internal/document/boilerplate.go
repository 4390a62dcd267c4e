package document

import (
	"regexp"
	"strings"
)

// Practice letterhead and page furniture patterns. Strong patterns identify a
// line as boilerplate wherever it appears; weak patterns only count near the
// top of the document or right after a page break, where letterhead lives.
var (
	phonePattern     = regexp.MustCompile(`(\(\d{3}\)\s*|\b\d{3}[-.\s])\d{3}[-.\s]?\d{4}\b`)
	faxPattern       = regexp.MustCompile(`(?i)\bfax\b.*\d{3}`)
	urlPattern       = regexp.MustCompile(`(?i)\b(www\.|https?://)\S+`)
	emailPattern     = regexp.MustCompile(`\S+@\S+\.\S+`)
	pageNumPattern   = regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`)
	copyrightPattern = regexp.MustCompile(`(?i)(©|\(c\)\s*\d{4}|all rights reserved)`)
	streetPattern    = regexp.MustCompile(`(?i)^\d+\s+\S+.*\b(street|st\.?|avenue|ave\.?|road|rd\.?|drive|dr\.?|boulevard|blvd\.?|lane|ln\.?|way|court|ct\.?|suite|ste\.?|parkway|pkwy\.?)\b`)
	cityStateZip     = regexp.MustCompile(`^[A-Za-z .'-]+,\s*[A-Z]{2}\.?\s+\d{5}(-\d{4})?$`)
	separatorRun     = regexp.MustCompile(`^[-–—=_*•·|]{3,}$`)
)

var practiceKeywords = []string{
	"dental", "dentistry", "orthodontic", "periodontic", "endodontic",
	"oral surgery", "dds", "d.d.s", "dmd", "d.m.d", "pediatric dentist",
	"family practice", "smile", "associates",
}

// Lines this close to the document start or a page break are in letterhead
// territory
const letterheadWindow = 6

// StripBoilerplate removes practice letterhead and page furniture so the
// pipeline only sees form content. Contact lines are boilerplate anywhere;
// practice names and addresses only when positioned like letterhead,
// otherwise an "Address:" field would be collateral damage.
func StripBoilerplate(doc *Document) *Document {
	kept := make([]TextLine, 0, len(doc.Lines))
	sinceBreak := 0

	for _, line := range doc.Lines {
		if line.Text == "" {
			sinceBreak = 0
			kept = append(kept, line)
			continue
		}
		sinceBreak++

		if isStrongBoilerplate(line.Text) {
			continue
		}
		if sinceBreak <= letterheadWindow && isLetterhead(line.Text) {
			continue
		}
		kept = append(kept, line)
	}

	// Re-index and drop separators left dangling by removals
	doc.Lines = reindex(kept)
	doc.Info.LineCount = len(doc.Lines)
	return doc
}

func isStrongBoilerplate(text string) bool {
	if pageNumPattern.MatchString(text) || copyrightPattern.MatchString(text) || separatorRun.MatchString(text) {
		return true
	}
	// Contact lines: a phone/fax/URL/email with no blank to fill is
	// letterhead, not a field
	if strings.Contains(text, "_") || strings.HasSuffix(text, ":") {
		return false
	}
	return phonePattern.MatchString(text) || faxPattern.MatchString(text) ||
		urlPattern.MatchString(text) || emailPattern.MatchString(text)
}

func isLetterhead(text string) bool {
	if strings.Contains(text, "_") || strings.Contains(text, ":") {
		return false
	}
	if streetPattern.MatchString(text) || cityStateZip.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	// Short title lines naming the practice, not form questions
	if len(text) < 60 && !strings.HasSuffix(text, "?") {
		for _, kw := range practiceKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func reindex(lines []TextLine) []TextLine {
	out := lines[:0]
	blank := true
	for _, l := range lines {
		if l.Text == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		l.Index = len(out)
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1].Text == "" {
		out = out[:len(out)-1]
	}
	return out
}
