package pipeline

import (
	"regexp"
	"strings"

	"github.com/dentalforms/formspec/internal/schema"
)

// Consent prose is recognized by first-person acknowledgment phrasing or by
// an accumulation of consent vocabulary.
var consentPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)I understand`),
	regexp.MustCompile(`(?i)I acknowledge`),
	regexp.MustCompile(`(?i)I agree`),
	regexp.MustCompile(`(?i)I consent`),
	regexp.MustCompile(`(?i)I authorize`),
	regexp.MustCompile(`(?i)I have been.*informed`),
	regexp.MustCompile(`(?i)risks.*benefits`),
	regexp.MustCompile(`(?i)alternative.*treatment`),
	regexp.MustCompile(`(?i)financial.*responsibility`),
	regexp.MustCompile(`(?i)informed.*consent`),
}

var consentVocabulary = []string{
	"consent", "acknowledge", "understand", "agree", "authorize",
	"risks", "benefits", "complications", "treatment", "procedure",
}

// Placeholder substitutions: blanks the practice fills per-patient become
// template variables instead of input fields.
var providerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Dr\.\s*__+`),
	regexp.MustCompile(`(?i)Dr\.\s*\t+`),
}

var (
	toothNumberBlank  = regexp.MustCompile(`(?i)Tooth\s+(?:Number|No\(s\)\.|No\.|#)\s*:?\s*_+`)
	patientNameBlank  = regexp.MustCompile(`(?i)Patient\s+[Nn]ame\s*:\s*_+`)
	printNameBlank    = regexp.MustCompile(`(?i)\b[Ii],?\s+_+\s*\(?\s*print\s+name\s*\)?`)
	signatureLineOnly = regexp.MustCompile(`^[\s_x]+$`)
)

// ConsentShaper aggregates consent prose into display-text fields with an
// acknowledgment checkbox
type ConsentShaper struct {
	// MinKeywordCount is how many distinct consent words mark a paragraph
	// as consent prose
	MinKeywordCount int
	// MinLineLength is the prose threshold; shorter lines are field
	// candidates, not narrative
	MinLineLength int

	classifier *Classifier
}

// NewConsentShaper creates a shaper with the standard thresholds
func NewConsentShaper(classifier *Classifier) *ConsentShaper {
	return &ConsentShaper{MinKeywordCount: 2, MinLineLength: 50, classifier: classifier}
}

// IsConsentContent reports whether text reads like consent prose
func (s *ConsentShaper) IsConsentContent(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range consentPhrasePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	lower := strings.ToLower(text)
	count := 0
	for _, word := range consentVocabulary {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count >= s.MinKeywordCount
}

// CollectParagraph gathers the run of prose lines starting at i, stopping at
// blanks, headers, and signature lines. Returns the paragraph and how many
// lines were consumed.
func (s *ConsentShaper) CollectParagraph(lines []string, i int) ([]string, int) {
	var paragraph []string
	j := i
	for j < len(lines) {
		line := strings.TrimSpace(lines[j])
		if line == "" || strings.HasPrefix(line, "##") || signatureLineOnly.MatchString(line) {
			break
		}
		if j > i && len(line) <= 30 {
			break
		}
		if s.classifier.IsExcludedSignatory(line) {
			j++
			continue
		}
		paragraph = append(paragraph, line)
		j++
	}
	return paragraph, j - i
}

// ApplyPlaceholders replaces per-patient blanks in consent prose with
// template variables
func (s *ConsentShaper) ApplyPlaceholders(content string) string {
	for _, p := range providerPatterns {
		content = p.ReplaceAllString(content, "Dr. {{provider}}")
	}
	content = toothNumberBlank.ReplaceAllString(content, "Tooth Number: {{tooth_or_site}}")
	content = patientNameBlank.ReplaceAllString(content, "Patient Name: {{patient_name}}")
	content = printNameBlank.ReplaceAllString(content, "I, {{patient_name}} (print name)")
	return content
}

// EmitBlock builds the consent text field and its acknowledgment checkbox.
// The validator appends the signature pair, so the block stays focused on
// content.
func (s *ConsentShaper) EmitBlock(title string, paragraph []string, section string, line int) []schema.Field {
	html := "<p>" + s.ApplyPlaceholders(strings.Join(paragraph, " ")) + "</p>"
	return []schema.Field{
		{
			Key:     schema.SlugifyKey(title),
			Title:   title,
			Type:    schema.FieldTypeText,
			Section: section,
			Control: schema.TextControl{
				HTMLText:          html,
				TemporaryHTMLText: html,
			},
			Line: line,
		},
		{
			Key:     "acknowledge",
			Title:   "I have read and understand the information above.",
			Type:    schema.FieldTypeCheckbox,
			Section: section,
			Control: schema.OptionsControl{
				Options: []schema.Option{{Name: "I agree", Value: "I agree"}},
			},
			Line: line + 1,
		},
	}
}
