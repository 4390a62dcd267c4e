package pipeline

import (
	"strings"

	"github.com/dentalforms/formspec/internal/document"
	"github.com/dentalforms/formspec/internal/schema"
)

// Options tune the conversion heuristics
type Options struct {
	// ContextWindow is the number of lines around a field considered when
	// resolving its section
	ContextWindow int
	// ConsentTextLength is the length past which unlabeled prose becomes
	// display text
	ConsentTextLength int
	// ConsentKeywordCount is the consent-vocabulary threshold for prose
	ConsentKeywordCount int
}

// DefaultOptions returns the standard conversion tuning
func DefaultOptions() Options {
	return Options{
		ContextWindow:       10,
		ConsentTextLength:   100,
		ConsentKeywordCount: 2,
	}
}

// Result is the outcome of converting one document
type Result struct {
	Spec     schema.Spec
	FormType document.FormType
	// Warnings lists data-quality problems the conversion recovered from
	Warnings []string
	// Valid is false when the validator had to repair schema violations
	Valid bool
}

// Converter runs the full line-to-spec conversion. Conversion never fails on
// document content: whatever could not be understood is reported in
// Result.Warnings and the returned spec is always schema-valid.
type Converter struct {
	opts       Options
	tables     *Tables
	classifier *Classifier
	shaper     *ConsentShaper
	validator  *schema.Validator
}

// NewConverter creates a converter with default options and rule tables
func NewConverter() *Converter {
	return NewConverterWithOptions(DefaultOptions())
}

// NewConverterWithOptions creates a converter with custom tuning over the
// default rule tables
func NewConverterWithOptions(opts Options) *Converter {
	return NewConverterWithTables(opts, DefaultTables())
}

// NewConverterWithTables creates a converter with custom tuning and rule
// tables
func NewConverterWithTables(opts Options, tables *Tables) *Converter {
	classifier := NewClassifier(tables)
	classifier.ConsentTextLength = opts.ConsentTextLength
	shaper := NewConsentShaper(classifier)
	shaper.MinKeywordCount = opts.ConsentKeywordCount
	return &Converter{
		opts:       opts,
		tables:     tables,
		classifier: classifier,
		shaper:     shaper,
		validator:  schema.NewValidator(),
	}
}

// Convert turns an extracted document into a Modento Forms spec
func (c *Converter) Convert(doc *document.Document) *Result {
	lines := doc.Text()
	result := &Result{
		FormType: document.DetectFormType(lines),
	}

	tracker := NewSectionTracker(lines, c.opts.ContextWindow, c.tables)

	var fields []schema.Field
	if result.FormType == document.FormTypeConsent {
		fields = c.convertConsent(lines, tracker)
	} else {
		fields = c.convertIntake(lines, tracker)
	}

	fields = c.tables.OrderFields(DedupFields(fields))

	valid, errs, spec := c.validator.ValidateAndNormalize(fields)
	result.Spec = spec
	result.Valid = valid
	result.Warnings = append(result.Warnings, errs...)
	return result
}

// convertIntake runs field matching over the whole document, lifting consent
// paragraphs inside the signature area into display-text blocks first
func (c *Converter) convertIntake(lines []string, tracker *SectionTracker) []schema.Field {
	masked := make([]string, len(lines))
	copy(masked, lines)

	var fields []schema.Field
	for i := 0; i < len(masked); i++ {
		line := strings.TrimSpace(masked[i])
		if len(line) <= c.shaper.MinLineLength {
			continue
		}
		section := tracker.SectionFor(lines, i)
		if section != SectionSignature || !c.shaper.IsConsentContent(line) {
			continue
		}

		paragraph, consumed := c.shaper.CollectParagraph(masked, i)
		if len(paragraph) == 0 {
			continue
		}
		fields = append(fields, c.shaper.EmitBlock("Risks and Acknowledgment", paragraph, section, i)...)
		for j := i; j < i+consumed; j++ {
			masked[j] = ""
		}
		i += consumed - 1
	}

	matcher := NewMatcher(tracker, c.classifier, c.tables)
	fields = append(fields, matcher.Match(masked)...)
	return fields
}

// convertConsent treats everything before the signature area as one consent
// narrative, then matches fields in the signature tail
func (c *Converter) convertConsent(lines []string, tracker *SectionTracker) []schema.Field {
	signatureStart := len(lines)
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "signature:") || strings.Contains(lower, "patient signature") {
			signatureStart = i
			break
		}
	}

	sectionName := "Form"
	var paragraph []string
	for _, line := range lines[:signatureStart] {
		clean := strings.TrimSpace(line)
		if clean == "" || c.classifier.IsExcludedSignatory(clean) {
			continue
		}
		if after, ok := strings.CutPrefix(clean, "##"); ok {
			if title := strings.TrimSpace(strings.TrimLeft(after, "#")); title != "" && sectionName == "Form" {
				sectionName = schema.CleanText(title)
			}
			continue
		}
		paragraph = append(paragraph, clean)
	}

	var fields []schema.Field
	if len(paragraph) > 0 {
		fields = append(fields, c.shaper.EmitBlock(sectionName, paragraph, sectionName, 0)...)
		// The narrative field carries the form title as its key
		fields[0].Key = "form_1"
	}

	if signatureStart < len(lines) {
		matcher := NewMatcher(tracker, c.classifier, c.tables)
		tail := make([]string, len(lines))
		for i := signatureStart; i < len(lines); i++ {
			tail[i] = lines[i]
		}
		for _, f := range matcher.Match(tail) {
			f.Section = SectionSignature
			f.Line += len(paragraph) + 2
			fields = append(fields, f)
		}
	}
	return fields
}
