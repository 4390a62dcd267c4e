package pipeline

import (
	"strings"

	"github.com/dentalforms/formspec/internal/schema"
)

// Classifier decides a field's schema type and, for inputs, its subtype from
// the label text. Rules are ordered: the first that fires wins, so the
// specific outranks the general.
type Classifier struct {
	// ConsentTextLength is the line length past which unlabeled prose is
	// treated as display text
	ConsentTextLength int

	tables *Tables
}

// NewClassifier creates a classifier over the given rule tables with the
// standard thresholds
func NewClassifier(tables *Tables) *Classifier {
	return &Classifier{ConsentTextLength: 100, tables: tables}
}

// ClassifyType returns the schema field type for a label or line of text
func (c *Classifier) ClassifyType(text string) schema.FieldType {
	lower := strings.ToLower(strings.TrimSpace(text))

	if containsAny(lower, "signature:", "sign:", "signed:", "patient signature", "signature of", "x____") ||
		lower == "signature" {
		return schema.FieldTypeSignature
	}

	if containsAny(lower, "date", "birth", "dob", "today") {
		return schema.FieldTypeDate
	}

	// Initials fields, middle initial included, are inputs with the
	// initials subtype
	if strings.Contains(lower, "initial") || lower == "mi" {
		return schema.FieldTypeInput
	}

	if containsAny(lower, "yes/no", "male/female", "check one", "circle one", "select one", "married/single") {
		return schema.FieldTypeRadio
	}

	if checkboxSymbol.MatchString(text) ||
		containsAny(lower, "check all", "select all", "list of", "following:", "options:") {
		return schema.FieldTypeCheckbox
	}

	// A bare State label is the states picker, not a free-text input
	if lower == "state" || strings.Contains(lower, "state:") {
		return schema.FieldTypeStates
	}

	if containsAny(lower,
		"name", "address", "street", "city", "zip", "phone", "email", "e-mail",
		"ssn", "social security", "occupation", "employer", "insurance", "license",
		"id number", "plan", "group", "relationship", "emergency", "nickname") {
		return schema.FieldTypeInput
	}

	if len(text) > c.ConsentTextLength ||
		containsAny(lower, "patient responsibilities", "payment terms", "dental benefit",
			"scheduling", "authorization", "consent", "understand", "agree") {
		return schema.FieldTypeText
	}

	if strings.HasSuffix(text, ":") && len(text) < 50 &&
		containsAny(lower, "information", "plan", "history", "signature", "responsibilities") {
		return schema.FieldTypeHeader
	}

	if strings.ContainsAny(text, "_:") {
		return schema.FieldTypeInput
	}

	return schema.FieldTypeText
}

// ClassifyInputType returns the input subtype for an input field's label
func (c *Classifier) ClassifyInputType(text string) schema.InputType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "e-mail", "email"):
		return schema.InputTypeEmail

	case containsAny(lower, "phone", "mobile", "cell"):
		return schema.InputTypePhone

	case containsAny(lower, "ssn", "social security"):
		return schema.InputTypeSSN

	case strings.Contains(lower, "zip"):
		return schema.InputTypeZip

	case strings.TrimSpace(lower) == "mi" || strings.TrimSpace(lower) == "m.i." ||
		strings.Contains(lower, "middle initial"):
		return schema.InputTypeInitials

	case strings.Contains(lower, "initial") && len(text) < 25:
		return schema.InputTypeInitials

	// No address subtype exists; street fields stay as name inputs
	case containsAny(lower, "street", "address", "apt", "unit", "suite"):
		return schema.InputTypeName

	case containsAny(lower, "number", "id", "#") &&
		!strings.Contains(lower, "license") && !strings.Contains(lower, "phone"):
		return schema.InputTypeNumber

	default:
		return schema.InputTypeName
	}
}

// IsExcludedSignatory reports whether a line names a witness, provider, or
// guardian signatory. These never become fields.
func (c *Classifier) IsExcludedSignatory(line string) bool {
	lower := strings.ToLower(line)
	for _, ind := range c.tables.Witness {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	for _, ind := range c.tables.DoctorSignature {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	for _, ind := range c.tables.GuardianSignature {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	if strings.Contains(lower, "printed name") &&
		containsAny(lower, "witness", "guardian", "parent") {
		return true
	}
	return false
}
