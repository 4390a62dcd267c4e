package schema

import (
	"fmt"
)

// Validator is the final gate before a spec is written. It enforces the
// structural invariants of the Modento Forms schema and coerces recoverable
// problems to safe defaults. Data-quality issues are reported, never fatal:
// the returned spec is always usable.
type Validator struct{}

// NewValidator creates a schema validator
func NewValidator() *Validator {
	return &Validator{}
}

// SignatureField returns the synthetic signature field appended when a
// document yields none
func SignatureField() Field {
	return Field{
		Key:     "signature",
		Title:   "Signature",
		Type:    FieldTypeSignature,
		Section: "Signature",
		Control: EmptyControl{},
	}
}

// DateSignedField returns the synthetic date field that accompanies a
// signature field
func DateSignedField() Field {
	return Field{
		Key:     "date_signed",
		Title:   "Date Signed",
		Type:    FieldTypeDate,
		Section: "Signature",
		Control: DateControl{InputType: DateTypePast},
	}
}

// ValidateAndNormalize checks a spec against the schema contract and returns
// whether it passed, the list of recorded problems, and the normalized spec.
// Fields with unknown types are reported but retained so the caller decides
// how strict to be.
func (v *Validator) ValidateAndNormalize(spec Spec) (bool, []string, Spec) {
	var errs []string

	spec = v.collapseSignatures(spec)
	spec = EnsureUniqueKeys(spec)

	for i := range spec {
		f := &spec[i]
		f.Title = CleanText(f.Title)

		if !f.Type.IsValid() {
			errs = append(errs, fmt.Sprintf("unknown type %q on key %q", f.Type, f.Key))
			continue
		}
		v.normalizeControl(f)
	}

	return len(errs) == 0, errs, spec
}

// collapseSignatures enforces the single-signature invariant: exactly one
// field of type signature, canonical key "signature", with a date_signed
// field following it.
func (v *Validator) collapseSignatures(spec Spec) Spec {
	out := spec[:0]
	seen := false
	for _, f := range spec {
		if f.Type == FieldTypeSignature {
			if seen {
				continue
			}
			seen = true
			f.Key = "signature"
			f.Control = EmptyControl{}
		}
		out = append(out, f)
	}
	if !seen {
		out = append(out, SignatureField())
	}

	hasDateSigned := false
	for _, f := range out {
		if f.Key == "date_signed" && f.Type == FieldTypeDate {
			hasDateSigned = true
			break
		}
	}
	if !hasDateSigned {
		out = append(out, DateSignedField())
	}
	return out
}

// normalizeControl coerces a field's control payload to the shape its type
// requires
func (v *Validator) normalizeControl(f *Field) {
	switch f.Type {
	case FieldTypeInput:
		c, ok := f.Control.(InputControl)
		if !ok {
			c = coerceInputControl(f.Control)
		}
		if !c.InputType.IsValid() {
			c.InputType = InputTypeName
		}
		if c.InputType == InputTypePhone {
			c.PhonePrefix = "+1"
		}
		f.Control = c

	case FieldTypeDate:
		c, ok := f.Control.(DateControl)
		if !ok {
			c = coerceDateControl(f.Control)
		}
		if c.InputType != "" && !c.InputType.IsValid() {
			// Knowable but non-conforming range: drop the key entirely
			c.InputType = ""
		}
		f.Control = c

	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeDropdown:
		c, ok := f.Control.(OptionsControl)
		if !ok {
			c = coerceOptionsControl(f.Control)
		}
		for i := range c.Options {
			opt := &c.Options[i]
			opt.Name = CleanText(opt.Name)
			switch val := opt.Value.(type) {
			case bool:
				// Yes/No options keep their boolean values
			case string:
				if val == "" {
					opt.Value = SlugifyOption(opt.Name)
				}
			case nil:
				opt.Value = SlugifyOption(opt.Name)
			}
		}
		f.Control = c

	case FieldTypeText:
		c, ok := f.Control.(TextControl)
		if !ok {
			c = coerceTextControl(f.Control)
		}
		c.HTMLText = EnsureParagraph(CleanHTML(c.HTMLText))
		if c.TemporaryHTMLText != "" {
			c.TemporaryHTMLText = EnsureParagraph(CleanHTML(c.TemporaryHTMLText))
		}
		f.Control = c

	case FieldTypeStates, FieldTypeSignature, FieldTypeInitials, FieldTypeHeader:
		f.Control = EmptyControl{}
	}
}

// EnsureUniqueKeys makes every key globally unique by appending _2, _3, ...
// to repeats, in document order
func EnsureUniqueKeys(spec Spec) Spec {
	seen := make(map[string]bool, len(spec))
	for i := range spec {
		key := spec[i].Key
		if key == "" {
			key = "field"
		}
		base := key
		for n := 2; seen[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		seen[key] = true
		spec[i].Key = key
	}
	return spec
}

// Coercions for controls that arrived as GenericControl (e.g. read back from
// a JSON file whose type tag was wrong or missing).

func coerceInputControl(c Control) InputControl {
	g, ok := c.(GenericControl)
	if !ok {
		return InputControl{}
	}
	out := InputControl{}
	if s, ok := g["input_type"].(string); ok {
		out.InputType = InputType(s)
	}
	if s, ok := g["hint"].(string); ok && s != "" {
		out.Hint = &s
	}
	return out
}

func coerceDateControl(c Control) DateControl {
	g, ok := c.(GenericControl)
	if !ok {
		return DateControl{}
	}
	out := DateControl{}
	if s, ok := g["input_type"].(string); ok {
		out.InputType = DateType(s)
	}
	return out
}

func coerceOptionsControl(c Control) OptionsControl {
	g, ok := c.(GenericControl)
	if !ok {
		return OptionsControl{}
	}
	out := OptionsControl{}
	raw, ok := g["options"].([]any)
	if !ok {
		return out
	}
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		opt := Option{}
		if s, ok := m["name"].(string); ok {
			opt.Name = s
		}
		opt.Value = m["value"]
		out.Options = append(out.Options, opt)
	}
	return out
}

func coerceTextControl(c Control) TextControl {
	g, ok := c.(GenericControl)
	if !ok {
		return TextControl{}
	}
	out := TextControl{}
	if s, ok := g["html_text"].(string); ok {
		out.HTMLText = s
	}
	if s, ok := g["temporary_html_text"].(string); ok {
		out.TemporaryHTMLText = s
	}
	if s, ok := g["text"].(string); ok {
		out.Text = s
	}
	return out
}
