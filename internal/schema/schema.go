// Package schema defines the Modento Forms output contract: field types,
// control payloads, and the validator that gates every generated spec.
package schema

import (
	"encoding/json"
	"fmt"
)

// FieldType represents the type of a form field
type FieldType string

const (
	FieldTypeInput     FieldType = "input"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeDropdown  FieldType = "dropdown"
	FieldTypeStates    FieldType = "states"
	FieldTypeDate      FieldType = "date"
	FieldTypeSignature FieldType = "signature"
	FieldTypeInitials  FieldType = "initials"
	FieldTypeText      FieldType = "text"
	FieldTypeHeader    FieldType = "header"
)

// IsValid checks if the field type is part of the closed enumeration
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeInput, FieldTypeRadio, FieldTypeCheckbox, FieldTypeDropdown,
		FieldTypeStates, FieldTypeDate, FieldTypeSignature, FieldTypeInitials,
		FieldTypeText, FieldTypeHeader:
		return true
	default:
		return false
	}
}

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeInput,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeDropdown,
		FieldTypeStates,
		FieldTypeDate,
		FieldTypeSignature,
		FieldTypeInitials,
		FieldTypeText,
		FieldTypeHeader,
	}
}

// InputType represents the subtype of an input field
type InputType string

const (
	InputTypeName     InputType = "name"
	InputTypeEmail    InputType = "email"
	InputTypePhone    InputType = "phone"
	InputTypeNumber   InputType = "number"
	InputTypeSSN      InputType = "ssn"
	InputTypeZip      InputType = "zip"
	InputTypeInitials InputType = "initials"
)

// IsValid checks if the input type is part of the closed enumeration
func (it InputType) IsValid() bool {
	switch it {
	case InputTypeName, InputTypeEmail, InputTypePhone, InputTypeNumber,
		InputTypeSSN, InputTypeZip, InputTypeInitials:
		return true
	default:
		return false
	}
}

// DateType represents the allowed range of a date field
type DateType string

const (
	DateTypePast   DateType = "past"
	DateTypeFuture DateType = "future"
	DateTypeAny    DateType = "any"
)

// IsValid checks if the date type is part of the closed enumeration
func (dt DateType) IsValid() bool {
	switch dt {
	case DateTypePast, DateTypeFuture, DateTypeAny:
		return true
	default:
		return false
	}
}

// Option is one selectable choice of a radio/checkbox/dropdown field.
// Value is a string slug, or a bool for Yes/No style options.
type Option struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Control is the type-specific payload of a Field. Each field type carries
// exactly one control variant; serialization flattens the variant into the
// wire-format "control" object.
type Control interface {
	controlVariant()
}

// InputControl is the control payload for input fields
type InputControl struct {
	InputType   InputType `json:"input_type"`
	Hint        *string   `json:"hint,omitempty"`
	PhonePrefix string    `json:"phone_prefix,omitempty"`
}

// DateControl is the control payload for date fields
type DateControl struct {
	InputType DateType `json:"input_type,omitempty"`
	Hint      *string  `json:"hint,omitempty"`
}

// OptionsControl is the control payload for radio, checkbox and dropdown fields
type OptionsControl struct {
	Options []Option `json:"options"`
	Hint    *string  `json:"hint,omitempty"`
}

// TextControl is the control payload for display-only text blocks
type TextControl struct {
	TemporaryHTMLText string `json:"temporary_html_text,omitempty"`
	HTMLText          string `json:"html_text"`
	Text              string `json:"text"`
}

// EmptyControl is the control payload for states, signature, initials and
// header fields, which carry no configuration
type EmptyControl struct{}

// GenericControl holds a control object whose shape could not be matched to a
// known variant (e.g. a field with an unknown type read back from disk). It is
// retained as-is so validation failures stay best-effort.
type GenericControl map[string]any

func (InputControl) controlVariant()   {}
func (DateControl) controlVariant()    {}
func (OptionsControl) controlVariant() {}
func (TextControl) controlVariant()    {}
func (EmptyControl) controlVariant()   {}
func (GenericControl) controlVariant() {}

// MarshalJSON ensures an empty control serializes as {} rather than null
func (EmptyControl) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}

// Field is one entry of a Modento Forms spec. The JSON encoding always carries
// exactly these six keys, in this order.
type Field struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Type     FieldType `json:"type"`
	Section  string    `json:"section"`
	Optional bool      `json:"optional"`
	Control  Control   `json:"control"`

	// Line records the source line index that produced the field. It is
	// used for document ordering and never serialized.
	Line int `json:"-"`
}

// MarshalJSON guarantees a non-null control object even when Control is unset
func (f Field) MarshalJSON() ([]byte, error) {
	type alias Field
	a := alias(f)
	if a.Control == nil {
		a.Control = EmptyControl{}
	}
	return json.Marshal(a)
}

// UnmarshalJSON decodes the control object into the variant matching the
// field's type. Unknown types keep the raw control as GenericControl.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key      string          `json:"key"`
		Title    string          `json:"title"`
		Type     FieldType       `json:"type"`
		Section  string          `json:"section"`
		Optional bool            `json:"optional"`
		Control  json.RawMessage `json:"control"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Key = raw.Key
	f.Title = raw.Title
	f.Type = raw.Type
	f.Section = raw.Section
	f.Optional = raw.Optional

	if len(raw.Control) == 0 {
		f.Control = EmptyControl{}
		return nil
	}

	ctrl, err := decodeControl(raw.Type, raw.Control)
	if err != nil {
		return fmt.Errorf("field %q: %w", raw.Key, err)
	}
	f.Control = ctrl
	return nil
}

func decodeControl(ft FieldType, data json.RawMessage) (Control, error) {
	switch ft {
	case FieldTypeInput:
		var c InputControl
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode input control: %w", err)
		}
		return c, nil
	case FieldTypeDate:
		var c DateControl
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode date control: %w", err)
		}
		return c, nil
	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeDropdown:
		var c OptionsControl
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode options control: %w", err)
		}
		return c, nil
	case FieldTypeText:
		var c TextControl
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode text control: %w", err)
		}
		return c, nil
	case FieldTypeStates, FieldTypeSignature, FieldTypeInitials, FieldTypeHeader:
		return EmptyControl{}, nil
	default:
		var c GenericControl
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode control: %w", err)
		}
		return c, nil
	}
}

// Spec is an ordered sequence of fields, the unit of conversion output
type Spec []Field

// Keys returns the key of every field in order
func (s Spec) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// Encode serializes the spec as indented UTF-8 JSON with stable key order
func (s Spec) Encode() ([]byte, error) {
	if s == nil {
		s = Spec{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSpec parses a spec JSON array
func DecodeSpec(data []byte) (Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	return s, nil
}
