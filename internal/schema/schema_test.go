package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMarshalInput(t *testing.T) {
	f := Field{
		Key:     "e_mail",
		Title:   "E-Mail",
		Type:    FieldTypeInput,
		Section: "Patient Information Form",
		Control: InputControl{InputType: InputTypeEmail},
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "e_mail", out["key"])
	assert.Equal(t, "input", out["type"])
	assert.Equal(t, false, out["optional"])
	control, ok := out["control"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email", control["input_type"])
}

func TestFieldMarshalNilControl(t *testing.T) {
	f := Field{Key: "signature", Title: "Signature", Type: FieldTypeSignature, Section: "Signature"}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"control":{}`)
}

func TestSpecRoundTrip(t *testing.T) {
	spec := Spec{
		{
			Key: "sex", Title: "Sex", Type: FieldTypeRadio, Section: "Patient Information Form",
			Control: OptionsControl{Options: []Option{
				{Name: "Male", Value: "male"},
				{Name: "Female", Value: "female"},
			}},
		},
		{
			Key: "date_of_birth", Title: "Date of Birth", Type: FieldTypeDate, Section: "Patient Information Form",
			Control: DateControl{InputType: DateTypePast},
		},
		{
			Key: "notice", Title: "Notice", Type: FieldTypeText, Section: "Signature",
			Control: TextControl{HTMLText: "<p>Please read carefully.</p>"},
		},
	}

	data, err := spec.Encode()
	require.NoError(t, err)

	decoded, err := DecodeSpec(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	radio, ok := decoded[0].Control.(OptionsControl)
	require.True(t, ok, "radio control should decode as OptionsControl")
	assert.Equal(t, "Male", radio.Options[0].Name)

	date, ok := decoded[1].Control.(DateControl)
	require.True(t, ok)
	assert.Equal(t, DateTypePast, date.InputType)

	text, ok := decoded[2].Control.(TextControl)
	require.True(t, ok)
	assert.Equal(t, "<p>Please read carefully.</p>", text.HTMLText)
}

func TestFieldTypeIsValid(t *testing.T) {
	for _, ft := range AllFieldTypes() {
		assert.True(t, ft.IsValid(), "%s should be valid", ft)
	}
	assert.False(t, FieldType("textarea").IsValid())
	assert.False(t, FieldType("").IsValid())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"First Name":        "first_name",
		"Apt/Unit/Suite":    "apt_unit_suite",
		"Café au lait":      "cafe_au_lait",
		"  spaced   out  ":  "spaced_out",
		"Plan/Group Number": "plan_group_number",
	}
	for in, want := range cases {
		assert.Equal(t, want, SlugifyKey(in), "SlugifyKey(%q)", in)
	}

	assert.Equal(t, "field", SlugifyKey("   "))
	assert.Equal(t, "option", SlugifyOption("!!!"))

	// Idempotence
	slug := SlugifyKey("Drivers License #")
	assert.Equal(t, slug, SlugifyKey(slug))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, `"quoted" - text`, CleanText("“quoted” – text"))
	assert.Equal(t, "box", CleanText("box"))
}

func TestEnsureParagraph(t *testing.T) {
	assert.Equal(t, "<p>hello</p>", EnsureParagraph("hello"))
	assert.Equal(t, "<p>kept</p>", EnsureParagraph("<p>kept</p>"))
	assert.Equal(t, "", EnsureParagraph("  "))
}

func TestValidatorCollapsesSignatures(t *testing.T) {
	v := NewValidator()
	spec := Spec{
		{Key: "patient_signature", Title: "Signature", Type: FieldTypeSignature, Section: "Signature"},
		{Key: "other_signature", Title: "Signature", Type: FieldTypeSignature, Section: "Signature"},
	}

	ok, errs, out := v.ValidateAndNormalize(spec)
	assert.True(t, ok, "errs: %v", errs)

	count := 0
	for _, f := range out {
		if f.Type == FieldTypeSignature {
			count++
			assert.Equal(t, "signature", f.Key)
		}
	}
	assert.Equal(t, 1, count)
	assert.NotNil(t, findKey(out, "date_signed"))
}

func TestValidatorSynthesizesSignature(t *testing.T) {
	v := NewValidator()
	_, _, out := v.ValidateAndNormalize(Spec{
		{Key: "first_name", Title: "First Name", Type: FieldTypeInput, Control: InputControl{InputType: InputTypeName}},
	})

	sig := findKey(out, "signature")
	require.NotNil(t, sig)
	assert.Equal(t, FieldTypeSignature, sig.Type)
	ds := findKey(out, "date_signed")
	require.NotNil(t, ds)
	assert.Equal(t, FieldTypeDate, ds.Type)
}

func TestValidatorCoercesInvalidInputType(t *testing.T) {
	v := NewValidator()
	_, _, out := v.ValidateAndNormalize(Spec{
		{Key: "weird", Title: "Weird", Type: FieldTypeInput, Control: InputControl{InputType: InputType("address")}},
	})

	c, ok := findKey(out, "weird").Control.(InputControl)
	require.True(t, ok)
	assert.Equal(t, InputTypeName, c.InputType)
}

func TestValidatorSetsPhonePrefix(t *testing.T) {
	v := NewValidator()
	_, _, out := v.ValidateAndNormalize(Spec{
		{Key: "mobile", Title: "Mobile", Type: FieldTypeInput, Control: InputControl{InputType: InputTypePhone}},
	})

	c, ok := findKey(out, "mobile").Control.(InputControl)
	require.True(t, ok)
	assert.Equal(t, "+1", c.PhonePrefix)
}

func TestValidatorDropsInvalidDateRange(t *testing.T) {
	v := NewValidator()
	_, _, out := v.ValidateAndNormalize(Spec{
		{Key: "appt", Title: "Appointment", Type: FieldTypeDate, Control: DateControl{InputType: DateType("sometime")}},
	})

	c, ok := findKey(out, "appt").Control.(DateControl)
	require.True(t, ok)
	assert.Empty(t, c.InputType)
}

func TestValidatorFillsEmptyOptionValues(t *testing.T) {
	v := NewValidator()
	_, _, out := v.ValidateAndNormalize(Spec{
		{Key: "choices", Title: "Choices", Type: FieldTypeCheckbox, Control: OptionsControl{Options: []Option{
			{Name: "Both Parents"},
			{Name: "Yes", Value: true},
		}}},
	})

	c, ok := findKey(out, "choices").Control.(OptionsControl)
	require.True(t, ok)
	assert.Equal(t, "both_parents", c.Options[0].Value)
	assert.Equal(t, true, c.Options[1].Value, "boolean values survive normalization")
}

func TestValidatorReportsUnknownType(t *testing.T) {
	v := NewValidator()
	ok, errs, out := v.ValidateAndNormalize(Spec{
		{Key: "odd", Title: "Odd", Type: FieldType("textarea")},
	})

	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.NotNil(t, findKey(out, "odd"), "unknown-typed field is retained")
}

func TestEnsureUniqueKeys(t *testing.T) {
	spec := Spec{
		{Key: "ssn"}, {Key: "ssn"}, {Key: "ssn"}, {Key: ""},
	}
	out := EnsureUniqueKeys(spec)
	assert.Equal(t, []string{"ssn", "ssn_2", "ssn_3", "field"}, out.Keys())
}

func findKey(spec Spec, key string) *Field {
	for i := range spec {
		if spec[i].Key == key {
			return &spec[i]
		}
	}
	return nil
}
