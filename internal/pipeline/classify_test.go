package pipeline

import (
	"testing"

	"github.com/dentalforms/formspec/internal/schema"
)

func TestClassifyType(t *testing.T) {
	c := NewClassifier(DefaultTables())
	cases := []struct {
		text string
		want schema.FieldType
	}{
		{"Patient Signature", schema.FieldTypeSignature},
		{"Date of Birth", schema.FieldTypeDate},
		{"Today's Date", schema.FieldTypeDate},
		{"Initials", schema.FieldTypeInput},
		{"Yes/No", schema.FieldTypeRadio},
		{"Please check one: Male/Female", schema.FieldTypeRadio},
		{"□ Aspirin □ Penicillin", schema.FieldTypeCheckbox},
		{"State", schema.FieldTypeStates},
		{"First Name", schema.FieldTypeInput},
		{"Occupation", schema.FieldTypeInput},
		{"I understand and agree to the terms of treatment described", schema.FieldTypeText},
		{"Insurance Information:", schema.FieldTypeInput},
		{"random words without any markers", schema.FieldTypeText},
	}
	for _, tc := range cases {
		if got := c.ClassifyType(tc.text); got != tc.want {
			t.Errorf("ClassifyType(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyTypeLongProseIsText(t *testing.T) {
	c := NewClassifier(DefaultTables())
	long := "This paragraph describes the office scheduling policy in enough detail that it cannot possibly be a fillable label"
	if got := c.ClassifyType(long); got != schema.FieldTypeText {
		t.Errorf("expected text for long prose, got %s", got)
	}
}

func TestClassifyInputType(t *testing.T) {
	c := NewClassifier(DefaultTables())
	cases := []struct {
		text string
		want schema.InputType
	}{
		{"E-Mail", schema.InputTypeEmail},
		{"Mobile Phone", schema.InputTypePhone},
		{"Social Security No.", schema.InputTypeSSN},
		{"Zip", schema.InputTypeZip},
		{"Initials", schema.InputTypeInitials},
		{"MI", schema.InputTypeInitials},
		{"M.I.", schema.InputTypeInitials},
		{"Middle Initial", schema.InputTypeInitials},
		{"Street", schema.InputTypeName},
		{"ID Number", schema.InputTypeNumber},
		{"Drivers License #", schema.InputTypeName},
		{"First Name", schema.InputTypeName},
	}
	for _, tc := range cases {
		if got := c.ClassifyInputType(tc.text); got != tc.want {
			t.Errorf("ClassifyInputType(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestIsExcludedSignatory(t *testing.T) {
	c := NewClassifier(DefaultTables())
	excluded := []string{
		"Witness Signature: ______",
		"Witnessed by: ______",
		"Doctor Signature",
		"Provider Signature: ______",
		"Parent's Signature",
		"Legally Authorized Representative",
	}
	for _, line := range excluded {
		if !c.IsExcludedSignatory(line) {
			t.Errorf("expected %q to be excluded", line)
		}
	}

	kept := []string{
		"Patient Signature: ______",
		"Signature: ______",
		"First Name: ______",
	}
	for _, line := range kept {
		if c.IsExcludedSignatory(line) {
			t.Errorf("did not expect %q to be excluded", line)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tables := DefaultTables()
	cases := map[string]string{
		"first":           "First Name",
		"MI":              "Middle Initial",
		"e-mail":          "E-Mail",
		"ssn":             "Social Security No.",
		"employer":        "Patient Employed By",
		"Referred by!!":   "Referred By",
		"No Name of School": "Name of School",
	}
	for raw, want := range cases {
		if got := tables.NormalizeTitle(raw); got != want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestKeyFor(t *testing.T) {
	tables := DefaultTables()
	cases := []struct {
		title   string
		section string
		want    string
	}{
		{"Today's Date", SectionPatientInfo, "todays_date"},
		{"Middle Initial", SectionPatientInfo, "mi"},
		{"E-Mail", SectionPatientInfo, "e_mail"},
		{"First Name", SectionPatientInfo, "first_name"},
		{"Name of Insured", SectionPrimaryPlan, "name_of_insured"},
		{"Name of Insured", SectionSecondaryPlan, "name_of_insured_2"},
		{"Insurance Company", SectionSecondaryPlan, "insurance_company_2"},
	}
	for _, tc := range cases {
		if got := tables.KeyFor(tc.title, tc.section); got != tc.want {
			t.Errorf("KeyFor(%q, %q) = %q, want %q", tc.title, tc.section, got, tc.want)
		}
	}
}

func TestKeyRegistryClaim(t *testing.T) {
	r := newKeyRegistry()
	if got := r.Claim("ssn"); got != "ssn" {
		t.Errorf("first claim = %q", got)
	}
	if got := r.Claim("ssn"); got != "ssn_2" {
		t.Errorf("second claim = %q", got)
	}
	if got := r.Claim("ssn"); got != "ssn_3" {
		t.Errorf("third claim = %q", got)
	}
	if got := r.Claim(""); got != "field" {
		t.Errorf("empty claim = %q", got)
	}
}
