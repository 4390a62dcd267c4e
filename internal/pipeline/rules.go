// Package pipeline converts extracted document lines into a Modento Forms
// field spec. The conversion is heuristic and rule-driven: pattern tables in
// this file describe the dental intake vocabulary, the matcher and classifier
// apply them, and the validator in package schema has the final word.
package pipeline

import (
	"regexp"

	"github.com/dentalforms/formspec/internal/schema"
)

// Section names used across dental intake forms
const (
	SectionPatientInfo   = "Patient Information Form"
	SectionChildren      = "FOR CHILDREN/MINORS ONLY"
	SectionPrimaryPlan   = "Primary Dental Plan"
	SectionSecondaryPlan = "Secondary Dental Plan"
	SectionMedical       = "Medical History"
	SectionSignature     = "Signature"
)

var (
	checkboxSymbol  = regexp.MustCompile(`[□■☐☑✅◉●○•]|\[\s?\]|\(\s?\)`)
	checkboxOption  = regexp.MustCompile(`[□■☐☑✅◉●○•]\s*([A-Za-z0-9][A-Za-z0-9\s\-/&\(\)']{0,79})`)
	blankFill       = regexp.MustCompile(`([A-Za-z][A-Za-z'\s/\-#\.\(\)]{1,40}?)\s*:?\s*_{3,}`)
	colonLabel      = regexp.MustCompile(`^([^:]{3,49}):`)
	underscoreRun   = regexp.MustCompile(`_{3,}`)
	nonAlpha        = regexp.MustCompile(`[^A-Za-z]`)
	workAddressNext = regexp.MustCompile(`(?i)Street.*City.*State.*Zip`)
)

// compoundRule matches a line carrying several fields laid side by side and
// expands it into a fixed field list. These mirror the layout of the standard
// new-patient form: label, run of underscores, next label.
type compoundRule struct {
	pattern *regexp.Regexp
	fields  []compoundField
}

type compoundField struct {
	title     string
	key       string
	fieldType schema.FieldType
	inputType schema.InputType
	dateType  schema.DateType
}

var compoundRules = []compoundRule{
	{
		pattern: regexp.MustCompile(`(?i)First\s*_{10,}.*?MI\s*_{2,}.*?Last\s*_{10,}.*?Nickname\s*_{5,}`),
		fields: []compoundField{
			{title: "First Name", key: "first_name", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
			{title: "Middle Initial", key: "mi", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeInitials},
			{title: "Last Name", key: "last_name", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
			{title: "Nickname", key: "nickname", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Street\s*_{30,}.*?Apt/Unit/Suite\s*_{5,}`),
		fields: []compoundField{
			{title: "Street", key: "street", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
			{title: "Apt/Unit/Suite", key: "apt_unit_suite", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)City\s*_{20,}.*?State\s*_{5,}.*?Zip\s*_{10,}`),
		fields: []compoundField{
			{title: "City", key: "city", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
			{title: "State", key: "state", fieldType: schema.FieldTypeStates},
			{title: "Zip", key: "zip", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeZip},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Mobile\s*_{10,}.*?Home\s*_{10,}.*?Work\s*_{10,}`),
		fields: []compoundField{
			{title: "Mobile", key: "mobile", fieldType: schema.FieldTypeInput, inputType: schema.InputTypePhone},
			{title: "Home", key: "home", fieldType: schema.FieldTypeInput, inputType: schema.InputTypePhone},
			{title: "Work", key: "work", fieldType: schema.FieldTypeInput, inputType: schema.InputTypePhone},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)E-Mail\s*_{20,}.*?Drivers\s*License\s*#`),
		fields: []compoundField{
			{title: "E-Mail", key: "e_mail", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeEmail},
			{title: "Drivers License #", key: "drivers_license", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		},
	},
}

// workAddressKeys gives the exact keys of the Work Address block per hosting
// section. The block is the one place a duplicate City/State/Zip group is
// expected rather than a detection error.
var workAddressKeys = map[string][]compoundField{
	SectionPatientInfo: {
		{title: "Street", key: "street_2", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		{title: "City", key: "city_2", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		{title: "State", key: "state_3", fieldType: schema.FieldTypeStates},
		{title: "Zip", key: "zip_2", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeZip},
	},
	SectionChildren: {
		{title: "Street", key: "street_3", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		{title: "City", key: "city_2_2", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName},
		{title: "State", key: "state_2_2", fieldType: schema.FieldTypeStates},
		{title: "Zip", key: "zip_2_2", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeZip},
	},
}

// canonicalQuestion is a choice question whose options are known ahead of
// time. Matching by pattern keeps option lists reference-exact even when the
// extractor mangles the option glyphs.
type canonicalQuestion struct {
	pattern *regexp.Regexp
	title   string
	options []schema.Option
	// keyFor overrides the slugified key; section-aware
	keyFor func(section string) string
}

var yesNoOptions = []schema.Option{
	{Name: "Yes", Value: true},
	{Name: "No", Value: false},
}

var canonicalQuestions = []canonicalQuestion{
	{
		pattern: regexp.MustCompile(`(?i)sex.*?(?:male|female)`),
		title:   "Sex",
		options: []schema.Option{
			{Name: "Male", Value: "male"},
			{Name: "Female", Value: "female"},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)marital.*?status`),
		title:   "Marital Status",
		options: []schema.Option{
			{Name: "Married", Value: "Married"},
			{Name: "Single", Value: "Single"},
			{Name: "Divorced", Value: "Divorced"},
			{Name: "Separated", Value: "Separated"},
			{Name: "Widowed", Value: "Widowed"},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)is.*?patient.*?minor`),
		title:   "Is the Patient a Minor?",
		options: yesNoOptions,
	},
	{
		pattern: regexp.MustCompile(`(?i)full.?time.*?student`),
		title:   "Full-time Student",
		options: yesNoOptions,
	},
	{
		pattern: regexp.MustCompile(`(?i)preferred.*?method.*?contact`),
		title:   "What Is Your Preferred Method Of Contact",
		options: []schema.Option{
			{Name: "Mobile Phone", Value: "Mobile Phone"},
			{Name: "Home Phone", Value: "Home Phone"},
			{Name: "Work Phone", Value: "Work Phone"},
			{Name: "E-mail", Value: "E-mail"},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)relationship.*?to.*?patient`),
		title:   "Relationship To Patient",
		options: []schema.Option{
			{Name: "Self", Value: "Self"},
			{Name: "Spouse", Value: "Spouse"},
			{Name: "Parent", Value: "Parent"},
			{Name: "Other", Value: "Other"},
		},
		keyFor: func(section string) string {
			if section == SectionChildren {
				return "relationship_to_patient_2"
			}
			return "relationship_to_patient"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)primary.*?residence`),
		title:   "If Patient Is A Minor, Primary Residence",
		options: []schema.Option{
			{Name: "Both Parents", Value: "Both Parents"},
			{Name: "Mom", Value: "Mom"},
			{Name: "Dad", Value: "Dad"},
			{Name: "Step Parent", Value: "Step Parent"},
			{Name: "Shared Custody", Value: "Shared Custody"},
			{Name: "Guardian", Value: "Guardian"},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)authorize.*?release.*?personal.*?information`),
		title: "I authorize the release of my personal information necessary to process my dental benefit claims, " +
			"including health information, diagnosis, and records of any treatment or exam rendered. " +
			"I hereby authorize payment of benefits directly to this dental office otherwise payable to me.",
		options: yesNoOptions,
	},
}

// standaloneField is a short label line that is a complete field on its own
type standaloneField struct {
	title     string
	fieldType schema.FieldType
	inputType schema.InputType
	dateType  schema.DateType
	options   []schema.Option
	// keyBySection resolves the reference key; the empty-string entry is the
	// default when the hosting section has no specific key
	keyBySection map[string]string
}

var standaloneFields = map[string]standaloneField{
	"ssn": {
		title: "Social Security No.", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeSSN,
		keyBySection: map[string]string{
			SectionPatientInfo:   "ssn",
			SectionPrimaryPlan:   "ssn_2",
			SectionSecondaryPlan: "ssn_3",
			"":                   "ssn",
		},
	},
	"social security no.": {
		title: "Social Security No.", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeSSN,
		keyBySection: map[string]string{
			SectionPatientInfo:   "ssn",
			SectionPrimaryPlan:   "ssn_2",
			SectionSecondaryPlan: "ssn_3",
			"":                   "ssn",
		},
	},
	"sex": {
		title: "Sex", fieldType: schema.FieldTypeRadio,
		options: []schema.Option{
			{Name: "Male", Value: "male"},
			{Name: "Female", Value: "female"},
		},
		keyBySection: map[string]string{"": "sex"},
	},
	"state": {
		title: "State", fieldType: schema.FieldTypeStates,
		// The compound City/State/Zip rule owns plain "state"; a standalone
		// State line is the drivers-license issuing state
		keyBySection: map[string]string{"": "state_2"},
	},
	"today's date": {
		title: "Today's Date", fieldType: schema.FieldTypeDate, dateType: schema.DateTypeAny,
		keyBySection: map[string]string{"": "todays_date"},
	},
	"date of birth": {
		title: "Date of Birth", fieldType: schema.FieldTypeDate, dateType: schema.DateTypePast,
		keyBySection: map[string]string{
			SectionPatientInfo: "date_of_birth",
			SectionChildren:    "date_of_birth_2",
			"":                 "date_of_birth",
		},
	},
	"birthdate": {
		title: "Birthdate", fieldType: schema.FieldTypeDate, dateType: schema.DateTypePast,
		keyBySection: map[string]string{
			SectionPrimaryPlan:   "birthdate",
			SectionSecondaryPlan: "birthdate_2",
			"":                   "birthdate",
		},
	},
	"mobile phone": {
		title: "Mobile Phone", fieldType: schema.FieldTypeInput, inputType: schema.InputTypePhone,
		keyBySection: map[string]string{"": "mobile_phone"},
	},
	"home phone": {
		title: "Home Phone", fieldType: schema.FieldTypeInput, inputType: schema.InputTypePhone,
		keyBySection: map[string]string{"": "home_phone"},
	},
	"marital status": {
		title: "Marital Status", fieldType: schema.FieldTypeRadio,
		options: []schema.Option{
			{Name: "Married", Value: "Married"},
			{Name: "Single", Value: "Single"},
			{Name: "Divorced", Value: "Divorced"},
			{Name: "Separated", Value: "Separated"},
			{Name: "Widowed", Value: "Widowed"},
		},
		keyBySection: map[string]string{"": "marital_status"},
	},
	"date signed": {
		title: "Date Signed", fieldType: schema.FieldTypeDate, dateType: schema.DateTypeAny,
		keyBySection: map[string]string{"": "date_signed"},
	},
	"name of insured": {
		title: "Name of Insured", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName,
		keyBySection: map[string]string{
			SectionPrimaryPlan:   "name_of_insured",
			SectionSecondaryPlan: "name_of_insured_2",
			"":                   "name_of_insured",
		},
	},
	"insurance company": {
		title: "Insurance Company", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName,
		keyBySection: map[string]string{
			SectionPrimaryPlan:   "insurance_company",
			SectionSecondaryPlan: "insurance_company_2",
			"":                   "insurance_company",
		},
	},
	"dental plan name": {
		title: "Dental Plan Name", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeName,
		keyBySection: map[string]string{
			SectionPrimaryPlan:   "dental_plan_name",
			SectionSecondaryPlan: "dental_plan_name_2",
			"":                   "dental_plan_name",
		},
	},
	"plan/group number": {
		title: "Plan/Group Number", fieldType: schema.FieldTypeInput, inputType: schema.InputTypeNumber,
		keyBySection: map[string]string{
			SectionPrimaryPlan:   "plan_group_number",
			SectionSecondaryPlan: "plan_group_number_2",
			"":                   "plan_group_number",
		},
	},
}

// titleSynonyms maps label variants to the canonical display title
var titleSynonyms = map[string]string{
	"today's date":    "Today's Date",
	"todays date":     "Today's Date",
	"first":           "First Name",
	"first name":      "First Name",
	"mi":              "Middle Initial",
	"m.i.":            "Middle Initial",
	"middle initial":  "Middle Initial",
	"last":            "Last Name",
	"last name":       "Last Name",
	"nickname":        "Nickname",
	"nick name":       "Nickname",
	"street":          "Street",
	"apt/unit/suite":  "Apt/Unit/Suite",
	"apartment":       "Apt/Unit/Suite",
	"unit":            "Apt/Unit/Suite",
	"suite":           "Apt/Unit/Suite",
	"city":            "City",
	"state":           "State",
	"zip":             "Zip",
	"zip code":        "Zip",
	"mobile":          "Mobile",
	"home":            "Home",
	"work":            "Work",
	"e-mail":          "E-Mail",
	"email":           "E-Mail",
	"drivers license": "Drivers License #",
	"drivers license #": "Drivers License #",
	"driver's license":  "Drivers License #",
	"license":           "Drivers License #",

	"ssn":                    "Social Security No.",
	"social security":        "Social Security No.",
	"social security no.":    "Social Security No.",
	"social security number": "Social Security No.",

	"date of birth": "Date of Birth",
	"birth date":    "Date of Birth",
	"birthdate":     "Birthdate",
	"dob":           "Date of Birth",

	"patient employed by": "Patient Employed By",
	"employed by":         "Patient Employed By",
	"employer":            "Patient Employed By",
	"occupation":          "Occupation",

	"emergency contact": "In case of emergency, who should be notified",
	"in case of emergency, who should be notified": "In case of emergency, who should be notified",

	"relationship to patient": "Relationship to Patient",
	"relationship":            "Relationship to Patient",
	"mobile phone":            "Mobile Phone",
	"home phone":              "Home Phone",

	"name of insured":   "Name of Insured",
	"insured":           "Name of Insured",
	"insurance company": "Insurance Company",
	"dental plan name":  "Dental Plan Name",
	"plan name":         "Dental Plan Name",
	"plan/group number": "Plan/Group Number",
	"group number":      "Plan/Group Number",
	"id number":         "ID Number",

	"name of school": "Name of School",
	"school":         "Name of School",

	"initial":     "Initial",
	"initials":    "Initial",
	"signature":   "Signature",
	"date signed": "Date Signed",
}

// canonicalKeys maps canonical titles to reference keys where slugification
// alone would produce the wrong key
var canonicalKeys = map[string]string{
	"today's date":   "todays_date",
	"middle initial": "mi",
	"e-mail":         "e_mail",
	"drivers license #":   "drivers_license",
	"social security no.": "ssn",
	"initial":             "initials",
	"in case of emergency, who should be notified": "in_case_of_emergency_who_should_be_notified",
	"is the patient a minor?":                      "is_the_patient_a_minor",
	"full-time student":                            "full_time_student",
	"apt/unit/suite":                               "apt_unit_suite",
	"plan/group number":                            "plan_group_number",
}

// sectionQualifiedKeys lists titles whose key gets a _2 suffix in the
// secondary plan section
var sectionQualifiedKeys = map[string]bool{
	"name of insured":   true,
	"birthdate":         true,
	"insurance company": true,
	"dental plan name":  true,
	"plan/group number": true,
	"id number":         true,
	"patient relationship to insured": true,
}

// stopWords disqualify a colon-label candidate: they introduce instructions,
// not fields
var stopWords = []string{
	"section", "part", "page", "instructions", "please", "note",
	"form", "information", "check", "circle", "complete",
}

// Witness, provider, and guardian signature lines are never patient-facing
// fields and are excluded everywhere
var witnessIndicators = []string{
	"witness signature", "witness printed name", "witness name", "witness date",
	"witnessed by", "witness:", "witness relationship", "witness's", "witness’s",
}

var doctorSignatureIndicators = []string{
	"doctor signature", "dentist signature", "physician signature",
	"dr. signature", "practitioner signature", "provider signature",
	"clinician signature", "doctor's", "doctor’s",
}

var guardianSignatureIndicators = []string{
	"parent signature", "guardian signature",
	"parent's signature", "parent’s signature",
	"guardian's signature", "guardian’s signature",
	"legal guardian's", "legal guardian’s",
	"patient/parent/guardian", "legally authorized representative",
}

// referenceFieldOrder is the canonical output order for the comprehensive
// new-patient form. Specs whose keys mostly land in this list are reordered
// to match it.
var referenceFieldOrder = []string{
	"todays_date", "first_name", "mi", "last_name", "nickname", "street", "apt_unit_suite",
	"city", "state", "zip", "mobile", "home", "work", "e_mail", "drivers_license", "state_2",
	"what_is_your_preferred_method_of_contact", "ssn", "date_of_birth", "patient_employed_by",
	"occupation", "street_2", "city_2", "state_3", "zip_2", "sex", "marital_status",
	"in_case_of_emergency_who_should_be_notified", "relationship_to_patient", "mobile_phone",
	"home_phone", "is_the_patient_a_minor", "full_time_student", "name_of_school",
	"first_name_2", "last_name_2", "date_of_birth_2", "relationship_to_patient_2",
	"if_patient_is_a_minor_primary_residence", "if_different_from_patient_street", "city_3",
	"state_4", "zip_3", "mobile_2", "home_2", "work_2", "employer_if_different_from_above",
	"occupation_2", "street_3", "city_2_2", "state_2_2", "zip_2_2", "name_of_insured",
	"birthdate", "ssn_2", "insurance_company", "phone", "street_4", "city_5", "state_6",
	"zip_5", "dental_plan_name", "plan_group_number", "id_number", "patient_relationship_to_insured",
	"name_of_insured_2", "birthdate_2", "ssn_3", "insurance_company_2", "phone_2", "street_5",
	"city_6", "state_7", "zip_6", "dental_plan_name_2", "plan_group_number_2", "id_number_2",
	"patient_relationship_to_insured_2", "text_3", "initials", "text_4", "initials_2",
	"i_authorize_the_release_of_my_personal_information_necessary_to_process_my_dental_benefit_claims_" +
		"including_health_information_diagnosis_and_records_of_any_treatment_or_exam_rendered_" +
		"i_hereby_authorize_payment_of_benefits_directly_to_this_dental_office_otherwise_payable_to_me",
	"initials_3", "signature", "date_signed",
}

// headerRule announces a section when one of its phrases appears on a short
// header-like line
type headerRule struct {
	section string
	phrases []string
}

var headerRules = []headerRule{
	{SectionPatientInfo, []string{"patient information", "patient info", "new patient", "patient demographics"}},
	{SectionChildren, []string{"for children/minors only", "minors only", "children only", "responsible party"}},
	{SectionSecondaryPlan, []string{"secondary dental plan", "additional insurance"}},
	{SectionPrimaryPlan, []string{"primary dental plan", "dental benefit plan information", "insurance information"}},
	{SectionSignature, []string{"patient responsibilities", "authorization", "signature", "financial agreement"}},
}

// Tables bundles every rule table the pipeline consults. Components receive a
// Tables value at construction, so tests can substitute trimmed or extended
// vocabularies without touching shared state.
type Tables struct {
	Compound           []compoundRule
	WorkAddressKeys    map[string][]compoundField
	CanonicalQuestions []canonicalQuestion
	Standalone         map[string]standaloneField
	TitleSynonyms      map[string]string
	CanonicalKeys      map[string]string
	SectionQualified   map[string]bool
	StopWords          []string
	Witness            []string
	DoctorSignature    []string
	GuardianSignature  []string
	Headers            []headerRule
	ReferenceOrder     []string

	referenceIndex map[string]int
}

// DefaultTables returns the standard dental intake rule set
func DefaultTables() *Tables {
	t := &Tables{
		Compound:           compoundRules,
		WorkAddressKeys:    workAddressKeys,
		CanonicalQuestions: canonicalQuestions,
		Standalone:         standaloneFields,
		TitleSynonyms:      titleSynonyms,
		CanonicalKeys:      canonicalKeys,
		SectionQualified:   sectionQualifiedKeys,
		StopWords:          stopWords,
		Witness:            witnessIndicators,
		DoctorSignature:    doctorSignatureIndicators,
		GuardianSignature:  guardianSignatureIndicators,
		Headers:            headerRules,
		ReferenceOrder:     referenceFieldOrder,
	}
	t.buildReferenceIndex()
	return t
}

func (t *Tables) buildReferenceIndex() {
	t.referenceIndex = make(map[string]int, len(t.ReferenceOrder))
	for i, key := range t.ReferenceOrder {
		t.referenceIndex[key] = i
	}
}
