package document

import (
	"regexp"
	"strings"
)

// FormType is the coarse document classification driving conversion strategy
type FormType string

const (
	// FormTypePatientInfo marks intake forms dominated by fill-in fields
	FormTypePatientInfo FormType = "patient_info"
	// FormTypeConsent marks narrative consent forms dominated by prose
	FormTypeConsent FormType = "consent"
)

var consentKeywords = []string{
	"informed consent", "consent form", "risks", "complications",
	"agree to", "acknowledge", "understand that", "voluntary",
	"authorize", "treatment consent", "procedure consent",
}

var patientInfoKeywords = []string{
	"patient information", "personal information", "contact information",
	"first name", "last name", "date of birth", "address", "phone",
	"email", "insurance", "dental plan", "medical history",
	"emergency contact", "ssn", "social security",
}

var (
	signatureDatePattern = regexp.MustCompile(`signature.*date|date.*signature`)
	fillPattern          = regexp.MustCompile(`_+|\.\.\.+|\[\s*\]`)
)

// Lines near the top carry the form title, so keyword hits there weigh double
const headerAnalysisLines = 50

// DetectFormType scores keyword evidence for a consent form against evidence
// for a patient intake form. Ties and weak signals default to patient_info,
// the strategy that extracts the most.
func DetectFormType(lines []string) FormType {
	headerText := strings.ToLower(strings.Join(firstN(lines, headerAnalysisLines), " "))
	fullText := strings.ToLower(strings.Join(lines, " "))

	consent, patientInfo := 0, 0
	for _, kw := range consentKeywords {
		if strings.Contains(headerText, kw) {
			consent += 2
		}
		if strings.Contains(fullText, kw) {
			consent++
		}
	}
	for _, kw := range patientInfoKeywords {
		if strings.Contains(headerText, kw) {
			patientInfo += 2
		}
		if strings.Contains(fullText, kw) {
			patientInfo++
		}
	}

	consent += 2 * len(signatureDatePattern.FindAllString(fullText, -1))
	if len(fillPattern.FindAllString(fullText, -1)) > 10 {
		patientInfo += 3
	}

	if consent > patientInfo && consent >= 3 {
		return FormTypeConsent
	}
	return FormTypePatientInfo
}

func firstN(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
