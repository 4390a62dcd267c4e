package pipeline

import "testing"

func TestSectionTrackerHeaders(t *testing.T) {
	lines := []string{
		"## Patient Information",
		"First Name: ____",
		"## FOR CHILDREN/MINORS ONLY",
		"Name of School: ____",
		"## Secondary Dental Plan",
		"Name of Insured: ____",
	}
	tracker := NewSectionTracker(lines, 10, DefaultTables())

	cases := map[int]string{
		1: SectionPatientInfo,
		3: SectionChildren,
		5: SectionSecondaryPlan,
	}
	for idx, want := range cases {
		if got := tracker.CurrentSection(idx); got != want {
			t.Errorf("CurrentSection(%d) = %q, want %q", idx, got, want)
		}
	}

	if _, ok := tracker.HeaderAt(0); !ok {
		t.Errorf("expected line 0 to be a header")
	}
	if _, ok := tracker.HeaderAt(1); ok {
		t.Errorf("did not expect line 1 to be a header")
	}
}

func TestSectionTrackerDefaultsToPatientInfo(t *testing.T) {
	tracker := NewSectionTracker([]string{"Nickname: ____"}, 10, DefaultTables())
	if got := tracker.CurrentSection(0); got != SectionPatientInfo {
		t.Errorf("default section = %q", got)
	}
}

func TestSectionForInsuranceContext(t *testing.T) {
	lines := []string{
		"## Secondary Dental Plan",
		"Phone: ____",
	}
	tracker := NewSectionTracker(lines, 10, DefaultTables())
	if got := tracker.SectionFor(lines, 1); got != SectionSecondaryPlan {
		t.Errorf("expected secondary plan for phone under secondary header, got %q", got)
	}
}

func TestSectionForEmergencyStaysWithPatientInfo(t *testing.T) {
	lines := []string{
		"## Patient Information",
		"Occupation: ____",
		"In case of emergency, who should be notified: ____",
	}
	tracker := NewSectionTracker(lines, 10, DefaultTables())
	if got := tracker.SectionFor(lines, 2); got != SectionPatientInfo {
		t.Errorf("expected patient info for emergency contact, got %q", got)
	}
}

func TestSectionForMedicalKeywords(t *testing.T) {
	lines := []string{
		"## Patient Information",
		"List any medications you are currently taking: ____",
	}
	tracker := NewSectionTracker(lines, 10, DefaultTables())
	if got := tracker.SectionFor(lines, 1); got != SectionMedical {
		t.Errorf("expected medical history, got %q", got)
	}
}
