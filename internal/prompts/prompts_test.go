package prompts

import (
	"strings"
	"testing"

	"emergency-guidance/internal/models"
)

func TestAssessmentPrompt(t *testing.T) {
	got := Assessment(&models.EmergencyContext{
		EmergencyType: models.TypeMedical,
		Description:   "person collapsed at the gym",
		Location:      &models.Location{City: "Lyon", Country: "France"},
		MedicalProfile: &models.MedicalProfile{
			AgeRange:  "30-50",
			Allergies: []string{"penicillin"},
		},
		AdditionalInfo: "breathing is shallow",
	})

	for _, want := range []string{
		"MEDICAL",
		"person collapsed at the gym",
		"City: Lyon",
		"Country: France",
		"Age: 30-50",
		"Allergies: penicillin",
		"breathing is shallow",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestAssessmentPromptOmitsEmptySections(t *testing.T) {
	got := Assessment(&models.EmergencyContext{
		EmergencyType: models.TypeFire,
		Description:   "kitchen fire spreading",
	})
	for _, absent := range []string{"Location", "Medical Profile", "Additional Information"} {
		if strings.Contains(got, absent) {
			t.Errorf("prompt has empty section %q:\n%s", absent, got)
		}
	}
}

func TestFirstAidPromptIncludesConcernAndMedications(t *testing.T) {
	got := FirstAid(&models.EmergencyContext{
		EmergencyType: models.TypeMedical,
		Description:   "deep cut on the forearm",
		MedicalProfile: &models.MedicalProfile{
			Medications: []string{"warfarin"},
		},
	}, "bleeding will not stop")

	if !strings.Contains(got, "bleeding will not stop") {
		t.Errorf("prompt missing specific concern:\n%s", got)
	}
	if !strings.Contains(got, "Medications: warfarin") {
		t.Errorf("prompt missing medications:\n%s", got)
	}
}

func TestAssessmentPromptExcludesMedications(t *testing.T) {
	got := Assessment(&models.EmergencyContext{
		EmergencyType: models.TypeMedical,
		Description:   "person collapsed at the gym",
		MedicalProfile: &models.MedicalProfile{
			AgeRange:    "70+",
			Medications: []string{"warfarin"},
		},
	})
	if strings.Contains(got, "warfarin") {
		t.Errorf("assessment prompt should not list medications:\n%s", got)
	}
}

func TestSystemPromptsNameTheFormats(t *testing.T) {
	if !strings.Contains(AssessmentSystem, "Severity Level:") {
		t.Error("assessment system prompt does not describe the expected format")
	}
	if !strings.Contains(FirstAidSystem, "Step 1:") {
		t.Error("first aid system prompt does not describe the expected format")
	}
}
