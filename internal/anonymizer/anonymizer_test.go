package anonymizer

import (
	"strings"
	"testing"

	"emergency-guidance/internal/models"
)

func TestAnonymizePhone(t *testing.T) {
	a := New()
	result := a.AnonymizeText("Call me at 555-123-4567 please")
	if strings.Contains(result, "555-123-4567") {
		t.Errorf("phone not anonymized: %q", result)
	}
	if !strings.Contains(result, "[PHONE]") {
		t.Errorf("expected [PHONE] placeholder, got %q", result)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	a := New()
	result := a.AnonymizeText("reach alice@example.com for details")
	if strings.Contains(result, "alice@example.com") || !strings.Contains(result, "[EMAIL]") {
		t.Errorf("email not anonymized: %q", result)
	}
}

func TestAnonymizeSSNAndCreditCard(t *testing.T) {
	a := New()
	result := a.AnonymizeText("SSN 123-45-6789 card 4111 1111 1111 1111")
	if strings.Contains(result, "123-45-6789") || !strings.Contains(result, "[SSN]") {
		t.Errorf("SSN not anonymized: %q", result)
	}
	if strings.Contains(result, "4111") || !strings.Contains(result, "[CREDIT_CARD]") {
		t.Errorf("credit card not anonymized: %q", result)
	}
}

func TestAnonymizeURL(t *testing.T) {
	a := New()
	result := a.AnonymizeText("see https://example.com/incident for photos")
	if strings.Contains(result, "example.com") || !strings.Contains(result, "[URL]") {
		t.Errorf("URL not anonymized: %q", result)
	}
}

func TestAnonymizeHonorificName(t *testing.T) {
	a := New()
	result := a.AnonymizeText("Dr Smith is unconscious")
	if strings.Contains(result, "Smith") {
		t.Errorf("name not anonymized: %q", result)
	}
	if !strings.Contains(result, "[DR]") {
		t.Errorf("expected [DR] placeholder, got %q", result)
	}
}

func TestAnonymizeStreetAddress(t *testing.T) {
	a := New()
	result := a.AnonymizeText("fire at 123 Main Street spreading fast")
	if strings.Contains(result, "Main Street") || !strings.Contains(result, "[ADDRESS]") {
		t.Errorf("address not anonymized: %q", result)
	}
}

func TestAnonymizePhoneAndEmailTogether(t *testing.T) {
	a := New()
	result := a.AnonymizeText("Call me at 555-123-4567 or email a@b.com")
	if !strings.Contains(result, "[PHONE]") || !strings.Contains(result, "[EMAIL]") {
		t.Errorf("missing placeholders: %q", result)
	}
	if strings.Contains(result, "555-123-4567") || strings.Contains(result, "a@b.com") {
		t.Errorf("original PII still present: %q", result)
	}
}

// Placeholders contain no digits or names, so a second pass leaves the text
// unchanged. This documents observed behavior; idempotence is not a
// guaranteed property of the substitution table.
func TestAnonymizeTwoPassStable(t *testing.T) {
	a := New()
	once := a.AnonymizeText("Call 555-123-4567, email a@b.com, ask for Mr. John Doe at 123 Main Street")
	twice := a.AnonymizeText(once)
	if once != twice {
		t.Errorf("second pass changed text\n  once:  %q\n  twice: %q", once, twice)
	}
}

func TestAnonymizeEmptyText(t *testing.T) {
	a := New()
	if got := a.AnonymizeText(""); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func testContext() *models.EmergencyContext {
	return &models.EmergencyContext{
		EmergencyID:   "em-123",
		EmergencyType: models.TypeMedical,
		Description:   "patient collapsed, call 555-123-4567",
		Location: &models.Location{
			Latitude:  40.7128,
			Longitude: -74.0060,
			Address:   "123 Main Street",
			City:      "New York",
			Country:   "USA",
		},
		MedicalProfile: &models.MedicalProfile{
			AgeRange:  "30-50",
			Allergies: []string{"penicillin"},
		},
		AdditionalInfo: "neighbor is Dr Smith",
	}
}

func TestAnonymizeContextScrubsFields(t *testing.T) {
	a := New()
	anon := a.AnonymizeContext(testContext())

	if strings.Contains(anon.Description, "555-123-4567") {
		t.Errorf("description still has phone: %q", anon.Description)
	}
	if strings.Contains(anon.AdditionalInfo, "Smith") {
		t.Errorf("additional info still has name: %q", anon.AdditionalInfo)
	}
	if anon.Location.Address != "[ADDRESS]" {
		t.Errorf("address = %q, want [ADDRESS]", anon.Location.Address)
	}
	if anon.Location.Latitude != 0 || anon.Location.Longitude != 0 {
		t.Error("coordinates were not cleared")
	}
	if anon.Location.City != "New York" || anon.Location.Country != "USA" {
		t.Error("city/country should be preserved")
	}
	if anon.EmergencyID != "em-123" {
		t.Errorf("identifier changed: %q", anon.EmergencyID)
	}
	if anon.MedicalProfile.AgeRange != "30-50" {
		t.Error("medical profile should be left untouched")
	}
}

func TestAnonymizeContextDoesNotMutateOriginal(t *testing.T) {
	a := New()
	original := testContext()
	_ = a.AnonymizeContext(original)

	if !strings.Contains(original.Description, "555-123-4567") {
		t.Error("original description was mutated")
	}
	if original.Location.Address != "123 Main Street" || original.Location.Latitude == 0 {
		t.Error("original location was mutated")
	}
}

func TestDetectCounts(t *testing.T) {
	a := New()
	d := a.Detect("Call 555-123-4567 or 555-987-6543, email a@b.com")
	if !d.HasPII {
		t.Fatal("expected HasPII=true")
	}
	if d.Counts[PIIPhone] != 2 {
		t.Errorf("phone count = %d, want 2", d.Counts[PIIPhone])
	}
	if d.Counts[PIIEmail] != 1 {
		t.Errorf("email count = %d, want 1", d.Counts[PIIEmail])
	}
}

func TestDetectCleanText(t *testing.T) {
	a := New()
	d := a.Detect("the kitchen is on fire and spreading")
	if d.HasPII {
		t.Errorf("unexpected PII detected: %v", d.Counts)
	}
}
