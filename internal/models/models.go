// Package models defines the emergency guidance domain types shared by the
// pipeline, cache, and HTTP layers.
//
// Everything here is a plain value: contexts and results are created per
// request, copied (never mutated in place) as they move through the pipeline,
// and discarded once the response has been written or cached. The cache is
// the only place a result outlives its request, and it stores the structured
// result, never raw model text.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EmergencyType classifies the kind of emergency being reported.
type EmergencyType string

// Supported emergency categories. Unrecognized values fall back to TypeOther.
const (
	TypeMedical         EmergencyType = "medical"
	TypeAccident        EmergencyType = "accident"
	TypeFire            EmergencyType = "fire"
	TypeViolence        EmergencyType = "violence"
	TypeNaturalDisaster EmergencyType = "natural_disaster"
	TypeOther           EmergencyType = "other"
)

// ParseEmergencyType maps a string onto a known category, defaulting to
// TypeOther so callers never have to handle an invalid category downstream.
func ParseEmergencyType(s string) EmergencyType {
	switch EmergencyType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeMedical:
		return TypeMedical
	case TypeAccident:
		return TypeAccident
	case TypeFire:
		return TypeFire
	case TypeViolence:
		return TypeViolence
	case TypeNaturalDisaster:
		return TypeNaturalDisaster
	default:
		return TypeOther
	}
}

// Severity is the ordered emergency severity scale.
type Severity string

// Severity levels, highest first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Description length bounds. A too-short description produces degenerate
// prompts, so the minimum is enforced at request validation time.
const (
	MinDescriptionLen = 10
	MaxDescriptionLen = 1000
)

// Location carries where the emergency is happening. Exact coordinates and
// street address are stripped by the anonymizer before any model call;
// city and country survive because they are needed for useful guidance.
type Location struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// MedicalProfile holds caller-supplied medical background. Age is only ever
// stored as a range — NormalizeAgeRange converts exact ages on ingestion.
type MedicalProfile struct {
	BloodType         string   `json:"blood_type,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	MedicalConditions []string `json:"medical_conditions,omitempty"`
	Medications       []string `json:"medications,omitempty"`
	AgeRange          string   `json:"age_range,omitempty"`
}

// NormalizeAgeRange converts an exact age string into a privacy-preserving
// bucket. Values that already contain "-" or "+" are assumed to be ranges
// and returned unchanged, as are values that do not parse as an integer.
func NormalizeAgeRange(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "-+") {
		return v
	}
	age, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	switch {
	case age < 18:
		return "0-18"
	case age < 30:
		return "18-30"
	case age < 50:
		return "30-50"
	case age < 70:
		return "50-70"
	default:
		return "70+"
	}
}

// EmergencyContext is the complete per-request input to the pipeline.
// EmergencyID is caller-supplied and opaque; it is echoed unchanged on every
// response path, including fallback.
type EmergencyContext struct {
	EmergencyID    string          `json:"emergency_id"`
	EmergencyType  EmergencyType   `json:"emergency_type"`
	Description    string          `json:"description"`
	Location       *Location       `json:"location,omitempty"`
	MedicalProfile *MedicalProfile `json:"medical_profile,omitempty"`
	AdditionalInfo string          `json:"additional_info,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Validation errors for inbound contexts.
var (
	ErrMissingEmergencyID  = errors.New("emergency_id is required")
	ErrDescriptionTooShort = fmt.Errorf("description must be at least %d characters", MinDescriptionLen)
	ErrDescriptionTooLong  = fmt.Errorf("description must be at most %d characters", MaxDescriptionLen)
)

// Validate checks the context is usable, normalizes the emergency type, and
// buckets any exact age in the medical profile. It mutates the receiver only
// for normalization, never for content.
func (c *EmergencyContext) Validate() error {
	if strings.TrimSpace(c.EmergencyID) == "" {
		return ErrMissingEmergencyID
	}
	if len(c.Description) < MinDescriptionLen {
		return ErrDescriptionTooShort
	}
	if len(c.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	c.EmergencyType = ParseEmergencyType(string(c.EmergencyType))
	if c.MedicalProfile != nil {
		c.MedicalProfile.AgeRange = NormalizeAgeRange(c.MedicalProfile.AgeRange)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	return nil
}

// Clone returns a deep value copy of the context. The anonymizer works on a
// clone so the caller keeps the original for response echoing.
func (c *EmergencyContext) Clone() *EmergencyContext {
	out := *c
	if c.Location != nil {
		loc := *c.Location
		out.Location = &loc
	}
	if c.MedicalProfile != nil {
		mp := *c.MedicalProfile
		mp.Allergies = append([]string(nil), c.MedicalProfile.Allergies...)
		mp.MedicalConditions = append([]string(nil), c.MedicalProfile.MedicalConditions...)
		mp.Medications = append([]string(nil), c.MedicalProfile.Medications...)
		out.MedicalProfile = &mp
	}
	return &out
}

// Fixed disclaimer texts attached to every outbound result.
const (
	AssessmentDisclaimer = "This is an AI-generated assessment and should not replace professional medical " +
		"advice. Always call emergency services (911) for life-threatening emergencies."
	FirstAidDisclaimer = "This first aid guidance is AI-generated and for informational purposes only. " +
		"Always prioritize professional medical help for serious injuries or emergencies."
)

// AssessmentRequest asks for a severity assessment of an emergency.
type AssessmentRequest struct {
	EmergencyContext       EmergencyContext `json:"emergency_context"`
	IncludeRecommendations bool             `json:"include_recommendations"`
}

// AssessmentResult is the structured outcome of an assessment request.
type AssessmentResult struct {
	Success               bool      `json:"success"`
	EmergencyID           string    `json:"emergency_id"`
	Severity              Severity  `json:"severity"`
	Assessment            string    `json:"assessment"`
	Recommendations       []string  `json:"recommendations"`
	CallEmergencyServices bool      `json:"call_emergency_services"`
	Disclaimer            string    `json:"disclaimer"`
	ProcessedAt           time.Time `json:"processed_at"`
}

// FirstAidRequest asks for step-by-step first aid guidance.
type FirstAidRequest struct {
	EmergencyContext EmergencyContext `json:"emergency_context"`
	SpecificConcern  string           `json:"specific_concern,omitempty"`
}

// FirstAidStep is a single numbered instruction. Step numbers are contiguous
// from 1 and assigned by the parser in encounter order.
type FirstAidStep struct {
	StepNumber  int      `json:"step_number"`
	Instruction string   `json:"instruction"`
	Warnings    []string `json:"warnings,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

// FirstAidResult is the structured outcome of a first aid request.
// CriticalWarnings is never empty: the parser substitutes a generic safety
// warning when the model text contains none.
type FirstAidResult struct {
	Success          bool           `json:"success"`
	EmergencyID      string         `json:"emergency_id"`
	EmergencyType    EmergencyType  `json:"emergency_type"`
	Steps            []FirstAidStep `json:"steps"`
	CriticalWarnings []string       `json:"critical_warnings"`
	WhenToStop       string         `json:"when_to_stop"`
	Disclaimer       string         `json:"disclaimer"`
	ProcessedAt      time.Time      `json:"processed_at"`
}

// ServiceError is the structured error body returned when a request cannot
// be served at all (fallback disabled and all providers failed).
type ServiceError struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
