// Package fallback is the deterministic knowledge base used when no
// trustworthy model output is available.
//
// Every lookup is a pure function over hand-curated tables: exact match on
// the emergency category with a single generic default row. The same
// category always yields byte-identical output — no randomness, no clock
// reads, no I/O. This is what lets the pipeline promise that a response is
// always produced, even with every provider unreachable.
package fallback

import "emergency-guidance/internal/models"

// Assessment is the pre-defined severity assessment for one category.
type Assessment struct {
	Severity              models.Severity
	Assessment            string
	Recommendations       []string
	CallEmergencyServices bool
}

var assessments = map[models.EmergencyType]Assessment{
	models.TypeMedical: {
		Severity:   models.SeverityHigh,
		Assessment: "This appears to be a medical emergency. Immediate professional help is recommended.",
		Recommendations: []string{
			"Call 911 or local emergency services immediately",
			"Stay calm and keep the person comfortable",
			"Do not move the person unless there is immediate danger",
			"Monitor vital signs (breathing, pulse) if possible",
			"Provide emergency information to responders when they arrive",
		},
		CallEmergencyServices: true,
	},
	models.TypeAccident: {
		Severity:   models.SeverityHigh,
		Assessment: "Accident situations can involve serious injuries. Professional emergency response is needed.",
		Recommendations: []string{
			"Call 911 immediately",
			"Ensure the scene is safe before providing assistance",
			"Do not move injured persons unless there is immediate danger",
			"Apply pressure to any bleeding wounds with clean cloth",
			"Keep injured persons calm and still",
		},
		CallEmergencyServices: true,
	},
	models.TypeFire: {
		Severity:   models.SeverityCritical,
		Assessment: "Fire is a critical emergency requiring immediate evacuation and professional response.",
		Recommendations: []string{
			"Call 911 immediately",
			"Evacuate the building using the nearest safe exit",
			"Do not use elevators",
			"Stay low to avoid smoke inhalation",
			"Do not re-enter the building for any reason",
		},
		CallEmergencyServices: true,
	},
	models.TypeViolence: {
		Severity:   models.SeverityCritical,
		Assessment: "Violence situations require immediate law enforcement response. Your safety is the priority.",
		Recommendations: []string{
			"Call 911 immediately if safe to do so",
			"Remove yourself from danger if possible",
			"Do not confront the aggressor",
			"Seek shelter in a safe location",
			"Follow law enforcement instructions when they arrive",
		},
		CallEmergencyServices: true,
	},
	models.TypeNaturalDisaster: {
		Severity:   models.SeverityCritical,
		Assessment: "Natural disasters require immediate safety measures and emergency response coordination.",
		Recommendations: []string{
			"Follow local emergency broadcast instructions",
			"Seek appropriate shelter immediately",
			"Stay away from windows, doors, and external walls",
			"Have emergency supplies ready (water, food, first aid)",
			"Do not venture outside until authorities declare it safe",
		},
		CallEmergencyServices: true,
	},
}

// genericAssessment is the default row for unmapped categories.
var genericAssessment = Assessment{
	Severity:   models.SeverityHigh,
	Assessment: "This is an emergency situation requiring professional help.",
	Recommendations: []string{
		"Call 911 or local emergency services",
		"Stay safe and calm",
		"Wait for professional assistance",
	},
	CallEmergencyServices: true,
}

// AssessmentFor returns the pre-defined assessment for the category.
// Never fails: unmapped categories resolve to the generic row. The result
// is a copy — callers may append to the recommendation slice freely.
func AssessmentFor(t models.EmergencyType) Assessment {
	a, ok := assessments[t]
	if !ok {
		a = genericAssessment
	}
	a.Recommendations = append([]string(nil), a.Recommendations...)
	return a
}

var firstAidSteps = map[models.EmergencyType][]models.FirstAidStep{
	models.TypeMedical: {
		{
			StepNumber:  1,
			Instruction: "Call 911 or emergency services immediately",
			Warnings:    []string{"Do not delay emergency call"},
			Duration:    "Immediately",
		},
		{
			StepNumber:  2,
			Instruction: "Keep the person calm and comfortable",
			Warnings:    []string{"Do not give food or drinks unless instructed"},
			Duration:    "Until help arrives",
		},
		{
			StepNumber:  3,
			Instruction: "Monitor breathing and consciousness",
			Warnings:    []string{"Be prepared to perform CPR if trained"},
			Duration:    "Continuously",
		},
		{
			StepNumber:  4,
			Instruction: "Gather medical information (medications, allergies, conditions)",
			Warnings:    []string{"Have this ready for emergency responders"},
			Duration:    "While waiting",
		},
	},
	models.TypeAccident: {
		{
			StepNumber:  1,
			Instruction: "Ensure scene safety before approaching",
			Warnings:    []string{"Do not put yourself in danger"},
			Duration:    "First priority",
		},
		{
			StepNumber:  2,
			Instruction: "Call 911 immediately",
			Warnings:    []string{"Provide clear location and injury description"},
			Duration:    "Immediately",
		},
		{
			StepNumber:  3,
			Instruction: "Apply direct pressure to any bleeding wounds",
			Warnings:    []string{"Use clean cloth or gauze", "Do not remove objects embedded in wounds"},
			Duration:    "Until bleeding stops or help arrives",
		},
		{
			StepNumber:  4,
			Instruction: "Keep injured person still",
			Warnings:    []string{"Do not move unless immediate danger", "Suspect spinal injury in serious accidents"},
			Duration:    "Until professional help arrives",
		},
	},
	models.TypeFire: {
		{
			StepNumber:  1,
			Instruction: "Evacuate immediately using the nearest safe exit",
			Warnings:    []string{"Do not use elevators", "Do not stop to collect belongings"},
			Duration:    "Immediately",
		},
		{
			StepNumber:  2,
			Instruction: "Stay low and crawl under smoke",
			Warnings:    []string{"Smoke inhalation is the leading cause of fire deaths"},
			Duration:    "While evacuating",
		},
		{
			StepNumber:  3,
			Instruction: "Call 911 once outside",
			Warnings:    []string{"Never re-enter a burning building"},
			Duration:    "Immediately after evacuating",
		},
	},
}

var genericFirstAid = []models.FirstAidStep{
	{
		StepNumber:  1,
		Instruction: "Call 911 or emergency services immediately",
		Warnings:    []string{"Do not attempt advanced procedures without training"},
		Duration:    "Immediately",
	},
	{
		StepNumber:  2,
		Instruction: "Keep yourself and others safe",
		Warnings:    []string{"Assess the situation before acting"},
		Duration:    "Ongoing",
	},
	{
		StepNumber:  3,
		Instruction: "Provide comfort and reassurance",
		Warnings:    []string{"Do not move injured persons unnecessarily"},
		Duration:    "Until help arrives",
	},
}

// FirstAidFor returns the pre-defined first aid steps for the category.
// Never fails: unmapped categories resolve to the generic steps. The
// returned slice is a fresh copy.
func FirstAidFor(t models.EmergencyType) []models.FirstAidStep {
	steps, ok := firstAidSteps[t]
	if !ok {
		steps = genericFirstAid
	}
	out := make([]models.FirstAidStep, len(steps))
	for i, s := range steps {
		s.Warnings = append([]string(nil), s.Warnings...)
		out[i] = s
	}
	return out
}

// commonWarnings apply to every category.
var commonWarnings = []string{
	"Always call 911 for serious emergencies",
	"Do not provide care beyond your training level",
	"Prioritize scene safety for yourself and others",
}

var typeWarnings = map[models.EmergencyType][]string{
	models.TypeMedical: {
		"Do not give medications unless prescribed",
		"Do not give food or drink to unconscious persons",
	},
	models.TypeFire: {
		"Never re-enter a burning building",
		"Crawl low under smoke",
	},
	models.TypeViolence: {
		"Your safety is the top priority",
		"Do not confront violent individuals",
	},
}

// WarningsFor returns the critical warnings for the category: the common
// warnings followed by any type-specific extras, in fixed order.
func WarningsFor(t models.EmergencyType) []string {
	out := append([]string(nil), commonWarnings...)
	return append(out, typeWarnings[t]...)
}
