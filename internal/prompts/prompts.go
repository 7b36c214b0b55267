// Package prompts builds the system and user prompts for both guidance
// request kinds. Prompt text is fixed; user prompts are assembled from the
// anonymized context only — nothing here may see pre-anonymization data.
package prompts

import (
	"strings"

	"emergency-guidance/internal/models"
)

// AssessmentSystem instructs the model to produce a severity assessment in
// the line-oriented format the parser expects.
const AssessmentSystem = `You are an AI emergency assessment assistant. Your role is to analyze emergency situations and provide severity assessments with appropriate recommendations.

**CRITICAL GUIDELINES:**
1. You are NOT a substitute for professional medical advice or emergency services
2. ALWAYS recommend calling 911/emergency services for life-threatening situations
3. Provide clear, actionable recommendations
4. Be concise but thorough
5. Include appropriate disclaimers
6. Consider the context: location, medical profile, emergency type
7. Assess severity as: CRITICAL, HIGH, MEDIUM, or LOW

**RESPONSE FORMAT:**
- Severity Level: [CRITICAL/HIGH/MEDIUM/LOW]
- Assessment: [2-3 sentence assessment of the situation]
- Immediate Actions: [List 3-5 specific recommendations]
- Call Emergency Services: [YES/NO with justification]

**MEDICAL DISCLAIMER:**
This assessment is AI-generated and should not replace professional medical advice. Always call emergency services (911) for life-threatening emergencies or when in doubt.`

// FirstAidSystem instructs the model to produce numbered first aid steps in
// the "Step N:" format the parser expects.
const FirstAidSystem = `You are an AI first aid guidance assistant. Your role is to provide step-by-step first aid instructions for emergency situations.

**CRITICAL GUIDELINES:**
1. You are NOT a substitute for professional medical care
2. ALWAYS emphasize calling 911/emergency services first for serious injuries
3. Provide clear, sequential, numbered steps
4. Include safety warnings for each step when relevant
5. Use simple, easy-to-understand language
6. Focus on immediate stabilization until professional help arrives
7. Never provide instructions that could cause harm
8. Include "when to stop" criteria

**RESPONSE FORMAT:**
Step 1: [Instruction]
- Warning: [Any safety warnings]
- Duration: [How long to perform this step]

Step 2: [Instruction]
...

**CRITICAL WARNINGS:**
[List any critical warnings specific to this emergency]

**WHEN TO STOP:**
[Criteria for when to stop first aid and what to do next]

**MEDICAL DISCLAIMER:**
This first aid guidance is AI-generated and for informational purposes only. Always prioritize calling emergency services and obtaining professional medical help for serious injuries or emergencies.`

// Assessment builds the user prompt for an assessment request from an
// anonymized context.
func Assessment(ctx *models.EmergencyContext) string {
	parts := []string{
		"**Emergency Type:** " + strings.ToUpper(string(ctx.EmergencyType)),
		"**Description:** " + ctx.Description,
	}

	if ctx.Location != nil {
		var loc []string
		if ctx.Location.City != "" {
			loc = append(loc, "City: "+ctx.Location.City)
		}
		if ctx.Location.Country != "" {
			loc = append(loc, "Country: "+ctx.Location.Country)
		}
		if len(loc) > 0 {
			parts = append(parts, "**Location:** "+strings.Join(loc, ", "))
		}
	}

	if med := medicalSummary(ctx.MedicalProfile, false); med != "" {
		parts = append(parts, "**Medical Profile:** "+med)
	}

	if ctx.AdditionalInfo != "" {
		parts = append(parts, "**Additional Information:** "+ctx.AdditionalInfo)
	}

	parts = append(parts, "\nProvide your emergency assessment following the response format guidelines.")
	return strings.Join(parts, "\n\n")
}

// FirstAid builds the user prompt for a first aid request from an anonymized
// context and an optional specific concern.
func FirstAid(ctx *models.EmergencyContext, specificConcern string) string {
	parts := []string{
		"**Emergency Type:** " + strings.ToUpper(string(ctx.EmergencyType)),
		"**Situation:** " + ctx.Description,
	}

	if specificConcern != "" {
		parts = append(parts, "**Specific Concern:** "+specificConcern)
	}

	if med := medicalSummary(ctx.MedicalProfile, true); med != "" {
		parts = append(parts, "**Medical Considerations:** "+med)
	}

	parts = append(parts, "\nProvide step-by-step first aid guidance following the response format.")
	return strings.Join(parts, "\n\n")
}

// medicalSummary renders the medical profile as a single prompt line.
// First aid prompts additionally include current medications.
func medicalSummary(mp *models.MedicalProfile, withMedications bool) string {
	if mp == nil {
		return ""
	}
	var parts []string
	if mp.AgeRange != "" {
		parts = append(parts, "Age: "+mp.AgeRange)
	}
	if mp.BloodType != "" {
		parts = append(parts, "Blood Type: "+mp.BloodType)
	}
	if len(mp.Allergies) > 0 {
		parts = append(parts, "Allergies: "+strings.Join(mp.Allergies, ", "))
	}
	if len(mp.MedicalConditions) > 0 {
		parts = append(parts, "Conditions: "+strings.Join(mp.MedicalConditions, ", "))
	}
	if withMedications && len(mp.Medications) > 0 {
		parts = append(parts, "Medications: "+strings.Join(mp.Medications, ", "))
	}
	return strings.Join(parts, "; ")
}
