// Package parser recovers structured guidance from free-form model text.
//
// No structured-output mode is assumed from any provider: everything here
// works line by line over plain text. Both entry points are total — absent
// structure degrades to built-in defaults, never to an error. First aid
// parsing is an explicit two-state machine (no step open / step open); the
// transition rules are the most bug-prone part of the pipeline and carry
// direct unit coverage.
package parser

import (
	"strings"
	"time"

	"emergency-guidance/internal/fallback"
	"emergency-guidance/internal/models"
)

// Output caps and defaults.
const (
	maxRecommendations = 5
	maxSteps           = 10
	maxCriticalWarns   = 5
	assessmentMaxLen   = 500
)

// WhenToStop is the fixed stopping guidance attached to every first aid
// result. It is intentionally not derived from model text.
const WhenToStop = "Stop immediately if the person's condition worsens or you feel unsafe."

// defaultRecommendations substitute when the model text contains no
// bullet or numbered lines at all.
var defaultRecommendations = []string{
	"Call emergency services if the situation worsens",
	"Monitor the person's condition closely",
	"Keep the person calm and comfortable",
}

// defaultCriticalWarning substitutes when no critical warning line was found.
const defaultCriticalWarning = "Always prioritize safety"

// ParseAssessment converts validated, sanitized model text into an
// assessment result for the given context.
//
// Severity defaults to high and is upgraded by keyword in fixed priority:
// critical, then medium, then low — first match wins. The narrative is a
// plain prefix of the raw text, not a semantic summary.
func ParseAssessment(text string, ctx *models.EmergencyContext) *models.AssessmentResult {
	upper := strings.ToUpper(text)

	severity := models.SeverityHigh
	switch {
	case strings.Contains(upper, "CRITICAL"):
		severity = models.SeverityCritical
	case strings.Contains(upper, "MEDIUM"):
		severity = models.SeverityMedium
	case strings.Contains(upper, "LOW"):
		severity = models.SeverityLow
	}

	callEmergency := strings.Contains(upper, "YES") || strings.Contains(text, "911")

	var recommendations []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || isDigit(line[0]) {
			clean := strings.TrimSpace(strings.TrimLeft(line, "-•0123456789. "))
			if clean != "" {
				recommendations = append(recommendations, clean)
			}
		}
	}
	if len(recommendations) == 0 {
		recommendations = append([]string(nil), defaultRecommendations...)
	}
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	assessment := text
	if len(assessment) > assessmentMaxLen {
		assessment = assessment[:assessmentMaxLen]
	}

	return &models.AssessmentResult{
		Success:               true,
		EmergencyID:           ctx.EmergencyID,
		Severity:              severity,
		Assessment:            assessment,
		Recommendations:       recommendations,
		CallEmergencyServices: callEmergency,
		Disclaimer:            models.AssessmentDisclaimer,
		ProcessedAt:           time.Now().UTC(),
	}
}

// ParseFirstAid converts validated, sanitized model text into a first aid
// result for the given context.
//
// The scanner holds at most one open step. A line containing "step" and a
// colon closes the open step (if any) and opens a new one; "warning" and
// "duration" lines attach to the open step; "critical warning" lines are
// collected at the top level before the step check sees them. Step numbers
// are reassigned contiguously from 1 regardless of any numbering in the
// source text. Zero parsed steps fall back to the knowledge base.
func ParseFirstAid(text string, ctx *models.EmergencyContext) *models.FirstAidResult {
	var steps []models.FirstAidStep
	var criticalWarnings []string
	var current *models.FirstAidStep

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "critical warning"):
			criticalWarnings = append(criticalWarnings, line)

		case strings.Contains(lower, "step") && strings.Contains(line, ":"):
			if current != nil {
				steps = append(steps, *current)
			}
			current = &models.FirstAidStep{
				StepNumber:  len(steps) + 1,
				Instruction: afterColon(line),
			}

		case strings.Contains(lower, "warning") && current != nil:
			current.Warnings = append(current.Warnings, afterColon(line))

		case strings.Contains(lower, "duration") && current != nil:
			current.Duration = afterColon(line)
		}
	}
	if current != nil {
		steps = append(steps, *current)
	}

	if len(steps) == 0 {
		steps = fallback.FirstAidFor(ctx.EmergencyType)
	}
	if len(steps) > maxSteps {
		steps = steps[:maxSteps]
	}

	if len(criticalWarnings) == 0 {
		criticalWarnings = []string{defaultCriticalWarning}
	} else if len(criticalWarnings) > maxCriticalWarns {
		criticalWarnings = criticalWarnings[:maxCriticalWarns]
	}

	return &models.FirstAidResult{
		Success:          true,
		EmergencyID:      ctx.EmergencyID,
		EmergencyType:    ctx.EmergencyType,
		Steps:            steps,
		CriticalWarnings: criticalWarnings,
		WhenToStop:       WhenToStop,
		Disclaimer:       models.FirstAidDisclaimer,
		ProcessedAt:      time.Now().UTC(),
	}
}

// afterColon returns the text after the first colon, or the whole line when
// there is none.
func afterColon(line string) string {
	if _, rest, ok := strings.Cut(line, ":"); ok {
		return strings.TrimSpace(rest)
	}
	return line
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
