// Package safety validates and sanitizes raw model output before it is
// parsed into structured guidance.
//
// The rules are plain ordered tables of compiled patterns, not control
// flow: tests enumerate them directly and new patterns slot in without
// touching the validation loop. Errors mark a response invalid and send
// the pipeline to its fallback path; warnings are diagnostic only and
// never reach the caller.
package safety

import (
	"regexp"
	"strings"

	"emergency-guidance/internal/logger"
)

// ResponseKind distinguishes the two validated response shapes.
type ResponseKind string

// Validated response kinds.
const (
	KindAssessment ResponseKind = "assessment"
	KindFirstAid   ResponseKind = "first_aid"
)

// OutcomeSeverity tags the highest-severity signal seen during validation.
type OutcomeSeverity string

// Outcome severities, lowest to highest.
const (
	SeverityInfo    OutcomeSeverity = "info"
	SeverityWarning OutcomeSeverity = "warning"
	SeverityError   OutcomeSeverity = "error"
)

// Outcome is the result of validating one model response.
// IsValid is false iff at least one error was recorded; warnings never
// flip validity.
type Outcome struct {
	IsValid  bool            `json:"is_valid"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Severity OutcomeSeverity `json:"severity"`
}

// harmfulPatterns mark a response invalid on any match. Matches accumulate;
// they do not short-circuit.
var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill|suicide|self-harm|overdose)\b`),
	regexp.MustCompile(`(?i)\b(ignore medical advice|don't call|skip)\s+(a\s+|the\s+)?(doctor|hospital|911|emergency)`),
	regexp.MustCompile(`(?i)\bguaranteed?\s+(cure|recovery|success)\b`),
}

// disclaimerKeywords is the fixed vocabulary used to heuristically detect a
// medical disclaimer. At least one of the first two phrases must appear.
var disclaimerKeywords = []string{
	"not a substitute",
	"professional medical",
	"emergency services",
	"911",
}

// misinformationPatterns detect overly definitive phrasing. Each match adds
// a warning.
var misinformationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\balways\s+(safe|works|effective)\b`),
	regexp.MustCompile(`(?i)\bnever\s+(dangerous|harmful|risky)\b`),
	regexp.MustCompile(`(?i)\b100%\s+(safe|effective|certain)\b`),
}

// severityPattern and callToActionPattern back the assessment-only rule:
// severe language without a call to action is suspicious.
var (
	severityPattern     = regexp.MustCompile(`(?i)\b(severe|critical|life-threatening|serious)\b`)
	callToActionPattern = regexp.MustCompile(`(?i)\b(call|contact|emergency|911|ambulance)\b`)
)

// Response length bounds in bytes. Outside them the response is suspect but
// still usable, so both produce warnings.
const (
	minResponseLen = 50
	maxResponseLen = 5000
)

// Gate validates and sanitizes model responses. Stateless apart from its
// logger; safe for concurrent use.
type Gate struct {
	log *logger.Logger
}

// New returns a Gate logging at the given level.
func New(logLevel string) *Gate {
	return &Gate{log: logger.New("SAFETY", logLevel)}
}

// Validate applies the safety rules to raw model text, in order:
// empty check (short-circuits), harmful content, disclaimer presence,
// length bounds, misinformation phrasing, and for assessments a
// severity-without-call-to-action check.
func (g *Gate) Validate(text string, kind ResponseKind, requireDisclaimer bool) Outcome {
	out := Outcome{IsValid: true, Severity: SeverityInfo}

	if strings.TrimSpace(text) == "" {
		out.IsValid = false
		out.Errors = append(out.Errors, "Response is empty")
		out.Severity = SeverityError
		return out
	}

	for _, p := range harmfulPatterns {
		if p.MatchString(text) {
			out.IsValid = false
			out.Errors = append(out.Errors, "Potentially harmful content detected: "+p.String())
			out.Severity = SeverityError
			g.log.Warnf("harmful_content", "pattern matched in model response: %s", p.String())
		}
	}

	if requireDisclaimer {
		lower := strings.ToLower(text)
		hasDisclaimer := false
		for _, kw := range disclaimerKeywords[:2] {
			if strings.Contains(lower, kw) {
				hasDisclaimer = true
				break
			}
		}
		if !hasDisclaimer {
			out.Warnings = append(out.Warnings, "Response should include appropriate medical disclaimer")
			if out.Severity != SeverityError {
				out.Severity = SeverityWarning
			}
		}
	}

	if len(text) < minResponseLen {
		out.Warnings = append(out.Warnings, "Response may be too brief")
	} else if len(text) > maxResponseLen {
		out.Warnings = append(out.Warnings, "Response may be too verbose")
	}

	for _, p := range misinformationPatterns {
		if p.MatchString(text) {
			out.Warnings = append(out.Warnings, "Overly definitive language detected: "+p.String())
		}
	}

	if kind == KindAssessment {
		if severityPattern.MatchString(text) && !callToActionPattern.MatchString(text) {
			out.Warnings = append(out.Warnings,
				"Severe emergency detected but no call to action for emergency services")
		}
	}

	if len(out.Warnings) > 0 && out.Severity == SeverityInfo {
		out.Severity = SeverityWarning
	}

	g.log.Debugf("validate", "kind=%s valid=%t errors=%d warnings=%d",
		kind, out.IsValid, len(out.Errors), len(out.Warnings))
	return out
}

// Sanitization patterns, applied in order by Sanitize.
var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	spaceRunPattern   = regexp.MustCompile(`[^\S\n]+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
	ssnShapePattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phoneShapePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// Sanitize strips markup, collapses whitespace, and re-redacts any SSN or
// phone shaped substrings that survived the pre-call anonymization. The
// model can echo PII from its own training or invent new digit strings, so
// output gets the same shape checks as input.
//
// Whitespace collapse keeps newlines: the parser downstream recovers
// structure line by line, so flattening the text here would erase the very
// lines it scans for.
func Sanitize(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(blankRunPattern.ReplaceAllString(text, "\n\n"))
	text = ssnShapePattern.ReplaceAllString(text, "[REDACTED]")
	text = phoneShapePattern.ReplaceAllString(text, "[REDACTED]")
	return text
}

// EnsureDisclaimer appends the given disclaimer when the text contains no
// disclaimer vocabulary at all. The check is looser than Validate's (it also
// accepts a literal "disclaimer" marker) because here a false positive just
// means a duplicate notice.
func EnsureDisclaimer(text, disclaimer string) string {
	lower := strings.ToLower(text)
	for _, kw := range []string{"disclaimer", "not a substitute", "professional medical"} {
		if strings.Contains(lower, kw) {
			return text
		}
	}
	return text + "\n\n**DISCLAIMER**: " + disclaimer
}
