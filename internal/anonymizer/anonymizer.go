// Package anonymizer removes PII from emergency text before it crosses the
// system boundary to an LLM provider.
//
// Detection is a single ordered regex pass over the text. Order matters:
// digit-heavy patterns (phone, SSN, credit card) run before the generic
// address and honorific patterns so overlapping matches are not mangled
// twice. Replacements are fixed placeholder tokens, not reversible hashes —
// nothing downstream ever needs the original value back.
package anonymizer

import (
	"fmt"
	"regexp"
	"strings"

	"emergency-guidance/internal/models"
)

// PIIType classifies the kind of sensitive data found.
type PIIType string

// Supported PII types for detection and anonymization.
const (
	PIIPhone      PIIType = "phone"
	PIIEmail      PIIType = "email"
	PIISSN        PIIType = "ssn"
	PIICreditCard PIIType = "creditCard"
	PIIURL        PIIType = "url"
	PIIName       PIIType = "name"
	PIIAddress    PIIType = "address"
)

// substitution pairs a compiled regex with its replacement token.
type substitution struct {
	re          *regexp.Regexp
	piiType     PIIType
	replacement string
}

// honorifics matched by the name pattern. Each produces its own table entry
// so "Dr Smith" becomes [DR], not a generic token.
var honorifics = []string{"mr", "mrs", "ms", "dr", "prof", "miss"}

// Anonymizer holds the compiled, ordered substitution table.
type Anonymizer struct {
	subs []substitution
}

// New compiles the substitution table. Patterns are fixed; an Anonymizer is
// built once at process start and shared across requests (it is stateless
// after construction and safe for concurrent use).
func New() *Anonymizer {
	a := &Anonymizer{}
	a.compile()
	return a
}

func (a *Anonymizer) compile() {
	// Digit-shaped patterns first: a phone or SSN inside an address-looking
	// line must be replaced before the address pattern sees it.
	specs := []struct {
		expr        string
		piiType     PIIType
		replacement string
	}{
		{`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`, PIIPhone, "[PHONE]"},
		{`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`, PIIEmail, "[EMAIL]"},
		{`\b\d{3}-\d{2}-\d{4}\b`, PIISSN, "[SSN]"},
		{`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`, PIICreditCard, "[CREDIT_CARD]"},
		{`https?://[^\s]+`, PIIURL, "[URL]"},
	}
	for _, s := range specs {
		a.subs = append(a.subs, substitution{
			re:          regexp.MustCompile(s.expr),
			piiType:     s.piiType,
			replacement: s.replacement,
		})
	}
	for _, title := range honorifics {
		// Matches "Mr. John Doe" or "Dr Smith".
		expr := fmt.Sprintf(`(?i)\b%s\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`, title)
		a.subs = append(a.subs, substitution{
			re:          regexp.MustCompile(expr),
			piiType:     PIIName,
			replacement: "[" + strings.ToUpper(title) + "]",
		})
	}
	// Street addresses like "123 Main Street" or "456 Oak Ave".
	a.subs = append(a.subs, substitution{
		re:          regexp.MustCompile(`(?i)\b\d+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)\b`),
		piiType:     PIIAddress,
		replacement: "[ADDRESS]",
	})
}

// AnonymizeText replaces all detected PII in the given string.
func (a *Anonymizer) AnonymizeText(text string) string {
	if text == "" {
		return text
	}
	for _, s := range a.subs {
		text = s.re.ReplaceAllString(text, s.replacement)
	}
	return text
}

// AnonymizeContext returns a scrubbed value copy of the context. The input
// is never mutated — callers keep the original for response echoing.
//
// Description and additional info go through the substitution table. The
// location's exact address becomes [ADDRESS] and coordinates are cleared
// unconditionally; city and country are preserved because they are needed
// for useful guidance. The medical profile is already range-normalized by
// construction and is left untouched.
func (a *Anonymizer) AnonymizeContext(ctx *models.EmergencyContext) *models.EmergencyContext {
	out := ctx.Clone()
	out.Description = a.AnonymizeText(ctx.Description)
	if ctx.AdditionalInfo != "" {
		out.AdditionalInfo = a.AnonymizeText(ctx.AdditionalInfo)
	}
	if out.Location != nil {
		if out.Location.Address != "" {
			out.Location.Address = "[ADDRESS]"
		}
		out.Location.Latitude = 0
		out.Location.Longitude = 0
	}
	return out
}

// Detection reports what PII was found in a piece of text, without
// modifying it. Used by the detect CLI command and in tests; the request
// path always anonymizes directly.
type Detection struct {
	HasPII bool            `json:"has_pii"`
	Counts map[PIIType]int `json:"counts"`
}

// Detect counts PII occurrences per category.
func (a *Anonymizer) Detect(text string) Detection {
	d := Detection{Counts: make(map[PIIType]int)}
	if text == "" {
		return d
	}
	for _, s := range a.subs {
		n := len(s.re.FindAllString(text, -1))
		if n > 0 {
			d.Counts[s.piiType] += n
			d.HasPII = true
		}
	}
	return d
}
