// Package redact scrubs credentials from text that is about to be logged or
// shown, such as server error bodies.
package redact

import (
	"regexp"
	"strings"
)

// Pattern is a compiled secret matcher and its replacement.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

var defaultPatterns = []Pattern{
	{
		Name:        "Bearer Token (JWT)",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		Replacement: "Bearer [TOKEN_REDACTED]",
	},
	{
		Name:        "Bearer Token (Generic)",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_~+/=-]{16,}`),
		Replacement: "Bearer [TOKEN_REDACTED]",
	},
	{
		Name:        "Basic Auth",
		Regex:       regexp.MustCompile(`(?i)basic\s+[A-Za-z0-9+/=]{16,}`),
		Replacement: "Basic [CREDENTIALS_REDACTED]",
	},
	{
		Name:        "JWT Token",
		Regex:       regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		Replacement: "[JWT_REDACTED]",
	},
	{
		Name:        "JSON Secret Field",
		Regex:       regexp.MustCompile(`(?i)("(?:access_token|refresh_token|api_key|apikey|token|password|secret)"\s*:\s*)"[^"]*"`),
		Replacement: `$1"[REDACTED]"`,
	},
	{
		Name:        "Generic Secret",
		Regex:       regexp.MustCompile(`(?i)\b(access_token|api_key|password|token|secret)\s*[=:]\s*[^\s&"]+`),
		Replacement: "$1=[REDACTED]",
	},
}

// DefaultPatterns returns a copy of the built-in patterns.
func DefaultPatterns() []Pattern {
	out := make([]Pattern, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// minLiteral is the shortest literal secret worth replacing verbatim.
// Anything shorter would shred ordinary words.
const minLiteral = 6

// Redactor replaces known secrets and anything that looks like a credential.
type Redactor struct {
	patterns []Pattern
	literals []string
}

// New returns a Redactor using the default patterns plus the given literal
// secrets, typically the configured API token.
func New(literals ...string) *Redactor {
	r := &Redactor{patterns: defaultPatterns}
	for _, l := range literals {
		if len(l) >= minLiteral {
			r.literals = append(r.literals, l)
		}
	}
	return r
}

// Redact returns s with secrets replaced by placeholders.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	for _, l := range r.literals {
		s = strings.ReplaceAll(s, l, "[REDACTED]")
	}
	for _, p := range r.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

var defaultRedactor = New()

// Redact scrubs s with the default patterns only.
func Redact(s string) string {
	return defaultRedactor.Redact(s)
}
