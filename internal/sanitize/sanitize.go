package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxMessageLength is measured in Unicode codepoints, not bytes.
const MaxMessageLength = 500

// ValidationError rejects input before it causes any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Prompt-injection signatures. Substring matching only; this is a best-effort
// heuristic, not a guarantee.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?prior`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)reveal\s+(your\s+)?instructions`),
}

// Sanitizer cleans and validates raw user messages before they reach the
// model.
type Sanitizer struct {
	maxLength int
}

func New() *Sanitizer {
	return &Sanitizer{maxLength: MaxMessageLength}
}

// Sanitize strips ASCII control characters, truncates to the maximum length,
// and rejects messages matching a known injection signature. Rejection is a
// hard failure, never a silent strip.
func (s *Sanitizer) Sanitize(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, raw)

	runes := []rune(cleaned)
	if len(runes) > s.maxLength {
		cleaned = string(runes[:s.maxLength])
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", &ValidationError{Reason: "empty message"}
	}

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(cleaned) {
			return "", &ValidationError{Reason: "message rejected"}
		}
	}

	return cleaned, nil
}
