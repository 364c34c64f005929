// Package textutil normalizes user-supplied and model-generated text
// before it reaches prompts, speech synthesis, or storage.
package textutil

import (
	"regexp"
	"strings"
)

// DefaultMaxLen bounds normalized text so downstream prompt and
// synthesis payloads stay small.
const DefaultMaxLen = 1000

var (
	nonPrintablePattern = regexp.MustCompile(`[^\x20-\x7E]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize strips non-printable characters, collapses whitespace runs
// to single spaces, trims, and truncates to DefaultMaxLen. Idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return NormalizeMax(s, DefaultMaxLen)
}

// NormalizeMax is Normalize with an explicit length bound. A non-positive
// max disables truncation.
func NormalizeMax(s string, max int) string {
	s = nonPrintablePattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		s = strings.TrimSpace(s[:max])
	}
	return s
}
