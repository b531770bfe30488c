package utils

import (
	"strings"

	"golang.org/x/text/width"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// TrimWhitespace removes leading and trailing whitespace, including the
// ideographic space common in Japanese documents.
func (s *StringHelper) TrimWhitespace(str string) string {
	return strings.TrimSpace(strings.Trim(str, "　"))
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// FoldWidth narrows full-width ASCII (digits, latin letters, punctuation) so
// that patterns written against half-width text match PDF extracts.
// Katakana and kanji are left untouched.
func (s *StringHelper) FoldWidth(str string) string {
	return width.Fold.String(str)
}

// TruncateString truncates string to max runes.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}
