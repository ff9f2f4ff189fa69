package record

import (
	"strings"
	"unicode"
)

// Sanitize drops every rune that is not an ASCII letter, an ASCII digit,
// whitespace or '.'. Whitespace is kept exactly as it was.
func Sanitize(line string) string {
	if line == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.':
		return true
	default:
		return unicode.IsSpace(r)
	}
}

// Tokenize splits s on runs of whitespace. The result never contains empty
// tokens.
func Tokenize(s string) []string {
	return strings.Fields(s)
}
