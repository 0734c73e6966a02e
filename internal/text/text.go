package text

// Package text holds the lexical rules of the ARFF grammar: quoting of
// strings and names, and numeric literals.

import (
	"strconv"
	"strings"
)

// Missing is the literal for a missing value.
const Missing = "?"

// quoteTriggers are the characters that force a name or nominal label into
// double quotes.
const quoteTriggers = " \t,'\"{}%\\"

// Quote wraps s in double quotes, backslash-escaping quotes, backslashes and
// line breaks.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// NeedsQuote reports whether s cannot appear bare in a header position. A
// bare "?" would read as the missing value.
func NeedsQuote(s string) bool {
	return s == "" || s == Missing || strings.ContainsAny(s, quoteTriggers)
}

// ValidName reports whether s may be used as a relation or attribute name:
// non-empty and free of control characters.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return false
		}
	}
	return true
}

// Name renders a relation name, attribute name or nominal label, quoting it
// only when needed.
func Name(s string) string {
	if NeedsQuote(s) {
		return Quote(s)
	}
	return s
}

// Int renders a signed integer literal.
func Int(v int64) string { return strconv.FormatInt(v, 10) }

// Uint renders an unsigned integer literal.
func Uint(v uint64) string { return strconv.FormatUint(v, 10) }

// Real renders the shortest decimal that parses back to v at the given bit
// size (32 or 64).
func Real(v float64, bits int) string {
	if bits != 32 {
		bits = 64
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}
