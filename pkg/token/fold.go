package token

import (
	"regexp"
	"strings"
)

// Keyword matching folds ASCII letters only. Go's (?i) and strings.ToLower
// also fold Unicode (U+017F LATIN SMALL LETTER LONG S matches 's', U+212A
// KELVIN SIGN matches 'k'), which would classify identifiers such as
// "exi\u017fts" as keywords.

// FoldPattern returns regexp source matching s with ASCII letters in either
// case. Every other rune must match exactly.
func FoldPattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			b.WriteByte('[')
			b.WriteRune(r - 'a' + 'A')
			b.WriteRune(r)
			b.WriteByte(']')
		case 'A' <= r && r <= 'Z':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteRune(r - 'A' + 'a')
			b.WriteByte(']')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// UpperASCII maps ASCII letters in s to upper case and leaves every other
// rune unchanged.
func UpperASCII(s string) string {
	return mapASCII(s, 'a', 'z', 'A'-'a')
}

// LowerASCII maps ASCII letters in s to lower case and leaves every other
// rune unchanged.
func LowerASCII(s string) string {
	return mapASCII(s, 'A', 'Z', 'a'-'A')
}

func mapASCII(s string, lo, hi byte, delta int) string {
	i := 0
	for i < len(s) && (s[i] < lo || s[i] > hi) {
		i++
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if lo <= b[i] && b[i] <= hi {
			b[i] = byte(int(b[i]) + delta)
		}
	}
	return string(b)
}
