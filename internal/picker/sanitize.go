package picker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ansiRE matches terminal escape sequences: CSI (colours, cursor moves), OSC
// terminated by ST or BEL, charset designations and other two-byte escapes.
var ansiRE = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[A-Za-z]|\].*?(?:\x1b\\|\x07)|[()][A-B0-2]|[#*+\-./][A-Za-z0-9])`)

const ellipsis = "…"

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// ValidateUTF8 replaces each run of invalid bytes with U+FFFD.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// Clean makes server-supplied text safe to draw on one line: invalid UTF-8 is
// replaced, escapes are removed and control characters become spaces.
func Clean(s string) string {
	s = StripANSI(ValidateUTF8(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// MiddleTruncate shortens s to maxWidth display columns by replacing its
// middle with an ellipsis. Wide runes count as two columns. Below three
// columns it cuts from the right instead.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return prefixWithin(s, maxWidth)
	}

	room := maxWidth - 1
	return prefixWithin(s, (room+1)/2) + ellipsis + suffixWithin(s, room/2)
}

// Truncate shortens s to maxWidth display columns, ending with an ellipsis
// when anything was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return prefixWithin(s, maxWidth-1) + ellipsis
}

// prefixWithin returns the longest prefix of s at most width columns wide.
func prefixWithin(s string, width int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			return s[:i]
		}
		w += rw
	}
	return s
}

// suffixWithin returns the longest suffix of s at most width columns wide.
func suffixWithin(s string, width int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > width {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
