// Package sanitize makes catalog text safe and compact for terminal display.
//
// Titles come from scraped exports and may carry escape sequences, stray
// control bytes, or broken UTF-8. Nothing here is used on data that feeds
// distance computation; it only shapes what reaches the screen.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ansiRE matches ANSI escape sequences:
//   - CSI sequences: ESC [ ... final byte (SGR colors, cursor movement)
//   - OSC sequences: ESC ] ... terminated by ST or BEL (titles, hyperlinks)
//   - charset designations: ESC ( B and friends
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()][A-B0-2]` +
	`)`)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// ValidUTF8 replaces invalid byte sequences with U+FFFD.
func ValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// Title returns s ready for single-line display: valid UTF-8, no escape
// sequences, control characters (tabs and newlines included) folded to a
// single space, and surrounding space trimmed.
func Title(s string) string {
	s = StripANSI(ValidUTF8(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
