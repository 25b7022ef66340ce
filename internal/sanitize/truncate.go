package sanitize

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// Width returns the display width of s in terminal columns.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// MiddleTruncate shortens s to at most maxWidth columns by cutting out its
// middle, so both the start of a title and its "(year)" suffix stay
// visible. Wide runes (CJK, emoji) count as two columns.
//
// Below 3 columns there is no room for head, ellipsis and tail, and s is
// cut from the right.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return prefix(s, maxWidth)
	}

	// One column goes to the ellipsis; the head gets the odd column.
	remaining := maxWidth - 1
	return prefix(s, (remaining+1)/2) + ellipsis + suffix(s, remaining/2)
}

// prefix returns the longest prefix of s no wider than maxWidth.
func prefix(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// suffix returns the longest suffix of s no wider than maxWidth.
func suffix(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}

// PadRight pads s with spaces to width columns. Wider strings are returned
// unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
