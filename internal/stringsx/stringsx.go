package stringsx

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Clip returns at most max runes of s, appending an ellipsis when it cuts.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// PadRight pads s with spaces to width terminal columns. Wide runes count
// as two columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Normalize trims spaces and converts a string to lower case.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// OrDefault returns s trimmed, or def when s is blank.
func OrDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// ContainsFold reports whether needle, already normalized, occurs in s
// ignoring case.
func ContainsFold(s, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), needle)
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
