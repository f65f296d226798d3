package utils

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Truncate shortens s to maxLen runes and appends "..." when it was cut.
// Used for log previews.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// ClipUTF16 shortens s so the result, including a trailing ellipsis, is at
// most maxUnits UTF-16 code units. Runes are never split.
func ClipUTF16(s string, maxUnits int) string {
	if maxUnits <= 0 {
		return ""
	}

	total := 0
	for _, r := range s {
		total += utf16.RuneLen(r)
	}
	if total <= maxUnits {
		return s
	}

	// "…" is a single code unit.
	budget := maxUnits - 1
	used := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if used+n > budget {
			return s[:i] + "…"
		}
		used += n
	}
	return s
}
