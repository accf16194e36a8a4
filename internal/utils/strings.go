package utils

import (
	"strings"
	"unicode/utf8"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// Truncate bounds free-text fields (notes, cancellation reasons) before
// they reach storage. max counts bytes; the cut never splits a rune, so
// the result stays valid UTF-8 for the utf8mb4 columns.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
