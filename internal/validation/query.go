package validation

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryLength caps a search query, in bytes.
const MaxQueryLength = 256

// SanitizeQuery trims the query, collapses runs of whitespace to a single
// space and truncates it to MaxQueryLength without splitting a rune.
func SanitizeQuery(input string) string {
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > MaxQueryLength {
		cut := MaxQueryLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = strings.TrimSpace(input[:cut])
	}
	return input
}
