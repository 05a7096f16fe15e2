package wheelcipher

import (
	"strings"
	"unicode"
)

// InqAlias is the textual spelling of the v4 token used in hand-written messages.
const InqAlias = "(INQ)"

// NormalizeKey prepares a raw key for slicing: "(INQ)" becomes "v4", whitespace
// is removed and letters are lowercased. Normalizing twice gives the same result.
func NormalizeKey(key string) string {
	return NormalizeMessage(key)
}

// NormalizeMessage prepares a code message for decoding, using the same rules
// as NormalizeKey.
func NormalizeMessage(message string) string {
	message = strings.ReplaceAll(message, InqAlias, "v4")
	return normalizeText(message)
}

// normalizeText strips whitespace and lowercases. Plaintext goes through this
// path only: "(INQ)" is prose there, not a code.
func normalizeText(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strings.ToLower(text)
}
