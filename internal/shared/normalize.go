package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// strippedScripts are removed before matching. Destination search is Latin-oriented,
// so Korean, Japanese and Chinese characters only add noise to the query.
var strippedScripts = []*unicode.RangeTable{
	unicode.Hangul,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Han,
}

// nonWord matches runs of anything but letters, numbers and underscore.
// Combining marks that survive NFC composition count as separators.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize converts raw artist or title text into the form used for matching.
//
// The input is NFC-composed, Hangul/Kana/Han runes are dropped and every run of non-word characters becomes a single space.
// Marks that do not compose into a letter (Devanagari vowel signs, a stray U+0332) are non-word characters.
// Case and surrounding spaces are preserved. The function is total and idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	composed := norm.NFC.String(raw)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsOneOf(strippedScripts, r) {
			return -1
		}
		return r
	}, composed)

	return norm.NFC.String(nonWord.ReplaceAllString(stripped, " "))
}
