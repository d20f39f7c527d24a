// Package phone canonicalizes the raw phone and WhatsApp text captured from
// business cards. The heuristics only know Egyptian numbering: other locales
// pass through unchanged.
package phone

import (
	"regexp"
	"strings"
)

// CountryCode is the calling code assumed for local numbers.
const CountryCode = "20"

// MinDigits is the shortest digit run treated as a phone number by Split.
const MinDigits = 7

var (
	nonDigitPattern  = regexp.MustCompile(`\D`)
	delimiterPattern = regexp.MustCompile(`[,;|\s]+`)
)

// Normalize converts one raw number into digits-only international form
// suitable for tel: and wa.me links. It never fails: input without digits
// yields "" and unrecognized shapes are returned as bare digits.
func Normalize(raw string) string {
	value := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(value, "+"):
		value = value[1:]
	case strings.HasPrefix(value, "00"):
		value = value[2:]
	}

	digits := Digits(value)
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, CountryCode):
		return digits
	case strings.HasPrefix(digits, "01") && len(digits) == 11:
		return CountryCode + digits[1:]
	case strings.HasPrefix(digits, "1") && len(digits) == 10:
		return CountryCode + digits
	default:
		return digits
	}
}

// Split breaks a channel field that may hold several numbers into trimmed
// candidates in order of appearance. Pieces with fewer than MinDigits digits
// are dropped; duplicates are kept.
func Split(raw string) []string {
	pieces := delimiterPattern.Split(raw, -1)
	candidates := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if len(Digits(piece)) < MinDigits {
			continue
		}
		candidates = append(candidates, piece)
	}
	return candidates
}

// Digits strips every non-digit character.
func Digits(raw string) string {
	return nonDigitPattern.ReplaceAllString(raw, "")
}
