// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// MultiNumberSeparator joins several numbers stored in a single phone field.
const MultiNumberSeparator = " / "

// Digits strips every character that is not a decimal digit.
// Empty or absent input yields the empty string. Idempotent.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonical produces the single comparison form used at every call site.
// The number is parsed against the given default region; valid numbers are
// formatted to E.164 so that national and international spellings of the
// same number compare equal. Unparseable input falls back to Digits.
// Idempotent: an E.164 string parses back to itself.
func Canonical(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return Digits(trimmed)
	}

	if !phonenumbers.IsValidNumber(number) {
		return Digits(trimmed)
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizeE164 formats a phone number to E.164 for storage. If the number
// cannot be parsed or is invalid, it returns the trimmed input unchanged.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// SplitMulti splits a phone field that may hold several numbers joined by
// "/" into its segments, dropping empty entries.
func SplitMulti(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parts := strings.Split(input, "/")
	numbers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}

// JoinMulti renders a normalized multi-number field.
func JoinMulti(numbers []string) string {
	return strings.Join(numbers, MultiNumberSeparator)
}
