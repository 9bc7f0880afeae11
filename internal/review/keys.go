package review

import (
	"strings"
)

// KeyType identifies which labelling taxonomy an option key belongs to.
type KeyType string

const (
	KeyTypeNumeric      KeyType = "numeric"
	KeyTypeRoman        KeyType = "roman"
	KeyTypeAlphabetical KeyType = "alphabetical"
)

// romanNumerals is the fixed table for the bounded 1..26 domain. Option lists
// never exceed 26 entries, so no general roman-numeral arithmetic is needed.
var romanNumerals = [...]string{
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X",
	"XI", "XII", "XIII", "XIV", "XV", "XVI", "XVII", "XVIII", "XIX", "XX",
	"XXI", "XXII", "XXIII", "XXIV", "XXV", "XXVI",
}

var romanIndex = buildRomanIndex()

func buildRomanIndex() map[string]int {
	m := make(map[string]int, len(romanNumerals))
	for i, r := range romanNumerals {
		m[r] = i + 1
	}
	return m
}

// KeyTypeOf infers the taxonomy of a key string: numeric if all digits, roman
// if composed only of roman-numeral letters (case-insensitive), alphabetical
// otherwise. Roman wins over alphabetical for single letters like "I" or "X";
// callers that disagree carry an explicit taxonomy hint instead.
func KeyTypeOf(key string) KeyType {
	k := strings.TrimSpace(key)
	if k == "" {
		return KeyTypeAlphabetical
	}
	if isAllDigits(k) {
		return KeyTypeNumeric
	}
	if isRomanLetters(k) {
		return KeyTypeRoman
	}
	return KeyTypeAlphabetical
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isRomanLetters(s string) bool {
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'I', 'V', 'X', 'L', 'C':
		default:
			return false
		}
	}
	return true
}

// ToRoman converts n in 1..26 to its roman numeral. Out-of-range input
// returns "" rather than panicking.
func ToRoman(n int) string {
	if n < 1 || n > len(romanNumerals) {
		return ""
	}
	return romanNumerals[n-1]
}

// FromRoman is the inverse table lookup. Unknown input returns 0.
func FromRoman(s string) int {
	return romanIndex[strings.ToUpper(strings.TrimSpace(s))]
}

// ToAlphabetical converts a 0-based index to its letter label: 0 → "A",
// 25 → "Z". Out-of-range input returns "".
func ToAlphabetical(index int) string {
	if index < 0 || index > 25 {
		return ""
	}
	return string(rune('A' + index))
}

// FromAlphabetical returns the 1-based position of a letter label: "A" → 1.
// Unknown input returns 0.
func FromAlphabetical(s string) int {
	k := strings.ToUpper(strings.TrimSpace(s))
	if len(k) != 1 || k[0] < 'A' || k[0] > 'Z' {
		return 0
	}
	return int(k[0]-'A') + 1
}
