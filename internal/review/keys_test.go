package review

import "testing"

func TestKeyTypeOf(t *testing.T) {
	tests := []struct {
		key  string
		want KeyType
	}{
		{"1", KeyTypeNumeric},
		{"26", KeyTypeNumeric},
		{"i", KeyTypeRoman},
		{"IV", KeyTypeRoman},
		{"xxvi", KeyTypeRoman},
		{"A", KeyTypeAlphabetical},
		{"B", KeyTypeAlphabetical},
		{"X", KeyTypeRoman}, // roman wins over alphabetical for roman letters
		{"paris", KeyTypeAlphabetical},
		{"", KeyTypeAlphabetical},
	}

	for _, tc := range tests {
		if got := KeyTypeOf(tc.key); got != tc.want {
			t.Errorf("KeyTypeOf(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestRomanRoundTrip(t *testing.T) {
	for n := 1; n <= 26; n++ {
		r := ToRoman(n)
		if r == "" {
			t.Fatalf("ToRoman(%d) returned empty", n)
		}
		if got := FromRoman(r); got != n {
			t.Errorf("FromRoman(ToRoman(%d)) = %d", n, got)
		}
	}
}

func TestAlphabeticalRoundTrip(t *testing.T) {
	for n := 1; n <= 26; n++ {
		letter := ToAlphabetical(n - 1)
		if letter == "" {
			t.Fatalf("ToAlphabetical(%d) returned empty", n-1)
		}
		if got := FromAlphabetical(letter); got != n {
			t.Errorf("FromAlphabetical(ToAlphabetical(%d)) = %d, want %d", n-1, got, n)
		}
	}
}

func TestKeysOutOfRange(t *testing.T) {
	if got := ToRoman(0); got != "" {
		t.Errorf("ToRoman(0) = %q, want empty", got)
	}
	if got := ToRoman(27); got != "" {
		t.Errorf("ToRoman(27) = %q, want empty", got)
	}
	if got := ToAlphabetical(-1); got != "" {
		t.Errorf("ToAlphabetical(-1) = %q, want empty", got)
	}
	if got := ToAlphabetical(26); got != "" {
		t.Errorf("ToAlphabetical(26) = %q, want empty", got)
	}
	if got := FromRoman("MCM"); got != 0 {
		t.Errorf("FromRoman(MCM) = %d, want 0", got)
	}
	if got := FromAlphabetical("AA"); got != 0 {
		t.Errorf("FromAlphabetical(AA) = %d, want 0", got)
	}
}
