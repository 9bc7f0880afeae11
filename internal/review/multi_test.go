package review

import (
	"reflect"
	"testing"

	"github.com/bandready/ielts-backend/internal/model"
)

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"D,B", []string{"D", "B"}},
		{"D, b ,,B", []string{"D", "B"}},
		{" a ", []string{"A"}},
		{"", nil},
		{",,,", nil},
	}

	for _, tc := range tests {
		got := SplitKeys(tc.raw)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitKeys(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestFormatKey(t *testing.T) {
	opts := []model.Option{
		{OptionKey: "A", OptionText: "a degree"},
		{Letter: "b", OptionText: "work experience"},
	}

	tests := []struct {
		key  string
		want string
	}{
		{"a", "A. a degree"},
		{"B", "B. work experience"},
		{"Z", "Z"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := FormatKey(tc.key, opts); got != tc.want {
			t.Errorf("FormatKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestRowIsSatisfied(t *testing.T) {
	keys := []string{"D", "B"}

	if !RowIsSatisfied(keys, "b") {
		t.Error("expected case-insensitive membership for b")
	}
	if !RowIsSatisfied(keys, "D") {
		t.Error("expected membership for D")
	}
	if RowIsSatisfied(keys, "A") {
		t.Error("A should not be satisfied")
	}
	if RowIsSatisfied(keys, "") {
		t.Error("empty expected key should never be satisfied")
	}
}
