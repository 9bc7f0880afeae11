package review

import (
	"strings"

	"github.com/bandready/ielts-backend/internal/model"
)

// SplitKeys decodes a comma-joined multi-select answer string into an ordered
// key list: parts are trimmed, uppercased, and empties and duplicates
// dropped, so "D, b ,,B" yields ["D","B"].
func SplitKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		k := strings.ToUpper(strings.TrimSpace(p))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// FormatKey renders a single key as "KEY. option text" by looking it up
// case-insensitively against the option list's keys. Unknown keys are
// returned bare.
func FormatKey(key string, opts []model.Option) string {
	k := strings.TrimSpace(key)
	if k == "" {
		return ""
	}
	for i := range opts {
		if ok := opts[i].Key(); ok != "" && strings.EqualFold(ok, k) {
			return strings.ToUpper(k) + ". " + opts[i].OptionText
		}
	}
	return k
}

// RowIsSatisfied reports whether a row's expected key is among the user's
// selected keys, case-insensitively. A multi-select group stores the user's
// one combined answer verbatim against every row, so per-row correctness must
// be re-derived from the row's own expected key rather than from the shared
// string.
func RowIsSatisfied(userKeys []string, expectedKeyForRow string) bool {
	want := strings.TrimSpace(expectedKeyForRow)
	if want == "" {
		return false
	}
	for _, k := range userKeys {
		if strings.EqualFold(k, want) {
			return true
		}
	}
	return false
}
