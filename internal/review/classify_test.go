package review

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"fill_in_blank", CategoryFillInBlank},
		{"  FILL_IN_BLANK  ", CategoryFillInBlank},
		{"drag_and_drop", CategoryDragAndDrop},
		{"summary_completion", CategoryDragAndDrop},
		{"true_false_not_given", CategoryTrueFalseNotGiven},
		{"yes_no_not_given", CategoryYesNoNotGiven},
		{"multiple_choice", CategoryMultipleChoice},
		{"single choice", CategoryMultipleChoice},
		{"matching_headings", CategoryMatchingHeadings},
		{"heading_match", CategoryMatchingHeadings},
		{"map_labelling", CategoryMap},
		{"something_unknown", CategoryFallback},
		{"", CategoryFallback},
	}

	for _, tc := range tests {
		if got := Classify(tc.raw); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

// The rule order is load-bearing: the specific categories must win over the
// generic substring they contain.
func TestClassifyPrecedence(t *testing.T) {
	if got := Classify("matching_information"); got != CategoryMatchingInformation {
		t.Errorf("matching_information classified as %q", got)
	}
	if got := Classify("table_completion"); got != CategoryTableCompletion {
		t.Errorf("table_completion classified as %q", got)
	}
	if got := Classify("matching"); got != CategoryMatchingHeadings {
		t.Errorf("generic matching classified as %q", got)
	}
	if got := Classify("table"); got != CategoryTable {
		t.Errorf("generic table classified as %q", got)
	}
}
