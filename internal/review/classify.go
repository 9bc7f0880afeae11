package review

import (
	"strings"
)

// Category is the canonical question-group category. Raw type strings are
// free text; they are classified exactly once at the boundary and all
// downstream logic switches on this enum.
type Category string

const (
	CategoryFillInBlank         Category = "fill_in_blank"
	CategoryDragAndDrop         Category = "drag_and_drop"
	CategoryTrueFalseNotGiven   Category = "true_false_not_given"
	CategoryYesNoNotGiven       Category = "yes_no_not_given"
	CategoryMultipleChoice      Category = "multiple_choice"
	CategoryMatchingInformation Category = "matching_information"
	CategoryMatchingHeadings    Category = "matching_headings"
	CategoryMap                 Category = "map"
	CategoryTableCompletion     Category = "table_completion"
	CategoryTable               Category = "table"
	CategoryFallback            Category = "fallback"
)

// classifyRule tests one normalized type string for category membership.
type classifyRule struct {
	category Category
	match    func(s string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// classifyRules is ordered and precedence-sensitive: matching_information must
// be tested before the generic matching rule, and table_completion before
// table, or those categories are swallowed by the broader patterns.
var classifyRules = []classifyRule{
	{CategoryFillInBlank, containsAny("fill_in_blank")},
	{CategoryDragAndDrop, containsAny("drag", "drop", "summary_completion")},
	{CategoryTrueFalseNotGiven, containsAny("true_false_not_given")},
	{CategoryYesNoNotGiven, containsAny("yes_no_not_given")},
	{CategoryMultipleChoice, containsAny("multiple", "choice")},
	{CategoryMatchingInformation, containsAny("matching_information")},
	{CategoryMatchingHeadings, containsAny("matching", "heading")},
	{CategoryMap, containsAny("map")},
	{CategoryTableCompletion, containsAny("table_completion")},
	{CategoryTable, containsAny("table")},
}

// Classify maps a raw question-group type string to its canonical category.
// Unmatched input resolves to CategoryFallback (rendered as a plain fill-in
// input by clients) rather than failing.
func Classify(raw string) Category {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range classifyRules {
		if rule.match(s) {
			return rule.category
		}
	}
	return CategoryFallback
}

// IsSingleSelect reports whether the category marks its one correct option per
// question with an is_correct flag.
func (c Category) IsSingleSelect() bool {
	switch c {
	case CategoryMultipleChoice, CategoryTable, CategoryMap:
		return true
	}
	return false
}

// IsRowScoped reports whether options are linked to individual question rows
// (by question_id or question_number) rather than shared across the group.
func (c Category) IsRowScoped() bool {
	switch c {
	case CategoryTable, CategoryMap:
		return true
	}
	return false
}

// IsMultiSelect reports whether one stored answer value may encode several
// row-level selections as a comma-joined key list.
func (c Category) IsMultiSelect() bool {
	switch c {
	case CategoryMultipleChoice, CategoryDragAndDrop:
		return true
	}
	return false
}
