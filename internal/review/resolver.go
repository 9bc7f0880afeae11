package review

import (
	"strings"

	"github.com/bandready/ielts-backend/internal/model"
)

// ResolveCorrectAnswer derives the human-readable correct answer text for a
// question, trying multiple source representations in priority order:
//
//  1. For single-select categories, the option flagged is_correct (restricted
//     to this question's row when the category is row-scoped).
//  2. The question's raw correct_answer: returned as-is when it already equals
//     an option's text, expanded to the option text when it matches an option
//     key case-insensitively, otherwise returned raw. A key-shaped string
//     reaching display usually indicates a data-quality problem upstream,
//     not a resolver bug.
//  3. Empty string when nothing is determinable.
//
// It never fails: missing groups, empty option lists, and malformed data all
// degrade to the next step or to "".
func ResolveCorrectAnswer(q *model.Question, g *model.QuestionGroup) string {
	if q == nil {
		return ""
	}

	var cat Category = CategoryFallback
	if g != nil {
		cat = Classify(g.Type)
	}
	groupOpts := GroupOptions(g)

	if cat.IsSingleSelect() {
		if text, ok := flaggedOptionText(q, groupOpts, cat); ok {
			return text
		}
	}

	candidate := strings.TrimSpace(q.CorrectAnswer)
	if candidate == "" {
		return ""
	}

	// Candidate may be a literal value already. Case-sensitive: "A" the
	// option text and "A" the key are different things.
	for i := range q.Options {
		if q.Options[i].OptionText == candidate {
			return candidate
		}
	}
	for i := range groupOpts {
		if groupOpts[i].OptionText == candidate {
			return candidate
		}
	}

	// Otherwise treat it as a key and expand to the option text.
	if text, ok := lookupByKey(candidate, q.Options); ok {
		return text
	}
	if text, ok := lookupByKey(candidate, groupOpts); ok {
		return text
	}

	// No option list or no match: return the raw candidate unchanged so the
	// caller still has something to display.
	return candidate
}

// flaggedOptionText scans for the is_correct option, preferring the
// question-scoped list over the group's. Row-scoped categories only accept
// options linked to this question by ID or number.
func flaggedOptionText(q *model.Question, groupOpts []model.Option, cat Category) (string, bool) {
	pool := q.Options
	if len(pool) == 0 {
		pool = groupOpts
	}
	for i := range pool {
		o := &pool[i]
		if !o.IsCorrect {
			continue
		}
		if cat.IsRowScoped() && !optionBelongsTo(o, q) {
			continue
		}
		return o.OptionText, true
	}
	return "", false
}

func optionBelongsTo(o *model.Option, q *model.Question) bool {
	if o.QuestionID != nil && *o.QuestionID == q.ID {
		return true
	}
	if o.QuestionNumber != nil && *o.QuestionNumber == q.QuestionNumber {
		return true
	}
	return false
}

func lookupByKey(candidate string, opts []model.Option) (string, bool) {
	for i := range opts {
		if key := opts[i].Key(); key != "" && strings.EqualFold(key, candidate) {
			return opts[i].OptionText, true
		}
	}
	return "", false
}
