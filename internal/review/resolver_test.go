package review

import (
	"testing"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/google/uuid"
)

func TestResolveCorrectAnswerFlaggedOption(t *testing.T) {
	q := &model.Question{ID: uuid.New(), QuestionNumber: 1}
	g := &model.QuestionGroup{
		Type: "multiple_choice",
		Options: []model.Option{
			{OptionKey: "A", OptionText: "London"},
			{OptionKey: "B", OptionText: "Paris", IsCorrect: true},
			{OptionKey: "C", OptionText: "Berlin"},
		},
	}
	q.Options = g.Options

	if got := ResolveCorrectAnswer(q, g); got != "Paris" {
		t.Errorf("got %q, want Paris", got)
	}
}

func TestResolveCorrectAnswerRowScoped(t *testing.T) {
	q1 := &model.Question{ID: uuid.New(), QuestionNumber: 1}
	q2 := &model.Question{ID: uuid.New(), QuestionNumber: 2}
	g := &model.QuestionGroup{
		Type: "map_labelling",
		Options: []model.Option{
			{OptionKey: "A", OptionText: "Harbour", IsCorrect: true, QuestionID: &q1.ID},
			{OptionKey: "B", OptionText: "Lighthouse", IsCorrect: true, QuestionID: &q2.ID},
		},
	}

	if got := ResolveCorrectAnswer(q1, g); got != "Harbour" {
		t.Errorf("q1: got %q, want Harbour", got)
	}
	if got := ResolveCorrectAnswer(q2, g); got != "Lighthouse" {
		t.Errorf("q2: got %q, want Lighthouse", got)
	}
}

func TestResolveCorrectAnswerKeyExpansion(t *testing.T) {
	g := &model.QuestionGroup{
		Type: "matching_headings",
		Options: []model.Option{
			{Letter: "i", OptionText: "The rise of cities"},
			{Letter: "ii", OptionText: "A new kind of farming"},
		},
	}

	tests := []struct {
		name    string
		correct string
		want    string
	}{
		{"literal text passes through", "The rise of cities", "The rise of cities"},
		{"roman key expands case-insensitively", "II", "A new kind of farming"},
		{"unmatched key returned raw", "vii", "vii"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := &model.Question{QuestionNumber: 3, CorrectAnswer: tc.correct}
			if got := ResolveCorrectAnswer(q, g); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCorrectAnswerNoGroup(t *testing.T) {
	q := &model.Question{QuestionNumber: 1, CorrectAnswer: "migration"}
	if got := ResolveCorrectAnswer(q, nil); got != "migration" {
		t.Errorf("got %q, want migration", got)
	}
	if got := ResolveCorrectAnswer(nil, nil); got != "" {
		t.Errorf("nil question: got %q, want empty", got)
	}
}

func TestResolveCorrectAnswerInstructionOptions(t *testing.T) {
	g := &model.QuestionGroup{
		Type:        "matching_headings",
		Instruction: `{"text":"Choose the correct heading","key_type":"roman","options":[{"option_key":"i","option_text":"Early settlers"},{"option_key":"ii","option_text":"Trade routes"}]}`,
	}
	q := &model.Question{QuestionNumber: 5, CorrectAnswer: "ii"}

	if got := ResolveCorrectAnswer(q, g); got != "Trade routes" {
		t.Errorf("got %q, want Trade routes", got)
	}
}

func TestParseInstruction(t *testing.T) {
	p, ok := ParseInstruction(`{"text":"hi","key_type":"numeric"}`)
	if !ok || p.Text != "hi" || p.KeyType != KeyTypeNumeric {
		t.Errorf("valid payload not parsed: %+v ok=%v", p, ok)
	}

	if _, ok := ParseInstruction("Choose NO MORE THAN TWO WORDS"); ok {
		t.Error("plain text parsed as payload")
	}
	if _, ok := ParseInstruction(`{"broken":`); ok {
		t.Error("malformed JSON parsed as payload")
	}
}
