package review

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fixtureTest builds the three-question scenario: #1 multiple choice with
// correct option "Paris", #2 a fill-in blank, #3+#4 a multi-select pair with
// expected keys A and C sharing one combined answer.
func fixtureTest() *model.Test {
	mcGroup := model.QuestionGroup{
		ID:   uuid.New(),
		Type: "multiple_choice",
		Options: []model.Option{
			{OptionKey: "A", OptionText: "London"},
			{OptionKey: "B", OptionText: "Paris", IsCorrect: true},
		},
		Questions: []model.Question{
			{ID: uuid.New(), QuestionNumber: 1, CorrectAnswer: "B"},
		},
	}
	blankGroup := model.QuestionGroup{
		ID:   uuid.New(),
		Type: "fill_in_blank",
		Questions: []model.Question{
			{ID: uuid.New(), QuestionNumber: 2, CorrectAnswer: "harvest"},
		},
	}
	multiGroup := model.QuestionGroup{
		ID:   uuid.New(),
		Type: "multiple_choice_multiple_answers",
		Options: []model.Option{
			{OptionKey: "A", OptionText: "a degree"},
			{OptionKey: "B", OptionText: "a driving licence"},
			{OptionKey: "C", OptionText: "work experience"},
		},
		Questions: []model.Question{
			{ID: uuid.New(), QuestionNumber: 3, CorrectAnswer: "A"},
			{ID: uuid.New(), QuestionNumber: 4, CorrectAnswer: "C"},
		},
	}

	return &model.Test{
		ID:    uuid.New(),
		Title: "Fixture Test",
		Parts: []model.Part{
			{ID: uuid.New(), PartNumber: 1, Groups: []model.QuestionGroup{mcGroup, blankGroup, multiGroup}},
		},
	}
}

func newTestEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

func TestReconcileCompleteness(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	// However sparse the inputs, one row per question.
	inputs := []struct {
		name    string
		raw     model.RawAnswers
		records model.ReviewRecords
	}{
		{"no answers at all", nil, nil},
		{"one raw answer", model.RawAnswers{"1": "Paris"}, nil},
		{"records only", nil, model.ReviewRecords{"2": {UserAnswer: "harvest", IsCorrect: true}}},
	}

	for _, tc := range inputs {
		t.Run(tc.name, func(t *testing.T) {
			res := e.Reconcile(test, tc.raw, tc.records, nil)
			if len(res.Rows) != 4 {
				t.Fatalf("got %d rows, want 4", len(res.Rows))
			}
			seen := make(map[string]bool)
			prev := ""
			for i, row := range res.Rows {
				if seen[row.QuestionNumber] {
					t.Errorf("duplicate question_number %q", row.QuestionNumber)
				}
				seen[row.QuestionNumber] = true
				if i > 0 && !lessQuestionNumber(prev, row.QuestionNumber) {
					t.Errorf("rows not strictly ascending: %q before %q", prev, row.QuestionNumber)
				}
				prev = row.QuestionNumber
			}
		})
	}
}

func TestReconcileScenario(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	raw := model.RawAnswers{
		"1": "Paris",
		"3": "A,C",
		"4": "A,C",
	}

	res := e.Reconcile(test, raw, nil, nil)
	if len(res.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(res.Rows))
	}

	r1, r2, r3, r4 := res.Rows[0], res.Rows[1], res.Rows[2], res.Rows[3]

	if !r1.IsCorrect {
		t.Errorf("row 1 should be correct, got %+v", r1)
	}
	if r2.YourAnswer != "" || r2.IsCorrect {
		t.Errorf("row 2 should be unanswered and incorrect, got %+v", r2)
	}
	if r2.CorrectAnswer != "harvest" {
		t.Errorf("row 2 correct answer = %q, want harvest", r2.CorrectAnswer)
	}
	if !r3.IsCorrect || r3.YourAnswer != "A. a degree" {
		t.Errorf("row 3 = %+v, want correct with formatted key A", r3)
	}
	if !r4.IsCorrect || r4.YourAnswer != "C. work experience" {
		t.Errorf("row 4 = %+v, want correct with formatted key C", r4)
	}
	if r3.CorrectAnswer != "A. a degree" || r4.CorrectAnswer != "C. work experience" {
		t.Errorf("multi-select correct answers not formatted: %+v / %+v", r3, r4)
	}

	if res.Stats.CorrectCount != 3 {
		t.Errorf("correct count = %d, want 3", res.Stats.CorrectCount)
	}
	if res.Stats.TotalQuestions != 4 {
		t.Errorf("total = %d, want 4", res.Stats.TotalQuestions)
	}
	if res.Stats.Percentage != 75 {
		t.Errorf("percentage = %d, want 75", res.Stats.Percentage)
	}
}

func TestReconcileMultiSelectPartial(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	// User picked A and B; only row 3 (expecting A) is satisfied.
	raw := model.RawAnswers{"3": "A,B", "4": "A,B"}
	res := e.Reconcile(test, raw, nil, nil)

	r3, r4 := res.Rows[2], res.Rows[3]
	if !r3.IsCorrect {
		t.Errorf("row 3 should be satisfied by A, got %+v", r3)
	}
	if r4.IsCorrect {
		t.Errorf("row 4 should not be satisfied, got %+v", r4)
	}
	if r4.YourAnswer != "" {
		t.Errorf("unsatisfied multi-select row should show empty answer, got %q", r4.YourAnswer)
	}
	if r4.CorrectAnswer != "C. work experience" {
		t.Errorf("row 4 correct answer = %q", r4.CorrectAnswer)
	}
}

func TestReconcileGroupKeyedAnswer(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	// The multi-select answer stored once under the group's own identifier.
	groupID := test.Parts[0].Groups[2].ID.String()
	raw := model.RawAnswers{groupID: "A,C"}

	res := e.Reconcile(test, raw, nil, nil)
	if len(res.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(res.Rows))
	}
	if !res.Rows[2].IsCorrect || !res.Rows[3].IsCorrect {
		t.Errorf("group-keyed answer should grade both rows: %+v / %+v", res.Rows[2], res.Rows[3])
	}
}

func TestReconcileQuestionIDKeyedRecord(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	qID := test.Parts[0].Groups[0].Questions[0].ID.String()
	records := model.ReviewRecords{
		qID: {UserAnswer: "Paris", CorrectAnswer: "Paris", IsCorrect: true},
	}

	res := e.Reconcile(test, nil, records, nil)
	if res.Rows[0].QuestionNumber != "1" {
		t.Fatalf("record keyed by question ID not normalized: %+v", res.Rows[0])
	}
	if !res.Rows[0].IsCorrect || res.Rows[0].YourAnswer != "Paris" {
		t.Errorf("row 1 = %+v", res.Rows[0])
	}
}

func TestReconcileRecordWinsOverRaw(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	raw := model.RawAnswers{"2": "harvests"}
	records := model.ReviewRecords{"2": {UserAnswer: "harvests", CorrectAnswer: "harvest", IsCorrect: false}}

	res := e.Reconcile(test, raw, records, nil)
	if res.Rows[1].IsCorrect {
		t.Errorf("backend verdict should win: %+v", res.Rows[1])
	}
	if res.Rows[1].CorrectAnswer != "harvest" {
		t.Errorf("record correct answer should win: %+v", res.Rows[1])
	}
}

func TestReconcileUnknownIdentifierRetained(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	raw := model.RawAnswers{"99": "stray"}
	res := e.Reconcile(test, raw, nil, nil)

	if len(res.Rows) != 5 {
		t.Fatalf("got %d rows, want 5 (4 questions + 1 stray)", len(res.Rows))
	}
	last := res.Rows[len(res.Rows)-1]
	if last.QuestionNumber != "99" || last.YourAnswer != "stray" {
		t.Errorf("stray identifier not retained: %+v", last)
	}
}

func TestReconcileTotalQuestionsAuthoritative(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()

	attempt := &model.Attempt{TotalQuestions: 10, TestID: test.ID}
	raw := model.RawAnswers{"1": "Paris"}

	res := e.Reconcile(test, raw, nil, attempt)
	if res.Stats.TotalQuestions != 10 {
		t.Errorf("total = %d, want attempt's 10", res.Stats.TotalQuestions)
	}
	if res.Stats.Percentage != 10 {
		t.Errorf("percentage = %d, want 10", res.Stats.Percentage)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	e := newTestEngine()

	res := e.Reconcile(nil, nil, nil, nil)
	if len(res.Rows) != 0 {
		t.Errorf("nil test should yield no rows, got %d", len(res.Rows))
	}
	if res.Stats.Percentage != 0 || res.Stats.TotalQuestions != 0 {
		t.Errorf("zero questions must not divide: %+v", res.Stats)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	e := newTestEngine()
	test := fixtureTest()
	raw := model.RawAnswers{"1": "Paris", "3": "A,C", "4": "C,A"}
	records := model.ReviewRecords{"2": {UserAnswer: "harvest", CorrectAnswer: "harvest", IsCorrect: true}}
	attempt := &model.Attempt{TotalQuestions: 4}

	first := e.Reconcile(test, raw, records, attempt)
	second := e.Reconcile(test, raw, records, attempt)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different outputs")
	}

	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Error("serialized outputs differ")
	}
}
