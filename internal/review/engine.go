package review

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/rs/zerolog"
)

// Row is one reconciled, display-ready review record. QuestionNumber is kept
// as a string: identifiers that cannot be normalized to a number are retained
// for sorting and display rather than dropped.
type Row struct {
	QuestionNumber string `json:"question_number"`
	YourAnswer     string `json:"yourAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	CorrectAnswer  string `json:"correctAnswer"`
}

// Stats are the aggregate results for one attempt.
type Stats struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectCount   int `json:"correctCount"`
	Percentage     int `json:"percentage"`
}

// Result is the engine's complete output: exactly one row per question in the
// test, sorted ascending by question number, plus aggregates.
type Result struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`
}

// Engine reconciles a test structure, raw answers, and pre-graded review
// records into one canonical review list. It is synchronous and pure: same
// inputs, same output, no shared mutable state beyond the one-time
// malformed-instruction warning.
type Engine struct {
	log zerolog.Logger
	// warnedGroups dedupes the malformed-instruction warning per group so a
	// bad legacy payload logs once, not once per question per call.
	warnedGroups sync.Map
}

// NewEngine creates a reconciliation engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "review_engine").Logger(),
	}
}

// questionRef pairs a question with its owning group and the group's
// classified category. Classification happens once here; nothing downstream
// re-parses the raw type string.
type questionRef struct {
	q   *model.Question
	g   *model.QuestionGroup
	cat Category
}

// testIndex is the single source of truth for which questions exist. All
// three identifier schemes normalize into byNumber's key space.
type testIndex struct {
	byNumber map[string]*questionRef // question_number (as string) → question
	byID     map[string]string       // question ID → question_number
	byGroup  map[string][]string     // group ID → question_numbers in order
	order    []string                // question_numbers in tree order
}

// normalize translates any of the three identifier schemes into canonical
// question numbers. A group-level identifier expands to every question in the
// group. Unresolvable identifiers are retained as themselves, not dropped.
func (ix *testIndex) normalize(key string) []string {
	k := strings.TrimSpace(key)
	if _, ok := ix.byNumber[k]; ok {
		return []string{k}
	}
	if num, ok := ix.byID[k]; ok {
		return []string{num}
	}
	if nums, ok := ix.byGroup[k]; ok {
		return nums
	}
	return []string{k}
}

func (e *Engine) buildIndex(t *model.Test) *testIndex {
	ix := &testIndex{
		byNumber: make(map[string]*questionRef),
		byID:     make(map[string]string),
		byGroup:  make(map[string][]string),
	}
	if t == nil {
		return ix
	}
	for pi := range t.Parts {
		part := &t.Parts[pi]
		for gi := range part.Groups {
			g := &part.Groups[gi]
			e.checkInstruction(g)
			cat := Classify(g.Type)
			var groupNums []string
			for qi := range g.Questions {
				q := &g.Questions[qi]
				num := strconv.Itoa(q.QuestionNumber)
				if _, exists := ix.byNumber[num]; exists {
					// question_number is unique per test; keep the first
					// occurrence if the data violates that.
					continue
				}
				ix.byNumber[num] = &questionRef{q: q, g: g, cat: cat}
				ix.byID[q.ID.String()] = num
				ix.order = append(ix.order, num)
				groupNums = append(groupNums, num)
			}
			ix.byGroup[g.ID.String()] = groupNums
		}
	}
	return ix
}

// checkInstruction emits the once-per-group warning for instruction fields
// that were meant to be JSON payloads but do not parse. The instruction is
// still usable as plain text, so this is diagnostic only.
func (e *Engine) checkInstruction(g *model.QuestionGroup) {
	if !looksLikeInstructionPayload(g.Instruction) {
		return
	}
	if _, ok := ParseInstruction(g.Instruction); ok {
		return
	}
	if _, warned := e.warnedGroups.LoadOrStore(g.ID.String(), struct{}{}); !warned {
		e.log.Warn().
			Str("group_id", g.ID.String()).
			Msg("Legacy instruction payload failed to parse, using as plain text")
	}
}

// Reconcile produces the complete review for one attempt. It never fails:
// nil or sparse inputs degrade to empty rows and zeroed stats.
//
// The pipeline is: build the question index, seed rows from the pre-graded
// review records, seed remaining identifiers from raw answers, fill gaps for
// unanswered questions, sort, aggregate.
func (e *Engine) Reconcile(test *model.Test, raw model.RawAnswers, records model.ReviewRecords, attempt *model.Attempt) Result {
	ix := e.buildIndex(test)
	processed := make(map[string]bool, len(ix.order))
	rows := make([]Row, 0, len(ix.order))

	// Review records first: they carry the backend's grading verdicts.
	for _, key := range sortedKeys(records) {
		rec := records[key]
		for _, num := range ix.normalize(key) {
			if processed[num] {
				continue
			}
			rows = append(rows, e.buildRow(num, ix.byNumber[num], rec.UserAnswer, &rec))
			processed[num] = true
		}
	}

	// Raw answers cover identifiers the backend emitted no record for.
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		for _, num := range ix.normalize(key) {
			if processed[num] {
				continue
			}
			rows = append(rows, e.buildRow(num, ix.byNumber[num], value, nil))
			processed[num] = true
		}
	}

	// Gap fill guarantees exactly one row per question in the test, never
	// fewer and never duplicated, regardless of how sparse the inputs were.
	for _, num := range ix.order {
		if processed[num] {
			continue
		}
		ref := ix.byNumber[num]
		rows = append(rows, Row{
			QuestionNumber: num,
			YourAnswer:     "",
			IsCorrect:      false,
			CorrectAnswer:  ResolveCorrectAnswer(ref.q, ref.g),
		})
		processed[num] = true
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return lessQuestionNumber(rows[i].QuestionNumber, rows[j].QuestionNumber)
	})

	return Result{Rows: rows, Stats: e.aggregate(rows, attempt)}
}

// buildRow reconciles one identifier's answer value into a review row. A nil
// ref means the identifier did not resolve to a known question; the value is
// kept for display with the record's verdict, if any.
func (e *Engine) buildRow(num string, ref *questionRef, value string, rec *model.ReviewRecord) Row {
	if ref == nil {
		row := Row{QuestionNumber: num, YourAnswer: value}
		if rec != nil {
			row.IsCorrect = rec.IsCorrect
			row.CorrectAnswer = rec.CorrectAnswer
		}
		return row
	}

	// Multi-select rows share one comma-joined answer string across the whole
	// group, so the row verdict is re-derived from this row's expected key.
	if ref.cat.IsMultiSelect() && strings.Contains(value, ",") {
		return e.buildMultiSelectRow(num, ref, value)
	}

	row := Row{QuestionNumber: num, YourAnswer: value}
	row.CorrectAnswer = ResolveCorrectAnswer(ref.q, ref.g)
	if rec != nil {
		if rec.CorrectAnswer != "" {
			row.CorrectAnswer = rec.CorrectAnswer
		}
		row.IsCorrect = rec.IsCorrect
	} else {
		row.IsCorrect = answerMatches(value, row.CorrectAnswer, ref.q.CorrectAnswer)
	}
	return row
}

func (e *Engine) buildMultiSelectRow(num string, ref *questionRef, value string) Row {
	userKeys := SplitKeys(value)
	expected := strings.TrimSpace(ref.q.CorrectAnswer)
	opts := GroupOptions(ref.g)

	row := Row{QuestionNumber: num}
	if expected == "" {
		row.YourAnswer = value
		return row
	}

	row.CorrectAnswer = FormatKey(expected, opts)
	if RowIsSatisfied(userKeys, expected) {
		row.YourAnswer = FormatKey(expected, opts)
		row.IsCorrect = true
	}
	return row
}

// answerMatches grades a raw answer locally when no backend verdict exists:
// case-insensitive, trimmed comparison against the resolved display text and
// against the raw stored key.
func answerMatches(value, resolved, rawKey string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	if resolved != "" && strings.EqualFold(v, strings.TrimSpace(resolved)) {
		return true
	}
	if rawKey != "" && strings.EqualFold(v, strings.TrimSpace(rawKey)) {
		return true
	}
	return false
}

func (e *Engine) aggregate(rows []Row, attempt *model.Attempt) Stats {
	stats := Stats{TotalQuestions: len(rows)}
	// The attempt's stored count reflects the exam definition at completion
	// time and wins over however many rows could be reconstructed.
	if attempt != nil && attempt.TotalQuestions > 0 {
		stats.TotalQuestions = attempt.TotalQuestions
	}
	for i := range rows {
		if rows[i].IsCorrect {
			stats.CorrectCount++
		}
	}
	if stats.TotalQuestions > 0 {
		stats.Percentage = int(math.Round(float64(stats.CorrectCount) / float64(stats.TotalQuestions) * 100))
	}
	return stats
}

// lessQuestionNumber orders numerically when both sides parse as numbers,
// lexicographically otherwise. Deterministic for mixed inputs.
func lessQuestionNumber(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		if ai != bi {
			return ai < bi
		}
		return false
	}
	return a < b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
