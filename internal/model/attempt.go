package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one completed test-taking session. TotalQuestions is the
// authoritative count from the test definition at completion time and must be
// preferred over any count of answered or reconstructed rows.
type Attempt struct {
	ID               uuid.UUID `json:"id"`
	TestID           uuid.UUID `json:"test_id"`
	UserID           int       `json:"user_id"`
	Score            float64   `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	TimeTakenSeconds int       `json:"time_taken"`
	CompletedAt      time.Time `json:"completed_at"`
}

// RawAnswers maps an inconsistent identifier (a Question ID, a question
// number, or a QuestionGroup ID depending on category) to a raw answer value.
// Multi-select values are comma-joined key lists.
type RawAnswers map[string]string

// ReviewRecord is a pre-graded hint for one identifier, typically computed at
// submission time. It is a hint, not ground truth: no record is stored for a
// question nobody answered.
type ReviewRecord struct {
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ReviewRecords maps the same inconsistent identifier space as RawAnswers to
// per-identifier grading hints.
type ReviewRecords map[string]ReviewRecord

// AttemptAnswer is one persisted answer row. Identifier preserves whatever
// key scheme the client submitted under; Graded marks rows that carry a
// verdict and therefore surface as ReviewRecords on later reads.
type AttemptAnswer struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	Identifier    string    `json:"identifier"`
	Answer        string    `json:"answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	Graded        bool      `json:"graded"`
}

// SubmitAttemptRequest is the payload for submitting a finished attempt.
type SubmitAttemptRequest struct {
	TestID           uuid.UUID         `json:"test_id" binding:"required"`
	Answers          map[string]string `json:"answers" binding:"required"`
	TimeTakenSeconds int               `json:"time_taken" binding:"min=0"`
}
