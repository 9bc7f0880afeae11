package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the possible states of a practice test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
	TestStatusArchived  TestStatus = "ARCHIVED"
)

// TestModule identifies which IELTS module a test belongs to.
type TestModule string

const (
	TestModuleListening TestModule = "LISTENING"
	TestModuleReading   TestModule = "READING"
)

// Test is a full practice test: Parts → QuestionGroups → Questions/Options.
type Test struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Module    TestModule `json:"module"`
	Status    TestStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Parts     []Part     `json:"parts,omitempty"`
}

// Part is one section of a test (a listening section or reading passage).
type Part struct {
	ID         uuid.UUID       `json:"id"`
	TestID     uuid.UUID       `json:"test_id"`
	PartNumber int             `json:"part_number"`
	Title      string          `json:"title"`
	Passage    string          `json:"passage,omitempty"`
	AudioURL   string          `json:"audio_url,omitempty"`
	Groups     []QuestionGroup `json:"groups,omitempty"`
}

// QuestionGroup is a shared-context cluster of questions. Type is the raw
// free-text question-type string as stored; it is classified once at the
// boundary into a review.Category. Instruction is free text, but legacy data
// sometimes carries a JSON payload with an option list and key-taxonomy hint.
type QuestionGroup struct {
	ID          uuid.UUID  `json:"id"`
	PartID      uuid.UUID  `json:"part_id"`
	Type        string     `json:"type"`
	Instruction string     `json:"instruction,omitempty"`
	Options     []Option   `json:"options,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// Question is a single gradable item. QuestionNumber is unique within a Test
// and is the only cross-structure join key; all reconciliation normalizes
// identifiers to it. CorrectAnswer is the raw encoded value: literal text, a
// single letter/number/roman key, or empty.
type Question struct {
	ID             uuid.UUID `json:"id"`
	GroupID        uuid.UUID `json:"group_id"`
	QuestionNumber int       `json:"question_number"`
	QuestionText   string    `json:"question_text"`
	CorrectAnswer  string    `json:"correct_answer,omitempty"`
	Options        []Option  `json:"options,omitempty"`
}

// Option is one selectable/matchable choice, scoped to a group or to a single
// question row. OptionKey and Letter are the two historical names for the
// taxonomy-tagged short key; either may be populated. QuestionID/QuestionNumber
// are set when the option represents a specific row in grid-style categories.
type Option struct {
	ID             uuid.UUID  `json:"id"`
	OptionKey      string     `json:"option_key,omitempty"`
	Letter         string     `json:"letter,omitempty"`
	OptionText     string     `json:"option_text"`
	IsCorrect      bool       `json:"is_correct,omitempty"`
	QuestionID     *uuid.UUID `json:"question_id,omitempty"`
	QuestionNumber *int       `json:"question_number,omitempty"`
}

// Key returns the option's short key, preferring option_key over letter.
func (o *Option) Key() string {
	if o.OptionKey != "" {
		return o.OptionKey
	}
	return o.Letter
}

// TestSummary is a test as displayed in listings, without the question tree.
type TestSummary struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Module        TestModule `json:"module"`
	Status        TestStatus `json:"status"`
	QuestionCount int        `json:"question_count"`
	CreatedAt     time.Time  `json:"created_at"`
}
