package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/bandready/ielts-backend/internal/repository"
	"github.com/bandready/ielts-backend/internal/review"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrTestNotPublished = errors.New("test is not published")
	ErrNoQuestions      = errors.New("test has no questions")
)

// AttemptService grades and persists submitted attempts.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	testRepo    *repository.TestRepository
	engine      *review.Engine
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	testRepo *repository.TestRepository,
	engine *review.Engine,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		testRepo:    testRepo,
		engine:      engine,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// Submit grades a finished attempt against the test's answer key and persists
// the attempt with both the verbatim submitted answers and the per-question
// verdicts. The verdicts become the ReviewRecords hint source on later reads.
func (s *AttemptService) Submit(ctx context.Context, userID int, req *model.SubmitAttemptRequest) (*model.Attempt, *review.Result, error) {
	test, err := s.testRepo.GetByID(ctx, req.TestID)
	if err != nil {
		return nil, nil, fmt.Errorf("get test: %w", err)
	}
	if test.Status != model.TestStatusPublished {
		return nil, nil, ErrTestNotPublished
	}

	res := s.engine.Reconcile(test, model.RawAnswers(req.Answers), nil, nil)
	if len(res.Rows) == 0 {
		return nil, nil, ErrNoQuestions
	}

	attempt := &model.Attempt{
		TestID:           req.TestID,
		UserID:           userID,
		Score:            bandScore(test.Module, res.Stats.CorrectCount, res.Stats.TotalQuestions),
		TotalQuestions:   res.Stats.TotalQuestions,
		CorrectAnswers:   res.Stats.CorrectCount,
		TimeTakenSeconds: req.TimeTakenSeconds,
		CompletedAt:      time.Now(),
	}

	answers := make([]model.AttemptAnswer, 0, len(req.Answers)+len(res.Rows))
	for identifier, value := range req.Answers {
		answers = append(answers, model.AttemptAnswer{
			Identifier: identifier,
			Answer:     value,
		})
	}
	for _, row := range res.Rows {
		answers = append(answers, model.AttemptAnswer{
			Identifier:    row.QuestionNumber,
			Answer:        row.YourAnswer,
			CorrectAnswer: row.CorrectAnswer,
			IsCorrect:     row.IsCorrect,
			Graded:        true,
		})
	}

	if err := s.attemptRepo.Create(ctx, attempt, answers); err != nil {
		return nil, nil, fmt.Errorf("persist attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("test_id", req.TestID.String()).
		Int("correct", res.Stats.CorrectCount).
		Float64("band", attempt.Score).
		Msg("Attempt submitted")

	return attempt, &res, nil
}

// ListByUser retrieves a user's attempts.
func (s *AttemptService) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

// bandThreshold maps a minimum raw score (out of 40) to an IELTS band.
type bandThreshold struct {
	minCorrect int
	band       float64
}

var listeningBands = []bandThreshold{
	{39, 9}, {37, 8.5}, {35, 8}, {32, 7.5}, {30, 7}, {26, 6.5}, {23, 6},
	{18, 5.5}, {16, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
}

var readingBands = []bandThreshold{
	{39, 9}, {37, 8.5}, {35, 8}, {33, 7.5}, {30, 7}, {27, 6.5}, {23, 6},
	{19, 5.5}, {15, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
}

// bandScore converts a raw correct count to an IELTS band using the standard
// 40-question conversion tables. Shorter practice tests are scaled to the
// 40-question domain first.
func bandScore(module model.TestModule, correct, total int) float64 {
	if total <= 0 || correct <= 0 {
		return 0
	}
	scaled := correct
	if total != 40 {
		scaled = int(math.Round(float64(correct) * 40 / float64(total)))
	}

	table := readingBands
	if module == model.TestModuleListening {
		table = listeningBands
	}
	for _, t := range table {
		if scaled >= t.minCorrect {
			return t.band
		}
	}
	return 2
}
