package repository

import (
	"context"
	"fmt"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles attempt and answer data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts an attempt with its answer rows in one transaction.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt, answers []model.AttemptAnswer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO attempts (test_id, user_id, score, total_questions, correct_answers, time_taken_seconds, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.TestID, a.UserID, a.Score, a.TotalQuestions, a.CorrectAnswers, a.TimeTakenSeconds, a.CompletedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	for i := range answers {
		answers[i].AttemptID = a.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO attempt_answers (attempt_id, identifier, answer, correct_answer, is_correct, graded)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, answers[i].Identifier, answers[i].Answer, answers[i].CorrectAnswer, answers[i].IsCorrect, answers[i].Graded,
		)
		if err != nil {
			return fmt.Errorf("insert answer %s: %w", answers[i].Identifier, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a single attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	var a model.Attempt
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, score, total_questions, correct_answers, time_taken_seconds, completed_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.TestID, &a.UserID, &a.Score, &a.TotalQuestions, &a.CorrectAnswers, &a.TimeTakenSeconds, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByUser retrieves a user's attempts, most recent first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, score, total_questions, correct_answers, time_taken_seconds, completed_at
		 FROM attempts WHERE user_id = $1
		 ORDER BY completed_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.Score, &a.TotalQuestions, &a.CorrectAnswers, &a.TimeTakenSeconds, &a.CompletedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetAnswers retrieves an attempt's stored answers split into the raw answer
// map and the pre-graded review records. Both maps keep whatever identifier
// scheme the answers were submitted under; the review engine normalizes them.
func (r *AttemptRepository) GetAnswers(ctx context.Context, attemptID uuid.UUID) (model.RawAnswers, model.ReviewRecords, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT identifier, answer, COALESCE(correct_answer, ''), is_correct, graded
		 FROM attempt_answers WHERE attempt_id = $1`, attemptID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	raw := make(model.RawAnswers)
	records := make(model.ReviewRecords)
	for rows.Next() {
		var ans model.AttemptAnswer
		if err := rows.Scan(&ans.Identifier, &ans.Answer, &ans.CorrectAnswer, &ans.IsCorrect, &ans.Graded); err != nil {
			return nil, nil, err
		}
		if ans.Graded {
			records[ans.Identifier] = model.ReviewRecord{
				UserAnswer:    ans.Answer,
				CorrectAnswer: ans.CorrectAnswer,
				IsCorrect:     ans.IsCorrect,
			}
		} else {
			raw[ans.Identifier] = ans.Answer
		}
	}
	return raw, records, rows.Err()
}
