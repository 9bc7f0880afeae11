package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bandready/ielts-backend/internal/config"
	"github.com/bandready/ielts-backend/internal/model"
	"github.com/bandready/ielts-backend/internal/repository"
	"github.com/bandready/ielts-backend/internal/review"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AttemptSource supplies the review engine's inputs from storage. The three
// fetches are independent apart from the attempt itself, which carries the
// test ID.
type AttemptSource interface {
	GetAttempt(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetTest(ctx context.Context, id uuid.UUID) (*model.Test, error)
	GetAttemptAnswers(ctx context.Context, id uuid.UUID) (model.RawAnswers, model.ReviewRecords, error)
}

// ReviewResult is the complete reconciled review for one attempt.
type ReviewResult struct {
	Attempt *model.Attempt `json:"attempt"`
	Rows    []review.Row   `json:"rows"`
	Stats   review.Stats   `json:"stats"`
}

// loadState is the single-flight guard's explicit state machine.
type loadState int

const (
	stateIdle loadState = iota
	stateLoading
	stateReady
)

// ReviewService loads an attempt's inputs and reconciles them, guarded by a
// single-flight lock keyed by attempt identity: a second load for the same
// identity while one is outstanding joins it instead of refetching, and a
// load for a different identity clears previously-ready state first so a
// caller never observes rows from a former attempt. In-flight fetches are not
// cancelled; stale completions are discarded by generation comparison.
type ReviewService struct {
	src    AttemptSource
	rdb    *redis.Client
	engine *review.Engine
	ttl    time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	state   loadState
	current uuid.UUID
	gen     uint64
	ready   *ReviewResult
	loadErr error
	done    chan struct{}
}

// NewReviewService creates a ReviewService. rdb may be nil to disable the
// Redis result cache.
func NewReviewService(src AttemptSource, rdb *redis.Client, engine *review.Engine, ttl time.Duration, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		src:    src,
		rdb:    rdb,
		engine: engine,
		ttl:    ttl,
		log:    log.With().Str("component", "review_service").Logger(),
	}
}

// Load returns the reconciled review for the given attempt identity.
func (s *ReviewService) Load(ctx context.Context, attemptID uuid.UUID) (*ReviewResult, error) {
	s.mu.Lock()

	if s.state == stateReady && s.current == attemptID && s.ready != nil {
		result := s.ready
		s.mu.Unlock()
		return result, nil
	}

	if s.state == stateLoading && s.current == attemptID {
		// Join the outstanding load for this identity.
		done := s.done
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.current != attemptID {
			return nil, errors.New("attempt changed while loading")
		}
		if s.state == stateReady && s.ready != nil {
			return s.ready, nil
		}
		return nil, s.loadErr
	}

	// New identity (or idle): clear any former-attempt state before fetching
	// so nothing downstream can pair old rows with the new identity.
	s.state = stateLoading
	s.current = attemptID
	s.ready = nil
	s.loadErr = nil
	s.gen++
	myGen := s.gen
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	result, err := s.fetchAndReconcile(ctx, attemptID)

	s.mu.Lock()
	if s.gen != myGen {
		// A newer identity superseded this load. The result still answers
		// this caller's request, but must not touch shared state.
		s.mu.Unlock()
		close(done)
		return result, err
	}
	if err != nil {
		s.state = stateIdle
		s.loadErr = err
		s.done = nil
		s.mu.Unlock()
		close(done)
		return nil, err
	}
	s.state = stateReady
	s.ready = result
	s.done = nil
	s.mu.Unlock()
	close(done)
	return result, nil
}

// Invalidate drops the cached review for an attempt, in memory and in Redis.
func (s *ReviewService) Invalidate(ctx context.Context, attemptID uuid.UUID) {
	s.mu.Lock()
	if s.current == attemptID && s.state == stateReady {
		s.state = stateIdle
		s.ready = nil
	}
	s.mu.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, config.CacheKey.ReviewResultKey(attemptID.String())).Err(); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Review cache invalidation failed")
		}
	}
}

func (s *ReviewService) fetchAndReconcile(ctx context.Context, attemptID uuid.UUID) (*ReviewResult, error) {
	if cached := s.readCache(ctx, attemptID); cached != nil {
		return cached, nil
	}

	attempt, err := s.src.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	// Test and answers are independent fetches.
	var (
		wg              sync.WaitGroup
		test            *model.Test
		raw             model.RawAnswers
		records         model.ReviewRecords
		testErr, ansErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		test, testErr = s.src.GetTest(ctx, attempt.TestID)
	}()
	go func() {
		defer wg.Done()
		raw, records, ansErr = s.src.GetAttemptAnswers(ctx, attemptID)
	}()
	wg.Wait()

	// Missing rows degrade to empty inputs: the engine fills what it can and
	// the caller renders an empty review. Real storage failures propagate.
	if testErr != nil {
		if !errors.Is(testErr, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get test: %w", testErr)
		}
		test = nil
	}
	if ansErr != nil {
		if !errors.Is(ansErr, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get answers: %w", ansErr)
		}
		raw, records = nil, nil
	}

	res := s.engine.Reconcile(test, raw, records, attempt)
	result := &ReviewResult{Attempt: attempt, Rows: res.Rows, Stats: res.Stats}
	s.writeCache(ctx, attemptID, result)
	return result, nil
}

func (s *ReviewService) readCache(ctx context.Context, attemptID uuid.UUID) *ReviewResult {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, config.CacheKey.ReviewResultKey(attemptID.String())).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Review cache read failed")
		}
		return nil
	}
	var result ReviewResult
	if err := json.Unmarshal(data, &result); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Review cache entry malformed, ignoring")
		return nil
	}
	return &result
}

func (s *ReviewService) writeCache(ctx context.Context, attemptID uuid.UUID, result *ReviewResult) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ReviewResultKey(attemptID.String()), data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Review cache write failed")
	}
}

// storageSource adapts the repositories to the AttemptSource interface.
type storageSource struct {
	tests    *repository.TestRepository
	attempts *repository.AttemptRepository
}

// NewStorageSource builds an AttemptSource backed by PostgreSQL repositories.
func NewStorageSource(tests *repository.TestRepository, attempts *repository.AttemptRepository) AttemptSource {
	return &storageSource{tests: tests, attempts: attempts}
}

func (s *storageSource) GetAttempt(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return s.attempts.GetByID(ctx, id)
}

func (s *storageSource) GetTest(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *storageSource) GetAttemptAnswers(ctx context.Context, id uuid.UUID) (model.RawAnswers, model.ReviewRecords, error) {
	return s.attempts.GetAnswers(ctx, id)
}
