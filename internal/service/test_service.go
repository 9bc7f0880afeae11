package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bandready/ielts-backend/internal/config"
	"github.com/bandready/ielts-backend/internal/model"
	"github.com/bandready/ielts-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TestService handles practice-test business logic and Redis payload caching.
type TestService struct {
	testRepo *repository.TestRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(testRepo *repository.TestRepository, rdb *redis.Client, log zerolog.Logger) *TestService {
	return &TestService{
		testRepo: testRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "test_service").Logger(),
	}
}

// List retrieves summaries of all published tests.
func (s *TestService) List(ctx context.Context) ([]model.TestSummary, error) {
	tests, err := s.testRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []model.TestSummary{}
	}
	return tests, nil
}

// GetByID retrieves a test with the full tree, correct answers included.
// For internal use (grading, review); not exposed to test takers directly.
func (s *TestService) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.testRepo.GetByID(ctx, id)
}

// GetStudentPayload returns the test tree with correct answers and is_correct
// flags stripped, cache-first. A cache miss loads from PostgreSQL and
// self-heals the cache.
func (s *TestService) GetStudentPayload(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	key := config.CacheKey.TestPayloadKey(id.String())

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		return json.RawMessage(cached), nil
	}
	if err != redis.Nil {
		s.log.Warn().Err(err).Str("test_id", id.String()).Msg("Payload cache read failed")
	}

	payload, err := s.buildStudentPayload(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, key, []byte(payload), 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", id.String()).Msg("Payload cache write failed")
	}
	return payload, nil
}

// WarmCache loads a test's sanitized payload from PostgreSQL into Redis.
func (s *TestService) WarmCache(ctx context.Context, id uuid.UUID) error {
	payload, err := s.buildStudentPayload(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.TestPayloadKey(id.String()), []byte(payload), 0).Err(); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}
	return nil
}

// PrewarmAllCaches loads every published test's payload into Redis. Called
// before accepting traffic so lazy loading never races a thundering herd.
func (s *TestService) PrewarmAllCaches(ctx context.Context) error {
	ids, err := s.testRepo.ListPublishedIDs(ctx)
	if err != nil {
		return fmt.Errorf("list published tests: %w", err)
	}

	for _, id := range ids {
		if err := s.WarmCache(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("test_id", id.String()).Msg("Prewarm failed for test")
			continue
		}
	}

	s.log.Info().Int("count", len(ids)).Msg("Test payload caches prewarmed")
	return nil
}

func (s *TestService) buildStudentPayload(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}

	sanitized := sanitizeTest(test)
	raw, err := json.Marshal(sanitized)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return raw, nil
}

// sanitizeTest deep-copies the tree without correct answers or is_correct
// flags, so the payload sent to a test taker carries no answer key.
func sanitizeTest(t *model.Test) *model.Test {
	out := *t
	out.Parts = make([]model.Part, len(t.Parts))
	for pi, p := range t.Parts {
		np := p
		np.Groups = make([]model.QuestionGroup, len(p.Groups))
		for gi, g := range p.Groups {
			ng := g
			ng.Options = sanitizeOptions(g.Options)
			ng.Questions = make([]model.Question, len(g.Questions))
			for qi, q := range g.Questions {
				nq := q
				nq.CorrectAnswer = ""
				nq.Options = sanitizeOptions(q.Options)
				ng.Questions[qi] = nq
			}
			np.Groups[gi] = ng
		}
		out.Parts[pi] = np
	}
	return &out
}

func sanitizeOptions(opts []model.Option) []model.Option {
	if opts == nil {
		return nil
	}
	out := make([]model.Option, len(opts))
	for i, o := range opts {
		no := o
		no.IsCorrect = false
		out[i] = no
	}
	return out
}
