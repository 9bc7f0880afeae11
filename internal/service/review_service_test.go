package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bandready/ielts-backend/internal/model"
	"github.com/bandready/ielts-backend/internal/review"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fakeSource serves canned attempts and blocks fetches until released, so
// tests control exactly when a load completes.
type fakeSource struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.Attempt
	tests    map[uuid.UUID]*model.Test
	gates    map[uuid.UUID]chan struct{}
	calls    int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		attempts: make(map[uuid.UUID]*model.Attempt),
		tests:    make(map[uuid.UUID]*model.Test),
		gates:    make(map[uuid.UUID]chan struct{}),
	}
}

func (f *fakeSource) addAttempt(questionCount int) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	testID := uuid.New()
	group := model.QuestionGroup{ID: uuid.New(), Type: "fill_in_blank"}
	for i := 1; i <= questionCount; i++ {
		group.Questions = append(group.Questions, model.Question{
			ID:             uuid.New(),
			QuestionNumber: i,
			CorrectAnswer:  "answer",
		})
	}
	f.tests[testID] = &model.Test{
		ID:    testID,
		Parts: []model.Part{{ID: uuid.New(), PartNumber: 1, Groups: []model.QuestionGroup{group}}},
	}

	attemptID := uuid.New()
	f.attempts[attemptID] = &model.Attempt{
		ID:             attemptID,
		TestID:         testID,
		TotalQuestions: questionCount,
	}
	return attemptID
}

// gate makes GetAttempt for this attempt block until release is called.
func (f *fakeSource) gate(attemptID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[attemptID] = make(chan struct{})
}

func (f *fakeSource) release(attemptID uuid.UUID) {
	f.mu.Lock()
	gate := f.gates[attemptID]
	delete(f.gates, attemptID)
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (f *fakeSource) GetAttempt(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	gate := f.gates[id]
	attempt := f.attempts[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return attempt, nil
}

func (f *fakeSource) GetTest(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tests[id], nil
}

func (f *fakeSource) GetAttemptAnswers(ctx context.Context, id uuid.UUID) (model.RawAnswers, model.ReviewRecords, error) {
	return nil, nil, nil
}

func (f *fakeSource) fetchCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func newTestReviewService(src AttemptSource) *ReviewService {
	return NewReviewService(src, nil, review.NewEngine(zerolog.Nop()), time.Minute, zerolog.Nop())
}

func TestLoadSingleFlightSameIdentity(t *testing.T) {
	src := newFakeSource()
	attemptID := src.addAttempt(3)
	svc := newTestReviewService(src)

	src.gate(attemptID)

	var wg sync.WaitGroup
	results := make([]*ReviewResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Load(context.Background(), attemptID)
		}(i)
	}

	// Let both goroutines reach the guard before releasing the fetch.
	time.Sleep(50 * time.Millisecond)
	src.release(attemptID)
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("load %d failed: %v", i, errs[i])
		}
		if len(results[i].Rows) != 3 {
			t.Fatalf("load %d: got %d rows, want 3", i, len(results[i].Rows))
		}
	}
	if n := src.fetchCount(); n != 1 {
		t.Errorf("fetch count = %d, want 1 (single flight)", n)
	}
}

func TestLoadCachedAfterReady(t *testing.T) {
	src := newFakeSource()
	attemptID := src.addAttempt(2)
	svc := newTestReviewService(src)

	if _, err := svc.Load(context.Background(), attemptID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Load(context.Background(), attemptID); err != nil {
		t.Fatal(err)
	}
	if n := src.fetchCount(); n != 1 {
		t.Errorf("fetch count = %d, want 1 (ready state reused)", n)
	}
}

func TestLoadIdentitySwitchClearsState(t *testing.T) {
	src := newFakeSource()
	first := src.addAttempt(2)
	second := src.addAttempt(4)
	svc := newTestReviewService(src)

	if _, err := svc.Load(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Load(context.Background(), second)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 4 || res.Attempt.ID != second {
		t.Fatalf("second identity result wrong: %d rows, attempt %s", len(res.Rows), res.Attempt.ID)
	}

	// The first identity's state was cleared: loading it again refetches.
	before := src.fetchCount()
	if _, err := svc.Load(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if src.fetchCount() != before+1 {
		t.Error("former identity should have been cleared, not served from memory")
	}
}

func TestLoadStaleCompletionDiscarded(t *testing.T) {
	src := newFakeSource()
	slow := src.addAttempt(2)
	fast := src.addAttempt(5)
	svc := newTestReviewService(src)

	src.gate(slow)

	var wg sync.WaitGroup
	var slowRes *ReviewResult
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowRes, slowErr = svc.Load(context.Background(), slow)
	}()

	time.Sleep(50 * time.Millisecond)

	// A different identity supersedes the in-flight load.
	fastRes, err := svc.Load(context.Background(), fast)
	if err != nil {
		t.Fatal(err)
	}
	if fastRes.Attempt.ID != fast {
		t.Fatalf("fast load returned attempt %s", fastRes.Attempt.ID)
	}

	src.release(slow)
	wg.Wait()

	// The slow caller still gets an answer for what it asked.
	if slowErr != nil {
		t.Fatalf("slow load failed: %v", slowErr)
	}
	if slowRes.Attempt.ID != slow {
		t.Fatalf("slow load returned attempt %s", slowRes.Attempt.ID)
	}

	// But shared state must reflect the newest identity, not the stale one.
	before := src.fetchCount()
	res, err := svc.Load(context.Background(), fast)
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempt.ID != fast || len(res.Rows) != 5 {
		t.Errorf("ready state corrupted by stale completion: %+v", res.Attempt)
	}
	if src.fetchCount() != before {
		t.Error("newest identity should still be served from memory")
	}
}
