package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bryanwahyu/accessibility-checker/internal/application"
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/cache/memory"
)

// fakeDetector scripts per-key outcomes and records call pressure
type fakeDetector struct {
	mu       sync.Mutex
	calls    map[string]int
	labels   map[string][]domain.Label
	fail     map[string]error         // fails every call for the key
	failOnce map[string]error         // fails only the first call for the key
	slow     map[string]time.Duration // per-key delay overriding delay

	delay    time.Duration
	inFlight int32
	maxSeen  int32
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{
		calls:    make(map[string]int),
		labels:   make(map[string][]domain.Label),
		fail:     make(map[string]error),
		failOnce: make(map[string]error),
		slow:     make(map[string]time.Duration),
	}
}

func (d *fakeDetector) DetectLabels(ctx context.Context, img domain.ImageRef) ([]domain.Label, error) {
	cur := atomic.AddInt32(&d.inFlight, 1)
	for {
		max := atomic.LoadInt32(&d.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&d.maxSeen, max, cur) {
			break
		}
	}
	defer atomic.AddInt32(&d.inFlight, -1)

	d.mu.Lock()
	d.calls[img.Key]++
	n := d.calls[img.Key]
	delay := d.delay
	if v, ok := d.slow[img.Key]; ok {
		delay = v
	}
	d.mu.Unlock()

	if delay > 0 {
		// honors cancellation like a real network client would
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failOnce[img.Key]; ok && n == 1 {
		return nil, err
	}
	if err, ok := d.fail[img.Key]; ok {
		return nil, err
	}
	return d.labels[img.Key], nil
}

func (d *fakeDetector) callCount(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[key]
}

func testClock() application.Clock {
	return application.FixedClock{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestService(d *fakeDetector, opts Options) *Service {
	cache := NewResultCache(memory.New(), time.Hour)
	return NewService(d, cache, nil, testClock(), opts)
}

func TestRunAssessmentNoImages(t *testing.T) {
	svc := newTestService(newFakeDetector(), Options{})
	if _, err := svc.RunAssessment(context.Background(), "acme", nil); !errors.Is(err, domain.ErrNoImages) {
		t.Fatalf("got %v, want ErrNoImages", err)
	}
}

func TestRunAssessmentHappyPath(t *testing.T) {
	d := newFakeDetector()
	d.labels["entrance.jpg"] = []domain.Label{
		{Name: "Wheelchair Ramp", Confidence: 92},
		{Name: "Tree", Confidence: 99}, // not accessibility-relevant
	}
	d.labels["hall.jpg"] = []domain.Label{
		{Name: "Handrail", Confidence: 81},
	}
	svc := newTestService(d, Options{})

	a, err := svc.RunAssessment(context.Background(), "acme", []domain.ImageRef{
		{Bucket: "photos", Key: "entrance.jpg"},
		{Bucket: "photos", Key: "hall.jpg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Status != assessment.StatusComplete {
		t.Fatalf("status = %s, want complete", a.Status)
	}
	if a.AnalyzedImages != 2 {
		t.Fatalf("AnalyzedImages = %d, want 2", a.AnalyzedImages)
	}
	if a.TenantID != "acme" || a.ID == "" {
		t.Fatalf("identity not filled: %+v", a)
	}
	// only positive signal, so the score maxes out
	if a.Score != 100 {
		t.Fatalf("score = %d, want 100", a.Score)
	}
	if len(a.PositiveFeatures) != 2 || len(a.Barriers) != 0 {
		t.Fatalf("categorization wrong: features=%d barriers=%d", len(a.PositiveFeatures), len(a.Barriers))
	}
	// the irrelevant label was filtered before aggregation
	if a.TotalLabels != 2 {
		t.Fatalf("TotalLabels = %d, want 2 relevant labels", a.TotalLabels)
	}
	if a.Stats.SuccessfulAnalyses != 2 || a.Stats.FailedAnalyses != 0 {
		t.Fatalf("stats wrong: %+v", a.Stats)
	}
}

func TestAnalyzeIsolatesFailures(t *testing.T) {
	d := newFakeDetector()
	d.labels["ok-1.jpg"] = []domain.Label{{Name: "Ramp", Confidence: 90}}
	d.labels["ok-2.jpg"] = []domain.Label{{Name: "Stairs", Confidence: 85}}
	d.fail["broken.jpg"] = domain.Permanent("unreadable image")
	svc := newTestService(d, Options{})

	images := []domain.ImageRef{
		{Key: "ok-1.jpg"},
		{Key: "broken.jpg"},
		{Key: "ok-2.jpg"},
	}
	results, failures, err := svc.Analyze(context.Background(), images)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	// results stay in input order regardless of completion order
	for i, img := range images {
		if results[i].Image != img {
			t.Fatalf("result %d is for %v, want %v", i, results[i].Image, img)
		}
	}
	if !results[0].Succeeded || results[1].Succeeded || !results[2].Succeeded {
		t.Fatalf("success flags wrong: %v %v %v", results[0].Succeeded, results[1].Succeeded, results[2].Succeeded)
	}
	if len(failures) != 1 || failures[0].Image.Key != "broken.jpg" || failures[0].Kind != domain.FailurePermanent {
		t.Fatalf("failures = %+v", failures)
	}
}

func TestRunAssessmentDegradedWhenAllFail(t *testing.T) {
	d := newFakeDetector()
	d.fail["a.jpg"] = domain.Permanent("bad input")
	d.fail["b.jpg"] = domain.Permanent("bad input")
	svc := newTestService(d, Options{})

	a, err := svc.RunAssessment(context.Background(), "acme", []domain.ImageRef{{Key: "a.jpg"}, {Key: "b.jpg"}})
	if err != nil {
		t.Fatalf("total analysis failure must still return an assessment, got %v", err)
	}
	if a.Status != assessment.StatusDegraded {
		t.Fatalf("status = %s, want degraded", a.Status)
	}
	if a.Score != assessment.NeutralScore {
		t.Fatalf("score = %d, want neutral %d", a.Score, assessment.NeutralScore)
	}
	if len(a.FailedImages) != 2 {
		t.Fatalf("FailedImages = %d, want 2", len(a.FailedImages))
	}
	if len(a.Recommendations) == 0 {
		t.Fatal("expected fallback recommendations even with zero labels")
	}
	if a.Stats.FailedAnalyses != 2 || a.Stats.SuccessRate != 0 {
		t.Fatalf("stats wrong: %+v", a.Stats)
	}
}

func TestAnalyzeCacheWriteThrough(t *testing.T) {
	d := newFakeDetector()
	d.labels["door.jpg"] = []domain.Label{{Name: "Doorway", Confidence: 88}}
	svc := newTestService(d, Options{})
	images := []domain.ImageRef{{Key: "door.jpg"}}

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Analyze(context.Background(), images); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if got := d.callCount("door.jpg"); got != 1 {
		t.Fatalf("detector called %d times, want 1 (cache should serve repeats)", got)
	}
}

func TestAnalyzeDoesNotCacheFailures(t *testing.T) {
	d := newFakeDetector()
	d.failOnce["flaky.jpg"] = domain.Permanent("rejected")
	d.labels["flaky.jpg"] = []domain.Label{{Name: "Ramp", Confidence: 90}}
	svc := newTestService(d, Options{})
	images := []domain.ImageRef{{Key: "flaky.jpg"}}

	_, failures, err := svc.Analyze(context.Background(), images)
	if err != nil || len(failures) != 1 {
		t.Fatalf("first run: err=%v failures=%d", err, len(failures))
	}

	// the failure was not cached, so the second run hits the detector again
	results, failures, err := svc.Analyze(context.Background(), images)
	if err != nil || len(failures) != 0 {
		t.Fatalf("second run: err=%v failures=%d", err, len(failures))
	}
	if !results[0].Succeeded {
		t.Fatal("second run should succeed")
	}
	if got := d.callCount("flaky.jpg"); got != 2 {
		t.Fatalf("detector called %d times, want 2", got)
	}
}

func TestAnalyzeRetriesTransient(t *testing.T) {
	d := newFakeDetector()
	d.failOnce["throttled.jpg"] = domain.Transient("rate limited")
	d.labels["throttled.jpg"] = []domain.Label{{Name: "Elevator", Confidence: 95}}
	svc := newTestService(d, Options{MaxRetries: 2, RetryBase: time.Millisecond})

	results, failures, err := svc.Analyze(context.Background(), []domain.ImageRef{{Key: "throttled.jpg"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 0 || !results[0].Succeeded {
		t.Fatalf("transient error should be retried away: failures=%+v", failures)
	}
	if got := d.callCount("throttled.jpg"); got != 2 {
		t.Fatalf("detector called %d times, want 2", got)
	}
}

func TestAnalyzeNoRetryOnPermanent(t *testing.T) {
	d := newFakeDetector()
	d.fail["bad.jpg"] = domain.Permanent("unsupported format")
	svc := newTestService(d, Options{MaxRetries: 3, RetryBase: time.Millisecond})

	_, failures, err := svc.Analyze(context.Background(), []domain.ImageRef{{Key: "bad.jpg"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	if got := d.callCount("bad.jpg"); got != 1 {
		t.Fatalf("permanent error retried: %d calls", got)
	}
}

func TestRunAssessmentDeadlineKeepsCompletedResults(t *testing.T) {
	d := newFakeDetector()
	d.labels["fast.jpg"] = []domain.Label{{Name: "Ramp", Confidence: 90}}
	d.labels["stuck.jpg"] = []domain.Label{{Name: "Stairs", Confidence: 80}}
	d.slow["stuck.jpg"] = 5 * time.Second
	svc := newTestService(d, Options{Timeout: 50 * time.Millisecond})

	a, err := svc.RunAssessment(context.Background(), "acme", []domain.ImageRef{
		{Key: "fast.jpg"},
		{Key: "stuck.jpg"},
	})
	if err != nil {
		t.Fatalf("an expired deadline must degrade, not fail: %v", err)
	}

	// the image that finished before the deadline stays in the result
	if len(a.PositiveFeatures) != 1 || a.PositiveFeatures[0].Name != "Ramp" {
		t.Fatalf("completed result discarded: features=%+v", a.PositiveFeatures)
	}
	if a.Score != 100 {
		t.Fatalf("score = %d, want 100 from the completed image", a.Score)
	}

	// the image cut off by the deadline surfaces as a failure
	if a.Status != assessment.StatusDegraded {
		t.Fatalf("status = %s, want degraded", a.Status)
	}
	if len(a.FailedImages) != 1 || a.FailedImages[0].Image.Key != "stuck.jpg" {
		t.Fatalf("FailedImages = %+v, want the timed-out image", a.FailedImages)
	}
	if a.Stats.SuccessfulAnalyses != 1 || a.Stats.FailedAnalyses != 1 {
		t.Fatalf("stats wrong: %+v", a.Stats)
	}
}

func TestAnalyzeBoundedConcurrency(t *testing.T) {
	d := newFakeDetector()
	d.delay = 10 * time.Millisecond
	for _, img := range imageRefs(12) {
		d.labels[img.Key] = []domain.Label{{Name: "Door", Confidence: 80}}
	}
	svc := newTestService(d, Options{MaxConcurrency: 3, BatchSize: 12})

	if _, _, err := svc.Analyze(context.Background(), imageRefs(12)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max := atomic.LoadInt32(&d.maxSeen); max > 3 {
		t.Fatalf("observed %d concurrent detector calls, limit is 3", max)
	}
}
