package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/cache/memory"
)

// brokenStore fails every operation, simulating an unreachable backend
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func TestResultCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewResultCache(memory.New(), time.Hour)

	img := domain.ImageRef{Bucket: "photos", Key: "hallway.jpg"}
	res := domain.AnalysisResult{
		Image:       img,
		Labels:      []domain.Label{{Name: "Ramp", Confidence: 90, Category: DefaultAnalysisKind}},
		TotalLabels: 12,
		Succeeded:   true,
	}
	cache.Put(ctx, res)

	got, ok := cache.Get(ctx, img)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.TotalLabels != 12 || len(got.Labels) != 1 || got.Labels[0].Name != "Ramp" {
		t.Fatalf("cached result corrupted: %+v", got)
	}
}

func TestResultCacheFingerprint(t *testing.T) {
	cache := NewResultCache(memory.New(), time.Hour)

	a := cache.Fingerprint(domain.ImageRef{Key: "a.jpg"})
	b := cache.Fingerprint(domain.ImageRef{Key: "a.jpg"})
	c := cache.Fingerprint(domain.ImageRef{Key: "b.jpg"})

	if a != b {
		t.Fatal("same key must produce the same fingerprint")
	}
	if a == c {
		t.Fatal("different keys must not collide")
	}
	if len(a) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestResultCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })
	cache := NewResultCache(store, 24*time.Hour)

	img := domain.ImageRef{Key: "kitchen.jpg"}
	cache.Put(ctx, domain.AnalysisResult{Image: img, Succeeded: true})

	if _, ok := cache.Get(ctx, img); !ok {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(24*time.Hour + time.Minute)
	if _, ok := cache.Get(ctx, img); ok {
		t.Fatal("entry past TTL should miss")
	}
}

func TestResultCacheDegradesOnStoreErrors(t *testing.T) {
	ctx := context.Background()
	cache := NewResultCache(brokenStore{}, time.Hour)
	img := domain.ImageRef{Key: "door.jpg"}

	// Put must not panic or propagate
	cache.Put(ctx, domain.AnalysisResult{Image: img, Succeeded: true})

	if _, ok := cache.Get(ctx, img); ok {
		t.Fatal("store error must read as a miss")
	}
}

func TestResultCacheDropsPoisonedEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cache := NewResultCache(store, time.Hour)
	img := domain.ImageRef{Key: "bedroom.jpg"}

	if err := store.Set(ctx, cache.Fingerprint(img), "{not json", time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok := cache.Get(ctx, img); ok {
		t.Fatal("undecodable entry must read as a miss")
	}
	if _, ok, _ := store.Get(ctx, cache.Fingerprint(img)); ok {
		t.Fatal("undecodable entry should have been deleted")
	}
}

func TestResultCacheNilSafe(t *testing.T) {
	ctx := context.Background()
	var cache *ResultCache

	if _, ok := cache.Get(ctx, domain.ImageRef{Key: "x"}); ok {
		t.Fatal("nil cache must miss")
	}
	cache.Put(ctx, domain.AnalysisResult{})
	if err := cache.Invalidate(ctx, domain.ImageRef{Key: "x"}); err != nil {
		t.Fatalf("nil cache invalidate: %v", err)
	}
}
