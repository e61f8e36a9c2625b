package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// DefaultAnalysisKind tags fingerprints so different analysis flavors
// never share cache entries.
const DefaultAnalysisKind = "accessibility"

// ResultCache fronts the per-image analysis step with a content-addressed
// store. Caching is best effort: a broken backing store degrades to live
// calls and never fails a request. The cache holds no mutable state of
// its own, so it is as concurrency-safe as its store.
type ResultCache struct {
	store domain.CacheStore
	ttl   time.Duration
	kind  string
}

func NewResultCache(store domain.CacheStore, ttl time.Duration) *ResultCache {
	return &ResultCache{store: store, ttl: ttl, kind: DefaultAnalysisKind}
}

// Fingerprint hashes the image key plus analysis kind. Identical inputs
// always map to the same entry, so there is at most one cached result per
// logical analysis.
func (c *ResultCache) Fingerprint(img domain.ImageRef) string {
	sum := sha256.Sum256([]byte(img.Key + ":" + c.kind))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for an image, or ok=false on a miss.
// Store errors and undecodable entries count as misses.
func (c *ResultCache) Get(ctx context.Context, img domain.ImageRef) (domain.AnalysisResult, bool) {
	var res domain.AnalysisResult
	if c == nil || c.store == nil {
		return res, false
	}
	key := c.Fingerprint(img)
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("cache get degraded to miss: key=%s err=%v", img.Key, err)
		return res, false
	}
	if !ok {
		return res, false
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		// unreadable entry, drop it and treat as a miss
		_ = c.store.Delete(ctx, key)
		return domain.AnalysisResult{}, false
	}
	return res, true
}

// Put writes through a completed result. Last write wins on concurrent
// puts for the same fingerprint; errors are logged and swallowed.
func (c *ResultCache) Put(ctx context.Context, res domain.AnalysisResult) {
	if c == nil || c.store == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		log.Printf("cache put skipped: key=%s err=%v", res.Image.Key, err)
		return
	}
	if err := c.store.Set(ctx, c.Fingerprint(res.Image), string(raw), c.ttl); err != nil {
		log.Printf("cache put failed: key=%s err=%v", res.Image.Key, err)
	}
}

// Invalidate drops the entry for an image
func (c *ResultCache) Invalidate(ctx context.Context, img domain.ImageRef) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, c.Fingerprint(img))
}
