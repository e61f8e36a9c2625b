package analysis

import (
	"context"
	"time"
)

// LabelDetector port (interface untuk external image-analysis service)
type LabelDetector interface {
	// DetectLabels returns every label the service reports for the image,
	// unfiltered. Errors should be wrapped as Transient or Permanent so the
	// orchestrator can decide about retries.
	DetectLabels(ctx context.Context, img ImageRef) ([]Label, error)
}

// CacheStore port (interface untuk key-value backing store dengan TTL).
// Get returns ok=false when the key is absent; an expired entry counts
// as absent.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FailureLog port for recording per-image failures. Best effort only,
// callers ignore errors from Record.
type FailureLog interface {
	Record(ctx context.Context, tenant, assessmentID string, f Failure) error
}
