package analysis

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	retry "github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bryanwahyu/accessibility-checker/internal/application"
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
)

// defaultRelevance filters raw vision labels down to concepts that say
// something about home accessibility before they reach scoring.
var defaultRelevance = []string{
	"stairs", "ramp", "door", "doorway", "bathroom", "bedroom",
	"kitchen", "hallway", "entrance", "elevator", "lift",
	"wheelchair", "grab bar", "handrail", "step", "threshold",
}

// Options tunes the orchestrator. Zero values fall back to safe defaults.
type Options struct {
	MaxConcurrency int           // hard cap on in-flight detector calls for this instance
	BatchSize      int           // images queued per wave
	MaxRetries     int           // retries for transient per-image failures
	RetryBase      time.Duration // first backoff interval
	Timeout        time.Duration // deadline for one orchestration run
	Keywords       assessment.Keywords
	Relevance      []string
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrency < 1 {
		o.MaxConcurrency = 10
	}
	if o.BatchSize < 1 {
		o.BatchSize = 5
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Minute
	}
	if len(o.Keywords.Positive) == 0 && len(o.Keywords.Barriers) == 0 {
		o.Keywords = assessment.DefaultKeywords()
	}
	if len(o.Relevance) == 0 {
		o.Relevance = defaultRelevance
	}
	return o
}

// Service implements use-cases untuk analysis orchestration.
// Service is designed to be shared across concurrent requests and is
// thread-safe: per-request state stays on the stack, the cache and the
// detector handle their own synchronization, and sem caps live detector
// calls instance-wide.
type Service struct {
	Detector    domain.LabelDetector
	Cache       *ResultCache
	Recommender assessment.Recommender // optional enrichment
	Repo        assessment.Repository
	Failures    domain.FailureLog // optional
	Clock       application.Clock

	opts Options
	sem  *semaphore.Weighted
}

func NewService(detector domain.LabelDetector, cache *ResultCache, repo assessment.Repository, clock application.Clock, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		Detector: detector,
		Cache:    cache,
		Repo:     repo,
		Clock:    clock,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrency)),
	}
}

//
// ==== USE CASES ====
//

// RunAssessment drives the whole pipeline for one request: fan-out
// analysis, aggregation, scoring and recommendation assembly. Only
// precondition violations return an error; every service-boundary
// failure degrades into the assessment content instead.
func (s *Service) RunAssessment(ctx context.Context, tenant string, images []domain.ImageRef) (*assessment.Assessment, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}
	start := s.Clock.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	results, failures, err := s.Analyze(ctx, images)
	if err != nil {
		return nil, err
	}

	aggregated := aggregateLabels(results)

	var recs []assessment.Recommendation
	if s.Recommender != nil && len(aggregated) > 0 {
		recs, err = s.Recommender.Recommend(ctx, aggregated, len(images))
		if err != nil {
			// optional collaborator, fall back to deterministic text
			log.Printf("recommender degraded to fallback: tenant=%s err=%v", tenant, err)
			recs = nil
		}
	}

	a := assessment.Assemble(aggregated, recs, len(images), s.opts.Keywords)
	a.ID = assessment.ID(uuid.New().String())
	a.TenantID = tenant
	a.FailedImages = failures
	a.Stats = Statistics(results)
	a.Status = assessment.StatusComplete
	if len(failures) > 0 {
		a.Status = assessment.StatusDegraded
	}
	a.CreatedAt = start
	a.DurationMS = s.Clock.Now().Sub(start).Milliseconds()

	if s.Repo != nil {
		// persistence is not allowed to take the assessment away from the caller
		if err := s.Repo.Save(ctx, a); err != nil {
			log.Printf("assessment save failed: tenant=%s id=%s err=%v", tenant, a.ID, err)
		}
	}
	s.recordFailures(tenant, string(a.ID), failures)

	return a, nil
}

// Analyze fans out per-image analysis bounded by MaxConcurrency and
// aggregates the outcomes. One image's failure never blocks or cancels
// its siblings; results arrive in input order regardless of completion
// order. The only error returned is the chunk-size precondition.
func (s *Service) Analyze(ctx context.Context, images []domain.ImageRef) ([]domain.AnalysisResult, []domain.Failure, error) {
	batches, err := Chunk(images, s.opts.BatchSize)
	if err != nil {
		return nil, nil, err
	}

	results := make([]domain.AnalysisResult, len(images))
	failed := make([]*domain.Failure, len(images))
	offset := 0
	// waves run in input order for predictable logging
	for _, batch := range batches {
		eg := new(errgroup.Group)
		eg.SetLimit(s.opts.MaxConcurrency)
		for i, img := range batch {
			slot := offset + i
			img := img
			eg.Go(func() error {
				// per-image outcomes are carried in the slot, never as errors
				results[slot], failed[slot] = s.analyzeOne(ctx, img)
				return nil
			})
		}
		_ = eg.Wait()
		offset += len(batch)
	}

	var failures []domain.Failure
	for _, f := range failed {
		if f != nil {
			failures = append(failures, *f)
		}
	}
	return results, failures, nil
}

// analyzeOne resolves a single image: cache lookup, then a live call
// with bounded retries for transient errors, then write-through.
func (s *Service) analyzeOne(ctx context.Context, img domain.ImageRef) (domain.AnalysisResult, *domain.Failure) {
	if res, ok := s.Cache.Get(ctx, img); ok {
		return res, nil
	}

	var raw []domain.Label
	backoff := retry.WithMaxRetries(uint64(s.opts.MaxRetries), retry.NewFibonacci(s.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		// the admission gate covers the live call only, cache traffic is cheap
		if aerr := s.sem.Acquire(ctx, 1); aerr != nil {
			return aerr
		}
		defer s.sem.Release(1)

		labels, derr := s.Detector.DetectLabels(ctx, img)
		if derr != nil {
			if domain.IsTransient(derr) {
				return retry.RetryableError(derr)
			}
			return derr
		}
		raw = labels
		return nil
	})

	now := s.Clock.Now()
	if err != nil {
		log.Printf("analysis failed: key=%s err=%v", img.Key, err)
		res := domain.AnalysisResult{
			Image:      img,
			Succeeded:  false,
			Error:      err.Error(),
			AnalyzedAt: now,
		}
		return res, &domain.Failure{Image: img, Kind: domain.KindOf(err), Message: err.Error()}
	}

	res := domain.AnalysisResult{
		Image:       img,
		Labels:      s.filterRelevant(raw),
		TotalLabels: len(raw),
		Succeeded:   true,
		AnalyzedAt:  now,
	}
	s.Cache.Put(ctx, res)
	return res, nil
}

// filterRelevant keeps only accessibility-relevant labels, preserving
// the detector's label order, and tags them with the analysis category.
func (s *Service) filterRelevant(labels []domain.Label) []domain.Label {
	filtered := make([]domain.Label, 0, len(labels))
	for _, l := range labels {
		name := strings.ToLower(l.Name)
		for _, kw := range s.opts.Relevance {
			if strings.Contains(name, kw) {
				l.Category = DefaultAnalysisKind
				filtered = append(filtered, l)
				break
			}
		}
	}
	return filtered
}

func (s *Service) recordFailures(tenant, assessmentID string, failures []domain.Failure) {
	if s.Failures == nil {
		return
	}
	// detached context: failure records should survive request cancellation
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, f := range failures {
		if err := s.Failures.Record(ctx, tenant, assessmentID, f); err != nil {
			log.Printf("failure record dropped: key=%s err=%v", f.Image.Key, err)
		}
	}
}

// aggregateLabels merges labels from succeeded results only. Within one
// image the detector's order is preserved; across images the merge
// follows input order, which keeps repeated runs stable.
func aggregateLabels(results []domain.AnalysisResult) []domain.Label {
	var out []domain.Label
	for _, r := range results {
		if r.Succeeded {
			out = append(out, r.Labels...)
		}
	}
	return out
}

//
// ==== QUERIES ====
//

// Latest ambil N assessment terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*assessment.Assessment, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 assessment by id
func (s *Service) Get(ctx context.Context, tenant string, id assessment.ID) (*assessment.Assessment, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Summary rekap hasil assessment N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (assessment.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}

// Paginate list assessments page by page
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) (assessment.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}
