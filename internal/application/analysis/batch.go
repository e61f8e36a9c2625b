package analysis

import (
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// Chunk splits images into batches of at most size elements, preserving
// input order within and across batches. Every image lands in exactly one
// batch. size < 1 is a configuration error, not a silent default.
func Chunk(images []domain.ImageRef, size int) ([][]domain.ImageRef, error) {
	if size < 1 {
		return nil, domain.ErrInvalidChunkSize
	}
	batches := make([][]domain.ImageRef, 0, (len(images)+size-1)/size)
	for i := 0; i < len(images); i += size {
		end := i + size
		if end > len(images) {
			end = len(images)
		}
		batches = append(batches, images[i:end])
	}
	return batches, nil
}

// Statistics recaps a set of per-image results for observability.
// Label totals only count results that succeeded.
func Statistics(results []domain.AnalysisResult) domain.BatchStatistics {
	stats := domain.BatchStatistics{TotalImages: len(results)}
	for _, r := range results {
		if !r.Succeeded {
			stats.FailedAnalyses++
			continue
		}
		stats.SuccessfulAnalyses++
		stats.TotalLabelsDetected += r.TotalLabels
		stats.AccessibilityLabelsDetected += len(r.Labels)
	}
	if stats.TotalImages > 0 {
		stats.SuccessRate = float64(stats.SuccessfulAnalyses) / float64(stats.TotalImages) * 100
	}
	if stats.SuccessfulAnalyses > 0 {
		stats.AverageLabelsPerImage = float64(stats.TotalLabelsDetected) / float64(stats.SuccessfulAnalyses)
	}
	return stats
}
