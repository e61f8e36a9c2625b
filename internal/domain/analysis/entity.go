package analysis

import (
	"time"
)

// ImageRef identifies one uploaded image in object storage
type ImageRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Label is one concept the vision service detected in an image.
// Confidence is a percentage in [0,100].
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

// AnalysisResult is the outcome for a single image and the unit stored
// in the result cache. Immutable once created.
type AnalysisResult struct {
	Image       ImageRef  `json:"image"`
	Labels      []Label   `json:"labels"`
	TotalLabels int       `json:"total_labels"`
	Succeeded   bool      `json:"succeeded"`
	Error       string    `json:"error,omitempty"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// FailureKind enum
type FailureKind string

const (
	FailureTransient FailureKind = "transient"
	FailurePermanent FailureKind = "permanent"
)

// Failure records one image that could not be analyzed
type Failure struct {
	Image   ImageRef    `json:"image"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// BatchStatistics recaps one fan-out run for observability
type BatchStatistics struct {
	TotalImages                 int     `json:"total_images"`
	SuccessfulAnalyses          int     `json:"successful_analyses"`
	FailedAnalyses              int     `json:"failed_analyses"`
	SuccessRate                 float64 `json:"success_rate"`
	TotalLabelsDetected         int     `json:"total_labels_detected"`
	AccessibilityLabelsDetected int     `json:"accessibility_labels_detected"`
	AverageLabelsPerImage       float64 `json:"average_labels_per_image"`
}
