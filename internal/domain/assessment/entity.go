package assessment

import (
	"time"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// ID tipe untuk Assessment
type ID string

// Status enum
type Status string

const (
	StatusComplete Status = "complete"
	StatusDegraded Status = "degraded" // at least one image failed
)

// Recommendation is one suggested accessibility improvement
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Aggregate Root: Assessment, the final output of one analysis request
type Assessment struct {
	ID               ID                       `json:"id"`
	TenantID         string                   `json:"tenant_id"`
	Score            int                      `json:"score"`
	AnalyzedImages   int                      `json:"analyzed_images"`
	PositiveFeatures []analysis.Label         `json:"positive_features"`
	Barriers         []analysis.Label         `json:"barriers"`
	Recommendations  []Recommendation         `json:"recommendations"`
	TotalLabels      int                      `json:"total_labels"`
	FailedImages     []analysis.Failure       `json:"failed_images,omitempty"`
	Stats            analysis.BatchStatistics `json:"stats"`
	Status           Status                   `json:"status"`
	CreatedAt        time.Time                `json:"created_at"`
	DurationMS       int64                    `json:"duration_ms"`
}
