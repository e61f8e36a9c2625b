package assessment

import (
	"context"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, tenant string, id ID) (*Assessment, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Assessment, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (PaginatedResult, error)
}

// Summary rekap assessment untuk N hari terakhir
type Summary struct {
	TotalAssessments int     `json:"total_assessments"`
	AverageScore     float64 `json:"average_score"`
	TotalBarriers    int     `json:"total_barriers"`
	TotalFeatures    int     `json:"total_features"`
}

// Recommender port for the text-generation collaborator. Optional
// enrichment: any error or empty result falls back to deterministic
// recommendations from the assembler.
type Recommender interface {
	Recommend(ctx context.Context, labels []analysis.Label, imageCount int) ([]Recommendation, error)
}
