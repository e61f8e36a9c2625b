package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
)

// FailureLogRepository keeps a row per failed image analysis so degraded
// assessments can be audited later.
type FailureLogRepository struct {
	db *sql.DB
}

func NewFailureLogRepository(db *sql.DB) *FailureLogRepository { return &FailureLogRepository{db: db} }

func (r *FailureLogRepository) Record(ctx context.Context, tenant, assessmentID string, f domain.Failure) error {
	const q = `
INSERT INTO analysis_failures
  (tenant_id, assessment_id, bucket, image_key, kind, message, created_at)
VALUES (?,?,?,?,?,?,?)
`
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(tenant),
		stringOrDash(assessmentID),
		stringOrDash(f.Image.Bucket),
		stringOrDash(f.Image.Key),
		stringOrDash(string(f.Kind)),
		stringOrDash(f.Message),
		time.Now().UTC(),
	)
	return err
}
