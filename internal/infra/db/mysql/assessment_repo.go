package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `
id, tenant_id, created_at, score, analyzed_images, total_labels,
feature_count, barrier_count, status, duration_ms,
features_json, barriers_json, recommendations_json, failures_json, stats_json`

// Save insert/update Assessment record
func (r *AssessmentRepository) Save(ctx context.Context, a *domain.Assessment) error {
	const q = `
INSERT INTO accessibility_assessments
(id, tenant_id, created_at, score, analyzed_images, total_labels,
 feature_count, barrier_count, status, duration_ms,
 features_json, barriers_json, recommendations_json, failures_json, stats_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 score=VALUES(score), analyzed_images=VALUES(analyzed_images),
 total_labels=VALUES(total_labels), feature_count=VALUES(feature_count),
 barrier_count=VALUES(barrier_count), status=VALUES(status),
 duration_ms=VALUES(duration_ms), features_json=VALUES(features_json),
 barriers_json=VALUES(barriers_json), recommendations_json=VALUES(recommendations_json),
 failures_json=VALUES(failures_json), stats_json=VALUES(stats_json);
`
	tenant := stringOrDash(a.TenantID)
	status := stringOrDash(string(a.Status))
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	features, err := json.Marshal(a.PositiveFeatures)
	if err != nil {
		return err
	}
	barriers, err := json.Marshal(a.Barriers)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return err
	}
	failures, err := json.Marshal(a.FailedImages)
	if err != nil {
		return err
	}
	stats, err := json.Marshal(a.Stats)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, tenant, created, a.Score, a.AnalyzedImages, a.TotalLabels,
		len(a.PositiveFeatures), len(a.Barriers), status, a.DurationMS,
		features, barriers, recs, failures, stats,
	)
	return err
}

// Get by ID + Tenant
func (r *AssessmentRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.Assessment, error) {
	const q = `
SELECT ` + assessmentColumns + `
FROM accessibility_assessments
WHERE tenant_id=? AND id=? LIMIT 1;
`
	return scanAssessment(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest assessments per tenant
func (r *AssessmentRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + assessmentColumns + `
FROM accessibility_assessments
WHERE tenant_id=? ORDER BY created_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssessments(rows)
}

// Summary rekap assessments since N days
func (r *AssessmentRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COALESCE(AVG(score), 0),
       COALESCE(SUM(barrier_count), 0),
       COALESCE(SUM(feature_count), 0)
FROM accessibility_assessments
WHERE tenant_id=? AND created_at >= NOW() - INTERVAL ? DAY;
`
	var s domain.Summary
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(
		&s.TotalAssessments, &s.AverageScore, &s.TotalBarriers, &s.TotalFeatures,
	)
	return s, err
}

// Paginate list assessments ordered by recency
func (r *AssessmentRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	const q = `
SELECT ` + assessmentColumns + `
FROM accessibility_assessments
WHERE tenant_id=? ORDER BY created_at DESC LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying assessments: %w", err)
	}
	defer rows.Close()
	list, err := collectAssessments(rows)
	if err != nil {
		return domain.PaginatedResult{}, err
	}

	var total int64
	const countQ = `SELECT COUNT(*) FROM accessibility_assessments WHERE tenant_id=?;`
	if err := r.db.QueryRowContext(ctx, countQ, tenant).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var features, barriers, recs, failures, stats []byte
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.CreatedAt, &a.Score, &a.AnalyzedImages, &a.TotalLabels,
		new(int), new(int), &a.Status, &a.DurationMS,
		&features, &barriers, &recs, &failures, &stats,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &a.PositiveFeatures); err != nil {
		a.PositiveFeatures = []analysis.Label{}
	}
	if err := json.Unmarshal(barriers, &a.Barriers); err != nil {
		a.Barriers = []analysis.Label{}
	}
	if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
		a.Recommendations = []domain.Recommendation{}
	}
	if len(failures) > 0 {
		_ = json.Unmarshal(failures, &a.FailedImages)
	}
	if len(stats) > 0 {
		_ = json.Unmarshal(stats, &a.Stats)
	}
	return &a, nil
}

func collectAssessments(rows *sql.Rows) ([]*domain.Assessment, error) {
	var out []*domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
