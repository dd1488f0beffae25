package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetyard/fleetyard/internal/errs"
	"github.com/fleetyard/fleetyard/internal/models"
)

// ReportRepo holds the single "latest scheduled report" pointer. Each run of
// the daily job overwrites the previous pointer; history of report files lives
// in the object store, not here.
type ReportRepo struct {
	DB *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{DB: db}
}

// SetLatest records the most recent scheduled report, replacing any prior pointer.
func (r *ReportRepo) SetLatest(ctx context.Context, fileName, url string, generatedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO latest_report (id, file_name, url, generated_at)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET file_name = $1, url = $2, generated_at = $3`,
		fileName, url, generatedAt,
	)
	return errs.Storage("set latest report", err)
}

// GetLatest returns the latest scheduled report pointer, or NotFound when no
// scheduled report has run yet.
func (r *ReportRepo) GetLatest(ctx context.Context) (models.Report, error) {
	var rep models.Report
	err := r.DB.QueryRowContext(ctx,
		`SELECT file_name, url, generated_at FROM latest_report WHERE id = 1`,
	).Scan(&rep.FileName, &rep.URL, &rep.GeneratedAt)
	if err == sql.ErrNoRows {
		return models.Report{}, errs.NotFound("report", "latest")
	}
	if err != nil {
		return models.Report{}, errs.Storage("get latest report", err)
	}
	return rep, nil
}
