package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fleetyard/fleetyard/internal/metrics"
	"github.com/fleetyard/fleetyard/internal/models"
	"github.com/fleetyard/fleetyard/internal/repo"
	"github.com/fleetyard/fleetyard/internal/report"
	"github.com/fleetyard/fleetyard/internal/storage"
)

// ReportService generates CSV extracts of the change journal. Scheduled runs
// persist the CSV to the object store and record a latest-report pointer;
// on-demand runs render straight into the caller's response.
type ReportService struct {
	Journal *repo.JournalRepo
	Reports *repo.ReportRepo
	Store   storage.ObjectStore
	Loc     *time.Location
	URLTTL  time.Duration
	Log     *slog.Logger

	// now is swapped in tests to pin the window.
	now func() time.Time
}

func NewReportService(db *sql.DB, store storage.ObjectStore, loc *time.Location, urlTTL time.Duration, log *slog.Logger) *ReportService {
	return &ReportService{
		Journal: repo.NewJournalRepo(db),
		Reports: repo.NewReportRepo(db),
		Store:   store,
		Loc:     loc,
		URLTTL:  urlTTL,
		Log:     log,
		now:     time.Now,
	}
}

// GenerateScheduled runs one scheduled report: compute the window for today,
// render the window's events, upload the CSV, and replace the latest-report
// pointer with a signed download URL. On any failure nothing is recorded.
func (s *ReportService) GenerateScheduled(ctx context.Context) (models.Report, error) {
	w := report.Scheduled(s.now(), s.Loc)

	events, err := s.Journal.QueryByTimeWindow(ctx, w.Start, w.End)
	if err != nil {
		metrics.IncReports("scheduled", "error")
		return models.Report{}, err
	}
	rows := report.Flatten(events)
	body := report.RenderCSV(rows)

	fileName := "report_" + w.Start.Format("2006-01-02") + ".csv"
	key := "reports/" + fileName
	if _, err := s.Store.Put(ctx, key, "text/csv", []byte(body)); err != nil {
		metrics.IncReports("scheduled", "error")
		return models.Report{}, err
	}
	url, err := s.Store.SignedURL(ctx, key, s.URLTTL)
	if err != nil {
		metrics.IncReports("scheduled", "error")
		return models.Report{}, err
	}

	rep := models.Report{FileName: fileName, URL: url, GeneratedAt: s.now()}
	if err := s.Reports.SetLatest(ctx, rep.FileName, rep.URL, rep.GeneratedAt); err != nil {
		metrics.IncReports("scheduled", "error")
		return models.Report{}, err
	}

	metrics.IncReports("scheduled", "ok")
	metrics.ObserveReportRows("scheduled", len(rows))
	s.Log.Info("scheduled report generated",
		"file", fileName, "rows", len(rows),
		"window_start", w.Start, "window_end", w.End)
	return rep, nil
}

// OnDemandCSV renders the last-24-hours report as CSV text. Nothing is
// persisted; the caller streams the result to the requester.
func (s *ReportService) OnDemandCSV(ctx context.Context) (string, error) {
	w := report.OnDemand(s.now())

	events, err := s.Journal.QueryByTimeWindow(ctx, w.Start, w.End)
	if err != nil {
		metrics.IncReports("on_demand", "error")
		return "", err
	}
	rows := report.Flatten(events)

	metrics.IncReports("on_demand", "ok")
	metrics.ObserveReportRows("on_demand", len(rows))
	return report.RenderCSV(rows), nil
}

// Latest returns the pointer to the most recent scheduled report.
func (s *ReportService) Latest(ctx context.Context) (models.Report, error) {
	return s.Reports.GetLatest(ctx)
}
