package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fleetyard/fleetyard/internal/service"
)

func newReportHandler(t *testing.T) (*ReportHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := service.NewReportService(db, nullStore{}, time.UTC, 24*time.Hour, testLogger())
	return &ReportHandler{Svc: svc}, mock, func() { db.Close() }
}

func TestReportHandler_OnDemand(t *testing.T) {
	h, mock, closeDB := newReportHandler(t)
	defer closeDB()

	changes := `[{"field":"availability","oldValue":null,"newValue":"vendido"}]`
	mock.ExpectQuery(`SELECT .+ FROM vehicle_events WHERE updated_at >= \$1 AND updated_at <= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_vin", "updated_by", "updated_at", "changes"}).
			AddRow(1, testVIN, "maria", time.Now(), []byte(changes)))

	req := httptest.NewRequest("GET", "/v1/reports/on-demand", nil)
	rr := httptest.NewRecorder()
	h.OnDemand(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="reporte_24h.csv"` {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	if !strings.Contains(rr.Body.String(), `"vendido"`) {
		t.Errorf("unexpected body: %q", rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReportHandler_OnDemand_EmptyWindow(t *testing.T) {
	h, mock, closeDB := newReportHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT .+ FROM vehicle_events WHERE updated_at >= \$1 AND updated_at <= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_vin", "updated_by", "updated_at", "changes"}))

	req := httptest.NewRequest("POST", "/v1/reports/on-demand", nil)
	rr := httptest.NewRecorder()
	h.OnDemand(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "No data" {
		t.Errorf("body: got %q, want %q", rr.Body.String(), "No data")
	}
}

func TestReportHandler_OnDemand_MethodNotAllowed(t *testing.T) {
	h, _, closeDB := newReportHandler(t)
	defer closeDB()

	req := httptest.NewRequest("DELETE", "/v1/reports/on-demand", nil)
	rr := httptest.NewRecorder()
	h.OnDemand(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

func TestReportHandler_Latest_NotFound(t *testing.T) {
	h, mock, closeDB := newReportHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT file_name, url, generated_at FROM latest_report WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"file_name", "url", "generated_at"}))

	req := httptest.NewRequest("GET", "/v1/reports/latest", nil)
	rr := httptest.NewRecorder()
	h.Latest(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestReportHandler_Latest(t *testing.T) {
	h, mock, closeDB := newReportHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT file_name, url, generated_at FROM latest_report WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"file_name", "url", "generated_at"}).
			AddRow("report_2026-03-03.csv", "https://store.example/reports/report_2026-03-03.csv", time.Now()))

	req := httptest.NewRequest("GET", "/v1/reports/latest", nil)
	rr := httptest.NewRecorder()
	h.Latest(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "report_2026-03-03.csv") {
		t.Errorf("unexpected body: %q", rr.Body.String())
	}
}
