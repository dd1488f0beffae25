package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// EditsTotal counts edit submissions by outcome (applied, noop).
	EditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_edits_total",
			Help: "Total number of vehicle edit submissions by outcome",
		},
		[]string{"outcome"},
	)

	// ReportsTotal counts report generations by mode (scheduled, on_demand) and status (ok, error).
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Total number of report generations by mode and status",
		},
		[]string{"mode", "status"},
	)

	// ReportRows tracks how many CSV rows each generated report contained.
	ReportRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_rows",
			Help:    "Number of rows in generated reports",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"mode"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	vinPathSegment     = regexp.MustCompile(`/[A-HJ-NPR-Z0-9]{17}(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, EditsTotal, ReportsTotal, ReportRows)
	})
}

// NormalizePath reduces cardinality by replacing numeric and VIN path segments
// with placeholders. E.g. /v1/vehicles/1HGCM82633A123456 -> /v1/vehicles/{vin}.
func NormalizePath(path string) string {
	path = vinPathSegment.ReplaceAllString(path, "/{vin}$1")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncEdits increments the edit counter for the given outcome (applied, noop).
func IncEdits(outcome string) {
	EditsTotal.WithLabelValues(outcome).Inc()
}

// IncReports increments the report counter for the given mode and status.
func IncReports(mode, status string) {
	ReportsTotal.WithLabelValues(mode, status).Inc()
}

// ObserveReportRows records the row count of a generated report.
func ObserveReportRows(mode string, rows int) {
	ReportRows.WithLabelValues(mode).Observe(float64(rows))
}
