package handlers

import (
	"net/http"

	"github.com/fleetyard/fleetyard/internal/service"
)

type ReportHandler struct {
	Svc *service.ReportService
}

// OnDemand renders the last-24-hours change report as a CSV download. The CSV
// is built in full before the first byte is written, so a failure produces a
// clean JSON 500 instead of a truncated file.
func (h *ReportHandler) OnDemand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	csv, err := h.Svc.OnDemandCSV(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reporte_24h.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// Latest returns the pointer to the most recent scheduled report, 404 when no
// scheduled run has completed yet.
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Svc.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Run triggers the scheduled report pipeline outside its cron slot. Used by
// operations to regenerate the daily report after fixing bad data.
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Svc.GenerateScheduled(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
