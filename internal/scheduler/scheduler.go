// Package scheduler runs the daily report job on a fixed wall-clock schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fleetyard/fleetyard/internal/service"
)

// Run starts the cron runner for the scheduled report and returns a stop
// function. The cron expression fires in loc, so the job runs at the same
// local time year-round regardless of the server's zone.
func Run(spec string, loc *time.Location, reports *service.ReportService, log *slog.Logger) (stop func(), err error) {
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		rep, err := reports.GenerateScheduled(ctx)
		if err != nil {
			log.Error("scheduled report failed", "error", err)
			return
		}
		log.Info("scheduled report stored", "file", rep.FileName)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("report scheduler started", "cron", spec, "tz", loc.String())
	return func() { <-c.Stop().Done() }, nil
}
