// Package report computes reporting windows and renders change events as CSV.
package report

import "time"

// Window is a closed [Start, End] range used to select change events.
type Window struct {
	Start time.Time
	End   time.Time
}

// endOfDayOffset is 23:59:59.999 from midnight. The store keeps millisecond
// precision, so the closed window covers the whole day.
const endOfDayOffset = 24*time.Hour - time.Millisecond

// Scheduled computes the window for the daily job running at now in loc.
// On Mondays the window spans the previous Friday and Saturday in one report,
// because the business is closed on Sunday and no events accrue; every other
// day it is simply yesterday.
func Scheduled(now time.Time, loc *time.Location) Window {
	day := now.In(loc)
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	if day.Weekday() == time.Monday {
		friday := midnight.AddDate(0, 0, -3)
		return Window{Start: friday, End: friday.AddDate(0, 0, 1).Add(endOfDayOffset)}
	}

	yesterday := midnight.AddDate(0, 0, -1)
	return Window{Start: yesterday, End: yesterday.Add(endOfDayOffset)}
}

// OnDemand is the rolling last-24-hours window ending at now.
func OnDemand(now time.Time) Window {
	return Window{Start: now.Add(-24 * time.Hour), End: now}
}
