package models

import "time"

// Report is the "latest scheduled report" pointer: file name, a time-limited
// signed download URL, and when it was generated. Only the most recent scheduled
// report is retained; each run overwrites the previous pointer.
type Report struct {
	FileName    string    `json:"fileName"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
}
