package models

import "time"

// UpdatedByUnknown is recorded when the acting user's identity is unavailable.
const UpdatedByUnknown = "desconocido"

// FieldChange is one field-level delta within a ChangeEvent. OldValue and
// NewValue are pointers so that "absent" (nil) stays distinct from empty string.
type FieldChange struct {
	Field    string  `json:"field"`
	OldValue *string `json:"oldValue"`
	NewValue *string `json:"newValue"`
}

// ChangeEvent is one accepted edit transaction applied to a Vehicle. Events are
// append-only: created once, never updated, never deleted. UpdatedAt is assigned
// by the database server clock, never by the caller, so ordering holds across
// concurrent writers with skewed clocks.
type ChangeEvent struct {
	ID         int64         `json:"id"`
	VehicleVIN string        `json:"vehicleVin"`
	UpdatedBy  string        `json:"updatedBy"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Changes    []FieldChange `json:"changes"`
}
