// Package diff computes the field-level delta between a stored vehicle record
// and a proposed edit. The output drives both the journal append and the
// record update: an empty result means nothing is persisted.
package diff

import (
	"strings"

	"github.com/fleetyard/fleetyard/internal/models"
)

// Pseudo-field recorded for free-text annotations. It is never stored on the
// vehicle row itself, only in the journal.
const FieldModificationComment = "modificationComment"

// Stored field names as they appear in FieldChange entries.
const (
	FieldLocation     = "location"
	FieldNumberPlate  = "number_plate"
	FieldAvailability = "availability"
	FieldCarPicture   = "car_picture"
)

// Proposed carries the caller's candidate values for one edit submission.
// A nil pointer means "no change requested" for that field; that is also how
// an omitted JSON field arrives, so absent and explicit-null behave the same.
type Proposed struct {
	Location            *string `json:"location"`
	NumberPlate         *string `json:"number_plate"`
	Availability        *string `json:"availability"`
	ModificationComment *string `json:"modificationComment"`
	// CarPicture is the resolved object-store key of a newly uploaded photo.
	// It is filled in by the service after the upload completes, never by the client.
	CarPicture *string `json:"-"`
}

// Changes returns the ordered list of field changes the edit would apply.
// Evaluation order is fixed (location, plate, availability, comment, photo)
// so output is deterministic. An empty result means the edit is a no-op and
// callers must not create a ChangeEvent for it.
func Changes(current models.Vehicle, p Proposed) []models.FieldChange {
	var out []models.FieldChange

	// Location is freely mutable.
	if p.Location != nil && *p.Location != current.Location {
		out = append(out, change(FieldLocation, stored(current.Location), *p.Location))
	}

	// The plate may only go from empty to non-empty. Any other combination,
	// including an attempt to overwrite an existing plate, is silently ignored.
	if p.NumberPlate != nil {
		proposed := strings.TrimSpace(*p.NumberPlate)
		if strings.TrimSpace(current.NumberPlate) == "" && proposed != "" {
			out = append(out, change(FieldNumberPlate, stored(current.NumberPlate), proposed))
		}
	}

	// Availability is freely mutable, like location.
	if p.Availability != nil && *p.Availability != current.Availability {
		out = append(out, change(FieldAvailability, stored(current.Availability), *p.Availability))
	}

	// A non-empty comment is always additive: there is no stored value to diff
	// against, so the old value is the empty string by convention.
	if p.ModificationComment != nil {
		if text := strings.TrimSpace(*p.ModificationComment); text != "" {
			empty := ""
			out = append(out, models.FieldChange{
				Field:    FieldModificationComment,
				OldValue: &empty,
				NewValue: &text,
			})
		}
	}

	// A new photo reference always supersedes the previous one. The service
	// resolves the upload before diffing, so the value here is final.
	if p.CarPicture != nil {
		out = append(out, change(FieldCarPicture, stored(current.CarPicture), *p.CarPicture))
	}

	return out
}

func change(field string, old *string, val string) models.FieldChange {
	return models.FieldChange{Field: field, OldValue: old, NewValue: &val}
}

// stored maps an empty stored value to nil so the journal records "absent"
// rather than empty string for fields that were never set.
func stored(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
