package models

import "time"

// Known locations for a vehicle inside the dealership group. Free-form values
// are accepted by the store; these are the ones the intake UI offers.
const (
	LocationNave           = "Nave"
	LocationTallerToyota   = "Taller Toyota-Magia"
	LocationTallerStellant = "Taller Stellantis"
)

// Vehicle is the current known state of one physical vehicle. One row per VIN.
// Rows are never deleted: a vehicle that leaves the group is closed, not removed.
type Vehicle struct {
	ID           int        `json:"id"`
	VIN          string     `json:"vin"`
	Operator     string     `json:"operator"`
	Location     string     `json:"location"`
	NumberPlate  string     `json:"number_plate"`
	Maker        string     `json:"maker"`
	Model        string     `json:"model"`
	Availability string     `json:"availability"`
	Comments     string     `json:"comments"`
	// CarPicture is the object-store key of the intake photo.
	CarPicture    string     `json:"car_picture"`
	Evidences     []string   `json:"evidences,omitempty"`
	StateVerified string     `json:"state_verified"`
	EverythingOK  string     `json:"everything_ok"`
	// RegistryDuration is how long the intake registration took, in seconds.
	RegistryDuration float64    `json:"registry_duration"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
}
