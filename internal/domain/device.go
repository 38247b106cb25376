package domain

import "time"

// Device is the registry record for a tracker. VehicleID is empty for a
// tracker not assigned to any vehicle.
type Device struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	VehicleID  string `json:"vehicle_id"`
	IsActive   bool   `json:"is_active"`
}

type VehicleLocation struct {
	VehicleID string    `json:"vehicle_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}
