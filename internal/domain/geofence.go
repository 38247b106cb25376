package domain

import "time"

type Geofence struct {
	ID              string
	VehicleID       string
	CenterLatitude  float64
	CenterLongitude float64
	RadiusMeters    float64
	IsActive        bool
	AlertOnEnter    bool
	AlertOnExit     bool
}

type AlertType string

const (
	AlertEnter AlertType = "enter"
	AlertExit  AlertType = "exit"
)

type GeofenceAlert struct {
	ID         int64     `json:"id,omitempty"`
	GeofenceID string    `json:"geofence_id"`
	DeviceID   string    `json:"device_id"`
	VehicleID  string    `json:"vehicle_id,omitempty"`
	AlertType  AlertType `json:"alert_type"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `json:"created_at"`
}
