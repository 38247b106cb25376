package domain

import (
	"encoding/json"
	"time"
)

// Position is the vendor-agnostic form of one GPS report. Optional telemetry
// is nil when the payload did not carry a usable value.
type Position struct {
	DeviceExternalID string

	Latitude  float64
	Longitude float64

	Speed        *float64
	Heading      *float64
	Altitude     *float64
	Odometer     *float64
	IgnitionOn   *bool
	FuelLevel    *float64
	BatteryLevel *float64

	RecordedAt time.Time

	RawPayload json.RawMessage
}

// StoredPosition is a Position as it was appended to the store.
type StoredPosition struct {
	Position

	ID              string
	DeviceID        string
	ReceivedAt      time.Time
	OdometerAnomaly bool
}

type HistoryQuery struct {
	DeviceID string
	From     time.Time
	To       time.Time
	Limit    int
}

func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func ValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}
