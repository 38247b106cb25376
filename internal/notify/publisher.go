// Package notify fans geofence alerts out to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lejio/tracking/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, alert domain.GeofenceAlert) error
}

type alertMessage struct {
	ID         int64         `json:"id"`
	GeofenceID string        `json:"geofence_id"`
	DeviceID   string        `json:"device_id"`
	VehicleID  string        `json:"vehicle_id,omitempty"`
	AlertType  string        `json:"alert_type"`
	Location   alertLocation `json:"location"`
	CreatedAt  time.Time     `json:"created_at"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Encode renders the wire form shared by every transport.
func Encode(alert domain.GeofenceAlert) ([]byte, error) {
	body, err := json.Marshal(alertMessage{
		ID:         alert.ID,
		GeofenceID: alert.GeofenceID,
		DeviceID:   alert.DeviceID,
		VehicleID:  alert.VehicleID,
		AlertType:  string(alert.AlertType),
		Location: alertLocation{
			Latitude:  alert.Latitude,
			Longitude: alert.Longitude,
		},
		CreatedAt: alert.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal alert: %w", err)
	}
	return body, nil
}

// Multi publishes to every sink it holds. One failing sink does not stop the
// others; all failures are joined.
type Multi struct {
	publishers []Publisher
}

func NewMulti(publishers ...Publisher) *Multi {
	m := &Multi{}
	for _, p := range publishers {
		m.Add(p)
	}
	return m
}

func (m *Multi) Add(p Publisher) {
	if p != nil {
		m.publishers = append(m.publishers, p)
	}
}

func (m *Multi) Len() int {
	return len(m.publishers)
}

func (m *Multi) Publish(ctx context.Context, alert domain.GeofenceAlert) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
