package store

import (
	"context"
	"fmt"

	"lejio/tracking/internal/domain"
)

// InsertAlert stores the alert and fills in its id and created_at.
func (s *TimescaleStore) InsertAlert(ctx context.Context, a *domain.GeofenceAlert) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO geofence_alerts
			(geofence_id, device_id, alert_type, latitude, longitude, created_at)
		VALUES
			($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`,
		a.GeofenceID,
		a.DeviceID,
		string(a.AlertType),
		a.Latitude,
		a.Longitude,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert %s alert for geofence %s: %w", a.AlertType, a.GeofenceID, err)
	}
	return nil
}

func (s *TimescaleStore) AlertsByGeofence(ctx context.Context, geofenceID string, limit int) ([]domain.GeofenceAlert, error) {
	return s.queryAlerts(ctx, `WHERE geofence_id = $1`, geofenceID, limit)
}

func (s *TimescaleStore) AlertsByDevice(ctx context.Context, deviceID string, limit int) ([]domain.GeofenceAlert, error) {
	return s.queryAlerts(ctx, `WHERE device_id = $1`, deviceID, limit)
}

func (s *TimescaleStore) queryAlerts(ctx context.Context, where, id string, limit int) ([]domain.GeofenceAlert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, geofence_id, device_id, alert_type, latitude, longitude, created_at
		FROM geofence_alerts
		`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []domain.GeofenceAlert
	for rows.Next() {
		var a domain.GeofenceAlert
		var alertType string
		if err := rows.Scan(&a.ID, &a.GeofenceID, &a.DeviceID, &alertType, &a.Latitude, &a.Longitude, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.AlertType = domain.AlertType(alertType)
		out = append(out, a)
	}
	return out, rows.Err()
}
