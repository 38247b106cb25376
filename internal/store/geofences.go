package store

import (
	"context"
	"fmt"

	"lejio/tracking/internal/domain"
)

func (s *TimescaleStore) ListActiveGeofences(ctx context.Context, vehicleID string) ([]domain.Geofence, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, vehicle_id, center_latitude, center_longitude, radius_meters,
		       is_active, alert_on_enter, alert_on_exit
		FROM geofences
		WHERE vehicle_id = $1 AND is_active = true
		ORDER BY id
	`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list geofences for vehicle %s: %w", vehicleID, err)
	}
	defer rows.Close()

	var out []domain.Geofence
	for rows.Next() {
		var g domain.Geofence
		if err := rows.Scan(
			&g.ID,
			&g.VehicleID,
			&g.CenterLatitude,
			&g.CenterLongitude,
			&g.RadiusMeters,
			&g.IsActive,
			&g.AlertOnEnter,
			&g.AlertOnExit,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
