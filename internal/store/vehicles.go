package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lejio/tracking/internal/domain"
)

// UpdateVehicleLocation overwrites the last known coordinates. It reports
// whether a vehicle row matched.
func (s *TimescaleStore) UpdateVehicleLocation(ctx context.Context, vehicleID string, lat, lon float64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vehicles
		SET latitude = $2, longitude = $3, location_updated_at = NOW()
		WHERE id = $1
	`, vehicleID, lat, lon)
	if err != nil {
		return false, fmt.Errorf("update vehicle %s location: %w", vehicleID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *TimescaleStore) VehicleLocation(ctx context.Context, vehicleID string) (*domain.VehicleLocation, error) {
	var v domain.VehicleLocation
	err := s.pool.QueryRow(ctx, `
		SELECT id, latitude, longitude, location_updated_at
		FROM vehicles
		WHERE id = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
	`, vehicleID).Scan(&v.VehicleID, &v.Latitude, &v.Longitude, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("vehicle %s location: %w", vehicleID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("vehicle %s location: %w", vehicleID, err)
	}
	return &v, nil
}
