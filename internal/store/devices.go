package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lejio/tracking/internal/domain"
)

// LookupDevice reads the device directory. Unregistered ids yield
// domain.ErrNotFound.
func (s *TimescaleStore) LookupDevice(ctx context.Context, externalID string) (*domain.Device, error) {
	var d domain.Device
	err := s.pool.QueryRow(ctx, `
		SELECT id, external_id, COALESCE(vehicle_id, ''), is_active
		FROM devices
		WHERE external_id = $1
	`, externalID).Scan(&d.ID, &d.ExternalID, &d.VehicleID, &d.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("device %s: %w", externalID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup device %s: %w", externalID, err)
	}
	return &d, nil
}
