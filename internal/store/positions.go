package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lejio/tracking/internal/domain"
)

const positionColumns = `id, device_id, latitude, longitude, speed, heading, altitude, odometer,
	ignition_on, fuel_level, battery_level, recorded_at, received_at, odometer_anomaly`

// AppendPosition inserts one position and stamps the device's last_seen_at.
// Rows are never updated afterwards; seq keeps arrival order per device.
func (s *TimescaleStore) AppendPosition(ctx context.Context, p *domain.StoredPosition) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO gps_positions
			(id, device_id, latitude, longitude, speed, heading, altitude, odometer,
			 ignition_on, fuel_level, battery_level, recorded_at, received_at, odometer_anomaly, raw_payload)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		p.ID,
		p.DeviceID,
		p.Latitude,
		p.Longitude,
		p.Speed,
		p.Heading,
		p.Altitude,
		p.Odometer,
		p.IgnitionOn,
		p.FuelLevel,
		p.BatteryLevel,
		p.RecordedAt,
		p.ReceivedAt,
		p.OdometerAnomaly,
		rawPayload(p.RawPayload),
	)
	if err != nil {
		return "", fmt.Errorf("insert position for device %s: %w", p.DeviceID, err)
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE devices SET last_seen_at = $2 WHERE id = $1`,
		p.DeviceID, p.ReceivedAt,
	); err != nil {
		return p.ID, fmt.Errorf("touch device %s: %w", p.DeviceID, err)
	}

	return p.ID, nil
}

// PreviousPosition returns the latest stored position of the device by
// recorded_at, ignoring excludeID. It returns nil when there is none.
func (s *TimescaleStore) PreviousPosition(ctx context.Context, deviceID, excludeID string) (*domain.StoredPosition, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+positionColumns+`
		FROM gps_positions
		WHERE device_id = $1 AND id <> $2
		ORDER BY recorded_at DESC, seq DESC
		LIMIT 1
	`, deviceID, excludeID)

	p, err := scanPosition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous position for device %s: %w", deviceID, err)
	}
	return p, nil
}

// LastOdometer returns the odometer of the most recently arrived position
// that carried one.
func (s *TimescaleStore) LastOdometer(ctx context.Context, deviceID string) (*float64, error) {
	var odometer float64
	err := s.pool.QueryRow(ctx, `
		SELECT odometer
		FROM gps_positions
		WHERE device_id = $1 AND odometer IS NOT NULL
		ORDER BY seq DESC
		LIMIT 1
	`, deviceID).Scan(&odometer)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last odometer for device %s: %w", deviceID, err)
	}
	return &odometer, nil
}

func (s *TimescaleStore) PositionHistory(ctx context.Context, q domain.HistoryQuery) ([]domain.StoredPosition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+positionColumns+`
		FROM gps_positions
		WHERE device_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC, seq ASC
		LIMIT $4
	`, q.DeviceID, q.From, q.To, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("position history for device %s: %w", q.DeviceID, err)
	}
	defer rows.Close()

	var out []domain.StoredPosition
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// rawPayload maps an absent payload to NULL rather than an invalid empty JSONB.
func rawPayload(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func scanPosition(row pgx.Row) (*domain.StoredPosition, error) {
	var p domain.StoredPosition
	err := row.Scan(
		&p.ID,
		&p.DeviceID,
		&p.Latitude,
		&p.Longitude,
		&p.Speed,
		&p.Heading,
		&p.Altitude,
		&p.Odometer,
		&p.IgnitionOn,
		&p.FuelLevel,
		&p.BatteryLevel,
		&p.RecordedAt,
		&p.ReceivedAt,
		&p.OdometerAnomaly,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
