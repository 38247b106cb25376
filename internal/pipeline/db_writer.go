package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/metrics"
)

const AnomalyOdometerRegression = "odometer_regression"

type positionStore interface {
	AppendPosition(ctx context.Context, p *domain.StoredPosition) (string, error)
	LastOdometer(ctx context.Context, deviceID string) (*float64, error)
}

// PositionWriter appends accepted points to the position log.
type PositionWriter struct {
	db         positionStore
	retryDelay time.Duration
}

func NewPositionWriter(db positionStore) *PositionWriter {
	return &PositionWriter{db: db, retryDelay: 500 * time.Millisecond}
}

// Write stores pos for device. An odometer lower than the device's last one is
// flagged on the record and logged; the point is stored regardless.
func (w *PositionWriter) Write(ctx context.Context, device *domain.Device, pos *domain.Position, receivedAt time.Time) (*domain.StoredPosition, error) {
	stored := &domain.StoredPosition{
		Position:   *pos,
		DeviceID:   device.ID,
		ReceivedAt: receivedAt,
	}

	if pos.Odometer != nil {
		last, err := w.db.LastOdometer(ctx, device.ID)
		switch {
		case err != nil:
			log.WithError(err).WithField("device", device.ExternalID).Warn("Odometer check skipped")
		case last != nil && *pos.Odometer < *last:
			stored.OdometerAnomaly = true
			metrics.OdometerAnomalies.Add(1)
			log.WithFields(log.Fields{
				"device":   device.ExternalID,
				"odometer": *pos.Odometer,
				"previous": *last,
			}).Warn("Odometer went backwards")
		}
	}

	id, err := w.db.AppendPosition(ctx, stored)
	if err != nil && id == "" && ctx.Err() == nil {
		log.WithError(err).WithField("device", device.ExternalID).Warn("Position write failed, retrying")
		select {
		case <-time.After(w.retryDelay):
			id, err = w.db.AppendPosition(ctx, stored)
		case <-ctx.Done():
		}
	}

	switch {
	case id == "":
		metrics.StoreWriteFailures.Add(1)
		if err == nil {
			err = ctx.Err()
		}
		return nil, &domain.PointError{
			Code:             domain.CodeStoreWriteFailed,
			DeviceExternalID: device.ExternalID,
			Err:              err,
		}
	case err != nil:
		// the row is in; only the last_seen_at stamp was lost
		log.WithError(err).WithField("device", device.ExternalID).Warn("Device last_seen_at not updated")
	}

	return stored, nil
}
