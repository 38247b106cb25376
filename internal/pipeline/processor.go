package pipeline

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
)

type deviceResolver interface {
	Resolve(ctx context.Context, externalID string) (*domain.Device, error)
}

type positionHistory interface {
	PreviousPosition(ctx context.Context, deviceID, excludeID string) (*domain.StoredPosition, error)
}

// Processor takes one parsed point through resolve, store, project and
// geofence evaluation.
type Processor struct {
	resolver  deviceResolver
	writer    *PositionWriter
	history   positionHistory
	projector *StateProjector
	evaluator *GeofenceEvaluator
}

func NewProcessor(
	resolver deviceResolver,
	writer *PositionWriter,
	history positionHistory,
	projector *StateProjector,
	evaluator *GeofenceEvaluator,
) *Processor {
	return &Processor{
		resolver:  resolver,
		writer:    writer,
		history:   history,
		projector: projector,
		evaluator: evaluator,
	}
}

// Process returns a *domain.PointError on failure. Failures after the point
// was stored carry its PointID.
func (p *Processor) Process(ctx context.Context, pos *domain.Position, receivedAt time.Time) (domain.PointResult, error) {
	device, err := p.resolver.Resolve(ctx, pos.DeviceExternalID)
	if err != nil {
		code := domain.CodeOf(err)
		if !errors.Is(err, domain.ErrUnknownDevice) && !errors.Is(err, domain.ErrInactiveDevice) {
			code = domain.CodeLookupFailed
		}
		return domain.PointResult{}, &domain.PointError{Code: code, DeviceExternalID: pos.DeviceExternalID, Err: err}
	}

	stored, err := p.writer.Write(ctx, device, pos, receivedAt)
	if err != nil {
		return domain.PointResult{}, err
	}

	result := domain.PointResult{
		DeviceID:   pos.DeviceExternalID,
		PointID:    stored.ID,
		RecordedAt: stored.RecordedAt,
	}
	if stored.OdometerAnomaly {
		result.Anomalies = append(result.Anomalies, AnomalyOdometerRegression)
	}

	if device.VehicleID == "" {
		log.WithField("device", device.ExternalID).Debug("Device has no vehicle, skipping projection")
		return result, nil
	}

	if err := p.projector.Project(ctx, device.VehicleID, stored); err != nil {
		return result, &domain.PointError{
			Code:             domain.CodeProjectionFailed,
			DeviceExternalID: pos.DeviceExternalID,
			PointID:          stored.ID,
			Err:              err,
		}
	}

	prev, err := p.history.PreviousPosition(ctx, device.ID, stored.ID)
	if err != nil {
		return result, &domain.PointError{
			Code:             domain.CodeGeofenceFailed,
			DeviceExternalID: pos.DeviceExternalID,
			PointID:          stored.ID,
			Err:              err,
		}
	}
	var previous *domain.Position
	if prev != nil {
		previous = &prev.Position
	}

	alerts, err := p.evaluator.Evaluate(ctx, device.VehicleID, device.ID, stored.Position, previous)
	result.Alerts = len(alerts)
	if err != nil {
		return result, &domain.PointError{
			Code:             domain.CodeGeofenceFailed,
			DeviceExternalID: pos.DeviceExternalID,
			PointID:          stored.ID,
			Err:              err,
		}
	}

	return result, nil
}
