package pipeline

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/metrics"
)

type vehicleStore interface {
	UpdateVehicleLocation(ctx context.Context, vehicleID string, lat, lon float64) (bool, error)
}

type liveState interface {
	PipelineStateUpdate(ctx context.Context, vehicleID string, p *domain.StoredPosition, ttl time.Duration) error
}

// StateProjector overwrites a vehicle's last known location with every
// accepted point. There is no recorded_at comparison: a late point rewinds
// the location.
type StateProjector struct {
	db   vehicleStore
	live liveState
	ttl  time.Duration
}

// NewStateProjector builds a projector. live may be nil.
func NewStateProjector(db vehicleStore, live liveState, ttl time.Duration) *StateProjector {
	return &StateProjector{db: db, live: live, ttl: ttl}
}

func (p *StateProjector) Project(ctx context.Context, vehicleID string, pos *domain.StoredPosition) error {
	found, err := p.db.UpdateVehicleLocation(ctx, vehicleID, pos.Latitude, pos.Longitude)
	if err != nil {
		metrics.ProjectionFailures.Add(1)
		return err
	}
	if !found {
		metrics.ProjectionFailures.Add(1)
		return fmt.Errorf("vehicle %s: %w", vehicleID, domain.ErrNotFound)
	}

	if p.live != nil {
		if err := p.live.PipelineStateUpdate(ctx, vehicleID, pos, p.ttl); err != nil {
			metrics.LiveStateFailures.Add(1)
			log.WithError(err).WithField("vehicle", vehicleID).Warn("Redis state update failed")
		}
	}
	return nil
}
