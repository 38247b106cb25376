package pipeline

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/geo"
	"lejio/tracking/internal/metrics"
	"lejio/tracking/internal/notify"
)

type geofenceStore interface {
	ListActiveGeofences(ctx context.Context, vehicleID string) ([]domain.Geofence, error)
	InsertAlert(ctx context.Context, a *domain.GeofenceAlert) error
}

type GeofenceEvaluator struct {
	db        geofenceStore
	publisher notify.Publisher
}

// NewGeofenceEvaluator builds an evaluator. publisher may be nil.
func NewGeofenceEvaluator(db geofenceStore, publisher notify.Publisher) *GeofenceEvaluator {
	return &GeofenceEvaluator{db: db, publisher: publisher}
}

// Evaluate stores and publishes the alerts raised by moving from previous to
// current across the vehicle's active geofences. previous is nil for a
// device's first point. A failed insert does not stop the remaining alerts;
// the stored ones are returned together with the joined error.
func (e *GeofenceEvaluator) Evaluate(ctx context.Context, vehicleID, deviceID string, current domain.Position, previous *domain.Position) ([]domain.GeofenceAlert, error) {
	fences, err := e.db.ListActiveGeofences(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	var stored []domain.GeofenceAlert
	var errs []error
	for _, alert := range Transitions(fences, deviceID, current, previous) {
		alert.VehicleID = vehicleID
		if err := e.db.InsertAlert(ctx, &alert); err != nil {
			errs = append(errs, err)
			continue
		}
		metrics.AlertsRaised.Add(1)
		stored = append(stored, alert)

		log.WithFields(log.Fields{
			"geofence": alert.GeofenceID,
			"vehicle":  vehicleID,
			"type":     alert.AlertType,
		}).Info("Geofence alert raised")

		if e.publisher == nil {
			continue
		}
		if err := e.publisher.Publish(ctx, alert); err != nil {
			metrics.AlertPublishFailures.Add(1)
			log.WithError(err).WithField("geofence", alert.GeofenceID).Warn("Alert publish failed")
		}
	}
	return stored, errors.Join(errs...)
}

// Transitions compares membership of current and previous for every fence.
// Without a previous point no fence can change state.
func Transitions(fences []domain.Geofence, deviceID string, current domain.Position, previous *domain.Position) []domain.GeofenceAlert {
	var alerts []domain.GeofenceAlert
	here := geo.Point(current.Latitude, current.Longitude)

	for _, g := range fences {
		if !g.IsActive || (!g.AlertOnEnter && !g.AlertOnExit) {
			continue
		}

		circle := geo.GeofenceCircle(g)
		isInside := circle.Contains(here)
		wasInside := isInside
		if previous != nil {
			wasInside = circle.Contains(geo.Point(previous.Latitude, previous.Longitude))
		}

		var kind domain.AlertType
		switch {
		case g.AlertOnExit && wasInside && !isInside:
			kind = domain.AlertExit
		case g.AlertOnEnter && !wasInside && isInside:
			kind = domain.AlertEnter
		default:
			continue
		}

		alerts = append(alerts, domain.GeofenceAlert{
			GeofenceID: g.ID,
			DeviceID:   deviceID,
			AlertType:  kind,
			Latitude:   current.Latitude,
			Longitude:  current.Longitude,
		})
	}
	return alerts
}
