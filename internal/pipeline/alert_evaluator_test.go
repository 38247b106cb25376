package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/geo"
)

const (
	centerLat = 55.6761
	centerLon = 12.5683
)

func fence(id string, enter, exit bool) domain.Geofence {
	return domain.Geofence{
		ID:              id,
		VehicleID:       "veh-1",
		CenterLatitude:  centerLat,
		CenterLongitude: centerLon,
		RadiusMeters:    1000,
		IsActive:        true,
		AlertOnEnter:    enter,
		AlertOnExit:     exit,
	}
}

func at(lat, lon float64) domain.Position {
	return domain.Position{DeviceExternalID: "357", Latitude: lat, Longitude: lon}
}

var (
	inside  = at(centerLat, centerLon)
	outside = at(centerLat+0.02, centerLon)
)

func TestTransitions(t *testing.T) {
	onEdge := geo.Destination(geo.Point(centerLat, centerLon), 90, 1000)
	edge := at(onEdge.Lat(), onEdge.Lon())

	tests := []struct {
		name     string
		fences   []domain.Geofence
		current  domain.Position
		previous *domain.Position
		want     []domain.AlertType
	}{
		{"first point inside", []domain.Geofence{fence("a", true, true)}, inside, nil, nil},
		{"first point outside", []domain.Geofence{fence("a", true, true)}, outside, nil, nil},
		{"enter", []domain.Geofence{fence("a", true, false)}, inside, &outside, []domain.AlertType{domain.AlertEnter}},
		{"exit", []domain.Geofence{fence("a", false, true)}, outside, &inside, []domain.AlertType{domain.AlertExit}},
		{"enter without flag", []domain.Geofence{fence("a", false, true)}, inside, &outside, nil},
		{"exit without flag", []domain.Geofence{fence("a", true, false)}, outside, &inside, nil},
		{"no flags", []domain.Geofence{fence("a", false, false)}, inside, &outside, nil},
		{"stays inside", []domain.Geofence{fence("a", true, true)}, inside, &inside, nil},
		{"stays outside", []domain.Geofence{fence("a", true, true)}, outside, &outside, nil},
		{"boundary counts as inside", []domain.Geofence{fence("a", true, true)}, edge, &outside, []domain.AlertType{domain.AlertEnter}},
		{"leaving boundary", []domain.Geofence{fence("a", true, true)}, outside, &edge, []domain.AlertType{domain.AlertExit}},
		{
			"fences are independent",
			[]domain.Geofence{fence("a", true, false), fence("b", false, true), fence("c", true, true)},
			inside, &outside,
			[]domain.AlertType{domain.AlertEnter, domain.AlertEnter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Transitions(tt.fences, "dev-1", tt.current, tt.previous)
			var got []domain.AlertType
			for _, a := range alerts {
				got = append(got, a.AlertType)
				assert.Equal(t, "dev-1", a.DeviceID)
				assert.Equal(t, tt.current.Latitude, a.Latitude)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitions_SkipsInactive(t *testing.T) {
	g := fence("a", true, true)
	g.IsActive = false

	assert.Empty(t, Transitions([]domain.Geofence{g}, "dev-1", inside, &outside))
}

type recordingPublisher struct {
	published []domain.GeofenceAlert
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, a domain.GeofenceAlert) error {
	r.published = append(r.published, a)
	return r.err
}

func TestEvaluate_StoresAndPublishes(t *testing.T) {
	mem := newMemStore()
	mem.geofences["veh-1"] = []domain.Geofence{fence("a", true, true)}
	pub := &recordingPublisher{err: errors.New("broker down")}
	e := NewGeofenceEvaluator(mem, pub)

	alerts, err := e.Evaluate(context.Background(), "veh-1", "dev-1", inside, &outside)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(1), alerts[0].ID)
	assert.Equal(t, "veh-1", alerts[0].VehicleID)
	assert.Len(t, mem.alerts, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "a", pub.published[0].GeofenceID)
}

func TestEvaluate_NoGeofences(t *testing.T) {
	e := NewGeofenceEvaluator(newMemStore(), nil)

	alerts, err := e.Evaluate(context.Background(), "veh-1", "dev-1", inside, &outside)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestEvaluate_InsertFailureDoesNotStopOtherFences(t *testing.T) {
	mem := newMemStore()
	mem.geofences["veh-1"] = []domain.Geofence{fence("a", true, false), fence("b", true, false)}
	mem.alertFn = func(a *domain.GeofenceAlert) error {
		if a.GeofenceID == "a" {
			return errors.New("constraint violation")
		}
		return nil
	}
	e := NewGeofenceEvaluator(mem, nil)

	alerts, err := e.Evaluate(context.Background(), "veh-1", "dev-1", inside, &outside)
	require.Error(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "b", alerts[0].GeofenceID)
}
