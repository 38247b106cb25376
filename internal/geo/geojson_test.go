package geo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lejio/tracking/internal/domain"
)

func TestGeofenceCollection(t *testing.T) {
	fc := GeofenceCollection([]domain.Geofence{
		{ID: "gf-1", VehicleID: "veh-1", CenterLatitude: 55.6761, CenterLongitude: 12.5683, RadiusMeters: 500, IsActive: true, AlertOnEnter: true},
	})

	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "gf-1", f.ID)
	assert.Equal(t, 500.0, f.Properties["radius_meters"])

	poly, ok := f.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], circleSegments+1)

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"FeatureCollection"`)
	assert.Contains(t, string(b), `"Polygon"`)
}

func TestTrack(t *testing.T) {
	t0 := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	positions := []domain.StoredPosition{
		{Position: domain.Position{Latitude: 55.0, Longitude: 12.0, RecordedAt: t0}},
		{Position: domain.Position{Latitude: 55.1, Longitude: 12.1, RecordedAt: t0.Add(time.Minute)}},
	}

	f := Track("dev-1", positions)

	line, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, line, 2)
	assert.Equal(t, orb.Point{12.1, 55.1}, line[1])
	assert.Equal(t, []string{"2025-03-14T09:00:00Z", "2025-03-14T09:01:00Z"}, f.Properties["recorded_at"])
}
