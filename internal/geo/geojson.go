package geo

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"lejio/tracking/internal/domain"
)

const circleSegments = 64

func Point(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

func GeofenceCircle(g domain.Geofence) Circle {
	return Circle{Center: Point(g.CenterLatitude, g.CenterLongitude), Radius: g.RadiusMeters}
}

// GeofenceCollection renders geofences as polygon features.
func GeofenceCollection(fences []domain.Geofence) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range fences {
		f := geojson.NewFeature(orb.Polygon{GeofenceCircle(g).Ring(circleSegments)})
		f.ID = g.ID
		f.Properties["vehicle_id"] = g.VehicleID
		f.Properties["center"] = []float64{g.CenterLongitude, g.CenterLatitude}
		f.Properties["radius_meters"] = g.RadiusMeters
		f.Properties["alert_on_enter"] = g.AlertOnEnter
		f.Properties["alert_on_exit"] = g.AlertOnExit
		fc.Append(f)
	}
	return fc
}

// Track renders a device history as a single LineString feature.
func Track(deviceID string, positions []domain.StoredPosition) *geojson.Feature {
	line := make(orb.LineString, 0, len(positions))
	times := make([]string, 0, len(positions))
	for _, p := range positions {
		line = append(line, Point(p.Latitude, p.Longitude))
		times = append(times, p.RecordedAt.UTC().Format(time.RFC3339))
	}

	f := geojson.NewFeature(line)
	f.ID = deviceID
	f.Properties["device_id"] = deviceID
	f.Properties["recorded_at"] = times
	return f
}
