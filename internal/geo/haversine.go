package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean earth radius used for every distance in the
// service. orb's own geo package uses the WGS84 equatorial radius instead.
const EarthRadiusMeters = 6371000.0

// boundaryTolerance absorbs float noise for points constructed on a boundary.
const boundaryTolerance = 1e-6

// Distance is the haversine great-circle distance between two points in meters.
func Distance(a, b orb.Point) float64 {
	lat1 := toRad(a.Lat())
	lat2 := toRad(b.Lat())
	dLat := lat2 - lat1
	dLon := toRad(b.Lon() - a.Lon())

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Destination walks distance meters from origin along the initial bearing
// (degrees clockwise from north).
func Destination(origin orb.Point, bearingDeg, distance float64) orb.Point {
	lat1 := toRad(origin.Lat())
	lon1 := toRad(origin.Lon())
	brng := toRad(bearingDeg)
	delta := distance / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	lon := math.Mod(toDeg(lon2)+540, 360) - 180
	return orb.Point{lon, toDeg(lat2)}
}

// Circle is a geofence boundary. The edge belongs to the inside.
type Circle struct {
	Center orb.Point
	Radius float64
}

func (c Circle) Contains(p orb.Point) bool {
	return Distance(c.Center, p) <= c.Radius+boundaryTolerance
}

// Ring approximates the circle with the given number of vertices. The ring is
// closed.
func (c Circle) Ring(segments int) orb.Ring {
	if segments < 3 {
		segments = 3
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		ring = append(ring, Destination(c.Center, 360*float64(i)/float64(segments), c.Radius))
	}
	return append(ring, ring[0])
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
