package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var copenhagen = Point(55.6761, 12.5683)

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(copenhagen, copenhagen))
}

func TestDistance_KnownPairs(t *testing.T) {
	// Copenhagen to Aarhus is roughly 157 km as the crow flies.
	aarhus := Point(56.1629, 10.2039)
	d := Distance(copenhagen, aarhus)
	assert.InDelta(t, 156_800, d, 1_500)

	// one degree of latitude on this sphere
	d = Distance(Point(0, 0), Point(1, 0))
	assert.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1e-6)
}

func TestDistance_Symmetric(t *testing.T) {
	other := Point(-33.8688, 151.2093)
	assert.InDelta(t, Distance(copenhagen, other), Distance(other, copenhagen), 1e-6)
}

func TestCircleMembership(t *testing.T) {
	fence := Circle{Center: copenhagen, Radius: 1000}

	assert.True(t, fence.Contains(copenhagen), "center is inside")

	outside := Point(55.6761+0.009, 12.5683)
	assert.Greater(t, Distance(copenhagen, outside), 1000.0)
	assert.False(t, fence.Contains(outside), "~1001m away is outside")

	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		edge := Destination(copenhagen, bearing, 1000)
		assert.InDelta(t, 1000, Distance(copenhagen, edge), 1e-6, "bearing %v", bearing)
		assert.True(t, fence.Contains(edge), "point exactly on the boundary is inside, bearing %v", bearing)
	}
}

func TestCircleBoundaryInclusive(t *testing.T) {
	p := Point(55.6851, 12.5683)
	d := Distance(copenhagen, p)

	assert.True(t, Circle{Center: copenhagen, Radius: d}.Contains(p))
	assert.False(t, Circle{Center: copenhagen, Radius: d - 0.01}.Contains(p))
}

func TestDestination_WrapsLongitude(t *testing.T) {
	p := Destination(Point(0, 179.9999), 90, 1000)
	assert.Less(t, p.Lon(), 0.0)
	assert.GreaterOrEqual(t, p.Lon(), -180.0)
}

func TestCircleRing(t *testing.T) {
	c := Circle{Center: copenhagen, Radius: 250}
	ring := c.Ring(16)

	require.Len(t, ring, 17)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.True(t, ring.Closed())
	for _, v := range ring {
		assert.InDelta(t, 250, Distance(copenhagen, v), 1e-6)
	}

	assert.Len(t, c.Ring(1), 4)
}
