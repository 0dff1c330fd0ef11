package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	points := []Point{
		{0, 0},
		{-6.2088, 106.8456},
		{51.5074, -0.1278},
		{90, 0},
		{-90, 180},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceKm(p, p), 1e-9, "point %+v", p)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{0, 0}, {0, 1}},
		{{-6.2088, 106.8456}, {-7.2575, 112.7521}},
		{{40.7128, -74.0060}, {34.0522, -118.2437}},
		{{10, 179.9}, {-10, -179.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceKm(p[0], p[1]), DistanceKm(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKm_KnownFixtures(t *testing.T) {
	// one degree of longitude on the equator
	assert.InDelta(t, 111.19, DistanceKm(Point{0, 0}, Point{0, 1}), 0.5)

	// along a meridian the haversine reduces to R * dLat
	offset := 0.6 / (EarthRadiusKm * math.Pi / 180)
	assert.InDelta(t, 0.6, DistanceKm(Point{10, 20}, Point{10 + offset, 20}), 1e-9)

	// half the circumference between antipodes
	assert.InDelta(t, math.Pi*EarthRadiusKm, DistanceKm(Point{0, 0}, Point{0, 180}), 1e-6)
}

func TestDistanceKm_NonNegative(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 30 {
		for lon := -180.0; lon <= 180; lon += 45 {
			assert.GreaterOrEqual(t, DistanceKm(Point{lat, lon}, Point{12.5, -33.3}), 0.0)
		}
	}
}

func TestPoint_Valid(t *testing.T) {
	assert.True(t, Point{90, 180}.Valid())
	assert.True(t, Point{-90, -180}.Valid())
	assert.False(t, Point{90.0001, 0}.Valid())
	assert.False(t, Point{0, -180.5}.Valid())
}
