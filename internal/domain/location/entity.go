package location

import (
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/geo"
)

// DefaultRadiusKm is applied when a location is created without a radius (50 m).
const DefaultRadiusKm = 0.05

// Location is a work site with a circular geofence.
type Location struct {
	ID        string
	Name      string
	Address   *string
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}
