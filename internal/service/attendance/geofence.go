package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/geo"
)

// ValidateGeofence compares point with the location's radius. A point exactly on the
// boundary is accepted.
func ValidateGeofence(point geo.Point, loc location.Location) attendance.GeofenceResult {
	distance := geo.DistanceKm(point, loc.Point())

	result := attendance.GeofenceResult{
		Accepted:   distance <= loc.RadiusKm,
		DistanceKm: distance,
		RadiusKm:   loc.RadiusKm,
	}
	if result.Accepted {
		result.Message = fmt.Sprintf("you are within %.2f km of %s", loc.RadiusKm, loc.Name)
	} else {
		result.Message = fmt.Sprintf("you are %.2f km away, limit is %.2f km", distance, loc.RadiusKm)
	}
	return result
}
