package attendance

import (
	"context"
)

type AttendanceService interface {
	// ValidateAttendance checks a position against a location without recording anything.
	ValidateAttendance(ctx context.Context, req ValidateAttendanceRequest) (GeofenceResult, error)

	// RecordAttendance stores a check-in or check-out when it is inside the geofence.
	// Rejected events return *OutsideGeofenceError and are not stored.
	RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, error)
}
