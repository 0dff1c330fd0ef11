package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrOutsideGeofence = errors.New("you are outside the allowed radius")
	ErrInvalidKind     = errors.New("attendance kind must be CHECK_IN or CHECK_OUT")
)

// OutsideGeofenceError reports how far a rejected event was from its location.
type OutsideGeofenceError struct {
	Result GeofenceResult
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("%s: you are %.2f km away, limit is %.2f km",
		ErrOutsideGeofence.Error(), e.Result.DistanceKm, e.Result.RadiusKm)
}

func (e *OutsideGeofenceError) Is(target error) bool {
	return target == ErrOutsideGeofence
}
