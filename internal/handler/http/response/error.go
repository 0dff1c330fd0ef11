package response

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/auth"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/interval"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var conflictErr *shift.ConflictError
	if errors.As(err, &conflictErr) {
		ShiftConflict(w, err.Error(), shift.NewConflictResponse(conflictErr))
		return
	}

	var outsideErr *attendance.OutsideGeofenceError
	if errors.As(err, &outsideErr) {
		OutsideGeofence(w, outsideErr.Result.Message, outsideErr.Result, map[string]string{
			"distance_km": fmt.Sprintf("%.2f", outsideErr.Result.DistanceKm),
			"radius_km":   fmt.Sprintf("%.2f", outsideErr.Result.RadiusKm),
		})
		return
	}

	switch {
	// Auth and access errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, "An employee profile is required for this action")

	// Not found errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Location not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// State conflicts
	case errors.Is(err, shift.ErrShiftConflict):
		Conflict(w, shift.ErrShiftConflict.Error())
	case errors.Is(err, shift.ErrShiftNotCancellable):
		Conflict(w, "Only scheduled shifts can be cancelled")
	case errors.Is(err, shift.ErrShiftReassigned):
		Conflict(w, "Shift was reassigned by another request, retry the update")
	case errors.Is(err, location.ErrLocationInUse):
		Conflict(w, "Location is referenced by shifts or attendance records")

	// Malformed input that slipped past request validation
	case errors.Is(err, interval.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrInvalidRange),
		errors.Is(err, attendance.ErrInvalidKind):
		BadRequest(w, err.Error(), nil)

	// Backend outages
	case errors.Is(err, shift.ErrStoreUnavailable):
		ServiceUnavailable(w, "Shift store is temporarily unavailable")
	case errors.Is(err, lock.ErrLockUnavailable):
		ServiceUnavailable(w, "Could not acquire the scheduling lock, please retry")

	// Default
	default:
		slog.Error("unhandled error", slog.String("error", err.Error()))
		InternalServerError(w, "An unexpected error occurred")
	}
}

// HandlePartialError reports an error that stopped work part way. data describes what was
// already committed and is sent along with the error.
func HandlePartialError(w http.ResponseWriter, err error, data interface{}) {
	status, code, message := http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""

	switch {
	case errors.Is(err, shift.ErrStoreUnavailable):
		message = "Shift store became unavailable, remaining shifts were not scheduled"
	case errors.Is(err, lock.ErrLockUnavailable):
		message = "Could not acquire the scheduling lock, remaining shifts were not scheduled"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		message = "Request ended before all shifts were scheduled"
	default:
		slog.Error("unhandled partial error", slog.String("error", err.Error()))
		status, code, message = http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred"
	}

	writeJSON(w, status, Response{
		Success: false,
		Data:    data,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
