package attendance

import (
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/geo"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
)

type ValidateAttendanceRequest struct {
	LocationID string   `json:"location_id" validate:"required"`
	Latitude   *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (r *ValidateAttendanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// Point returns the reported position. Call only after Validate succeeded.
func (r *ValidateAttendanceRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type RecordAttendanceRequest struct {
	EmployeeID string   `json:"-"` // From JWT
	LocationID string   `json:"location_id" validate:"required"`
	Kind       Kind     `json:"-"` // From route
	Latitude   *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (r *RecordAttendanceRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsInSlice(string(r.Kind), KindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: ErrInvalidKind.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Point returns the reported position. Call only after Validate succeeded.
func (r *RecordAttendanceRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type ListAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate    string `json:"end_date"`   // YYYY-MM-DD, inclusive
}

func (r *ListAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !validator.IsEmpty(r.StartDate) && !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !validator.IsEmpty(r.EndDate) && !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date in YYYY-MM-DD format",
		})
	}
	if startOK && endOK && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Bounds converts the date filter into instants in loc; unset dates stay nil.
func (r *ListAttendanceRequest) Bounds(loc *time.Location) (from, to *time.Time) {
	if d, ok := validator.IsValidDate(r.StartDate); ok {
		t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		from = &t
	}
	if d, ok := validator.IsValidDate(r.EndDate); ok {
		t := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
		to = &t
	}
	return from, to
}

type AttendanceResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	LocationID string  `json:"location_id"`
	Kind       string  `json:"kind"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
	OccurredAt string  `json:"occurred_at"`
}

func NewAttendanceResponse(e Event) AttendanceResponse {
	return AttendanceResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		LocationID: e.LocationID,
		Kind:       string(e.Kind),
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		DistanceKm: e.DistanceKm,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
}
