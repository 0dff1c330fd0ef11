package shift

import (
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/recurrence"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
)

type CreateShiftRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	LocationID string  `json:"location_id" validate:"required"`
	StartTime  string  `json:"start_time" validate:"required"` // RFC3339
	EndTime    string  `json:"end_time" validate:"required"`   // RFC3339
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedBy  *string `json:"-"`
}

func (r *CreateShiftRequest) Validate() error {
	errs := validator.Struct(r)

	start, startOK := validator.IsValidDateTime(r.StartTime)
	if !validator.IsEmpty(r.StartTime) && !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be a valid ISO8601 timestamp",
		})
	}
	end, endOK := validator.IsValidDateTime(r.EndTime)
	if !validator.IsEmpty(r.EndTime) && !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be a valid ISO8601 timestamp",
		})
	}
	if startOK && endOK && !start.Before(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Interval returns the parsed start and end instants. Call only after Validate succeeded.
func (r *CreateShiftRequest) Interval() (time.Time, time.Time) {
	start, _ := validator.IsValidDateTime(r.StartTime)
	end, _ := validator.IsValidDateTime(r.EndTime)
	return start, end
}

type BatchScheduleRequest struct {
	EmployeeIDs    []string `json:"employee_ids" validate:"min=1,dive,required"`
	LocationID     string   `json:"location_id" validate:"required"`
	StartDate      string   `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate        string   `json:"end_date" validate:"required"`   // YYYY-MM-DD, inclusive
	StartTimeOfDay string   `json:"start_time" validate:"required"` // HH:MM
	EndTimeOfDay   string   `json:"end_time" validate:"required"`   // HH:MM
	Repeat         string   `json:"repeat" validate:"required"`
	DaysOfWeek     []int    `json:"days_of_week" validate:"dive,min=0,max=6"` // 0=Sunday .. 6=Saturday
	Notes          *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedBy      *string  `json:"-"`
}

func (r *BatchScheduleRequest) Validate() error {
	errs := validator.Struct(r)

	startDate, startDateOK := validator.IsValidDate(r.StartDate)
	if !validator.IsEmpty(r.StartDate) && !startDateOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date in YYYY-MM-DD format",
		})
	}
	endDate, endDateOK := validator.IsValidDate(r.EndDate)
	if !validator.IsEmpty(r.EndDate) && !endDateOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date in YYYY-MM-DD format",
		})
	}
	if startDateOK && endDateOK && startDate.After(endDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	startClock, startClockOK := validator.IsValidTime(r.StartTimeOfDay)
	if !validator.IsEmpty(r.StartTimeOfDay) && !startClockOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be a valid time in HH:MM format",
		})
	}
	endClock, endClockOK := validator.IsValidTime(r.EndTimeOfDay)
	if !validator.IsEmpty(r.EndTimeOfDay) && !endClockOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be a valid time in HH:MM format",
		})
	}
	if startClockOK && endClockOK && !startClock.Before(endClock) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		})
	}

	if !validator.IsEmpty(r.Repeat) && !validator.IsInSlice(r.Repeat, recurrence.KindValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "repeat",
			Message: "repeat must be one of: " + strings.Join(recurrence.KindValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UniqueEmployeeIDs returns the employee ids in request order with repeats removed.
func (r *BatchScheduleRequest) UniqueEmployeeIDs() []string {
	ids := make([]string, 0, len(r.EmployeeIDs))
	for _, id := range r.EmployeeIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// DateRange returns the parsed inclusive date range. Call only after Validate succeeded.
func (r *BatchScheduleRequest) DateRange() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

// ClockRange returns the parsed times of day. Call only after Validate succeeded.
func (r *BatchScheduleRequest) ClockRange() (time.Time, time.Time) {
	start, _ := validator.IsValidTime(r.StartTimeOfDay)
	end, _ := validator.IsValidTime(r.EndTimeOfDay)
	return start, end
}

func (r *BatchScheduleRequest) Pattern() recurrence.Pattern {
	if recurrence.Kind(r.Repeat) == recurrence.KindWeekly {
		days := make([]time.Weekday, 0, len(r.DaysOfWeek))
		for _, d := range r.DaysOfWeek {
			days = append(days, time.Weekday(d))
		}
		return recurrence.Weekly(days...)
	}
	return recurrence.Daily()
}

// UpdateShiftRequest changes the non-nil fields of an existing shift.
type UpdateShiftRequest struct {
	ID         string  `json:"-"`
	EmployeeID *string `json:"employee_id,omitempty"`
	LocationID *string `json:"location_id,omitempty"`
	StartTime  *string `json:"start_time,omitempty"` // RFC3339
	EndTime    *string `json:"end_time,omitempty"`   // RFC3339
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Status     *string `json:"status,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.EmployeeID != nil && validator.IsEmpty(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must not be empty",
		})
	}
	if r.LocationID != nil && validator.IsEmpty(*r.LocationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_id",
			Message: "location_id must not be empty",
		})
	}

	var start, end time.Time
	startOK, endOK := false, false
	if r.StartTime != nil {
		if start, startOK = validator.IsValidDateTime(*r.StartTime); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_time",
				Message: "start_time must be a valid ISO8601 timestamp",
			})
		}
	}
	if r.EndTime != nil {
		if end, endOK = validator.IsValidDateTime(*r.EndTime); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_time",
				Message: "end_time must be a valid ISO8601 timestamp",
			})
		}
	}
	if startOK && endOK && !start.Before(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		})
	}

	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply copies the set fields onto s. Call only after Validate succeeded.
func (r *UpdateShiftRequest) Apply(s Shift) Shift {
	if r.EmployeeID != nil {
		s.EmployeeID = *r.EmployeeID
	}
	if r.LocationID != nil {
		s.LocationID = *r.LocationID
	}
	if r.StartTime != nil {
		s.StartTime, _ = validator.IsValidDateTime(*r.StartTime)
	}
	if r.EndTime != nil {
		s.EndTime, _ = validator.IsValidDateTime(*r.EndTime)
	}
	if r.Notes != nil {
		s.Notes = r.Notes
	}
	if r.Status != nil {
		s.Status = Status(*r.Status)
	}
	return s
}

type ListShiftsRequest struct {
	EmployeeID string `json:"employee_id"`
	LocationID string `json:"location_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate    string `json:"end_date"`   // YYYY-MM-DD, inclusive
}

func (r *ListShiftsRequest) Validate() error {
	var errs validator.ValidationErrors

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

// Filter converts the request into a store filter; dates are interpreted in loc.
func (r *ListShiftsRequest) Filter(loc *time.Location) ShiftFilter {
	var filter ShiftFilter
	if !validator.IsEmpty(r.EmployeeID) {
		filter.EmployeeID = &r.EmployeeID
	}
	if !validator.IsEmpty(r.LocationID) {
		filter.LocationID = &r.LocationID
	}
	if d, ok := validator.IsValidDate(r.StartDate); ok {
		from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		filter.From = &from
	}
	if d, ok := validator.IsValidDate(r.EndDate); ok {
		to := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
		filter.To = &to
	}
	return filter
}

type ShiftResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	LocationID string  `json:"location_id"`
	StartTime  string  `json:"start_time"` // ISO 8601 format
	EndTime    string  `json:"end_time"`   // ISO 8601 format
	Notes      *string `json:"notes,omitempty"`
	Status     string  `json:"status"`
	CreatedBy  *string `json:"created_by,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		LocationID: s.LocationID,
		StartTime:  s.StartTime.Format(time.RFC3339),
		EndTime:    s.EndTime.Format(time.RFC3339),
		Notes:      s.Notes,
		Status:     string(s.Status),
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
}

// ConflictResponse is the body returned alongside a rejected single-shift request.
type ConflictResponse struct {
	ConflictingShift *ShiftResponse `json:"conflicting_shift,omitempty"`
	Message          string         `json:"message"`
}

func NewConflictResponse(err *ConflictError) ConflictResponse {
	resp := ConflictResponse{Message: ErrShiftConflict.Error()}
	if err.ConflictingShift != nil {
		s := NewShiftResponse(*err.ConflictingShift)
		resp.ConflictingShift = &s
		resp.Message = "employee already has shift " + s.ID + " from " + s.StartTime + " to " + s.EndTime
	}
	return resp
}
