package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/events"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/logger"
)

type Options struct {
	// TimeZone interprets the date filters of ListAttendance. Defaults to UTC.
	TimeZone  *time.Location
	Publisher events.Publisher
	Logger    *slog.Logger
	// Now stamps recorded events. Defaults to time.Now.
	Now func() time.Time
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	location.LocationRepository
	employee.EmployeeRepository

	publisher events.Publisher
	logger    *slog.Logger
	timeZone  *time.Location
	now       func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	locationRepo location.LocationRepository,
	employeeRepo employee.EmployeeRepository,
	opts Options,
) attendance.AttendanceService {
	a := &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		LocationRepository:   locationRepo,
		EmployeeRepository:   employeeRepo,
		publisher:            opts.Publisher,
		logger:               opts.Logger,
		timeZone:             opts.TimeZone,
		now:                  opts.Now,
	}
	if a.publisher == nil {
		a.publisher = events.NopPublisher{}
	}
	if a.logger == nil {
		a.logger = logger.Discard()
	}
	if a.timeZone == nil {
		a.timeZone = time.UTC
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// ValidateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ValidateAttendance(ctx context.Context, req attendance.ValidateAttendanceRequest) (attendance.GeofenceResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.GeofenceResult{}, err
	}

	loc, err := a.getLocation(ctx, req.LocationID)
	if err != nil {
		return attendance.GeofenceResult{}, err
	}

	return ValidateGeofence(req.Point(), loc), nil
}

// RecordAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	loc, err := a.getLocation(ctx, req.LocationID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	exists, err := a.EmployeeRepository.Exists(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
	}

	point := req.Point()
	result := ValidateGeofence(point, loc)
	if !result.Accepted {
		a.logger.InfoContext(ctx, "attendance rejected outside geofence",
			slog.String("employee_id", req.EmployeeID),
			slog.String("location_id", loc.ID),
			slog.Float64("distance_km", result.DistanceKm),
			slog.Float64("radius_km", result.RadiusKm),
		)
		return attendance.AttendanceResponse{}, &attendance.OutsideGeofenceError{Result: result}
	}

	event, err := a.AttendanceRepository.Create(ctx, attendance.Event{
		EmployeeID: req.EmployeeID,
		LocationID: loc.ID,
		Kind:       req.Kind,
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		DistanceKm: result.DistanceKm,
		OccurredAt: a.now().UTC(),
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record attendance: %w", err)
	}

	resp := attendance.NewAttendanceResponse(event)
	if err := a.publisher.Publish(ctx, events.TypeAttendanceRecorded, resp); err != nil {
		a.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", events.TypeAttendanceRecorded),
			slog.String("error", err.Error()),
		)
	}

	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, req attendance.ListAttendanceRequest) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from, to := req.Bounds(a.timeZone)
	list, err := a.AttendanceRepository.ListByEmployee(ctx, req.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(list))
	for _, e := range list {
		responses = append(responses, attendance.NewAttendanceResponse(e))
	}
	return responses, nil
}

func (a *AttendanceServiceImpl) getLocation(ctx context.Context, id string) (location.Location, error) {
	loc, err := a.LocationRepository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return location.Location{}, location.ErrLocationNotFound
		}
		return location.Location{}, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}
