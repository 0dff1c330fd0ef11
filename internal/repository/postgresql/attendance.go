package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `id, employee_id, location_id, kind, latitude, longitude, distance_km, occurred_at, created_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Event, error) {
	var (
		e    attendance.Event
		kind string
	)
	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.LocationID,
		&kind,
		&e.Latitude,
		&e.Longitude,
		&e.DistanceKm,
		&e.OccurredAt,
		&e.CreatedAt,
	)
	e.Kind = attendance.Kind(kind)
	return e, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, e attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_events (id, employee_id, location_id, kind, latitude, longitude, distance_km, occurred_at, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		e.EmployeeID, e.LocationID, string(e.Kind), e.Latitude, e.Longitude, e.DistanceKm, e.OccurredAt))
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgForeignKeyViolation {
			if pgErr.ConstraintName == "attendance_events_location_id_fkey" {
				return attendance.Event{}, location.ErrLocationNotFound
			}
			return attendance.Event{}, employee.ErrEmployeeNotFound
		}
		return attendance.Event{}, wrapErr("failed to create attendance event", err)
	}

	return created, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_events WHERE employee_id = $1`
	args := []interface{}{employeeID}
	argIdx := 2

	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", argIdx)
		args = append(args, *from)
		argIdx++
	}

	if to != nil {
		query += fmt.Sprintf(" AND occurred_at < $%d", argIdx)
		args = append(args, *to)
	}

	query += " ORDER BY occurred_at DESC, id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return []attendance.Event{}, nil
		}
		return nil, wrapErr("failed to list attendance events", err)
	}
	defer rows.Close()

	events := []attendance.Event{}
	for rows.Next() {
		e, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		if isInvalidID(err) {
			return []attendance.Event{}, nil
		}
		return nil, wrapErr("rows iteration error", err)
	}

	return events, nil
}
