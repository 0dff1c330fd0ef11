package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/interval"
	"github.com/jackc/pgx/v5"
)

const shiftColumns = `id, employee_id, location_id, start_time, end_time, notes, status, created_by, created_at, updated_at`

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftStore {
	return &shiftRepositoryImpl{db: db}
}

func scanShift(row pgx.Row) (shift.Shift, error) {
	var (
		s      shift.Shift
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.EmployeeID,
		&s.LocationID,
		&s.StartTime,
		&s.EndTime,
		&s.Notes,
		&status,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	s.Status = shift.Status(status)
	return s, err
}

func collectShifts(rows pgx.Rows) ([]shift.Shift, error) {
	defer rows.Close()

	shifts := []shift.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return shifts, nil
}

// wrapErr marks connection-level failures with shift.ErrStoreUnavailable.
func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, shift.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ListByEmployee implements shift.ShiftStore.
func (r *shiftRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE employee_id = $1
		ORDER BY start_time ASC, id ASC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		if isInvalidID(err) {
			return []shift.Shift{}, nil
		}
		return nil, wrapErr("failed to list shifts by employee", err)
	}

	shifts, err := collectShifts(rows)
	if err != nil {
		if isInvalidID(err) {
			return []shift.Shift{}, nil
		}
		return nil, wrapErr("failed to list shifts by employee", err)
	}
	return shifts, nil
}

// Create implements shift.ShiftStore.
func (r *shiftRepositoryImpl) Create(ctx context.Context, draft shift.ShiftDraft) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (id, employee_id, location_id, start_time, end_time, notes, status, created_by, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		draft.EmployeeID,
		draft.LocationID,
		draft.StartTime,
		draft.EndTime,
		draft.Notes,
		string(shift.StatusScheduled),
		draft.CreatedBy,
	))
	if err != nil {
		if pgErr, ok := pgError(err); ok {
			switch pgErr.Code {
			case pgExclusionViolation:
				// the blocking row is looked up by the caller
				return shift.Shift{}, &shift.ConflictError{}
			case pgForeignKeyViolation:
				if pgErr.ConstraintName == "shifts_location_id_fkey" {
					return shift.Shift{}, location.ErrLocationNotFound
				}
				return shift.Shift{}, employee.ErrEmployeeNotFound
			case pgInvalidTextRepresentation:
				return shift.Shift{}, employee.ErrEmployeeNotFound
			case pgCheckViolation:
				if pgErr.ConstraintName == "shifts_time_order" {
					return shift.Shift{}, interval.ErrInvalidInterval
				}
			}
		}
		return shift.Shift{}, wrapErr("failed to create shift", err)
	}

	return created, nil
}

// GetByID implements shift.ShiftStore.
func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, wrapErr("failed to get shift", err)
	}

	return s, nil
}

// List implements shift.ShiftStore.
func (r *shiftRepositoryImpl) List(ctx context.Context, filter shift.ShiftFilter) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	// Build dynamic filter
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		query += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.LocationID != nil {
		query += fmt.Sprintf(" AND location_id = $%d", argIdx)
		args = append(args, *filter.LocationID)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argIdx)
		args = append(args, *filter.To)
	}

	query += " ORDER BY start_time ASC, id ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return []shift.Shift{}, nil
		}
		return nil, wrapErr("failed to list shifts", err)
	}

	shifts, err := collectShifts(rows)
	if err != nil {
		if isInvalidID(err) {
			return []shift.Shift{}, nil
		}
		return nil, wrapErr("failed to list shifts", err)
	}
	return shifts, nil
}

// Update implements shift.ShiftStore.
func (r *shiftRepositoryImpl) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET employee_id = $1, location_id = $2, start_time = $3, end_time = $4, notes = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + shiftColumns

	updated, err := scanShift(q.QueryRow(ctx, query,
		s.EmployeeID,
		s.LocationID,
		s.StartTime,
		s.EndTime,
		s.Notes,
		string(s.Status),
		s.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		if pgErr, ok := pgError(err); ok {
			switch pgErr.Code {
			case pgExclusionViolation:
				return shift.Shift{}, &shift.ConflictError{}
			case pgForeignKeyViolation:
				if pgErr.ConstraintName == "shifts_location_id_fkey" {
					return shift.Shift{}, location.ErrLocationNotFound
				}
				return shift.Shift{}, employee.ErrEmployeeNotFound
			case pgInvalidTextRepresentation:
				return shift.Shift{}, shift.ErrShiftNotFound
			case pgCheckViolation:
				if pgErr.ConstraintName == "shifts_time_order" {
					return shift.Shift{}, interval.ErrInvalidInterval
				}
			}
		}
		return shift.Shift{}, wrapErr("failed to update shift", err)
	}

	return updated, nil
}

// Delete implements shift.ShiftStore.
func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return shift.ErrShiftNotFound
		}
		return wrapErr("failed to delete shift", err)
	}

	if commandTag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}

	return nil
}
