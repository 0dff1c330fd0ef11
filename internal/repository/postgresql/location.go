package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const locationColumns = `id, name, address, latitude, longitude, radius_km, created_at, updated_at`

type locationRepositoryImpl struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepositoryImpl{db: db}
}

func scanLocation(row pgx.Row) (location.Location, error) {
	var l location.Location
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Address,
		&l.Latitude,
		&l.Longitude,
		&l.RadiusKm,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

// Get implements location.LocationRepository.
func (r *locationRepositoryImpl) Get(ctx context.Context, id string) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`

	l, err := scanLocation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return location.Location{}, location.ErrLocationNotFound
		}
		return location.Location{}, wrapErr("failed to get location", err)
	}

	return l, nil
}

// Create implements location.LocationRepository.
func (r *locationRepositoryImpl) Create(ctx context.Context, l location.Location) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO locations (id, name, address, latitude, longitude, radius_km, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + locationColumns

	created, err := scanLocation(q.QueryRow(ctx, query, l.Name, l.Address, l.Latitude, l.Longitude, l.RadiusKm))
	if err != nil {
		return location.Location{}, wrapErr("failed to create location", err)
	}

	return created, nil
}

// List implements location.LocationRepository.
func (r *locationRepositoryImpl) List(ctx context.Context) ([]location.Location, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, wrapErr("failed to list locations", err)
	}
	defer rows.Close()

	locations := []location.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapErr("rows iteration error", err)
	}

	return locations, nil
}

// Update implements location.LocationRepository.
func (r *locationRepositoryImpl) Update(ctx context.Context, req location.UpdateLocationRequest) (location.Location, error) {
	var updated location.Location

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		current, err := scanLocation(q.QueryRow(ctx,
			`SELECT `+locationColumns+` FROM locations WHERE id = $1 FOR UPDATE`, req.ID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
				return location.ErrLocationNotFound
			}
			return wrapErr("failed to lock location", err)
		}

		if req.MovesGeofence(current) {
			var inUse bool
			err := q.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM shifts WHERE location_id = $1)
					OR EXISTS (SELECT 1 FROM attendance_events WHERE location_id = $1)`, req.ID).Scan(&inUse)
			if err != nil {
				return wrapErr("failed to check location references", err)
			}
			if inUse {
				return location.ErrLocationInUse
			}
		}

		next := req.Apply(current)

		query := `
			UPDATE locations
			SET name = $1, address = $2, latitude = $3, longitude = $4, radius_km = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING ` + locationColumns

		updated, err = scanLocation(q.QueryRow(ctx, query,
			next.Name, next.Address, next.Latitude, next.Longitude, next.RadiusKm, req.ID))
		if err != nil {
			return wrapErr("failed to update location", err)
		}
		return nil
	})
	if err != nil {
		return location.Location{}, err
	}

	return updated, nil
}

// Delete implements location.LocationRepository.
func (r *locationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		switch {
		case isInvalidID(err):
			return location.ErrLocationNotFound
		case hasCode(err, pgForeignKeyViolation):
			return location.ErrLocationInUse
		}
		return wrapErr("failed to delete location", err)
	}

	if commandTag.RowsAffected() == 0 {
		return location.ErrLocationNotFound
	}

	return nil
}
