package location

import (
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
)

type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0"`
}

func (r *CreateLocationRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Name != "" && validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be blank",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Location converts a validated request into an entity, filling in the default radius.
func (r *CreateLocationRequest) Location() Location {
	radius := DefaultRadiusKm
	if r.RadiusKm != nil {
		radius = *r.RadiusKm
	}
	return Location{
		Name:      r.Name,
		Address:   r.Address,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		RadiusKm:  radius,
	}
}

type UpdateLocationRequest struct {
	ID        string   `json:"-"`
	Name      *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0"`
}

func (r *UpdateLocationRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply copies the set fields onto loc.
func (r *UpdateLocationRequest) Apply(loc Location) Location {
	if r.Name != nil {
		loc.Name = *r.Name
	}
	if r.Address != nil {
		loc.Address = r.Address
	}
	if r.Latitude != nil {
		loc.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = *r.Longitude
	}
	if r.RadiusKm != nil {
		loc.RadiusKm = *r.RadiusKm
	}
	return loc
}

// MovesGeofence reports whether applying the request would change the coordinates or the
// radius of loc.
func (r *UpdateLocationRequest) MovesGeofence(loc Location) bool {
	return (r.Latitude != nil && *r.Latitude != loc.Latitude) ||
		(r.Longitude != nil && *r.Longitude != loc.Longitude) ||
		(r.RadiusKm != nil && *r.RadiusKm != loc.RadiusKm)
}

type LocationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewLocationResponse(l Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		RadiusKm:  l.RadiusKm,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
		UpdatedAt: l.UpdatedAt.Format(time.RFC3339),
	}
}
