package location

import "context"

type LocationRepository interface {
	Get(ctx context.Context, id string) (Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
	List(ctx context.Context) ([]Location, error)
	// Update applies the non-nil fields of req and returns the stored result. Moving the
	// geofence of a location that shifts or attendance events refer to fails with
	// ErrLocationInUse; name and address stay editable.
	Update(ctx context.Context, req UpdateLocationRequest) (Location, error)
	Delete(ctx context.Context, id string) error
}
