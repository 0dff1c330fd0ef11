package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/location"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/shift-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLocationService_Create(t *testing.T) {
	store := memory.NewStore()
	svc := NewLocationService(store.Locations(), nil)
	ctx := context.Background()

	t.Run("default radius", func(t *testing.T) {
		resp, err := svc.Create(ctx, location.CreateLocationRequest{
			Name:      "Warehouse",
			Latitude:  ptr(-6.2),
			Longitude: ptr(106.8),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, location.DefaultRadiusKm, resp.RadiusKm)
	})

	t.Run("explicit radius", func(t *testing.T) {
		resp, err := svc.Create(ctx, location.CreateLocationRequest{
			Name:      "Campus",
			Latitude:  ptr(0.0),
			Longitude: ptr(0.0),
			RadiusKm:  ptr(1.5),
		})
		require.NoError(t, err)
		assert.Equal(t, 1.5, resp.RadiusKm)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, location.CreateLocationRequest{
			Latitude:  ptr(120.0),
			Longitude: ptr(0.0),
			RadiusKm:  ptr(-1.0),
		})
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := verrs.ToMap()
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "latitude")
		assert.Contains(t, fields, "radius_km")
	})
}

func TestLocationService_GetListUpdate(t *testing.T) {
	store := memory.NewStore()
	svc := NewLocationService(store.Locations(), nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, location.CreateLocationRequest{Name: "B", Latitude: ptr(1.0), Longitude: ptr(1.0)})
	require.NoError(t, err)
	a, err := svc.Create(ctx, location.CreateLocationRequest{Name: "A", Latitude: ptr(2.0), Longitude: ptr(2.0)})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	got, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, location.ErrLocationNotFound)

	updated, err := svc.Update(ctx, location.UpdateLocationRequest{ID: b.ID, RadiusKm: ptr(0.25)})
	require.NoError(t, err)
	assert.Equal(t, 0.25, updated.RadiusKm)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, 1.0, updated.Latitude)

	_, err = svc.Update(ctx, location.UpdateLocationRequest{ID: "missing", Name: ptr("X")})
	assert.ErrorIs(t, err, location.ErrLocationNotFound)

	_, err = svc.Update(ctx, location.UpdateLocationRequest{ID: b.ID, Name: ptr("  ")})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestLocationService_Delete(t *testing.T) {
	store := memory.NewStore()
	svc := NewLocationService(store.Locations(), nil)
	ctx := context.Background()

	used, err := svc.Create(ctx, location.CreateLocationRequest{Name: "Used", Latitude: ptr(0.0), Longitude: ptr(0.0)})
	require.NoError(t, err)
	unused, err := svc.Create(ctx, location.CreateLocationRequest{Name: "Unused", Latitude: ptr(0.0), Longitude: ptr(0.0)})
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err = store.Shifts().Create(ctx, shift.ShiftDraft{
		EmployeeID: "emp-1",
		LocationID: used.ID,
		StartTime:  start,
		EndTime:    start.Add(8 * time.Hour),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, used.ID), location.ErrLocationInUse)
	assert.NoError(t, svc.Delete(ctx, unused.ID))
	assert.ErrorIs(t, svc.Delete(ctx, unused.ID), location.ErrLocationNotFound)
}

func TestLocationService_UpdateInUse(t *testing.T) {
	store := memory.NewStore()
	svc := NewLocationService(store.Locations(), nil)
	ctx := context.Background()

	used, err := svc.Create(ctx, location.CreateLocationRequest{Name: "Used", Latitude: ptr(0.0), Longitude: ptr(0.0), RadiusKm: ptr(0.5)})
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	_, err = store.Shifts().Create(ctx, shift.ShiftDraft{
		EmployeeID: "emp-1",
		LocationID: used.ID,
		StartTime:  start,
		EndTime:    start.Add(8 * time.Hour),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  location.UpdateLocationRequest
	}{
		{name: "latitude", req: location.UpdateLocationRequest{ID: used.ID, Latitude: ptr(10.0)}},
		{name: "longitude", req: location.UpdateLocationRequest{ID: used.ID, Longitude: ptr(10.0)}},
		{name: "radius", req: location.UpdateLocationRequest{ID: used.ID, RadiusKm: ptr(50.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is frozen", func(t *testing.T) {
			_, err := svc.Update(ctx, tt.req)
			assert.ErrorIs(t, err, location.ErrLocationInUse)
		})
	}

	got, err := svc.GetByID(ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Latitude)
	assert.Equal(t, 0.5, got.RadiusKm)

	t.Run("name and unchanged coordinates are accepted", func(t *testing.T) {
		updated, err := svc.Update(ctx, location.UpdateLocationRequest{
			ID:       used.ID,
			Name:     ptr("Renamed"),
			Address:  ptr("Jl. Sudirman 1"),
			Latitude: ptr(0.0),
			RadiusKm: ptr(0.5),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, 0.5, updated.RadiusKm)
	})
}
