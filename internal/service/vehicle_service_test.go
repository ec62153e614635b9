package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func TestCreateVehicle(t *testing.T) {
	f := newFixture(t)

	v, err := f.vehicles.Create(f.ctx, f.manager, service.CreateVehicleInput{
		Name:         "Hauler",
		LicensePlate: " kz-001 ",
		VehicleType:  model.VehicleTypeVan,
		MaxCapacity:  750,
	})
	require.NoError(t, err)
	assert.Equal(t, "KZ-001", v.LicensePlate)
	assert.Equal(t, model.VehicleStatusAvailable, v.Status)
	assert.Equal(t, model.DefaultRegion, v.Region)
	assert.Equal(t, int64(1), v.Version)

	t.Run("duplicate plate", func(t *testing.T) {
		_, err := f.vehicles.Create(f.ctx, f.manager, service.CreateVehicleInput{
			Name:         "Copy",
			LicensePlate: "KZ-001",
			VehicleType:  model.VehicleTypeTruck,
			MaxCapacity:  100,
		})
		assertRejected(t, err, service.ErrDuplicateKey, "duplicate_key")
		assert.Len(t, f.snapshot().Vehicles, 1)
	})

	invalid := []struct {
		name  string
		input service.CreateVehicleInput
	}{
		{"missing name", service.CreateVehicleInput{LicensePlate: "X", VehicleType: model.VehicleTypeBike, MaxCapacity: 1}},
		{"unknown type", service.CreateVehicleInput{Name: "X", LicensePlate: "X", VehicleType: "PLANE", MaxCapacity: 1}},
		{"zero capacity", service.CreateVehicleInput{Name: "X", LicensePlate: "X", VehicleType: model.VehicleTypeBike}},
		{"negative cost", service.CreateVehicleInput{Name: "X", LicensePlate: "X", VehicleType: model.VehicleTypeBike, MaxCapacity: 1, AcquisitionCost: -1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.vehicles.Create(f.ctx, f.manager, tt.input)
			assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
		})
	}
}

func TestUpdateVehicle(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "UPD-1", 1000)

	odometer := 1500.0
	region := "North"
	updated, err := f.vehicles.Update(f.ctx, f.manager, v.ID, service.UpdateVehicleInput{Odometer: &odometer, Region: &region})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, updated.Odometer)
	assert.Equal(t, "North", updated.Region)
	assert.Equal(t, "UPD-1", updated.LicensePlate)

	lower := 1000.0
	_, err = f.vehicles.Update(f.ctx, f.manager, v.ID, service.UpdateVehicleInput{Odometer: &lower})
	assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
	assert.ErrorIs(t, err, service.ErrValidation, "invalid input is still a validation failure")

	_, err = f.vehicles.Update(f.ctx, f.manager, uuid.New(), service.UpdateVehicleInput{Region: &region})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRetireVehicle(t *testing.T) {
	f := newFixture(t)

	t.Run("on trip", func(t *testing.T) {
		v := f.vehicle(t, "RET-1", 1000)
		trip := f.dispatched(t, v, f.driver(t, "LIC-1"), 100)

		_, err := f.vehicles.Retire(f.ctx, f.manager, v.ID)
		assertRejected(t, err, service.ErrPreconditionFailed, "vehicle_on_trip")
		assert.Equal(t, model.VehicleStatusOnTrip, f.snapshot().Vehicles[v.ID].Status)

		_, err = f.trips.Cancel(f.ctx, f.dispatcher, trip.ID)
		require.NoError(t, err)
	})

	t.Run("available is irreversible", func(t *testing.T) {
		v := f.vehicle(t, "RET-2", 1000)
		d := f.driver(t, "LIC-2")
		draft := f.draft(t, v, d, 100)

		retired, err := f.vehicles.Retire(f.ctx, f.manager, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusRetired, retired.Status)

		_, err = f.vehicles.Retire(f.ctx, f.manager, v.ID)
		assertRejected(t, err, service.ErrInvalidTransition, "invalid_transition")

		_, err = f.trips.Dispatch(f.ctx, f.dispatcher, draft.ID)
		assertRejected(t, err, service.ErrPreconditionFailed, "vehicle_unavailable")

		_, err = f.trips.Create(f.ctx, f.dispatcher, service.CreateTripInput{
			VehicleID: v.ID, DriverID: d.ID, CargoWeight: 10, Origin: "A", Destination: "B",
		})
		assertRejected(t, err, service.ErrValidation, "vehicle_unavailable")

		_, err = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "paint"})
		assertRejected(t, err, service.ErrPreconditionFailed, "maintenance_ineligible")

		// cancelling a draft on a retired vehicle leaves it retired
		_, err = f.trips.Cancel(f.ctx, f.dispatcher, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusRetired, f.snapshot().Vehicles[v.ID].Status)
	})

	t.Run("in shop", func(t *testing.T) {
		v := f.vehicle(t, "RET-3", 1000)
		opened, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "axle"})
		require.NoError(t, err)

		_, err = f.vehicles.Retire(f.ctx, f.manager, v.ID)
		require.NoError(t, err)

		result, err := f.maintenance.Resolve(f.ctx, f.manager, opened.Log.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusRetired, result.Vehicle.Status)
	})

	assert.Contains(t, f.pub.types(), events.VehicleRetired)
}

func TestDeleteVehicle(t *testing.T) {
	f := newFixture(t)

	t.Run("unreferenced", func(t *testing.T) {
		v := f.vehicle(t, "DEL-1", 1000)
		require.NoError(t, f.vehicles.Delete(f.ctx, f.manager, v.ID))

		_, err := f.vehicles.Get(f.ctx, v.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)

		entries, err := f.audit.List(f.ctx, service.AuditListOptions{
			EntityID: &v.ID,
			Actions:  []model.AuditAction{model.AuditActionDeleteVehicle},
		})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("referenced by a trip", func(t *testing.T) {
		v := f.vehicle(t, "DEL-2", 1000)
		f.draft(t, v, f.driver(t, "LIC-1"), 100)

		err := f.vehicles.Delete(f.ctx, f.manager, v.ID)
		assertRejected(t, err, service.ErrConflict, "has_references")
		assert.Contains(t, f.snapshot().Vehicles, v.ID)
	})

	t.Run("missing", func(t *testing.T) {
		err := f.vehicles.Delete(f.ctx, f.manager, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestListVehicles(t *testing.T) {
	f := newFixture(t)
	f.vehicle(t, "LST-1", 1000)
	bike, err := f.vehicles.Create(f.ctx, f.manager, service.CreateVehicleInput{
		Name: "Courier", LicensePlate: "LST-2", VehicleType: model.VehicleTypeBike, MaxCapacity: 20, Region: "South",
	})
	require.NoError(t, err)

	all, err := f.vehicles.List(f.ctx, service.VehicleListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bikes, err := f.vehicles.List(f.ctx, service.VehicleListOptions{Types: []model.VehicleType{model.VehicleTypeBike}})
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, bike.ID, bikes[0].ID)

	south, err := f.vehicles.List(f.ctx, service.VehicleListOptions{Region: "South"})
	require.NoError(t, err)
	assert.Len(t, south, 1)

	search, err := f.vehicles.List(f.ctx, service.VehicleListOptions{Search: "courier"})
	require.NoError(t, err)
	assert.Len(t, search, 1)
}
