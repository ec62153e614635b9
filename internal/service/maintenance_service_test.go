package service_test

import (
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func TestOpenMaintenance(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-1", 1000)

	result, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{
		VehicleID: v.ID,
		Issue:     "oil change",
		Cost:      120,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceStatusOpen, result.Log.Status)
	assert.Equal(t, model.VehicleStatusInShop, result.Vehicle.Status)
	assert.Equal(t, model.VehicleStatusInShop, f.snapshot().Vehicles[v.ID].Status)

	t.Run("vehicle on trip", func(t *testing.T) {
		busy := f.vehicle(t, "MNT-2", 1000)
		f.dispatched(t, busy, f.driver(t, "LIC-1"), 100)

		before := f.snapshot()
		_, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: busy.ID, Issue: "tyre"})
		assertRejected(t, err, service.ErrPreconditionFailed, "maintenance_ineligible")
		assert.Equal(t, before, f.snapshot())
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")

		_, err = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "x", Cost: -1})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: uuid.New(), Issue: "x"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestResolveWithTwoOpenLogs(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-3", 1000)

	first, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "brakes"})
	require.NoError(t, err)
	second, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "lights"})
	require.NoError(t, err)

	inProgress := model.MaintenanceStatusInProgress
	result, err := f.maintenance.Update(f.ctx, f.manager, second.Log.ID, service.UpdateMaintenanceInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusInShop, result.Vehicle.Status)

	result, err = f.maintenance.Resolve(f.ctx, f.manager, first.Log.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceStatusResolved, result.Log.Status)
	require.NotNil(t, result.Log.ResolvedAt)
	assert.Equal(t, model.VehicleStatusInShop, result.Vehicle.Status)

	resolved := model.MaintenanceStatusResolved
	result, err = f.maintenance.Update(f.ctx, f.manager, second.Log.ID, service.UpdateMaintenanceInput{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusAvailable, result.Vehicle.Status)
	assert.Equal(t, model.VehicleStatusAvailable, f.snapshot().Vehicles[v.ID].Status)

	assert.Equal(t, []events.Type{
		events.MaintenanceOpened,
		events.MaintenanceOpened,
		events.MaintenanceResolved,
		events.MaintenanceResolved,
	}, f.pub.types())
}

func TestMaintenanceTransitions(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-4", 1000)
	opened, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "clutch"})
	require.NoError(t, err)

	_, err = f.maintenance.Resolve(f.ctx, f.manager, opened.Log.ID)
	require.NoError(t, err)

	_, err = f.maintenance.Resolve(f.ctx, f.manager, opened.Log.ID)
	assertRejected(t, err, service.ErrInvalidTransition, "invalid_transition")

	reopen := model.MaintenanceStatusOpen
	_, err = f.maintenance.Update(f.ctx, f.manager, opened.Log.ID, service.UpdateMaintenanceInput{Status: &reopen})
	assertRejected(t, err, service.ErrInvalidTransition, "invalid_transition")

	cost := 450.0
	result, err := f.maintenance.Update(f.ctx, f.manager, opened.Log.ID, service.UpdateMaintenanceInput{Cost: &cost})
	require.NoError(t, err)
	assert.Equal(t, 450.0, result.Log.Cost)
	assert.Equal(t, model.MaintenanceStatusResolved, result.Log.Status)
	assert.Equal(t, model.VehicleStatusAvailable, result.Vehicle.Status)

	bogus := model.MaintenanceStatus("BROKEN")
	_, err = f.maintenance.Update(f.ctx, f.manager, opened.Log.ID, service.UpdateMaintenanceInput{Status: &bogus})
	assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
}

func TestDeleteMaintenanceRecomputesVehicle(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-5", 1000)
	opened, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "mirror"})
	require.NoError(t, err)

	vehicle, err := f.maintenance.Delete(f.ctx, f.manager, opened.Log.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusAvailable, vehicle.Status)

	_, err = f.maintenance.Get(f.ctx, opened.Log.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	logs, err := f.maintenance.List(f.ctx, service.MaintenanceListOptions{VehicleID: &v.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestResolveRacingOpenKeepsVehicleInShop(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-6", 1000)
	first, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "brakes"})
	require.NoError(t, err)

	var fired atomic.Bool
	var opened *service.MaintenanceResult
	var openErr error
	f.store.SetFaultHook(func(op string, step int) error {
		if op == "audit.create" && fired.CompareAndSwap(false, true) {
			opened, openErr = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "lights"})
		}
		return nil
	})

	result, err := f.maintenance.Resolve(f.ctx, f.manager, first.Log.ID)
	f.store.SetFaultHook(nil)
	require.NoError(t, openErr)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusInShop, result.Vehicle.Status)

	snap := f.snapshot()
	assert.Equal(t, model.MaintenanceStatusResolved, snap.Maintenance[first.Log.ID].Status)
	assert.Equal(t, model.MaintenanceStatusOpen, snap.Maintenance[opened.Log.ID].Status)
	assert.Equal(t, model.VehicleStatusInShop, snap.Vehicles[v.ID].Status)
	assertFleetConsistent(t, snap)

	d := f.driver(t, "LIC-6")
	_, err = f.trips.Create(f.ctx, f.dispatcher, service.CreateTripInput{
		VehicleID:   v.ID,
		DriverID:    d.ID,
		CargoWeight: 100,
		Origin:      "Depot",
		Destination: "Port",
	})
	assertRejected(t, err, service.ErrValidation, "vehicle_unavailable")
}

func TestDeleteRacingOpenKeepsVehicleInShop(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "MNT-7", 1000)
	first, err := f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "mirror"})
	require.NoError(t, err)

	var fired atomic.Bool
	var openErr error
	f.store.SetFaultHook(func(op string, step int) error {
		if op == "audit.create" && fired.CompareAndSwap(false, true) {
			_, openErr = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v.ID, Issue: "wipers"})
		}
		return nil
	})

	vehicle, err := f.maintenance.Delete(f.ctx, f.manager, first.Log.ID)
	f.store.SetFaultHook(nil)
	require.NoError(t, openErr)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusInShop, vehicle.Status)

	snap := f.snapshot()
	assert.Len(t, snap.Maintenance, 1)
	assert.Equal(t, model.VehicleStatusInShop, snap.Vehicles[v.ID].Status)
	assertFleetConsistent(t, snap)
}
