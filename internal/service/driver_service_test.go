package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func TestCreateDriver(t *testing.T) {
	f := newFixture(t)

	d, err := f.drivers.Create(f.ctx, f.safety, service.CreateDriverInput{
		FullName:      "Aigerim",
		LicenseNumber: "KZ-77",
		LicenseExpiry: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        model.DriverStatusOffDuty,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DriverStatusOffDuty, d.Status)
	assert.Equal(t, model.MaxSafetyScore, d.SafetyScore)
	assert.False(t, d.LicenseExpired)

	_, err = f.drivers.Create(f.ctx, f.safety, service.CreateDriverInput{
		FullName:      "Someone Else",
		LicenseNumber: "KZ-77",
		LicenseExpiry: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assertRejected(t, err, service.ErrDuplicateKey, "duplicate_key")

	_, err = f.drivers.Create(f.ctx, f.safety, service.CreateDriverInput{
		FullName:      "On Trip",
		LicenseNumber: "KZ-78",
		LicenseExpiry: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        model.DriverStatusOnTrip,
	})
	assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
}

func TestDriverDutyAndSuspension(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "DRV-1", 1000)
	d := f.driver(t, "LIC-1")

	off, err := f.drivers.SetDuty(f.ctx, f.safety, d.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.DriverStatusOffDuty, off.Status)

	_, err = f.trips.Create(f.ctx, f.dispatcher, service.CreateTripInput{
		VehicleID: v.ID, DriverID: d.ID, CargoWeight: 10, Origin: "A", Destination: "B",
	})
	assertRejected(t, err, service.ErrValidation, "driver_ineligible")

	suspended, err := f.drivers.Suspend(f.ctx, f.safety, d.ID, "speeding")
	require.NoError(t, err)
	assert.Equal(t, model.DriverStatusSuspended, suspended.Status)

	_, err = f.drivers.SetDuty(f.ctx, f.safety, d.ID, true)
	assertRejected(t, err, service.ErrPreconditionFailed, "driver_suspended")

	_, err = f.drivers.Suspend(f.ctx, f.safety, d.ID, "")
	assertRejected(t, err, service.ErrInvalidTransition, "invalid_transition")

	restored, err := f.drivers.Unsuspend(f.ctx, f.safety, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DriverStatusOffDuty, restored.Status)

	_, err = f.drivers.Unsuspend(f.ctx, f.safety, d.ID)
	assertRejected(t, err, service.ErrInvalidTransition, "invalid_transition")

	on, err := f.drivers.SetDuty(f.ctx, f.safety, d.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.DriverStatusOnDuty, on.Status)

	trip := f.dispatched(t, v, d, 100)

	_, err = f.drivers.Suspend(f.ctx, f.safety, d.ID, "")
	assertRejected(t, err, service.ErrPreconditionFailed, "driver_on_trip")
	_, err = f.drivers.SetDuty(f.ctx, f.safety, d.ID, false)
	assertRejected(t, err, service.ErrPreconditionFailed, "driver_on_trip")

	_, err = f.trips.Complete(f.ctx, f.dispatcher, trip.ID, service.CompleteTripInput{Distance: 10})
	require.NoError(t, err)

	assert.Equal(t, []events.Type{events.DriverSuspended, events.DriverUnsuspended, events.TripDispatched, events.TripCompleted}, f.pub.types())

	entries, err := f.audit.List(f.ctx, service.AuditListOptions{
		EntityType: model.EntityDriver,
		Actions:    []model.AuditAction{model.AuditActionSuspendDriver},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "speeding", entries[0].Details["reason"])
}

func TestRecordComplaint(t *testing.T) {
	f := newFixture(t)
	d := f.driver(t, "LIC-1")

	updated, err := f.drivers.RecordComplaint(f.ctx, f.safety, d.ID, "late delivery")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Complaints)
	assert.Equal(t, 95.0, updated.SafetyScore)

	updated, err = f.drivers.RecordComplaint(f.ctx, f.safety, d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Complaints)
	assert.Equal(t, 90.0, updated.SafetyScore)
}

func TestUpdateDriver(t *testing.T) {
	f := newFixture(t)
	d := f.driver(t, "LIC-1")

	expiry := testNow.AddDate(0, -1, 0)
	phone := "+7 700 000 0000"
	updated, err := f.drivers.Update(f.ctx, f.safety, d.ID, service.UpdateDriverInput{LicenseExpiry: &expiry, Phone: &phone})
	require.NoError(t, err)
	assert.True(t, updated.LicenseExpired)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, model.DriverStatusOnDuty, updated.Status)

	got, err := f.drivers.Get(f.ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.LicenseExpired)

	empty := " "
	_, err = f.drivers.Update(f.ctx, f.safety, d.ID, service.UpdateDriverInput{FullName: &empty})
	assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
}

func TestDeleteDriver(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "DRV-1", 1000)

	free := f.driver(t, "LIC-1")
	require.NoError(t, f.drivers.Delete(f.ctx, f.safety, free.ID))
	_, err := f.drivers.Get(f.ctx, free.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	busy := f.driver(t, "LIC-2")
	trip := f.draft(t, v, busy, 100)
	_, err = f.trips.Cancel(f.ctx, f.dispatcher, trip.ID)
	require.NoError(t, err)

	err = f.drivers.Delete(f.ctx, f.safety, busy.ID)
	assertRejected(t, err, service.ErrConflict, "has_references")
}
