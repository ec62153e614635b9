package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"fleet-service/internal/model"
)

func TestCapacityOK(t *testing.T) {
	vehicle := model.Vehicle{MaxCapacity: 1000}

	assert.True(t, CapacityOK(model.Trip{CargoWeight: 500}, vehicle).Passed)
	assert.True(t, CapacityOK(model.Trip{CargoWeight: 1000}, vehicle).Passed)

	out := CapacityOK(model.Trip{CargoWeight: 1000.5}, vehicle)
	assert.False(t, out.Passed)
	assert.Equal(t, ReasonCapacity, out.Reason)
}

func TestVehicleAvailable(t *testing.T) {
	tests := []struct {
		status model.VehicleStatus
		passed bool
	}{
		{model.VehicleStatusAvailable, true},
		{model.VehicleStatusOnTrip, false},
		{model.VehicleStatusInShop, false},
		{model.VehicleStatusRetired, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			out := VehicleAvailable(model.Vehicle{Status: tt.status})
			assert.Equal(t, tt.passed, out.Passed)
			if !tt.passed {
				assert.Equal(t, ReasonVehicleUnavailable, out.Reason)
			}
		})
	}
}

func TestDriverEligible(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	valid := datatypes.Date(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	t.Run("on duty with valid license", func(t *testing.T) {
		out := DriverEligible(model.Driver{Status: model.DriverStatusOnDuty, LicenseExpiry: valid}, now)
		assert.True(t, out.Passed)
	})

	t.Run("license expiring today is still valid", func(t *testing.T) {
		today := datatypes.Date(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		out := DriverEligible(model.Driver{Status: model.DriverStatusOnDuty, LicenseExpiry: today}, now)
		assert.True(t, out.Passed)
	})

	t.Run("expired license", func(t *testing.T) {
		yesterday := datatypes.Date(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
		out := DriverEligible(model.Driver{Status: model.DriverStatusOnDuty, LicenseExpiry: yesterday}, now)
		assert.False(t, out.Passed)
		assert.Equal(t, ReasonDriverIneligible, out.Reason)
	})

	for _, status := range []model.DriverStatus{
		model.DriverStatusOffDuty,
		model.DriverStatusOnTrip,
		model.DriverStatusSuspended,
	} {
		t.Run(string(status), func(t *testing.T) {
			out := DriverEligible(model.Driver{Status: status, LicenseExpiry: valid}, now)
			assert.False(t, out.Passed)
			assert.Equal(t, ReasonDriverIneligible, out.Reason)
		})
	}
}

func TestMaintenanceEligible(t *testing.T) {
	assert.True(t, MaintenanceEligible(model.Vehicle{Status: model.VehicleStatusAvailable}).Passed)
	assert.True(t, MaintenanceEligible(model.Vehicle{Status: model.VehicleStatusInShop}).Passed)
	assert.False(t, MaintenanceEligible(model.Vehicle{Status: model.VehicleStatusOnTrip}).Passed)

	out := MaintenanceEligible(model.Vehicle{Status: model.VehicleStatusRetired})
	assert.False(t, out.Passed)
	assert.Equal(t, ReasonMaintenanceIneligible, out.Reason)
}

func TestTripTransitionAllowed(t *testing.T) {
	statuses := []model.TripStatus{
		model.TripStatusDraft,
		model.TripStatusDispatched,
		model.TripStatusCompleted,
		model.TripStatusCancelled,
	}
	allowed := map[[2]model.TripStatus]bool{
		{model.TripStatusDraft, model.TripStatusDispatched}:     true,
		{model.TripStatusDraft, model.TripStatusCancelled}:      true,
		{model.TripStatusDispatched, model.TripStatusCompleted}: true,
		{model.TripStatusDispatched, model.TripStatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			out := TripTransitionAllowed(from, to)
			assert.Equal(t, allowed[[2]model.TripStatus{from, to}], out.Passed, "%s -> %s", from, to)
			if !out.Passed {
				assert.Equal(t, ReasonInvalidTransition, out.Reason)
			}
		}
	}
}

func TestMaintenanceTransitionAllowed(t *testing.T) {
	assert.True(t, MaintenanceTransitionAllowed(model.MaintenanceStatusOpen, model.MaintenanceStatusInProgress).Passed)
	assert.True(t, MaintenanceTransitionAllowed(model.MaintenanceStatusInProgress, model.MaintenanceStatusResolved).Passed)
	assert.True(t, MaintenanceTransitionAllowed(model.MaintenanceStatusOpen, model.MaintenanceStatusResolved).Passed)
	assert.False(t, MaintenanceTransitionAllowed(model.MaintenanceStatusResolved, model.MaintenanceStatusOpen).Passed)
	assert.False(t, MaintenanceTransitionAllowed(model.MaintenanceStatusInProgress, model.MaintenanceStatusOpen).Passed)
}

func TestFirst(t *testing.T) {
	assert.True(t, First().Passed)
	assert.True(t, First(Pass(), Pass()).Passed)

	out := First(Pass(), Fail(ReasonCapacity, "a"), Fail(ReasonDriverIneligible, "b"))
	assert.Equal(t, ReasonCapacity, out.Reason)
	assert.Equal(t, "a", out.Detail)
}
