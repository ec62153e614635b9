// Package rules holds the side-effect free checks evaluated before any lifecycle write.
package rules

import (
	"fmt"
	"time"

	"fleet-service/internal/model"
)

type Reason string

const (
	ReasonCapacity              Reason = "capacity"
	ReasonVehicleUnavailable    Reason = "vehicle_unavailable"
	ReasonDriverIneligible      Reason = "driver_ineligible"
	ReasonMaintenanceIneligible Reason = "maintenance_ineligible"
	ReasonInvalidTransition     Reason = "invalid_transition"
	ReasonInvalidInput          Reason = "invalid_input"
	ReasonVehicleOnTrip         Reason = "vehicle_on_trip"
	ReasonDriverOnTrip          Reason = "driver_on_trip"
	ReasonDriverSuspended       Reason = "driver_suspended"
	ReasonHasReferences         Reason = "has_references"
	ReasonConcurrentUpdate      Reason = "concurrent_update"
	ReasonDuplicateKey          Reason = "duplicate_key"
)

// Outcome is the result of a single check. The zero value is a failure without a reason,
// so checks always build it through Pass or Fail.
type Outcome struct {
	Passed bool
	Reason Reason
	Detail string
}

func Pass() Outcome {
	return Outcome{Passed: true}
}

func Fail(reason Reason, format string, args ...interface{}) Outcome {
	return Outcome{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// First returns the first failed outcome, or a pass when every outcome passed.
func First(outcomes ...Outcome) Outcome {
	for _, o := range outcomes {
		if !o.Passed {
			return o
		}
	}
	return Pass()
}

func CapacityOK(trip model.Trip, vehicle model.Vehicle) Outcome {
	if trip.CargoWeight > vehicle.MaxCapacity {
		return Fail(ReasonCapacity, "cargo weight %.2f exceeds vehicle capacity %.2f", trip.CargoWeight, vehicle.MaxCapacity)
	}
	return Pass()
}

func VehicleAvailable(vehicle model.Vehicle) Outcome {
	if vehicle.Status != model.VehicleStatusAvailable {
		return Fail(ReasonVehicleUnavailable, "vehicle %s is %s", vehicle.LicensePlate, vehicle.Status)
	}
	return Pass()
}

func DriverEligible(driver model.Driver, now time.Time) Outcome {
	if driver.Status != model.DriverStatusOnDuty {
		return Fail(ReasonDriverIneligible, "driver %s is %s", driver.FullName, driver.Status)
	}
	if driver.LicenseExpiredOn(now) {
		return Fail(ReasonDriverIneligible, "license of driver %s expired on %s",
			driver.FullName, time.Time(driver.LicenseExpiry).Format(time.DateOnly))
	}
	return Pass()
}

func MaintenanceEligible(vehicle model.Vehicle) Outcome {
	switch vehicle.Status {
	case model.VehicleStatusOnTrip, model.VehicleStatusRetired:
		return Fail(ReasonMaintenanceIneligible, "vehicle %s is %s", vehicle.LicensePlate, vehicle.Status)
	default:
		return Pass()
	}
}
