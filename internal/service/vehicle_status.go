package service

import (
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// settleVehicleStatus recomputes a vehicle's status from the facts that drive it: a dispatched
// trip puts it on the road, an active maintenance log keeps it in the shop, otherwise it is
// available. Retirement is never undone.
func settleVehicleStatus(tx repository.Tx, vehicle *model.Vehicle) error {
	if vehicle.Status == model.VehicleStatusRetired {
		return nil
	}

	dispatched, err := tx.Trips().List(repository.TripFilter{
		VehicleID: &vehicle.ID,
		Statuses:  []model.TripStatus{model.TripStatusDispatched},
		Limit:     1,
	})
	if err != nil {
		return err
	}
	if len(dispatched) > 0 {
		vehicle.Status = model.VehicleStatusOnTrip
		return nil
	}

	active, err := tx.Maintenance().CountActive(vehicle.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		vehicle.Status = model.VehicleStatusInShop
	} else {
		vehicle.Status = model.VehicleStatusAvailable
	}
	return nil
}

// saveSettledVehicle settles the vehicle and writes it back even when its status is unchanged.
// Maintenance changes alter the facts behind the status without touching the vehicle row, so the
// write is what makes two concurrent changes on the same vehicle conflict.
func saveSettledVehicle(tx repository.Tx, vehicle *model.Vehicle) error {
	if err := settleVehicleStatus(tx, vehicle); err != nil {
		return err
	}
	return tx.Vehicles().Update(vehicle)
}
