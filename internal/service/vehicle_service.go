package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/rules"
)

type VehicleService struct {
	uow *UnitOfWork
}

func NewVehicleService(uow *UnitOfWork) *VehicleService {
	return &VehicleService{uow: uow}
}

type CreateVehicleInput struct {
	Name            string
	Model           string
	LicensePlate    string
	VehicleType     model.VehicleType
	MaxCapacity     float64
	Odometer        float64
	AcquisitionCost float64
	Region          string
}

type UpdateVehicleInput struct {
	Name            *string
	Model           *string
	VehicleType     *model.VehicleType
	MaxCapacity     *float64
	Odometer        *float64
	AcquisitionCost *float64
	Region          *string
}

type VehicleListOptions struct {
	Statuses []model.VehicleStatus
	Types    []model.VehicleType
	Region   string
	Search   string
	Limit    int
	Offset   int
}

func (s *VehicleService) List(ctx context.Context, opts VehicleListOptions) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		vehicles, err = tx.Vehicles().List(repository.VehicleFilter{
			Statuses: opts.Statuses,
			Types:    opts.Types,
			Region:   opts.Region,
			Search:   strings.TrimSpace(opts.Search),
			Limit:    opts.Limit,
			Offset:   opts.Offset,
		})
		return err
	})
	return vehicles, err
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle *model.Vehicle
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		vehicle, err = tx.Vehicles().Get(id)
		return err
	})
	return vehicle, err
}

func (s *VehicleService) Create(ctx context.Context, principal model.Principal, input CreateVehicleInput) (*model.Vehicle, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Model = strings.TrimSpace(input.Model)
	input.LicensePlate = strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	input.Region = strings.TrimSpace(input.Region)
	if input.Region == "" {
		input.Region = model.DefaultRegion
	}

	switch {
	case input.Name == "":
		return nil, invalidInput("name is required")
	case input.LicensePlate == "":
		return nil, invalidInput("license_plate is required")
	case !input.VehicleType.Valid():
		return nil, invalidInput("unknown vehicle_type %q", input.VehicleType)
	case input.MaxCapacity <= 0:
		return nil, invalidInput("max_capacity must be positive")
	case input.Odometer < 0:
		return nil, invalidInput("odometer must not be negative")
	case input.AcquisitionCost < 0:
		return nil, invalidInput("acquisition_cost must not be negative")
	}

	var created model.Vehicle
	err := s.uow.Do(ctx, "vehicle.create", func(tx repository.Tx, out *Outbox) error {
		vehicle := model.Vehicle{
			Name:            input.Name,
			Model:           input.Model,
			LicensePlate:    input.LicensePlate,
			VehicleType:     input.VehicleType,
			MaxCapacity:     input.MaxCapacity,
			Odometer:        input.Odometer,
			AcquisitionCost: input.AcquisitionCost,
			Status:          model.VehicleStatusAvailable,
			Region:          input.Region,
			Version:         1,
		}
		if err := tx.Vehicles().Create(&vehicle); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateVehicle,
			entity: model.EntityVehicle,
			id:     vehicle.ID,
			to:     string(vehicle.Status),
			details: map[string]interface{}{
				"license_plate": vehicle.LicensePlate,
			},
		}); err != nil {
			return err
		}
		created = vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update edits the profile of a vehicle. The plate and the status are not editable here.
func (s *VehicleService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateVehicleInput) (*model.Vehicle, error) {
	switch {
	case input.VehicleType != nil && !input.VehicleType.Valid():
		return nil, invalidInput("unknown vehicle_type %q", *input.VehicleType)
	case input.MaxCapacity != nil && *input.MaxCapacity <= 0:
		return nil, invalidInput("max_capacity must be positive")
	case input.AcquisitionCost != nil && *input.AcquisitionCost < 0:
		return nil, invalidInput("acquisition_cost must not be negative")
	case input.Name != nil && strings.TrimSpace(*input.Name) == "":
		return nil, invalidInput("name must not be empty")
	}

	var updated model.Vehicle
	err := s.uow.Do(ctx, "vehicle.update", func(tx repository.Tx, out *Outbox) error {
		vehicle, err := tx.Vehicles().Get(id)
		if err != nil {
			return err
		}

		if input.Odometer != nil {
			if *input.Odometer < vehicle.Odometer {
				return invalidInput("odometer cannot decrease from %.1f to %.1f", vehicle.Odometer, *input.Odometer)
			}
			vehicle.Odometer = *input.Odometer
		}
		if input.Name != nil {
			vehicle.Name = strings.TrimSpace(*input.Name)
		}
		if input.Model != nil {
			vehicle.Model = strings.TrimSpace(*input.Model)
		}
		if input.VehicleType != nil {
			vehicle.VehicleType = *input.VehicleType
		}
		if input.MaxCapacity != nil {
			vehicle.MaxCapacity = *input.MaxCapacity
		}
		if input.AcquisitionCost != nil {
			vehicle.AcquisitionCost = *input.AcquisitionCost
		}
		if input.Region != nil {
			vehicle.Region = strings.TrimSpace(*input.Region)
			if vehicle.Region == "" {
				vehicle.Region = model.DefaultRegion
			}
		}

		if err := tx.Vehicles().Update(vehicle); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionUpdateVehicle,
			entity: model.EntityVehicle,
			id:     vehicle.ID,
		}); err != nil {
			return err
		}
		updated = *vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Retire takes a vehicle out of service for good. Open maintenance logs stay as they are.
func (s *VehicleService) Retire(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Vehicle, error) {
	var retired model.Vehicle
	err := s.uow.Do(ctx, "vehicle.retire", func(tx repository.Tx, out *Outbox) error {
		vehicle, err := tx.Vehicles().Get(id)
		if err != nil {
			return err
		}

		previous := vehicle.Status
		switch previous {
		case model.VehicleStatusRetired:
			return reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition, "vehicle %s is already retired", vehicle.LicensePlate))
		case model.VehicleStatusOnTrip:
			return reject(ErrPreconditionFailed, rules.Fail(rules.ReasonVehicleOnTrip, "vehicle %s is on a trip", vehicle.LicensePlate))
		}

		vehicle.Status = model.VehicleStatusRetired
		if err := tx.Vehicles().Update(vehicle); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionRetireVehicle,
			entity: model.EntityVehicle,
			id:     vehicle.ID,
			from:   string(previous),
			to:     string(vehicle.Status),
		}); err != nil {
			return err
		}

		out.Emit(events.Event{
			Type:       events.VehicleRetired,
			EntityID:   vehicle.ID,
			ActorID:    principal.UserID,
			Status:     string(vehicle.Status),
			OccurredAt: s.uow.Now(),
			Data:       map[string]interface{}{"license_plate": vehicle.LicensePlate},
		})
		retired = *vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &retired, nil
}

// Delete removes a vehicle that nothing references. Vehicles with history must be retired instead.
func (s *VehicleService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.uow.Do(ctx, "vehicle.delete", func(tx repository.Tx, out *Outbox) error {
		vehicle, err := tx.Vehicles().Get(id)
		if err != nil {
			return err
		}
		if vehicle.Status == model.VehicleStatusOnTrip {
			return reject(ErrConflict, rules.Fail(rules.ReasonVehicleOnTrip, "vehicle %s is on a trip", vehicle.LicensePlate))
		}
		if err := tx.Vehicles().Delete(vehicle.ID); err != nil {
			return err
		}
		return writeAudit(tx, principal, auditEntry{
			action: model.AuditActionDeleteVehicle,
			entity: model.EntityVehicle,
			id:     vehicle.ID,
			from:   string(vehicle.Status),
			details: map[string]interface{}{
				"license_plate": vehicle.LicensePlate,
			},
		})
	})
}
