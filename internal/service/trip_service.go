package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fleet-service/internal/events"
	"fleet-service/internal/metrics"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/rules"
)

type TripService struct {
	uow *UnitOfWork
}

func NewTripService(uow *UnitOfWork) *TripService {
	return &TripService{uow: uow}
}

type CreateTripInput struct {
	VehicleID         uuid.UUID
	DriverID          uuid.UUID
	CargoWeight       float64
	Origin            string
	Destination       string
	ScheduledDate     *time.Time
	EstimatedFuelCost float64
	Revenue           float64
}

type UpdateTripInput struct {
	CargoWeight       *float64
	Origin            *string
	Destination       *string
	ScheduledDate     *time.Time
	EstimatedFuelCost *float64
	Revenue           *float64
}

type CompleteTripInput struct {
	Distance float64
	Revenue  *float64
}

type TripListOptions struct {
	Statuses  []model.TripStatus
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

func (s *TripService) List(ctx context.Context, opts TripListOptions) ([]model.Trip, error) {
	var trips []model.Trip
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		trips, err = tx.Trips().List(repository.TripFilter{
			Statuses:  opts.Statuses,
			VehicleID: opts.VehicleID,
			DriverID:  opts.DriverID,
			Search:    strings.TrimSpace(opts.Search),
			Limit:     opts.Limit,
			Offset:    opts.Offset,
		})
		return err
	})
	return trips, err
}

func (s *TripService) Get(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var trip *model.Trip
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		trip, err = tx.Trips().Get(id)
		return err
	})
	return trip, err
}

// Create validates the assignment and stores the trip as a draft. A draft reserves neither
// the vehicle nor the driver.
func (s *TripService) Create(ctx context.Context, principal model.Principal, input CreateTripInput) (*model.Trip, error) {
	input.Origin = strings.TrimSpace(input.Origin)
	input.Destination = strings.TrimSpace(input.Destination)

	switch {
	case input.VehicleID == uuid.Nil || input.DriverID == uuid.Nil:
		return nil, invalidInput("vehicle_id and driver_id are required")
	case input.CargoWeight <= 0:
		return nil, invalidInput("cargo_weight must be positive")
	case input.Origin == "" || input.Destination == "":
		return nil, invalidInput("origin and destination are required")
	case input.EstimatedFuelCost < 0 || input.Revenue < 0:
		return nil, invalidInput("costs must not be negative")
	}

	var created model.Trip
	err := s.uow.Do(ctx, "trip.create", func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		vehicle, err := tx.Vehicles().Get(input.VehicleID)
		if err != nil {
			return err
		}
		driver, err := tx.Drivers().Get(input.DriverID)
		if err != nil {
			return err
		}

		scheduled := now
		if input.ScheduledDate != nil {
			scheduled = *input.ScheduledDate
		}

		trip := model.Trip{
			VehicleID:         vehicle.ID,
			DriverID:          driver.ID,
			CargoWeight:       input.CargoWeight,
			Origin:            input.Origin,
			Destination:       input.Destination,
			EstimatedFuelCost: input.EstimatedFuelCost,
			Revenue:           input.Revenue,
			Status:            model.TripStatusDraft,
			ScheduledDate:     datatypes.Date(scheduled),
			Version:           1,
		}
		if principal.UserID != uuid.Nil {
			creator := principal.UserID
			trip.CreatedBy = &creator
		}

		if outcome := rules.First(
			rules.VehicleAvailable(*vehicle),
			rules.DriverEligible(*driver, now),
			rules.CapacityOK(trip, *vehicle),
		); !outcome.Passed {
			return reject(ErrValidation, outcome)
		}
		if outcome, err := assignmentFree(tx, vehicle.ID, driver.ID); err != nil {
			return err
		} else if !outcome.Passed {
			return reject(ErrValidation, outcome)
		}

		if err := tx.Trips().Create(&trip); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateTrip,
			entity: model.EntityTrip,
			id:     trip.ID,
			to:     string(trip.Status),
			details: map[string]interface{}{
				"vehicle_id":   vehicle.ID.String(),
				"driver_id":    driver.ID.String(),
				"cargo_weight": trip.CargoWeight,
			},
		}); err != nil {
			return err
		}

		created = trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update edits a trip that has not finished. Drafts accept every field; dispatched trips only
// accept the estimated fuel cost and revenue.
func (s *TripService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateTripInput) (*model.Trip, error) {
	if input.CargoWeight != nil && *input.CargoWeight <= 0 {
		return nil, invalidInput("cargo_weight must be positive")
	}
	if (input.EstimatedFuelCost != nil && *input.EstimatedFuelCost < 0) || (input.Revenue != nil && *input.Revenue < 0) {
		return nil, invalidInput("costs must not be negative")
	}

	var updated model.Trip
	err := s.uow.Do(ctx, "trip.update", func(tx repository.Tx, out *Outbox) error {
		trip, err := tx.Trips().Get(id)
		if err != nil {
			return err
		}

		routeChange := input.CargoWeight != nil || input.Origin != nil || input.Destination != nil || input.ScheduledDate != nil
		switch {
		case trip.Status.Terminal():
			return reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition, "trip is %s", trip.Status))
		case trip.Status == model.TripStatusDispatched && routeChange:
			return reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition,
				"only estimated_fuel_cost and revenue can change once a trip is dispatched"))
		}

		if input.CargoWeight != nil {
			trip.CargoWeight = *input.CargoWeight
		}
		if input.Origin != nil {
			trip.Origin = strings.TrimSpace(*input.Origin)
		}
		if input.Destination != nil {
			trip.Destination = strings.TrimSpace(*input.Destination)
		}
		if input.ScheduledDate != nil {
			trip.ScheduledDate = datatypes.Date(*input.ScheduledDate)
		}
		if input.EstimatedFuelCost != nil {
			trip.EstimatedFuelCost = *input.EstimatedFuelCost
		}
		if input.Revenue != nil {
			trip.Revenue = *input.Revenue
		}
		if trip.Origin == "" || trip.Destination == "" {
			return invalidInput("origin and destination are required")
		}

		if input.CargoWeight != nil {
			vehicle, err := tx.Vehicles().Get(trip.VehicleID)
			if err != nil {
				return err
			}
			if outcome := rules.CapacityOK(*trip, *vehicle); !outcome.Passed {
				return reject(ErrValidation, outcome)
			}
		}

		if err := tx.Trips().Update(trip); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionUpdateTrip,
			entity: model.EntityTrip,
			id:     trip.ID,
		}); err != nil {
			return err
		}

		updated = *trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Dispatch re-validates the vehicle and driver against their current rows and reserves both.
func (s *TripService) Dispatch(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Trip, error) {
	var dispatched model.Trip
	err := s.uow.Do(ctx, "trip.dispatch", func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		trip, err := tx.Trips().Get(id)
		if err != nil {
			return err
		}
		if outcome := rules.TripTransitionAllowed(trip.Status, model.TripStatusDispatched); !outcome.Passed {
			return reject(ErrInvalidTransition, outcome)
		}

		vehicle, err := tx.Vehicles().Get(trip.VehicleID)
		if err != nil {
			return err
		}
		driver, err := tx.Drivers().Get(trip.DriverID)
		if err != nil {
			return err
		}

		if outcome := rules.First(
			rules.VehicleAvailable(*vehicle),
			rules.DriverEligible(*driver, now),
			rules.CapacityOK(*trip, *vehicle),
		); !outcome.Passed {
			return reject(ErrPreconditionFailed, outcome)
		}

		trip.Status = model.TripStatusDispatched
		trip.DispatchedAt = &now
		vehicle.Status = model.VehicleStatusOnTrip
		driver.Status = model.DriverStatusOnTrip

		if err := tx.Trips().Update(trip); err != nil {
			return err
		}
		if err := tx.Vehicles().Update(vehicle); err != nil {
			return err
		}
		if err := tx.Drivers().Update(driver); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionDispatchTrip,
			entity: model.EntityTrip,
			id:     trip.ID,
			from:   string(model.TripStatusDraft),
			to:     string(trip.Status),
			details: map[string]interface{}{
				"vehicle_id": vehicle.ID.String(),
				"driver_id":  driver.ID.String(),
			},
		}); err != nil {
			return err
		}

		out.Emit(tripEvent(events.TripDispatched, principal, *trip, now))
		dispatched = *trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dispatched, nil
}

// Complete closes a dispatched trip, advances the odometer and releases vehicle and driver.
// An active maintenance log sends the vehicle to the shop instead of back to the pool.
func (s *TripService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID, input CompleteTripInput) (*model.Trip, error) {
	if input.Distance <= 0 {
		return nil, invalidInput("distance must be positive")
	}
	if input.Revenue != nil && *input.Revenue < 0 {
		return nil, invalidInput("revenue must not be negative")
	}

	var completed model.Trip
	err := s.uow.Do(ctx, "trip.complete", func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		trip, err := tx.Trips().Get(id)
		if err != nil {
			return err
		}
		if outcome := rules.TripTransitionAllowed(trip.Status, model.TripStatusCompleted); !outcome.Passed {
			return reject(ErrInvalidTransition, outcome)
		}

		vehicle, err := tx.Vehicles().Get(trip.VehicleID)
		if err != nil {
			return err
		}
		driver, err := tx.Drivers().Get(trip.DriverID)
		if err != nil {
			return err
		}

		trip.Status = model.TripStatusCompleted
		trip.Distance = input.Distance
		trip.CompletedAt = &now
		if input.Revenue != nil {
			trip.Revenue = *input.Revenue
		}
		if err := tx.Trips().Update(trip); err != nil {
			return err
		}

		vehicle.Odometer += input.Distance
		if err := settleVehicleStatus(tx, vehicle); err != nil {
			return err
		}
		if err := tx.Vehicles().Update(vehicle); err != nil {
			return err
		}

		driver.Status = model.DriverStatusOnDuty
		driver.CompletedTrips++
		driver.TotalTrips++
		driver.SafetyScore = metrics.SafetyScore(driver.Complaints, driver.CancelledTrips, driver.TotalTrips)
		if err := tx.Drivers().Update(driver); err != nil {
			return err
		}

		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCompleteTrip,
			entity: model.EntityTrip,
			id:     trip.ID,
			from:   string(model.TripStatusDispatched),
			to:     string(trip.Status),
			details: map[string]interface{}{
				"distance":       trip.Distance,
				"revenue":        trip.Revenue,
				"vehicle_status": string(vehicle.Status),
			},
		}); err != nil {
			return err
		}

		out.Emit(tripEvent(events.TripCompleted, principal, *trip, now))
		completed = *trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &completed, nil
}

// Cancel is legal from draft and dispatched. Cancelling a dispatched trip releases the vehicle
// and driver and counts against the driver's record.
func (s *TripService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Trip, error) {
	var cancelled model.Trip
	err := s.uow.Do(ctx, "trip.cancel", func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		trip, err := tx.Trips().Get(id)
		if err != nil {
			return err
		}
		previous := trip.Status
		if outcome := rules.TripTransitionAllowed(previous, model.TripStatusCancelled); !outcome.Passed {
			return reject(ErrInvalidTransition, outcome)
		}

		trip.Status = model.TripStatusCancelled
		trip.CancelledAt = &now
		if err := tx.Trips().Update(trip); err != nil {
			return err
		}

		if previous == model.TripStatusDispatched {
			vehicle, err := tx.Vehicles().Get(trip.VehicleID)
			if err != nil {
				return err
			}
			if err := settleVehicleStatus(tx, vehicle); err != nil {
				return err
			}
			if err := tx.Vehicles().Update(vehicle); err != nil {
				return err
			}

			driver, err := tx.Drivers().Get(trip.DriverID)
			if err != nil {
				return err
			}
			driver.Status = model.DriverStatusOnDuty
			driver.CancelledTrips++
			driver.TotalTrips++
			driver.SafetyScore = metrics.SafetyScore(driver.Complaints, driver.CancelledTrips, driver.TotalTrips)
			if err := tx.Drivers().Update(driver); err != nil {
				return err
			}
		}

		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCancelTrip,
			entity: model.EntityTrip,
			id:     trip.ID,
			from:   string(previous),
			to:     string(trip.Status),
		}); err != nil {
			return err
		}

		out.Emit(tripEvent(events.TripCancelled, principal, *trip, now))
		cancelled = *trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// assignmentFree double-checks the trip table itself, so a vehicle or driver whose status was
// left stale can never take a second dispatched trip.
func assignmentFree(tx repository.Tx, vehicleID, driverID uuid.UUID) (rules.Outcome, error) {
	dispatched := []model.TripStatus{model.TripStatusDispatched}

	byVehicle, err := tx.Trips().List(repository.TripFilter{VehicleID: &vehicleID, Statuses: dispatched, Limit: 1})
	if err != nil {
		return rules.Outcome{}, err
	}
	if len(byVehicle) > 0 {
		return rules.Fail(rules.ReasonVehicleUnavailable, "vehicle is on trip %s", byVehicle[0].ID), nil
	}

	byDriver, err := tx.Trips().List(repository.TripFilter{DriverID: &driverID, Statuses: dispatched, Limit: 1})
	if err != nil {
		return rules.Outcome{}, err
	}
	if len(byDriver) > 0 {
		return rules.Fail(rules.ReasonDriverIneligible, "driver is on trip %s", byDriver[0].ID), nil
	}
	return rules.Pass(), nil
}

func tripEvent(t events.Type, principal model.Principal, trip model.Trip, now time.Time) events.Event {
	return events.Event{
		Type:       t,
		EntityID:   trip.ID,
		ActorID:    principal.UserID,
		Status:     string(trip.Status),
		OccurredAt: now,
		Data: map[string]interface{}{
			"vehicle_id": trip.VehicleID.String(),
			"driver_id":  trip.DriverID.String(),
			"distance":   trip.Distance,
			"revenue":    trip.Revenue,
		},
	}
}
