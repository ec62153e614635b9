package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/rules"
)

type MaintenanceService struct {
	uow *UnitOfWork
}

func NewMaintenanceService(uow *UnitOfWork) *MaintenanceService {
	return &MaintenanceService{uow: uow}
}

type OpenMaintenanceInput struct {
	VehicleID   uuid.UUID
	Issue       string
	Description string
	Date        *time.Time
	Cost        float64
}

type UpdateMaintenanceInput struct {
	Issue       *string
	Description *string
	Date        *time.Time
	Cost        *float64
	Status      *model.MaintenanceStatus
}

type MaintenanceListOptions struct {
	VehicleID *uuid.UUID
	Statuses  []model.MaintenanceStatus
	Limit     int
	Offset    int
}

// MaintenanceResult pairs a log with the vehicle state after the change.
type MaintenanceResult struct {
	Log     model.MaintenanceLog `json:"log"`
	Vehicle model.Vehicle        `json:"vehicle"`
}

func (s *MaintenanceService) List(ctx context.Context, opts MaintenanceListOptions) ([]model.MaintenanceLog, error) {
	var logs []model.MaintenanceLog
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		logs, err = tx.Maintenance().List(repository.MaintenanceFilter{
			VehicleID: opts.VehicleID,
			Statuses:  opts.Statuses,
			Limit:     opts.Limit,
			Offset:    opts.Offset,
		})
		return err
	})
	return logs, err
}

func (s *MaintenanceService) Get(ctx context.Context, id uuid.UUID) (*model.MaintenanceLog, error) {
	var log *model.MaintenanceLog
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		log, err = tx.Maintenance().Get(id)
		return err
	})
	return log, err
}

// Open records a new issue and moves the vehicle into the shop.
func (s *MaintenanceService) Open(ctx context.Context, principal model.Principal, input OpenMaintenanceInput) (*MaintenanceResult, error) {
	input.Issue = strings.TrimSpace(input.Issue)
	switch {
	case input.VehicleID == uuid.Nil:
		return nil, invalidInput("vehicle_id is required")
	case input.Issue == "":
		return nil, invalidInput("issue is required")
	case input.Cost < 0:
		return nil, invalidInput("cost must not be negative")
	}

	var result MaintenanceResult
	err := s.uow.Do(ctx, "maintenance.open", func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		vehicle, err := tx.Vehicles().Get(input.VehicleID)
		if err != nil {
			return err
		}
		if outcome := rules.MaintenanceEligible(*vehicle); !outcome.Passed {
			return reject(ErrPreconditionFailed, outcome)
		}

		date := now
		if input.Date != nil {
			date = *input.Date
		}
		entry := model.MaintenanceLog{
			VehicleID:   vehicle.ID,
			Issue:       input.Issue,
			Description: strings.TrimSpace(input.Description),
			Date:        datatypes.Date(date),
			Cost:        input.Cost,
			Status:      model.MaintenanceStatusOpen,
			Version:     1,
		}
		if err := tx.Maintenance().Create(&entry); err != nil {
			return err
		}

		if err := saveSettledVehicle(tx, vehicle); err != nil {
			return err
		}

		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateMaintenance,
			entity: model.EntityMaintenanceLog,
			id:     entry.ID,
			to:     string(entry.Status),
			details: map[string]interface{}{
				"vehicle_id": vehicle.ID.String(),
				"issue":      entry.Issue,
				"cost":       entry.Cost,
			},
		}); err != nil {
			return err
		}

		out.Emit(maintenanceEvent(events.MaintenanceOpened, principal, entry, now))
		result = MaintenanceResult{Log: entry, Vehicle: *vehicle}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Update edits a log and optionally advances its status. Resolved logs keep their status.
func (s *MaintenanceService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateMaintenanceInput) (*MaintenanceResult, error) {
	switch {
	case input.Issue != nil && strings.TrimSpace(*input.Issue) == "":
		return nil, invalidInput("issue must not be empty")
	case input.Cost != nil && *input.Cost < 0:
		return nil, invalidInput("cost must not be negative")
	case input.Status != nil && !validMaintenanceStatus(*input.Status):
		return nil, invalidInput("unknown maintenance status %q", *input.Status)
	}
	return s.change(ctx, "maintenance.update", principal, id, input, false)
}

func (s *MaintenanceService) Resolve(ctx context.Context, principal model.Principal, id uuid.UUID) (*MaintenanceResult, error) {
	resolved := model.MaintenanceStatusResolved
	return s.change(ctx, "maintenance.resolve", principal, id, UpdateMaintenanceInput{Status: &resolved}, true)
}

// Delete drops a log and recomputes the vehicle status from the logs that remain.
func (s *MaintenanceService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Vehicle, error) {
	var settled model.Vehicle
	err := s.uow.Do(ctx, "maintenance.delete", func(tx repository.Tx, out *Outbox) error {
		entry, err := tx.Maintenance().Get(id)
		if err != nil {
			return err
		}
		vehicle, err := tx.Vehicles().Get(entry.VehicleID)
		if err != nil {
			return err
		}
		if err := tx.Maintenance().Delete(entry.ID); err != nil {
			return err
		}

		if err := saveSettledVehicle(tx, vehicle); err != nil {
			return err
		}

		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionDeleteMaintenance,
			entity: model.EntityMaintenanceLog,
			id:     entry.ID,
			from:   string(entry.Status),
			details: map[string]interface{}{
				"vehicle_id":     vehicle.ID.String(),
				"vehicle_status": string(vehicle.Status),
			},
		}); err != nil {
			return err
		}
		settled = *vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settled, nil
}

func (s *MaintenanceService) change(
	ctx context.Context,
	op string,
	principal model.Principal,
	id uuid.UUID,
	input UpdateMaintenanceInput,
	resolving bool,
) (*MaintenanceResult, error) {
	var result MaintenanceResult
	err := s.uow.Do(ctx, op, func(tx repository.Tx, out *Outbox) error {
		now := s.uow.Now()

		entry, err := tx.Maintenance().Get(id)
		if err != nil {
			return err
		}
		previous := entry.Status

		if input.Status != nil {
			if resolving && previous == model.MaintenanceStatusResolved {
				return reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition, "maintenance log is already resolved"))
			}
			if outcome := rules.MaintenanceTransitionAllowed(previous, *input.Status); !outcome.Passed {
				return reject(ErrInvalidTransition, outcome)
			}
			entry.Status = *input.Status
		}
		if input.Issue != nil {
			entry.Issue = strings.TrimSpace(*input.Issue)
		}
		if input.Description != nil {
			entry.Description = strings.TrimSpace(*input.Description)
		}
		if input.Date != nil {
			entry.Date = datatypes.Date(*input.Date)
		}
		if input.Cost != nil {
			entry.Cost = *input.Cost
		}
		resolvedNow := previous != model.MaintenanceStatusResolved && entry.Status == model.MaintenanceStatusResolved
		if resolvedNow {
			entry.ResolvedAt = &now
		}

		if err := tx.Maintenance().Update(entry); err != nil {
			return err
		}

		vehicle, err := tx.Vehicles().Get(entry.VehicleID)
		if err != nil {
			return err
		}
		if err := saveSettledVehicle(tx, vehicle); err != nil {
			return err
		}

		action := model.AuditActionUpdateMaintenance
		if resolvedNow {
			action = model.AuditActionResolveMaintenance
		}
		audit := auditEntry{
			action: action,
			entity: model.EntityMaintenanceLog,
			id:     entry.ID,
			details: map[string]interface{}{
				"vehicle_id":     vehicle.ID.String(),
				"vehicle_status": string(vehicle.Status),
			},
		}
		if previous != entry.Status {
			audit.from = string(previous)
			audit.to = string(entry.Status)
		}
		if err := writeAudit(tx, principal, audit); err != nil {
			return err
		}

		if resolvedNow {
			out.Emit(maintenanceEvent(events.MaintenanceResolved, principal, *entry, now))
		}
		result = MaintenanceResult{Log: *entry, Vehicle: *vehicle}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func validMaintenanceStatus(status model.MaintenanceStatus) bool {
	switch status {
	case model.MaintenanceStatusOpen, model.MaintenanceStatusInProgress, model.MaintenanceStatusResolved:
		return true
	default:
		return false
	}
}

func maintenanceEvent(t events.Type, principal model.Principal, entry model.MaintenanceLog, now time.Time) events.Event {
	return events.Event{
		Type:       t,
		EntityID:   entry.ID,
		ActorID:    principal.UserID,
		Status:     string(entry.Status),
		OccurredAt: now,
		Data: map[string]interface{}{
			"vehicle_id": entry.VehicleID.String(),
			"issue":      entry.Issue,
			"cost":       entry.Cost,
		},
	}
}
