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

type DriverService struct {
	uow *UnitOfWork
}

func NewDriverService(uow *UnitOfWork) *DriverService {
	return &DriverService{uow: uow}
}

type CreateDriverInput struct {
	FullName      string
	LicenseNumber string
	LicenseExpiry time.Time
	Phone         string
	Status        model.DriverStatus
}

type UpdateDriverInput struct {
	FullName      *string
	LicenseNumber *string
	LicenseExpiry *time.Time
	Phone         *string
}

type DriverListOptions struct {
	Statuses []model.DriverStatus
	Search   string
	Limit    int
	Offset   int
}

func (s *DriverService) List(ctx context.Context, opts DriverListOptions) ([]model.Driver, error) {
	var drivers []model.Driver
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		drivers, err = tx.Drivers().List(repository.DriverFilter{
			Statuses: opts.Statuses,
			Search:   strings.TrimSpace(opts.Search),
			Limit:    opts.Limit,
			Offset:   opts.Offset,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.uow.Now()
	for i := range drivers {
		drivers[i] = drivers[i].WithDerived(now)
	}
	return drivers, nil
}

func (s *DriverService) Get(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		found, err := tx.Drivers().Get(id)
		if err != nil {
			return err
		}
		driver = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	driver = driver.WithDerived(s.uow.Now())
	return &driver, nil
}

func (s *DriverService) Create(ctx context.Context, principal model.Principal, input CreateDriverInput) (*model.Driver, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.LicenseNumber = strings.TrimSpace(input.LicenseNumber)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Status == "" {
		input.Status = model.DriverStatusOnDuty
	}

	switch {
	case input.FullName == "":
		return nil, invalidInput("full_name is required")
	case input.LicenseNumber == "":
		return nil, invalidInput("license_number is required")
	case input.LicenseExpiry.IsZero():
		return nil, invalidInput("license_expiry is required")
	case input.Status != model.DriverStatusOnDuty && input.Status != model.DriverStatusOffDuty:
		return nil, invalidInput("a new driver must be ON_DUTY or OFF_DUTY")
	}

	var created model.Driver
	err := s.uow.Do(ctx, "driver.create", func(tx repository.Tx, out *Outbox) error {
		driver := model.Driver{
			FullName:      input.FullName,
			LicenseNumber: input.LicenseNumber,
			LicenseExpiry: datatypes.Date(input.LicenseExpiry),
			Phone:         input.Phone,
			Status:        input.Status,
			SafetyScore:   model.MaxSafetyScore,
			Version:       1,
		}
		if err := tx.Drivers().Create(&driver); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateDriver,
			entity: model.EntityDriver,
			id:     driver.ID,
			to:     string(driver.Status),
		}); err != nil {
			return err
		}
		created = driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	created = created.WithDerived(s.uow.Now())
	return &created, nil
}

// Update edits profile fields. Status and trip counters are owned by the lifecycle operations.
func (s *DriverService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateDriverInput) (*model.Driver, error) {
	if input.FullName != nil && strings.TrimSpace(*input.FullName) == "" {
		return nil, invalidInput("full_name must not be empty")
	}
	if input.LicenseNumber != nil && strings.TrimSpace(*input.LicenseNumber) == "" {
		return nil, invalidInput("license_number must not be empty")
	}

	return s.mutate(ctx, "driver.update", principal, id, func(driver *model.Driver, out *Outbox) (auditEntry, error) {
		if input.FullName != nil {
			driver.FullName = strings.TrimSpace(*input.FullName)
		}
		if input.LicenseNumber != nil {
			driver.LicenseNumber = strings.TrimSpace(*input.LicenseNumber)
		}
		if input.LicenseExpiry != nil {
			driver.LicenseExpiry = datatypes.Date(*input.LicenseExpiry)
		}
		if input.Phone != nil {
			driver.Phone = strings.TrimSpace(*input.Phone)
		}
		return auditEntry{action: model.AuditActionUpdateDriver}, nil
	})
}

// SetDuty toggles a driver between ON_DUTY and OFF_DUTY.
func (s *DriverService) SetDuty(ctx context.Context, principal model.Principal, id uuid.UUID, onDuty bool) (*model.Driver, error) {
	next := model.DriverStatusOffDuty
	if onDuty {
		next = model.DriverStatusOnDuty
	}

	return s.mutate(ctx, "driver.duty", principal, id, func(driver *model.Driver, out *Outbox) (auditEntry, error) {
		switch driver.Status {
		case model.DriverStatusOnTrip:
			return auditEntry{}, reject(ErrPreconditionFailed, rules.Fail(rules.ReasonDriverOnTrip, "driver %s is on a trip", driver.FullName))
		case model.DriverStatusSuspended:
			return auditEntry{}, reject(ErrPreconditionFailed, rules.Fail(rules.ReasonDriverSuspended, "driver %s is suspended", driver.FullName))
		}
		previous := driver.Status
		driver.Status = next
		return auditEntry{action: model.AuditActionDriverDuty, from: string(previous), to: string(next)}, nil
	})
}

func (s *DriverService) Suspend(ctx context.Context, principal model.Principal, id uuid.UUID, reason string) (*model.Driver, error) {
	return s.mutate(ctx, "driver.suspend", principal, id, func(driver *model.Driver, out *Outbox) (auditEntry, error) {
		switch driver.Status {
		case model.DriverStatusOnTrip:
			return auditEntry{}, reject(ErrPreconditionFailed, rules.Fail(rules.ReasonDriverOnTrip, "driver %s is on a trip", driver.FullName))
		case model.DriverStatusSuspended:
			return auditEntry{}, reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition, "driver %s is already suspended", driver.FullName))
		}
		previous := driver.Status
		driver.Status = model.DriverStatusSuspended

		out.Emit(s.driverEvent(events.DriverSuspended, principal, *driver))
		entry := auditEntry{action: model.AuditActionSuspendDriver, from: string(previous), to: string(driver.Status)}
		if reason = strings.TrimSpace(reason); reason != "" {
			entry.details = map[string]interface{}{"reason": reason}
		}
		return entry, nil
	})
}

// Unsuspend returns a suspended driver to OFF_DUTY; going back on duty is a separate step.
func (s *DriverService) Unsuspend(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Driver, error) {
	return s.mutate(ctx, "driver.unsuspend", principal, id, func(driver *model.Driver, out *Outbox) (auditEntry, error) {
		if driver.Status != model.DriverStatusSuspended {
			return auditEntry{}, reject(ErrInvalidTransition, rules.Fail(rules.ReasonInvalidTransition, "driver %s is %s", driver.FullName, driver.Status))
		}
		driver.Status = model.DriverStatusOffDuty

		out.Emit(s.driverEvent(events.DriverUnsuspended, principal, *driver))
		return auditEntry{action: model.AuditActionUnsuspendDriver, from: string(model.DriverStatusSuspended), to: string(driver.Status)}, nil
	})
}

func (s *DriverService) RecordComplaint(ctx context.Context, principal model.Principal, id uuid.UUID, note string) (*model.Driver, error) {
	return s.mutate(ctx, "driver.complaint", principal, id, func(driver *model.Driver, out *Outbox) (auditEntry, error) {
		driver.Complaints++
		driver.SafetyScore = metrics.SafetyScore(driver.Complaints, driver.CancelledTrips, driver.TotalTrips)

		details := map[string]interface{}{
			"complaints":   driver.Complaints,
			"safety_score": driver.SafetyScore,
		}
		if note = strings.TrimSpace(note); note != "" {
			details["note"] = note
		}
		return auditEntry{action: model.AuditActionDriverComplaint, details: details}, nil
	})
}

// Delete removes a driver without trip history.
func (s *DriverService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.uow.Do(ctx, "driver.delete", func(tx repository.Tx, out *Outbox) error {
		driver, err := tx.Drivers().Get(id)
		if err != nil {
			return err
		}
		if driver.Status == model.DriverStatusOnTrip {
			return reject(ErrConflict, rules.Fail(rules.ReasonDriverOnTrip, "driver %s is on a trip", driver.FullName))
		}
		if err := tx.Drivers().Delete(driver.ID); err != nil {
			return err
		}
		return writeAudit(tx, principal, auditEntry{
			action:  model.AuditActionDeleteDriver,
			entity:  model.EntityDriver,
			id:      driver.ID,
			from:    string(driver.Status),
			details: map[string]interface{}{"license_number": driver.LicenseNumber},
		})
	})
}

// mutate loads a driver, applies change and persists it together with the audit entry change returns.
func (s *DriverService) mutate(
	ctx context.Context,
	op string,
	principal model.Principal,
	id uuid.UUID,
	change func(driver *model.Driver, out *Outbox) (auditEntry, error),
) (*model.Driver, error) {
	var result model.Driver
	err := s.uow.Do(ctx, op, func(tx repository.Tx, out *Outbox) error {
		driver, err := tx.Drivers().Get(id)
		if err != nil {
			return err
		}
		entry, err := change(driver, out)
		if err != nil {
			return err
		}
		if err := tx.Drivers().Update(driver); err != nil {
			return err
		}
		entry.entity = model.EntityDriver
		entry.id = driver.ID
		if err := writeAudit(tx, principal, entry); err != nil {
			return err
		}
		result = *driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	result = result.WithDerived(s.uow.Now())
	return &result, nil
}

func (s *DriverService) driverEvent(t events.Type, principal model.Principal, driver model.Driver) events.Event {
	return events.Event{
		Type:       t,
		EntityID:   driver.ID,
		ActorID:    principal.UserID,
		Status:     string(driver.Status),
		OccurredAt: s.uow.Now(),
	}
}
