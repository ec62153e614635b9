package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/rules"
)

// FinanceService records fuel and other operating expenses. Both ledgers are append-only.
type FinanceService struct {
	uow *UnitOfWork
}

func NewFinanceService(uow *UnitOfWork) *FinanceService {
	return &FinanceService{uow: uow}
}

type AddFuelLogInput struct {
	VehicleID       uuid.UUID
	TripID          *uuid.UUID
	Date            *time.Time
	Liters          float64
	Cost            float64
	OdometerReading float64
}

type AddExpenseInput struct {
	VehicleID   uuid.UUID
	TripID      *uuid.UUID
	Category    string
	Description string
	Amount      float64
	Date        *time.Time
}

type FinanceListOptions struct {
	VehicleID *uuid.UUID
	TripID    *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Category  string
	Limit     int
	Offset    int
}

func (o FinanceListOptions) filter() repository.FinanceFilter {
	return repository.FinanceFilter{
		VehicleID: o.VehicleID,
		TripID:    o.TripID,
		DateFrom:  o.DateFrom,
		DateTo:    o.DateTo,
		Category:  strings.TrimSpace(o.Category),
		Limit:     o.Limit,
		Offset:    o.Offset,
	}
}

func (s *FinanceService) AddFuelLog(ctx context.Context, principal model.Principal, input AddFuelLogInput) (*model.FuelLog, error) {
	switch {
	case input.VehicleID == uuid.Nil:
		return nil, invalidInput("vehicle_id is required")
	case input.Liters <= 0:
		return nil, invalidInput("liters must be positive")
	case input.Cost <= 0:
		return nil, invalidInput("cost must be positive")
	case input.OdometerReading < 0:
		return nil, invalidInput("odometer_reading must not be negative")
	}

	var created model.FuelLog
	err := s.uow.Do(ctx, "fuel_log.create", func(tx repository.Tx, out *Outbox) error {
		if err := checkCostTarget(tx, input.VehicleID, input.TripID); err != nil {
			return err
		}

		entry := model.FuelLog{
			VehicleID:       input.VehicleID,
			TripID:          input.TripID,
			Date:            datatypes.Date(dateOr(input.Date, s.uow.Now())),
			Liters:          input.Liters,
			Cost:            input.Cost,
			OdometerReading: input.OdometerReading,
		}
		if err := tx.FuelLogs().Create(&entry); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateFuelLog,
			entity: model.EntityFuelLog,
			id:     entry.ID,
			details: map[string]interface{}{
				"vehicle_id": entry.VehicleID.String(),
				"liters":     entry.Liters,
				"cost":       entry.Cost,
			},
		}); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *FinanceService) AddExpense(ctx context.Context, principal model.Principal, input AddExpenseInput) (*model.Expense, error) {
	input.Category = strings.TrimSpace(input.Category)
	switch {
	case input.VehicleID == uuid.Nil:
		return nil, invalidInput("vehicle_id is required")
	case input.Category == "":
		return nil, invalidInput("category is required")
	case input.Amount <= 0:
		return nil, invalidInput("amount must be positive")
	}

	var created model.Expense
	err := s.uow.Do(ctx, "expense.create", func(tx repository.Tx, out *Outbox) error {
		if err := checkCostTarget(tx, input.VehicleID, input.TripID); err != nil {
			return err
		}

		expense := model.Expense{
			VehicleID:   input.VehicleID,
			TripID:      input.TripID,
			Category:    input.Category,
			Description: strings.TrimSpace(input.Description),
			Amount:      input.Amount,
			Date:        datatypes.Date(dateOr(input.Date, s.uow.Now())),
		}
		if err := tx.Expenses().Create(&expense); err != nil {
			return err
		}
		if err := writeAudit(tx, principal, auditEntry{
			action: model.AuditActionCreateExpense,
			entity: model.EntityExpense,
			id:     expense.ID,
			details: map[string]interface{}{
				"vehicle_id": expense.VehicleID.String(),
				"category":   expense.Category,
				"amount":     expense.Amount,
			},
		}); err != nil {
			return err
		}
		created = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *FinanceService) ListFuelLogs(ctx context.Context, opts FinanceListOptions) ([]model.FuelLog, error) {
	var logs []model.FuelLog
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		logs, err = tx.FuelLogs().List(opts.filter())
		return err
	})
	return logs, err
}

func (s *FinanceService) ListExpenses(ctx context.Context, opts FinanceListOptions) ([]model.Expense, error) {
	var expenses []model.Expense
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		expenses, err = tx.Expenses().List(opts.filter())
		return err
	})
	return expenses, err
}

// checkCostTarget verifies the vehicle exists and that tripID, when set, is a trip of that vehicle.
func checkCostTarget(tx repository.Tx, vehicleID uuid.UUID, tripID *uuid.UUID) error {
	if _, err := tx.Vehicles().Get(vehicleID); err != nil {
		return err
	}
	if tripID == nil {
		return nil
	}
	trip, err := tx.Trips().Get(*tripID)
	if err != nil {
		return err
	}
	if trip.VehicleID != vehicleID {
		return reject(ErrInvalidInput, rules.Fail(rules.ReasonInvalidInput, "trip %s belongs to another vehicle", trip.ID))
	}
	return nil
}

func dateOr(date *time.Time, fallback time.Time) time.Time {
	if date != nil {
		return *date
	}
	return fallback
}
