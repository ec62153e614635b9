package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("concurrent update conflict")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrReferenced   = errors.New("record is still referenced")
)

// Store scopes repository access to a transaction. WithinTx commits only when fn returns nil;
// View runs fn against a consistent read-only snapshot.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction and its context.
type Tx interface {
	Vehicles() Vehicles
	Drivers() Drivers
	Trips() Trips
	Maintenance() MaintenanceLogs
	FuelLogs() FuelLogs
	Expenses() Expenses
	Audit() AuditLogs
}

// Update methods are optimistic: they match on the record's Version, bump it on success and
// return ErrConflict when the stored row moved on.
type Vehicles interface {
	Get(id uuid.UUID) (*model.Vehicle, error)
	List(filter VehicleFilter) ([]model.Vehicle, error)
	Create(vehicle *model.Vehicle) error
	Update(vehicle *model.Vehicle) error
	Delete(id uuid.UUID) error
}

type Drivers interface {
	Get(id uuid.UUID) (*model.Driver, error)
	List(filter DriverFilter) ([]model.Driver, error)
	Create(driver *model.Driver) error
	Update(driver *model.Driver) error
	Delete(id uuid.UUID) error
}

type Trips interface {
	Get(id uuid.UUID) (*model.Trip, error)
	List(filter TripFilter) ([]model.Trip, error)
	Create(trip *model.Trip) error
	Update(trip *model.Trip) error
}

type MaintenanceLogs interface {
	Get(id uuid.UUID) (*model.MaintenanceLog, error)
	List(filter MaintenanceFilter) ([]model.MaintenanceLog, error)
	CountActive(vehicleID uuid.UUID) (int64, error)
	Create(log *model.MaintenanceLog) error
	Update(log *model.MaintenanceLog) error
	Delete(id uuid.UUID) error
}

type FuelLogs interface {
	List(filter FinanceFilter) ([]model.FuelLog, error)
	Create(log *model.FuelLog) error
}

type Expenses interface {
	List(filter FinanceFilter) ([]model.Expense, error)
	Create(expense *model.Expense) error
}

type AuditLogs interface {
	List(filter AuditFilter) ([]model.AuditLog, error)
	Create(entry *model.AuditLog) error
}

// A zero Limit means no limit.
type VehicleFilter struct {
	Statuses []model.VehicleStatus
	Types    []model.VehicleType
	Region   string
	Search   string
	Limit    int
	Offset   int
}

type DriverFilter struct {
	Statuses []model.DriverStatus
	Search   string
	Limit    int
	Offset   int
}

// Search matches origin or destination, case-insensitively.
type TripFilter struct {
	Statuses  []model.TripStatus
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

type MaintenanceFilter struct {
	VehicleID *uuid.UUID
	Statuses  []model.MaintenanceStatus
	Limit     int
	Offset    int
}

// Category applies to expenses only and ignores case.
type FinanceFilter struct {
	VehicleID *uuid.UUID
	TripID    *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Category  string
	Limit     int
	Offset    int
}

type AuditFilter struct {
	EntityType model.EntityType
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Actions    []model.AuditAction
	Limit      int
	Offset     int
}
