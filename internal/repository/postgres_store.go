package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresStore struct {
	db        *gorm.DB
	txTimeout time.Duration
}

func NewPostgresStore(db *gorm.DB, txTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, txTimeout: txTimeout}
}

// WithinTx locks every row it loads by id (SELECT ... FOR UPDATE) so concurrent lifecycle
// operations on the same vehicle, driver or trip serialize.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormTx(tx, true))
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return translateError(err)
}

func (s *PostgresStore) View(ctx context.Context, fn func(tx Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormTx(tx, false))
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	return translateError(err)
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.txTimeout)
}

type gormTx struct {
	vehicles    *VehicleRepository
	drivers     *DriverRepository
	trips       *TripRepository
	maintenance *MaintenanceRepository
	fuelLogs    *FuelLogRepository
	expenses    *ExpenseRepository
	audit       *AuditRepository
}

func newGormTx(db *gorm.DB, lock bool) *gormTx {
	return &gormTx{
		vehicles:    &VehicleRepository{db: db, lock: lock},
		drivers:     &DriverRepository{db: db, lock: lock},
		trips:       &TripRepository{db: db, lock: lock},
		maintenance: &MaintenanceRepository{db: db, lock: lock},
		fuelLogs:    &FuelLogRepository{db: db},
		expenses:    &ExpenseRepository{db: db},
		audit:       &AuditRepository{db: db},
	}
}

func (t *gormTx) Vehicles() Vehicles           { return t.vehicles }
func (t *gormTx) Drivers() Drivers             { return t.drivers }
func (t *gormTx) Trips() Trips                 { return t.trips }
func (t *gormTx) Maintenance() MaintenanceLogs { return t.maintenance }
func (t *gormTx) FuelLogs() FuelLogs           { return t.fuelLogs }
func (t *gormTx) Expenses() Expenses           { return t.expenses }
func (t *gormTx) Audit() AuditLogs             { return t.audit }

func forUpdate(db *gorm.DB, lock bool) *gorm.DB {
	if lock {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

// updateVersioned applies fields to the row only if it still carries *version.
func updateVersioned(db *gorm.DB, table interface{}, id uuid.UUID, version *int64, fields map[string]interface{}) error {
	fields["version"] = *version + 1
	res := db.Model(table).
		Where("id = ? AND version = ?", id, *version).
		Updates(fields)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	*version++
	return nil
}

func deleteByID(db *gorm.DB, table interface{}, id uuid.UUID) error {
	res := db.Delete(table, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
