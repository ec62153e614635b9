package memstore

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

type table string

const (
	tableVehicles    table = "vehicles"
	tableDrivers     table = "drivers"
	tableTrips       table = "trips"
	tableMaintenance table = "maintenance_logs"
	tableFuelLogs    table = "fuel_logs"
	tableExpenses    table = "expenses"
)

type rowKey struct {
	table table
	id    uuid.UUID
}

// state holds rows by value. Pointer fields inside rows are replaced, never mutated in place,
// so a shallow clone is enough to isolate transactions.
type state struct {
	vehicles    map[uuid.UUID]model.Vehicle
	drivers     map[uuid.UUID]model.Driver
	trips       map[uuid.UUID]model.Trip
	maintenance map[uuid.UUID]model.MaintenanceLog
	fuelLogs    map[uuid.UUID]model.FuelLog
	expenses    map[uuid.UUID]model.Expense
	audit       []model.AuditLog
}

func newState() state {
	return state{
		vehicles:    make(map[uuid.UUID]model.Vehicle),
		drivers:     make(map[uuid.UUID]model.Driver),
		trips:       make(map[uuid.UUID]model.Trip),
		maintenance: make(map[uuid.UUID]model.MaintenanceLog),
		fuelLogs:    make(map[uuid.UUID]model.FuelLog),
		expenses:    make(map[uuid.UUID]model.Expense),
	}
}

func (s state) clone() state {
	return state{
		vehicles:    maps.Clone(s.vehicles),
		drivers:     maps.Clone(s.drivers),
		trips:       maps.Clone(s.trips),
		maintenance: maps.Clone(s.maintenance),
		fuelLogs:    maps.Clone(s.fuelLogs),
		expenses:    maps.Clone(s.expenses),
		audit:       slices.Clone(s.audit),
	}
}

// version returns the row version for versioned tables; zero means the row is absent.
// Append-only tables report 1 for present rows.
func (s state) version(key rowKey) int64 {
	switch key.table {
	case tableVehicles:
		if row, ok := s.vehicles[key.id]; ok {
			return row.Version
		}
	case tableDrivers:
		if row, ok := s.drivers[key.id]; ok {
			return row.Version
		}
	case tableTrips:
		if row, ok := s.trips[key.id]; ok {
			return row.Version
		}
	case tableMaintenance:
		if row, ok := s.maintenance[key.id]; ok {
			return row.Version
		}
	case tableFuelLogs:
		if _, ok := s.fuelLogs[key.id]; ok {
			return 1
		}
	case tableExpenses:
		if _, ok := s.expenses[key.id]; ok {
			return 1
		}
	}
	return 0
}

// copyRow moves one row from src into dst, deleting it from dst when src no longer has it.
func copyRow(dst, src state, key rowKey) {
	switch key.table {
	case tableVehicles:
		copyEntry(dst.vehicles, src.vehicles, key.id)
	case tableDrivers:
		copyEntry(dst.drivers, src.drivers, key.id)
	case tableTrips:
		copyEntry(dst.trips, src.trips, key.id)
	case tableMaintenance:
		copyEntry(dst.maintenance, src.maintenance, key.id)
	case tableFuelLogs:
		copyEntry(dst.fuelLogs, src.fuelLogs, key.id)
	case tableExpenses:
		copyEntry(dst.expenses, src.expenses, key.id)
	}
}

func copyEntry[T any](dst, src map[uuid.UUID]T, id uuid.UUID) {
	if row, ok := src[id]; ok {
		dst[id] = row
		return
	}
	delete(dst, id)
}

// Snapshot is a point-in-time copy of the whole store.
type Snapshot struct {
	Vehicles    map[uuid.UUID]model.Vehicle
	Drivers     map[uuid.UUID]model.Driver
	Trips       map[uuid.UUID]model.Trip
	Maintenance map[uuid.UUID]model.MaintenanceLog
	FuelLogs    map[uuid.UUID]model.FuelLog
	Expenses    map[uuid.UUID]model.Expense
	Audit       []model.AuditLog
}

func (s state) snapshot() Snapshot {
	c := s.clone()
	return Snapshot{
		Vehicles:    c.vehicles,
		Drivers:     c.drivers,
		Trips:       c.trips,
		Maintenance: c.maintenance,
		FuelLogs:    c.fuelLogs,
		Expenses:    c.expenses,
		Audit:       c.audit,
	}
}
