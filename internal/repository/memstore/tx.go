package memstore

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type tx struct {
	store     *Store
	work      state
	readOnly  bool
	auditBase int
	step      int

	// seen holds the version of every row at the moment this transaction first touched it.
	seen    map[rowKey]int64
	written map[rowKey]struct{}
}

func (t *tx) Vehicles() repository.Vehicles           { return vehicleRepo{t} }
func (t *tx) Drivers() repository.Drivers             { return driverRepo{t} }
func (t *tx) Trips() repository.Trips                 { return tripRepo{t} }
func (t *tx) Maintenance() repository.MaintenanceLogs { return maintenanceRepo{t} }
func (t *tx) FuelLogs() repository.FuelLogs           { return fuelLogRepo{t} }
func (t *tx) Expenses() repository.Expenses           { return expenseRepo{t} }
func (t *tx) Audit() repository.AuditLogs             { return auditRepo{t} }

func (t *tx) see(key rowKey) {
	if _, ok := t.seen[key]; !ok {
		t.seen[key] = t.work.version(key)
	}
}

// beginWrite runs the fault hook and marks key as written.
func (t *tx) beginWrite(op string, key rowKey) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.step++
	if hook := t.store.faultHook(); hook != nil {
		if err := hook(op, t.step); err != nil {
			return err
		}
	}
	t.see(key)
	t.written[key] = struct{}{}
	return nil
}

func (t *tx) now() time.Time {
	return t.store.now()
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func newestFirst(aCreated, bCreated time.Time, aID, bID uuid.UUID) int {
	if c := bCreated.Compare(aCreated); c != 0 {
		return c
	}
	return strings.Compare(aID.String(), bID.String())
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type vehicleRepo struct{ t *tx }

func (r vehicleRepo) Get(id uuid.UUID) (*model.Vehicle, error) {
	r.t.see(rowKey{tableVehicles, id})
	row, ok := r.t.work.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r vehicleRepo) List(filter repository.VehicleFilter) ([]model.Vehicle, error) {
	out := make([]model.Vehicle, 0)
	for _, v := range r.t.work.vehicles {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, v.Status) {
			continue
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, v.VehicleType) {
			continue
		}
		if filter.Region != "" && v.Region != filter.Region {
			continue
		}
		if filter.Search != "" && !containsFold(v.LicensePlate, filter.Search) &&
			!containsFold(v.Name, filter.Search) && !containsFold(v.Model, filter.Search) {
			continue
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b model.Vehicle) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	out = page(out, filter.Limit, filter.Offset)
	for _, v := range out {
		r.t.see(rowKey{tableVehicles, v.ID})
	}
	return out, nil
}

func (r vehicleRepo) Create(vehicle *model.Vehicle) error {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	if err := r.t.beginWrite("vehicles.create", rowKey{tableVehicles, vehicle.ID}); err != nil {
		return err
	}
	for _, existing := range r.t.work.vehicles {
		if existing.LicensePlate == vehicle.LicensePlate {
			return duplicate("vehicles_license_plate_key")
		}
	}
	now := r.t.now()
	vehicle.CreatedAt, vehicle.UpdatedAt = now, now
	r.t.work.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r vehicleRepo) Update(vehicle *model.Vehicle) error {
	key := rowKey{tableVehicles, vehicle.ID}
	if err := r.t.beginWrite("vehicles.update", key); err != nil {
		return err
	}
	current, ok := r.t.work.vehicles[vehicle.ID]
	if !ok || current.Version != vehicle.Version {
		return repository.ErrConflict
	}
	vehicle.Version++
	vehicle.CreatedAt = current.CreatedAt
	vehicle.UpdatedAt = r.t.now()
	r.t.work.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r vehicleRepo) Delete(id uuid.UUID) error {
	if err := r.t.beginWrite("vehicles.delete", rowKey{tableVehicles, id}); err != nil {
		return err
	}
	if _, ok := r.t.work.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	w := r.t.work
	for _, trip := range w.trips {
		if trip.VehicleID == id {
			return referenced("trips_vehicle_id_fkey")
		}
	}
	for _, log := range w.maintenance {
		if log.VehicleID == id {
			return referenced("maintenance_logs_vehicle_id_fkey")
		}
	}
	for _, log := range w.fuelLogs {
		if log.VehicleID == id {
			return referenced("fuel_logs_vehicle_id_fkey")
		}
	}
	for _, expense := range w.expenses {
		if expense.VehicleID == id {
			return referenced("expenses_vehicle_id_fkey")
		}
	}
	delete(w.vehicles, id)
	return nil
}

type driverRepo struct{ t *tx }

func (r driverRepo) Get(id uuid.UUID) (*model.Driver, error) {
	r.t.see(rowKey{tableDrivers, id})
	row, ok := r.t.work.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r driverRepo) List(filter repository.DriverFilter) ([]model.Driver, error) {
	out := make([]model.Driver, 0)
	for _, d := range r.t.work.drivers {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, d.Status) {
			continue
		}
		if filter.Search != "" && !containsFold(d.FullName, filter.Search) && !containsFold(d.LicenseNumber, filter.Search) {
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b model.Driver) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	out = page(out, filter.Limit, filter.Offset)
	for _, d := range out {
		r.t.see(rowKey{tableDrivers, d.ID})
	}
	return out, nil
}

func (r driverRepo) Create(driver *model.Driver) error {
	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	if err := r.t.beginWrite("drivers.create", rowKey{tableDrivers, driver.ID}); err != nil {
		return err
	}
	for _, existing := range r.t.work.drivers {
		if existing.LicenseNumber == driver.LicenseNumber {
			return duplicate("drivers_license_number_key")
		}
	}
	now := r.t.now()
	driver.CreatedAt, driver.UpdatedAt = now, now
	r.t.work.drivers[driver.ID] = *driver
	return nil
}

func (r driverRepo) Update(driver *model.Driver) error {
	if err := r.t.beginWrite("drivers.update", rowKey{tableDrivers, driver.ID}); err != nil {
		return err
	}
	current, ok := r.t.work.drivers[driver.ID]
	if !ok || current.Version != driver.Version {
		return repository.ErrConflict
	}
	for id, existing := range r.t.work.drivers {
		if id != driver.ID && existing.LicenseNumber == driver.LicenseNumber {
			return duplicate("drivers_license_number_key")
		}
	}
	driver.Version++
	driver.CreatedAt = current.CreatedAt
	driver.UpdatedAt = r.t.now()
	r.t.work.drivers[driver.ID] = *driver
	return nil
}

func (r driverRepo) Delete(id uuid.UUID) error {
	if err := r.t.beginWrite("drivers.delete", rowKey{tableDrivers, id}); err != nil {
		return err
	}
	if _, ok := r.t.work.drivers[id]; !ok {
		return repository.ErrNotFound
	}
	for _, trip := range r.t.work.trips {
		if trip.DriverID == id {
			return referenced("trips_driver_id_fkey")
		}
	}
	delete(r.t.work.drivers, id)
	return nil
}

type tripRepo struct{ t *tx }

func (r tripRepo) Get(id uuid.UUID) (*model.Trip, error) {
	r.t.see(rowKey{tableTrips, id})
	row, ok := r.t.work.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r tripRepo) List(filter repository.TripFilter) ([]model.Trip, error) {
	out := make([]model.Trip, 0)
	for _, trip := range r.t.work.trips {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, trip.Status) {
			continue
		}
		if filter.VehicleID != nil && trip.VehicleID != *filter.VehicleID {
			continue
		}
		if filter.DriverID != nil && trip.DriverID != *filter.DriverID {
			continue
		}
		if filter.Search != "" && !containsFold(trip.Origin, filter.Search) && !containsFold(trip.Destination, filter.Search) {
			continue
		}
		out = append(out, trip)
	}
	slices.SortFunc(out, func(a, b model.Trip) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	out = page(out, filter.Limit, filter.Offset)
	for _, trip := range out {
		r.t.see(rowKey{tableTrips, trip.ID})
	}
	return out, nil
}

func (r tripRepo) Create(trip *model.Trip) error {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if err := r.t.beginWrite("trips.create", rowKey{tableTrips, trip.ID}); err != nil {
		return err
	}
	if _, ok := r.t.work.vehicles[trip.VehicleID]; !ok {
		return referenced("trips_vehicle_id_fkey")
	}
	if _, ok := r.t.work.drivers[trip.DriverID]; !ok {
		return referenced("trips_driver_id_fkey")
	}
	now := r.t.now()
	trip.CreatedAt, trip.UpdatedAt = now, now
	r.t.work.trips[trip.ID] = *trip
	return nil
}

func (r tripRepo) Update(trip *model.Trip) error {
	if err := r.t.beginWrite("trips.update", rowKey{tableTrips, trip.ID}); err != nil {
		return err
	}
	current, ok := r.t.work.trips[trip.ID]
	if !ok || current.Version != trip.Version {
		return repository.ErrConflict
	}
	trip.Version++
	trip.CreatedAt = current.CreatedAt
	trip.UpdatedAt = r.t.now()
	r.t.work.trips[trip.ID] = *trip
	return nil
}

type maintenanceRepo struct{ t *tx }

func (r maintenanceRepo) Get(id uuid.UUID) (*model.MaintenanceLog, error) {
	r.t.see(rowKey{tableMaintenance, id})
	row, ok := r.t.work.maintenance[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r maintenanceRepo) List(filter repository.MaintenanceFilter) ([]model.MaintenanceLog, error) {
	out := make([]model.MaintenanceLog, 0)
	for _, log := range r.t.work.maintenance {
		if filter.VehicleID != nil && log.VehicleID != *filter.VehicleID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, log.Status) {
			continue
		}
		out = append(out, log)
	}
	slices.SortFunc(out, func(a, b model.MaintenanceLog) int {
		if c := time.Time(b.Date).Compare(time.Time(a.Date)); c != 0 {
			return c
		}
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out = page(out, filter.Limit, filter.Offset)
	for _, log := range out {
		r.t.see(rowKey{tableMaintenance, log.ID})
	}
	return out, nil
}

func (r maintenanceRepo) CountActive(vehicleID uuid.UUID) (int64, error) {
	logs, err := r.List(repository.MaintenanceFilter{
		VehicleID: &vehicleID,
		Statuses:  model.ActiveMaintenanceStatuses,
	})
	if err != nil {
		return 0, err
	}
	return int64(len(logs)), nil
}

func (r maintenanceRepo) Create(log *model.MaintenanceLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if err := r.t.beginWrite("maintenance.create", rowKey{tableMaintenance, log.ID}); err != nil {
		return err
	}
	if _, ok := r.t.work.vehicles[log.VehicleID]; !ok {
		return referenced("maintenance_logs_vehicle_id_fkey")
	}
	now := r.t.now()
	log.CreatedAt, log.UpdatedAt = now, now
	r.t.work.maintenance[log.ID] = *log
	return nil
}

func (r maintenanceRepo) Update(log *model.MaintenanceLog) error {
	if err := r.t.beginWrite("maintenance.update", rowKey{tableMaintenance, log.ID}); err != nil {
		return err
	}
	current, ok := r.t.work.maintenance[log.ID]
	if !ok || current.Version != log.Version {
		return repository.ErrConflict
	}
	log.Version++
	log.CreatedAt = current.CreatedAt
	log.UpdatedAt = r.t.now()
	r.t.work.maintenance[log.ID] = *log
	return nil
}

func (r maintenanceRepo) Delete(id uuid.UUID) error {
	if err := r.t.beginWrite("maintenance.delete", rowKey{tableMaintenance, id}); err != nil {
		return err
	}
	if _, ok := r.t.work.maintenance[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.t.work.maintenance, id)
	return nil
}

type fuelLogRepo struct{ t *tx }

func (r fuelLogRepo) List(filter repository.FinanceFilter) ([]model.FuelLog, error) {
	out := make([]model.FuelLog, 0)
	for _, log := range r.t.work.fuelLogs {
		if matchFinance(filter, log.VehicleID, log.TripID, time.Time(log.Date)) {
			out = append(out, log)
		}
	}
	slices.SortFunc(out, func(a, b model.FuelLog) int {
		return cmp.Or(time.Time(b.Date).Compare(time.Time(a.Date)), newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID))
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r fuelLogRepo) Create(log *model.FuelLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if err := r.t.beginWrite("fuel_logs.create", rowKey{tableFuelLogs, log.ID}); err != nil {
		return err
	}
	if _, ok := r.t.work.vehicles[log.VehicleID]; !ok {
		return referenced("fuel_logs_vehicle_id_fkey")
	}
	log.CreatedAt = r.t.now()
	r.t.work.fuelLogs[log.ID] = *log
	return nil
}

type expenseRepo struct{ t *tx }

func (r expenseRepo) List(filter repository.FinanceFilter) ([]model.Expense, error) {
	out := make([]model.Expense, 0)
	for _, expense := range r.t.work.expenses {
		if filter.Category != "" && !strings.EqualFold(expense.Category, filter.Category) {
			continue
		}
		if matchFinance(filter, expense.VehicleID, expense.TripID, time.Time(expense.Date)) {
			out = append(out, expense)
		}
	}
	slices.SortFunc(out, func(a, b model.Expense) int {
		return cmp.Or(time.Time(b.Date).Compare(time.Time(a.Date)), newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID))
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r expenseRepo) Create(expense *model.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if err := r.t.beginWrite("expenses.create", rowKey{tableExpenses, expense.ID}); err != nil {
		return err
	}
	if _, ok := r.t.work.vehicles[expense.VehicleID]; !ok {
		return referenced("expenses_vehicle_id_fkey")
	}
	expense.CreatedAt = r.t.now()
	r.t.work.expenses[expense.ID] = *expense
	return nil
}

func matchFinance(filter repository.FinanceFilter, vehicleID uuid.UUID, tripID *uuid.UUID, date time.Time) bool {
	if filter.VehicleID != nil && vehicleID != *filter.VehicleID {
		return false
	}
	if filter.TripID != nil && (tripID == nil || *tripID != *filter.TripID) {
		return false
	}
	if filter.DateFrom != nil && date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && date.After(*filter.DateTo) {
		return false
	}
	return true
}

type auditRepo struct{ t *tx }

func (r auditRepo) List(filter repository.AuditFilter) ([]model.AuditLog, error) {
	out := make([]model.AuditLog, 0)
	for _, entry := range r.t.work.audit {
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != nil && entry.EntityID != *filter.EntityID {
			continue
		}
		if filter.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *filter.ActorID) {
			continue
		}
		if len(filter.Actions) > 0 && !slices.Contains(filter.Actions, entry.Action) {
			continue
		}
		out = append(out, entry)
	}
	// audit is append-only, so reversing insertion order gives newest first
	slices.Reverse(out)
	return page(out, filter.Limit, filter.Offset), nil
}

func (r auditRepo) Create(entry *model.AuditLog) error {
	if r.t.readOnly {
		return ErrReadOnly
	}
	r.t.step++
	if hook := r.t.store.faultHook(); hook != nil {
		if err := hook("audit.create", r.t.step); err != nil {
			return err
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.t.now()
	r.t.work.audit = append(r.t.work.audit, *entry)
	return nil
}
