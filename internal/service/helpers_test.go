package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/events"
	"fleet-service/internal/model"
	"fleet-service/internal/repository/memstore"
	"fleet-service/internal/service"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Type)
	}
	return out
}

type memoryCache struct {
	mu            sync.Mutex
	generation    int64
	entries       map[string][]byte
	hits          int
	invalidations int

	// beforeSet, when set, runs once before the next Set stores its value.
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *memoryCache) Get(_ context.Context, generation int64, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[fmt.Sprintf("%d:%s", generation, key)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, generation int64, key string, value interface{}) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%d:%s", generation, key)] = raw
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidations++
	return nil
}

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	pub   *recordingPublisher
	cache *memoryCache
	uow   *service.UnitOfWork

	trips       *service.TripService
	vehicles    *service.VehicleService
	drivers     *service.DriverService
	maintenance *service.MaintenanceService
	finance     *service.FinanceService
	metrics     *service.MetricsService
	audit       *service.AuditService

	manager    model.Principal
	dispatcher model.Principal
	safety     model.Principal
	analyst    model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:        context.Background(),
		store:      memstore.New(),
		pub:        &recordingPublisher{},
		cache:      newMemoryCache(),
		manager:    model.Principal{UserID: uuid.New(), Role: model.UserRoleFleetManager},
		dispatcher: model.Principal{UserID: uuid.New(), Role: model.UserRoleDispatcher},
		safety:     model.Principal{UserID: uuid.New(), Role: model.UserRoleSafetyOfficer},
		analyst:    model.Principal{UserID: uuid.New(), Role: model.UserRoleFinancialAnalyst},
	}
	f.uow = service.NewUnitOfWork(f.store, zerolog.Nop(), service.UnitOfWorkOptions{
		MaxRetries: 1,
		Cache:      f.cache,
		Publisher:  f.pub,
		Clock:      func() time.Time { return testNow },
	})
	f.trips = service.NewTripService(f.uow)
	f.vehicles = service.NewVehicleService(f.uow)
	f.drivers = service.NewDriverService(f.uow)
	f.maintenance = service.NewMaintenanceService(f.uow)
	f.finance = service.NewFinanceService(f.uow)
	f.metrics = service.NewMetricsService(f.uow, f.cache, 30, zerolog.Nop())
	f.audit = service.NewAuditService(f.uow)
	return f
}

func (f *fixture) vehicle(t *testing.T, plate string, capacity float64) model.Vehicle {
	t.Helper()
	v, err := f.vehicles.Create(f.ctx, f.manager, service.CreateVehicleInput{
		Name:            "Unit " + plate,
		Model:           "Actros",
		LicensePlate:    plate,
		VehicleType:     model.VehicleTypeTruck,
		MaxCapacity:     capacity,
		AcquisitionCost: 50000,
	})
	require.NoError(t, err)
	return *v
}

func (f *fixture) driver(t *testing.T, license string) model.Driver {
	t.Helper()
	d, err := f.drivers.Create(f.ctx, f.safety, service.CreateDriverInput{
		FullName:      "Driver " + license,
		LicenseNumber: license,
		LicenseExpiry: time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return *d
}

func (f *fixture) draft(t *testing.T, v model.Vehicle, d model.Driver, cargo float64) model.Trip {
	t.Helper()
	trip, err := f.trips.Create(f.ctx, f.dispatcher, service.CreateTripInput{
		VehicleID:   v.ID,
		DriverID:    d.ID,
		CargoWeight: cargo,
		Origin:      "Almaty",
		Destination: "Astana",
		Revenue:     800,
	})
	require.NoError(t, err)
	return *trip
}

func (f *fixture) dispatched(t *testing.T, v model.Vehicle, d model.Driver, cargo float64) model.Trip {
	t.Helper()
	trip := f.draft(t, v, d, cargo)
	out, err := f.trips.Dispatch(f.ctx, f.dispatcher, trip.ID)
	require.NoError(t, err)
	return *out
}

func (f *fixture) snapshot() memstore.Snapshot {
	return f.store.Snapshot()
}

// assertFleetConsistent checks that dispatched trips and ON_TRIP statuses agree one to one and that
// an idle vehicle is IN_SHOP exactly when it has an active maintenance log.
func assertFleetConsistent(t *testing.T, snap memstore.Snapshot) {
	t.Helper()

	vehicleTrips := make(map[uuid.UUID]int)
	driverTrips := make(map[uuid.UUID]int)
	for _, trip := range snap.Trips {
		if trip.Status != model.TripStatusDispatched {
			continue
		}
		vehicleTrips[trip.VehicleID]++
		driverTrips[trip.DriverID]++
		assert.Equal(t, model.VehicleStatusOnTrip, snap.Vehicles[trip.VehicleID].Status)
		assert.Equal(t, model.DriverStatusOnTrip, snap.Drivers[trip.DriverID].Status)
	}
	for id, v := range snap.Vehicles {
		if v.Status == model.VehicleStatusOnTrip {
			assert.Equal(t, 1, vehicleTrips[id], "vehicle %s", v.LicensePlate)
		}
	}
	for id, d := range snap.Drivers {
		if d.Status == model.DriverStatusOnTrip {
			assert.Equal(t, 1, driverTrips[id], "driver %s", d.FullName)
		}
	}

	activeLogs := make(map[uuid.UUID]int)
	for _, entry := range snap.Maintenance {
		if entry.Status.Active() {
			activeLogs[entry.VehicleID]++
		}
	}
	for id, v := range snap.Vehicles {
		if v.Status == model.VehicleStatusOnTrip || v.Status == model.VehicleStatusRetired {
			continue
		}
		assert.Equal(t, activeLogs[id] > 0, v.Status == model.VehicleStatusInShop, "vehicle %s", v.LicensePlate)
	}
}

func assertRejected(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	if reason != "" {
		assert.Equal(t, reason, string(service.ReasonOf(err)))
	}
}
