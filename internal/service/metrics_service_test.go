package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func TestDashboardIsCachedUntilNextWrite(t *testing.T) {
	f := newFixture(t)
	v1 := f.vehicle(t, "KPI-1", 1000)
	v2 := f.vehicle(t, "KPI-2", 1000)
	_, err := f.vehicles.Create(f.ctx, f.manager, service.CreateVehicleInput{
		Name: "Courier", LicensePlate: "KPI-3", VehicleType: model.VehicleTypeBike, MaxCapacity: 20, Region: "South",
	})
	require.NoError(t, err)

	f.dispatched(t, v1, f.driver(t, "LIC-1"), 100)
	f.draft(t, v2, f.driver(t, "LIC-2"), 10)
	_, err = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v2.ID, Issue: "tyres"})
	require.NoError(t, err)

	kpis, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, kpis.TotalVehicles)
	assert.Equal(t, 1, kpis.ActiveFleet)
	assert.Equal(t, 1, kpis.AvailableVehicles)
	assert.Equal(t, 1, kpis.MaintenanceAlerts)
	assert.Equal(t, 0.3333, kpis.UtilizationRate)
	assert.Equal(t, 1, kpis.PendingCargo)
	assert.Equal(t, 1, kpis.ActiveTrips)
	assert.Equal(t, 1, kpis.DriversOnTrip)

	again, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, kpis, again)
	assert.Equal(t, 1, f.cache.hits)

	bikes, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{VehicleType: model.VehicleTypeBike})
	require.NoError(t, err)
	assert.Equal(t, 1, bikes.TotalVehicles)
	assert.Equal(t, 0, bikes.ActiveTrips)

	south, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{Region: "South"})
	require.NoError(t, err)
	assert.Equal(t, 1, south.TotalVehicles)

	_, err = f.vehicles.Retire(f.ctx, f.manager, v2.ID)
	require.NoError(t, err)

	fresh, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.RetiredVehicles)
	assert.Equal(t, 0, fresh.MaintenanceAlerts)
	assert.Equal(t, 1, f.cache.hits)
}

func TestDashboardComputedBeforeWriteIsNotServedAfterIt(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "KPI-4", 1000)
	trip := f.draft(t, v, f.driver(t, "LIC-4"), 100)

	var dispatchErr error
	f.cache.beforeSet = func() {
		_, dispatchErr = f.trips.Dispatch(f.ctx, f.dispatcher, trip.ID)
	}

	stale, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{})
	require.NoError(t, err)
	require.NoError(t, dispatchErr)
	assert.Equal(t, 0, stale.ActiveTrips)

	current, err := f.metrics.Dashboard(f.ctx, service.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, current.ActiveTrips)
	assert.Equal(t, 1, current.ActiveFleet)
	assert.Equal(t, 0, f.cache.hits)
}

func TestFinancialReport(t *testing.T) {
	f := newFixture(t)
	v1 := f.vehicle(t, "FIN-1", 1000)
	v2 := f.vehicle(t, "FIN-2", 1000)

	trip := f.dispatched(t, v1, f.driver(t, "LIC-1"), 100)
	revenue := 800.0
	_, err := f.trips.Complete(f.ctx, f.dispatcher, trip.ID, service.CompleteTripInput{Distance: 300, Revenue: &revenue})
	require.NoError(t, err)

	_, err = f.finance.AddFuelLog(f.ctx, f.analyst, service.AddFuelLogInput{VehicleID: v1.ID, TripID: &trip.ID, Liters: 40, Cost: 100})
	require.NoError(t, err)
	_, err = f.finance.AddExpense(f.ctx, f.analyst, service.AddExpenseInput{VehicleID: v1.ID, Category: "toll", Amount: 50})
	require.NoError(t, err)
	_, err = f.maintenance.Open(f.ctx, f.manager, service.OpenMaintenanceInput{VehicleID: v2.ID, Issue: "gearbox", Cost: 200})
	require.NoError(t, err)

	report, err := f.metrics.Financial(f.ctx, service.FinancialOptions{})
	require.NoError(t, err)
	summary := report.Summary
	assert.Equal(t, 100.0, summary.TotalFuelCost)
	assert.Equal(t, 200.0, summary.TotalMaintenanceCost)
	assert.Equal(t, 50.0, summary.TotalExpenses)
	assert.Equal(t, 350.0, summary.TotalOperationalCost)
	assert.Equal(t, 800.0, summary.TotalRevenue)
	assert.Equal(t, 450.0, summary.NetProfit)
	assert.Equal(t, 7.5, summary.FuelEfficiency)
	assert.Equal(t, 0.005, summary.FleetROI)
	assert.Equal(t, 1, summary.CompletedTrips)
	require.Len(t, report.Vehicles, 2)

	top, err := f.metrics.VehicleCosts(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, v2.ID, top[0].VehicleID)
	assert.Equal(t, 200.0, top[0].TotalCost)

	later := testNow.AddDate(0, 0, 1)
	empty, err := f.metrics.Financial(f.ctx, service.FinancialOptions{DateFrom: &later})
	require.NoError(t, err)
	assert.Zero(t, empty.Summary.TotalRevenue)
	assert.Zero(t, empty.Summary.TotalFuelCost)
	assert.Zero(t, empty.Summary.TotalMaintenanceCost)
}

func TestUtilizationIdleAndDriverPerformance(t *testing.T) {
	f := newFixture(t)
	v1 := f.vehicle(t, "UTL-1", 1000)
	v2 := f.vehicle(t, "UTL-2", 1000)
	d1 := f.driver(t, "LIC-1")
	d2 := f.driver(t, "LIC-2")

	trip := f.dispatched(t, v1, d1, 100)

	utilization, err := f.metrics.Utilization(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, utilization.UtilizationRate)
	assert.Equal(t, 2, utilization.TotalVehicles)

	_, err = f.trips.Complete(f.ctx, f.dispatcher, trip.ID, service.CompleteTripInput{Distance: 10})
	require.NoError(t, err)

	idle, err := f.metrics.IdleVehicles(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, v2.ID, idle[0].ID)

	_, err = f.drivers.RecordComplaint(f.ctx, f.safety, d2.ID, "")
	require.NoError(t, err)

	performance, err := f.metrics.DriverPerformance(f.ctx)
	require.NoError(t, err)
	require.Len(t, performance, 2)
	assert.Equal(t, d1.ID, performance[0].DriverID)
	assert.Equal(t, 1.0, performance[0].CompletionRate)
	assert.Equal(t, 95.0, performance[1].SafetyScore)
}
