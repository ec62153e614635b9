package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/service"
)

func TestAddFuelLogAndExpense(t *testing.T) {
	f := newFixture(t)
	v1 := f.vehicle(t, "FIN-1", 1000)
	v2 := f.vehicle(t, "FIN-2", 1000)
	trip := f.draft(t, v1, f.driver(t, "LIC-1"), 100)

	fuel, err := f.finance.AddFuelLog(f.ctx, f.analyst, service.AddFuelLogInput{
		VehicleID:       v1.ID,
		TripID:          &trip.ID,
		Liters:          40,
		Cost:            100,
		OdometerReading: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, testNow.Format(time.DateOnly), time.Time(fuel.Date).Format(time.DateOnly))

	expense, err := f.finance.AddExpense(f.ctx, f.analyst, service.AddExpenseInput{
		VehicleID: v1.ID,
		Category:  "toll",
		Amount:    15,
	})
	require.NoError(t, err)
	assert.Equal(t, "toll", expense.Category)

	t.Run("trip of another vehicle", func(t *testing.T) {
		_, err := f.finance.AddFuelLog(f.ctx, f.analyst, service.AddFuelLogInput{
			VehicleID: v2.ID, TripID: &trip.ID, Liters: 1, Cost: 1,
		})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")

		_, err = f.finance.AddExpense(f.ctx, f.analyst, service.AddExpenseInput{
			VehicleID: v2.ID, TripID: &trip.ID, Category: "toll", Amount: 1,
		})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := f.finance.AddExpense(f.ctx, f.analyst, service.AddExpenseInput{VehicleID: uuid.New(), Category: "toll", Amount: 1})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("non positive amounts", func(t *testing.T) {
		_, err := f.finance.AddFuelLog(f.ctx, f.analyst, service.AddFuelLogInput{VehicleID: v1.ID, Liters: 0, Cost: 1})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")

		_, err = f.finance.AddExpense(f.ctx, f.analyst, service.AddExpenseInput{VehicleID: v1.ID, Category: "toll"})
		assertRejected(t, err, service.ErrInvalidInput, "invalid_input")
	})

	logs, err := f.finance.ListFuelLogs(f.ctx, service.FinanceListOptions{VehicleID: &v1.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	expenses, err := f.finance.ListExpenses(f.ctx, service.FinanceListOptions{TripID: &trip.ID})
	require.NoError(t, err)
	assert.Empty(t, expenses)

	snap := f.snapshot()
	assert.Len(t, snap.FuelLogs, 1)
	assert.Len(t, snap.Expenses, 1)
}

func TestListExpensesByCategory(t *testing.T) {
	f := newFixture(t)
	v := f.vehicle(t, "CAT-1", 1000)

	for _, input := range []service.AddExpenseInput{
		{VehicleID: v.ID, Category: "toll", Amount: 15},
		{VehicleID: v.ID, Category: "Toll", Amount: 20},
		{VehicleID: v.ID, Category: "parking", Amount: 5},
	} {
		_, err := f.finance.AddExpense(f.ctx, f.analyst, input)
		require.NoError(t, err)
	}

	tolls, err := f.finance.ListExpenses(f.ctx, service.FinanceListOptions{Category: "TOLL"})
	require.NoError(t, err)
	assert.Len(t, tolls, 2)
	for _, expense := range tolls {
		assert.Equal(t, "toll", strings.ToLower(expense.Category))
	}

	parking, err := f.finance.ListExpenses(f.ctx, service.FinanceListOptions{VehicleID: &v.ID, Category: "parking"})
	require.NoError(t, err)
	require.Len(t, parking, 1)
	assert.Equal(t, 5.0, parking[0].Amount)

	all, err := f.finance.ListExpenses(f.ctx, service.FinanceListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
