package repository

import (
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type FuelLogRepository struct {
	db *gorm.DB
}

func (r *FuelLogRepository) List(filter FinanceFilter) ([]model.FuelLog, error) {
	var logs []model.FuelLog
	if err := paginate(applyFinanceFilter(r.db.Model(&model.FuelLog{}), filter), filter.Limit, filter.Offset).
		Order("date DESC, created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, translateError(err)
	}
	return logs, nil
}

func (r *FuelLogRepository) Create(log *model.FuelLog) error {
	return translateError(r.db.Create(log).Error)
}

type ExpenseRepository struct {
	db *gorm.DB
}

func (r *ExpenseRepository) List(filter FinanceFilter) ([]model.Expense, error) {
	query := applyFinanceFilter(r.db.Model(&model.Expense{}), filter)
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}

	var expenses []model.Expense
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, translateError(err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Create(expense *model.Expense) error {
	return translateError(r.db.Create(expense).Error)
}

func applyFinanceFilter(query *gorm.DB, filter FinanceFilter) *gorm.DB {
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.TripID != nil {
		query = query.Where("trip_id = ?", *filter.TripID)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	return query
}
