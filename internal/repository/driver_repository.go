package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type DriverRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *DriverRepository) Get(id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	if err := forUpdate(r.db, r.lock).First(&driver, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &driver, nil
}

func (r *DriverRepository) List(filter DriverFilter) ([]model.Driver, error) {
	query := r.db.Model(&model.Driver{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(full_name ILIKE ? OR license_number ILIKE ?)", search, search)
	}

	var drivers []model.Driver
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("created_at DESC").
		Find(&drivers).Error; err != nil {
		return nil, translateError(err)
	}
	return drivers, nil
}

func (r *DriverRepository) Create(driver *model.Driver) error {
	return translateError(r.db.Create(driver).Error)
}

func (r *DriverRepository) Update(driver *model.Driver) error {
	return updateVersioned(r.db, &model.Driver{}, driver.ID, &driver.Version, map[string]interface{}{
		"full_name":       driver.FullName,
		"license_number":  driver.LicenseNumber,
		"license_expiry":  driver.LicenseExpiry,
		"phone":           driver.Phone,
		"status":          driver.Status,
		"safety_score":    driver.SafetyScore,
		"complaints":      driver.Complaints,
		"completed_trips": driver.CompletedTrips,
		"cancelled_trips": driver.CancelledTrips,
		"total_trips":     driver.TotalTrips,
	})
}

func (r *DriverRepository) Delete(id uuid.UUID) error {
	return deleteByID(r.db, &model.Driver{}, id)
}
