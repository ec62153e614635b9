package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type VehicleRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *VehicleRepository) Get(id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := forUpdate(r.db, r.lock).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &vehicle, nil
}

func (r *VehicleRepository) List(filter VehicleFilter) ([]model.Vehicle, error) {
	query := r.db.Model(&model.Vehicle{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		query = query.Where("vehicle_type IN ?", filter.Types)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(license_plate ILIKE ? OR name ILIKE ? OR model ILIKE ?)", search, search, search)
	}

	var vehicles []model.Vehicle
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("created_at DESC").
		Find(&vehicles).Error; err != nil {
		return nil, translateError(err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) Create(vehicle *model.Vehicle) error {
	return translateError(r.db.Create(vehicle).Error)
}

func (r *VehicleRepository) Update(vehicle *model.Vehicle) error {
	return updateVersioned(r.db, &model.Vehicle{}, vehicle.ID, &vehicle.Version, map[string]interface{}{
		"name":             vehicle.Name,
		"model":            vehicle.Model,
		"vehicle_type":     vehicle.VehicleType,
		"max_capacity":     vehicle.MaxCapacity,
		"odometer":         vehicle.Odometer,
		"acquisition_cost": vehicle.AcquisitionCost,
		"status":           vehicle.Status,
		"region":           vehicle.Region,
	})
}

func (r *VehicleRepository) Delete(id uuid.UUID) error {
	return deleteByID(r.db, &model.Vehicle{}, id)
}
