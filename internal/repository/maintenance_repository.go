package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type MaintenanceRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *MaintenanceRepository) Get(id uuid.UUID) (*model.MaintenanceLog, error) {
	var log model.MaintenanceLog
	if err := forUpdate(r.db, r.lock).First(&log, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &log, nil
}

func (r *MaintenanceRepository) List(filter MaintenanceFilter) ([]model.MaintenanceLog, error) {
	query := r.db.Model(&model.MaintenanceLog{})

	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var logs []model.MaintenanceLog
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("date DESC, created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, translateError(err)
	}
	return logs, nil
}

func (r *MaintenanceRepository) CountActive(vehicleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.
		Model(&model.MaintenanceLog{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, model.ActiveMaintenanceStatuses).
		Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *MaintenanceRepository) Create(log *model.MaintenanceLog) error {
	return translateError(r.db.Create(log).Error)
}

func (r *MaintenanceRepository) Update(log *model.MaintenanceLog) error {
	return updateVersioned(r.db, &model.MaintenanceLog{}, log.ID, &log.Version, map[string]interface{}{
		"issue":       log.Issue,
		"description": log.Description,
		"date":        log.Date,
		"cost":        log.Cost,
		"status":      log.Status,
		"resolved_at": log.ResolvedAt,
	})
}

func (r *MaintenanceRepository) Delete(id uuid.UUID) error {
	return deleteByID(r.db, &model.MaintenanceLog{}, id)
}
