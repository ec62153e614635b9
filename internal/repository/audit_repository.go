package repository

import (
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func (r *AuditRepository) List(filter AuditFilter) ([]model.AuditLog, error) {
	query := r.db.Model(&model.AuditLog{})

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if len(filter.Actions) > 0 {
		query = query.Where("action IN ?", filter.Actions)
	}

	var entries []model.AuditLog
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

func (r *AuditRepository) Create(entry *model.AuditLog) error {
	return translateError(r.db.Create(entry).Error)
}
