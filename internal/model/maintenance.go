package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MaintenanceStatus string

const (
	MaintenanceStatusOpen       MaintenanceStatus = "OPEN"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusResolved   MaintenanceStatus = "RESOLVED"
)

// ActiveMaintenanceStatuses keep a vehicle in the shop.
var ActiveMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusOpen,
	MaintenanceStatusInProgress,
}

func (s MaintenanceStatus) Active() bool {
	return s == MaintenanceStatusOpen || s == MaintenanceStatusInProgress
}

type MaintenanceLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID   uuid.UUID         `gorm:"type:uuid;not null" json:"vehicle_id"`
	Issue       string            `gorm:"type:varchar(255);not null" json:"issue"`
	Description string            `gorm:"type:text" json:"description"`
	Date        datatypes.Date    `gorm:"type:date;not null" json:"date"`
	Cost        float64           `gorm:"not null" json:"cost"`
	Status      MaintenanceStatus `gorm:"type:maintenance_status;not null" json:"status"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	Version     int64             `gorm:"not null" json:"version"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}

func (l *MaintenanceLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
