package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreateTrip   AuditAction = "CREATE_TRIP"
	AuditActionUpdateTrip   AuditAction = "UPDATE_TRIP"
	AuditActionDispatchTrip AuditAction = "DISPATCH_TRIP"
	AuditActionCompleteTrip AuditAction = "COMPLETE_TRIP"
	AuditActionCancelTrip   AuditAction = "CANCEL_TRIP"

	AuditActionCreateVehicle AuditAction = "CREATE_VEHICLE"
	AuditActionUpdateVehicle AuditAction = "UPDATE_VEHICLE"
	AuditActionRetireVehicle AuditAction = "RETIRE_VEHICLE"
	AuditActionDeleteVehicle AuditAction = "DELETE_VEHICLE"

	AuditActionCreateDriver    AuditAction = "CREATE_DRIVER"
	AuditActionUpdateDriver    AuditAction = "UPDATE_DRIVER"
	AuditActionDriverDuty      AuditAction = "CHANGE_DRIVER_DUTY"
	AuditActionSuspendDriver   AuditAction = "SUSPEND_DRIVER"
	AuditActionUnsuspendDriver AuditAction = "UNSUSPEND_DRIVER"
	AuditActionDriverComplaint AuditAction = "RECORD_COMPLAINT"
	AuditActionDeleteDriver    AuditAction = "DELETE_DRIVER"

	AuditActionCreateMaintenance  AuditAction = "CREATE_MAINTENANCE"
	AuditActionUpdateMaintenance  AuditAction = "UPDATE_MAINTENANCE"
	AuditActionResolveMaintenance AuditAction = "RESOLVE_MAINTENANCE"
	AuditActionDeleteMaintenance  AuditAction = "DELETE_MAINTENANCE"

	AuditActionCreateFuelLog AuditAction = "CREATE_FUEL_LOG"
	AuditActionCreateExpense AuditAction = "CREATE_EXPENSE"
)

type EntityType string

const (
	EntityVehicle        EntityType = "vehicle"
	EntityDriver         EntityType = "driver"
	EntityTrip           EntityType = "trip"
	EntityMaintenanceLog EntityType = "maintenance_log"
	EntityFuelLog        EntityType = "fuel_log"
	EntityExpense        EntityType = "expense"
)

// AuditLog records one change, written in the same transaction as the change itself.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ActorID    *uuid.UUID        `gorm:"type:uuid" json:"actor_id"`
	Action     AuditAction       `gorm:"type:varchar(64);not null" json:"action"`
	EntityType EntityType        `gorm:"type:varchar(32);not null" json:"entity_type"`
	EntityID   uuid.UUID         `gorm:"type:uuid;not null" json:"entity_id"`
	OldStatus  *string           `gorm:"type:varchar(32)" json:"old_status"`
	NewStatus  *string           `gorm:"type:varchar(32)" json:"new_status"`
	Details    datatypes.JSONMap `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
