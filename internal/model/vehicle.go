package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusOnTrip    VehicleStatus = "ON_TRIP"
	VehicleStatusInShop    VehicleStatus = "IN_SHOP"
	VehicleStatusRetired   VehicleStatus = "RETIRED"
)

type VehicleType string

const (
	VehicleTypeTruck VehicleType = "TRUCK"
	VehicleTypeVan   VehicleType = "VAN"
	VehicleTypeBike  VehicleType = "BIKE"
)

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeTruck, VehicleTypeVan, VehicleTypeBike:
		return true
	default:
		return false
	}
}

const DefaultRegion = "Default"

type Vehicle struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name            string        `gorm:"type:varchar(128);not null" json:"name"`
	Model           string        `gorm:"type:varchar(128)" json:"model"`
	LicensePlate    string        `gorm:"type:varchar(32);not null" json:"license_plate"`
	VehicleType     VehicleType   `gorm:"type:vehicle_type;not null" json:"vehicle_type"`
	MaxCapacity     float64       `gorm:"not null" json:"max_capacity"`
	Odometer        float64       `gorm:"not null" json:"odometer"`
	AcquisitionCost float64       `gorm:"not null" json:"acquisition_cost"`
	Status          VehicleStatus `gorm:"type:vehicle_status;not null" json:"status"`
	Region          string        `gorm:"type:varchar(64);not null" json:"region"`
	Version         int64         `gorm:"not null" json:"version"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
