package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusDraft      TripStatus = "DRAFT"
	TripStatusDispatched TripStatus = "DISPATCHED"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

type Trip struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID         uuid.UUID      `gorm:"type:uuid;not null" json:"vehicle_id"`
	DriverID          uuid.UUID      `gorm:"type:uuid;not null" json:"driver_id"`
	CargoWeight       float64        `gorm:"not null" json:"cargo_weight"`
	Origin            string         `gorm:"type:varchar(255);not null" json:"origin"`
	Destination       string         `gorm:"type:varchar(255);not null" json:"destination"`
	Distance          float64        `gorm:"not null" json:"distance"`
	EstimatedFuelCost float64        `gorm:"not null" json:"estimated_fuel_cost"`
	Revenue           float64        `gorm:"not null" json:"revenue"`
	Status            TripStatus     `gorm:"type:trip_status;not null" json:"status"`
	ScheduledDate     datatypes.Date `gorm:"type:date;not null" json:"scheduled_date"`
	DispatchedAt      *time.Time     `json:"dispatched_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	CancelledAt       *time.Time     `json:"cancelled_at,omitempty"`
	CreatedBy         *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	Version           int64          `gorm:"not null" json:"version"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
