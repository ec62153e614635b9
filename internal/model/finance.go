package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FuelLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID       uuid.UUID      `gorm:"type:uuid;not null" json:"vehicle_id"`
	TripID          *uuid.UUID     `gorm:"type:uuid" json:"trip_id,omitempty"`
	Date            datatypes.Date `gorm:"type:date;not null" json:"date"`
	Liters          float64        `gorm:"not null" json:"liters"`
	Cost            float64        `gorm:"not null" json:"cost"`
	OdometerReading float64        `gorm:"not null" json:"odometer_reading"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (FuelLog) TableName() string {
	return "fuel_logs"
}

func (l *FuelLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Expense struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID   uuid.UUID      `gorm:"type:uuid;not null" json:"vehicle_id"`
	TripID      *uuid.UUID     `gorm:"type:uuid" json:"trip_id,omitempty"`
	Category    string         `gorm:"type:varchar(64);not null" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Date        datatypes.Date `gorm:"type:date;not null" json:"date"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
