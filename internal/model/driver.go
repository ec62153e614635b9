package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DriverStatus string

const (
	DriverStatusOnDuty    DriverStatus = "ON_DUTY"
	DriverStatusOffDuty   DriverStatus = "OFF_DUTY"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
	DriverStatusSuspended DriverStatus = "SUSPENDED"
)

const MaxSafetyScore = 100.0

type Driver struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName       string         `gorm:"type:varchar(255);not null" json:"full_name"`
	LicenseNumber  string         `gorm:"type:varchar(64);not null" json:"license_number"`
	LicenseExpiry  datatypes.Date `gorm:"type:date;not null" json:"license_expiry"`
	Phone          string         `gorm:"type:varchar(32)" json:"phone"`
	Status         DriverStatus   `gorm:"type:driver_status;not null" json:"status"`
	SafetyScore    float64        `gorm:"not null" json:"safety_score"`
	Complaints     int            `gorm:"not null" json:"complaints"`
	CompletedTrips int            `gorm:"not null" json:"completed_trips"`
	CancelledTrips int            `gorm:"not null" json:"cancelled_trips"`
	TotalTrips     int            `gorm:"not null" json:"total_trips"`
	Version        int64          `gorm:"not null" json:"version"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	LicenseExpired bool `gorm:"-" json:"license_expired"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// LicenseExpiredOn reports whether the license expiry date lies before the calendar day of now.
func (d Driver) LicenseExpiredOn(now time.Time) bool {
	expiry := time.Time(d.LicenseExpiry)
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, expiry.Location())
	return expiry.Before(today)
}

// WithDerived fills fields that are computed rather than stored.
func (d Driver) WithDerived(now time.Time) Driver {
	d.LicenseExpired = d.LicenseExpiredOn(now)
	return d
}
