package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type TripRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *TripRepository) Get(id uuid.UUID) (*model.Trip, error) {
	var trip model.Trip
	if err := forUpdate(r.db, r.lock).First(&trip, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &trip, nil
}

func (r *TripRepository) List(filter TripFilter) ([]model.Trip, error) {
	query := r.db.Model(&model.Trip{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(origin ILIKE ? OR destination ILIKE ?)", search, search)
	}

	var trips []model.Trip
	if err := paginate(query, filter.Limit, filter.Offset).
		Order("created_at DESC").
		Find(&trips).Error; err != nil {
		return nil, translateError(err)
	}
	return trips, nil
}

func (r *TripRepository) Create(trip *model.Trip) error {
	return translateError(r.db.Create(trip).Error)
}

func (r *TripRepository) Update(trip *model.Trip) error {
	return updateVersioned(r.db, &model.Trip{}, trip.ID, &trip.Version, map[string]interface{}{
		"cargo_weight":        trip.CargoWeight,
		"origin":              trip.Origin,
		"destination":         trip.Destination,
		"distance":            trip.Distance,
		"estimated_fuel_cost": trip.EstimatedFuelCost,
		"revenue":             trip.Revenue,
		"status":              trip.Status,
		"scheduled_date":      trip.ScheduledDate,
		"dispatched_at":       trip.DispatchedAt,
		"completed_at":        trip.CompletedAt,
		"cancelled_at":        trip.CancelledAt,
	})
}
