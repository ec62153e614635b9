// Package metrics derives reporting figures from committed entity state. Nothing here mutates
// or persists anything.
package metrics

import (
	"math"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

const (
	complaintPenalty    = 5.0
	cancellationPenalty = 20.0
)

// UtilizationRate is the share of non-retired vehicles currently on a trip.
func UtilizationRate(vehicles []model.Vehicle) float64 {
	var active, onTrip int
	for _, v := range vehicles {
		if v.Status == model.VehicleStatusRetired {
			continue
		}
		active++
		if v.Status == model.VehicleStatusOnTrip {
			onTrip++
		}
	}
	return ratio(float64(onTrip), float64(active))
}

// VehicleROI returns zero when the acquisition cost is unknown.
func VehicleROI(revenue, fuelCost, maintenanceCost, acquisitionCost float64) float64 {
	if acquisitionCost <= 0 {
		return 0
	}
	return round((revenue - fuelCost - maintenanceCost) / acquisitionCost)
}

func CompletionRate(driver model.Driver) float64 {
	return ratio(float64(driver.CompletedTrips), float64(driver.TotalTrips))
}

// SafetyScore starts at 100 and loses 5 points per complaint and up to 20 points for the
// share of assigned trips that were cancelled. The result is clamped to [0, 100].
func SafetyScore(complaints, cancelledTrips, totalTrips int) float64 {
	score := model.MaxSafetyScore - complaintPenalty*float64(complaints)
	if totalTrips > 0 {
		score -= cancellationPenalty * float64(cancelledTrips) / float64(totalTrips)
	}
	return round(math.Max(0, math.Min(model.MaxSafetyScore, score)))
}

// IdleVehicles lists available vehicles with no dispatched or completed trip touching the
// trailing window of days ending at now.
func IdleVehicles(vehicles []model.Vehicle, trips []model.Trip, now time.Time, days int) []model.Vehicle {
	cutoff := now.AddDate(0, 0, -days)
	busy := make(map[uuid.UUID]struct{})
	for _, trip := range trips {
		switch trip.Status {
		case model.TripStatusDispatched:
			busy[trip.VehicleID] = struct{}{}
		case model.TripStatusCompleted:
			if after(trip.DispatchedAt, cutoff) || after(trip.CompletedAt, cutoff) {
				busy[trip.VehicleID] = struct{}{}
			}
		}
	}

	idle := make([]model.Vehicle, 0)
	for _, v := range vehicles {
		if v.Status != model.VehicleStatusAvailable {
			continue
		}
		if _, ok := busy[v.ID]; ok {
			continue
		}
		idle = append(idle, v)
	}
	return idle
}

func after(ts *time.Time, cutoff time.Time) bool {
	return ts != nil && !ts.Before(cutoff)
}

func ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round(part / whole)
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
