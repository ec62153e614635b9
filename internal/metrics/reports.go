package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

// Ledger is the committed state a report is computed from.
type Ledger struct {
	Vehicles    []model.Vehicle
	Drivers     []model.Driver
	Trips       []model.Trip
	Maintenance []model.MaintenanceLog
	FuelLogs    []model.FuelLog
	Expenses    []model.Expense
}

type FleetKPIs struct {
	TotalVehicles     int     `json:"total_vehicles"`
	ActiveFleet       int     `json:"active_fleet"`
	AvailableVehicles int     `json:"available_vehicles"`
	MaintenanceAlerts int     `json:"maintenance_alerts"`
	RetiredVehicles   int     `json:"retired_vehicles"`
	UtilizationRate   float64 `json:"utilization_rate"`
	PendingCargo      int     `json:"pending_cargo"`
	ActiveTrips       int     `json:"active_trips"`
	TotalDrivers      int     `json:"total_drivers"`
	DriversOnDuty     int     `json:"drivers_on_duty"`
	DriversOnTrip     int     `json:"drivers_on_trip"`
	DriversSuspended  int     `json:"drivers_suspended"`
}

// KPIs counts trips only for the vehicles in the ledger, so a ledger narrowed to one region or
// vehicle type yields that slice of the fleet.
func KPIs(l Ledger) FleetKPIs {
	kpis := FleetKPIs{
		TotalVehicles:   len(l.Vehicles),
		UtilizationRate: UtilizationRate(l.Vehicles),
		TotalDrivers:    len(l.Drivers),
	}

	fleet := make(map[uuid.UUID]struct{}, len(l.Vehicles))
	for _, v := range l.Vehicles {
		fleet[v.ID] = struct{}{}
		switch v.Status {
		case model.VehicleStatusOnTrip:
			kpis.ActiveFleet++
		case model.VehicleStatusAvailable:
			kpis.AvailableVehicles++
		case model.VehicleStatusInShop:
			kpis.MaintenanceAlerts++
		case model.VehicleStatusRetired:
			kpis.RetiredVehicles++
		}
	}

	for _, trip := range l.Trips {
		if _, ok := fleet[trip.VehicleID]; !ok {
			continue
		}
		switch trip.Status {
		case model.TripStatusDraft:
			kpis.PendingCargo++
		case model.TripStatusDispatched:
			kpis.ActiveTrips++
		}
	}

	for _, d := range l.Drivers {
		switch d.Status {
		case model.DriverStatusOnDuty:
			kpis.DriversOnDuty++
		case model.DriverStatusOnTrip:
			kpis.DriversOnTrip++
		case model.DriverStatusSuspended:
			kpis.DriversSuspended++
		}
	}

	return kpis
}

type VehicleFinancials struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	LicensePlate    string    `json:"license_plate"`
	Name            string    `json:"name"`
	AcquisitionCost float64   `json:"acquisition_cost"`
	FuelCost        float64   `json:"fuel_cost"`
	MaintenanceCost float64   `json:"maintenance_cost"`
	OtherExpenses   float64   `json:"other_expenses"`
	TotalCost       float64   `json:"total_cost"`
	Revenue         float64   `json:"revenue"`
	Distance        float64   `json:"distance"`
	Liters          float64   `json:"liters"`
	FuelEfficiency  float64   `json:"fuel_efficiency"`
	ROI             float64   `json:"roi"`
}

// VehicleBreakdown returns per-vehicle costs ordered by total cost, most expensive first.
// Revenue and distance count completed trips only.
func VehicleBreakdown(l Ledger) []VehicleFinancials {
	rows := make(map[uuid.UUID]*VehicleFinancials, len(l.Vehicles))
	out := make([]VehicleFinancials, 0, len(l.Vehicles))
	for _, v := range l.Vehicles {
		rows[v.ID] = &VehicleFinancials{
			VehicleID:       v.ID,
			LicensePlate:    v.LicensePlate,
			Name:            v.Name,
			AcquisitionCost: v.AcquisitionCost,
		}
	}

	for _, log := range l.FuelLogs {
		if row, ok := rows[log.VehicleID]; ok {
			row.FuelCost += log.Cost
			row.Liters += log.Liters
		}
	}
	for _, log := range l.Maintenance {
		if row, ok := rows[log.VehicleID]; ok {
			row.MaintenanceCost += log.Cost
		}
	}
	for _, expense := range l.Expenses {
		if row, ok := rows[expense.VehicleID]; ok {
			row.OtherExpenses += expense.Amount
		}
	}
	for _, trip := range l.Trips {
		if trip.Status != model.TripStatusCompleted {
			continue
		}
		if row, ok := rows[trip.VehicleID]; ok {
			row.Revenue += trip.Revenue
			row.Distance += trip.Distance
		}
	}

	for _, v := range l.Vehicles {
		row := rows[v.ID]
		row.TotalCost = row.FuelCost + row.MaintenanceCost + row.OtherExpenses
		row.FuelEfficiency = ratio(row.Distance, row.Liters)
		row.ROI = VehicleROI(row.Revenue, row.FuelCost, row.MaintenanceCost, row.AcquisitionCost)
		out = append(out, *row)
	}

	slices.SortStableFunc(out, func(a, b VehicleFinancials) int {
		return cmp.Compare(b.TotalCost, a.TotalCost)
	})
	return out
}

type FinancialSummary struct {
	TotalFuelCost        float64 `json:"total_fuel_cost"`
	TotalMaintenanceCost float64 `json:"total_maintenance_cost"`
	TotalExpenses        float64 `json:"total_expenses"`
	TotalOperationalCost float64 `json:"total_operational_cost"`
	TotalRevenue         float64 `json:"total_revenue"`
	NetProfit            float64 `json:"net_profit"`
	TotalDistance        float64 `json:"total_distance"`
	TotalLiters          float64 `json:"total_liters"`
	FuelEfficiency       float64 `json:"fuel_efficiency"`
	FleetROI             float64 `json:"fleet_roi"`
	CompletedTrips       int     `json:"completed_trips"`
}

// Summarize totals the ledger. FleetROI follows the per-vehicle formula over the whole fleet;
// NetProfit additionally subtracts other expenses.
func Summarize(l Ledger) FinancialSummary {
	var summary FinancialSummary
	var acquisition float64

	for _, v := range l.Vehicles {
		acquisition += v.AcquisitionCost
	}
	for _, log := range l.FuelLogs {
		summary.TotalFuelCost += log.Cost
		summary.TotalLiters += log.Liters
	}
	for _, log := range l.Maintenance {
		summary.TotalMaintenanceCost += log.Cost
	}
	for _, expense := range l.Expenses {
		summary.TotalExpenses += expense.Amount
	}
	for _, trip := range l.Trips {
		if trip.Status != model.TripStatusCompleted {
			continue
		}
		summary.CompletedTrips++
		summary.TotalRevenue += trip.Revenue
		summary.TotalDistance += trip.Distance
	}

	summary.TotalOperationalCost = summary.TotalFuelCost + summary.TotalMaintenanceCost + summary.TotalExpenses
	summary.NetProfit = summary.TotalRevenue - summary.TotalOperationalCost
	summary.FuelEfficiency = ratio(summary.TotalDistance, summary.TotalLiters)
	summary.FleetROI = VehicleROI(summary.TotalRevenue, summary.TotalFuelCost, summary.TotalMaintenanceCost, acquisition)
	return summary
}

type DriverPerformance struct {
	DriverID       uuid.UUID          `json:"driver_id"`
	FullName       string             `json:"full_name"`
	Status         model.DriverStatus `json:"status"`
	SafetyScore    float64            `json:"safety_score"`
	CompletionRate float64            `json:"completion_rate"`
	CompletedTrips int                `json:"completed_trips"`
	CancelledTrips int                `json:"cancelled_trips"`
	TotalTrips     int                `json:"total_trips"`
	Complaints     int                `json:"complaints"`
	LicenseExpired bool               `json:"license_expired"`
}

// DriverStats ranks drivers by safety score, best first.
func DriverStats(drivers []model.Driver, now time.Time) []DriverPerformance {
	out := make([]DriverPerformance, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, DriverPerformance{
			DriverID:       d.ID,
			FullName:       d.FullName,
			Status:         d.Status,
			SafetyScore:    d.SafetyScore,
			CompletionRate: CompletionRate(d),
			CompletedTrips: d.CompletedTrips,
			CancelledTrips: d.CancelledTrips,
			TotalTrips:     d.TotalTrips,
			Complaints:     d.Complaints,
			LicenseExpired: d.LicenseExpiredOn(now),
		})
	}
	slices.SortStableFunc(out, func(a, b DriverPerformance) int {
		return cmp.Compare(b.SafetyScore, a.SafetyScore)
	})
	return out
}
