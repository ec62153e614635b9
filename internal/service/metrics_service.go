package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/metrics"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

const defaultIdleDays = 30

// MetricsService evaluates reports against one consistent snapshot of the store.
type MetricsService struct {
	uow      *UnitOfWork
	cache    KPICache
	idleDays int
	log      zerolog.Logger
}

func NewMetricsService(uow *UnitOfWork, cache KPICache, idleDays int, log zerolog.Logger) *MetricsService {
	if cache == nil {
		cache = noCache{}
	}
	if idleDays <= 0 {
		idleDays = defaultIdleDays
	}
	return &MetricsService{uow: uow, cache: cache, idleDays: idleDays, log: log}
}

type DashboardFilter struct {
	VehicleType model.VehicleType
	Region      string
}

type FinancialOptions struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

type UtilizationReport struct {
	UtilizationRate float64 `json:"utilization_rate"`
	ActiveFleet     int     `json:"active_fleet"`
	TotalVehicles   int     `json:"total_vehicles"`
	RetiredVehicles int     `json:"retired_vehicles"`
}

type FinancialReport struct {
	Summary  metrics.FinancialSummary    `json:"summary"`
	Vehicles []metrics.VehicleFinancials `json:"vehicles"`
}

// Dashboard serves fleet KPIs from the cache when it can. A cache failure only costs a recomputation.
func (s *MetricsService) Dashboard(ctx context.Context, filter DashboardFilter) (*metrics.FleetKPIs, error) {
	key := fmt.Sprintf("dashboard:%s:%s", filter.VehicleType, filter.Region)

	generation, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("kpi cache generation unavailable")
	}

	if cacheable {
		var cached metrics.FleetKPIs
		hit, err := s.cache.Get(ctx, generation, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("kpi cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	vehicleFilter := repository.VehicleFilter{Region: filter.Region}
	if filter.VehicleType != "" {
		vehicleFilter.Types = []model.VehicleType{filter.VehicleType}
	}
	ledger, err := s.ledger(ctx, vehicleFilter, FinancialOptions{})
	if err != nil {
		return nil, err
	}

	kpis := metrics.KPIs(ledger)
	if cacheable {
		if err := s.cache.Set(ctx, generation, key, kpis); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("kpi cache write failed")
		}
	}
	return &kpis, nil
}

func (s *MetricsService) Financial(ctx context.Context, opts FinancialOptions) (*FinancialReport, error) {
	ledger, err := s.ledger(ctx, repository.VehicleFilter{}, opts)
	if err != nil {
		return nil, err
	}
	return &FinancialReport{
		Summary:  metrics.Summarize(ledger),
		Vehicles: metrics.VehicleBreakdown(ledger),
	}, nil
}

func (s *MetricsService) Utilization(ctx context.Context) (*UtilizationReport, error) {
	var vehicles []model.Vehicle
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		vehicles, err = tx.Vehicles().List(repository.VehicleFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}

	kpis := metrics.KPIs(metrics.Ledger{Vehicles: vehicles})
	return &UtilizationReport{
		UtilizationRate: kpis.UtilizationRate,
		ActiveFleet:     kpis.ActiveFleet,
		TotalVehicles:   kpis.TotalVehicles,
		RetiredVehicles: kpis.RetiredVehicles,
	}, nil
}

// IdleVehicles uses the configured window when days is not positive.
func (s *MetricsService) IdleVehicles(ctx context.Context, days int) ([]model.Vehicle, error) {
	if days <= 0 {
		days = s.idleDays
	}

	var (
		vehicles []model.Vehicle
		trips    []model.Trip
	)
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		if vehicles, err = tx.Vehicles().List(repository.VehicleFilter{
			Statuses: []model.VehicleStatus{model.VehicleStatusAvailable},
		}); err != nil {
			return err
		}
		trips, err = tx.Trips().List(repository.TripFilter{
			Statuses: []model.TripStatus{model.TripStatusDispatched, model.TripStatusCompleted},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return metrics.IdleVehicles(vehicles, trips, s.uow.Now(), days), nil
}

// VehicleCosts returns the limit most expensive vehicles; limit <= 0 returns all of them.
func (s *MetricsService) VehicleCosts(ctx context.Context, limit int) ([]metrics.VehicleFinancials, error) {
	ledger, err := s.ledger(ctx, repository.VehicleFilter{}, FinancialOptions{})
	if err != nil {
		return nil, err
	}
	rows := metrics.VehicleBreakdown(ledger)
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MetricsService) DriverPerformance(ctx context.Context) ([]metrics.DriverPerformance, error) {
	var drivers []model.Driver
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		drivers, err = tx.Drivers().List(repository.DriverFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return metrics.DriverStats(drivers, s.uow.Now()), nil
}

func (s *MetricsService) ledger(ctx context.Context, vehicleFilter repository.VehicleFilter, period FinancialOptions) (metrics.Ledger, error) {
	var l metrics.Ledger
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		if l.Vehicles, err = tx.Vehicles().List(vehicleFilter); err != nil {
			return err
		}
		if l.Drivers, err = tx.Drivers().List(repository.DriverFilter{}); err != nil {
			return err
		}
		if l.Trips, err = tx.Trips().List(repository.TripFilter{}); err != nil {
			return err
		}
		if l.Maintenance, err = tx.Maintenance().List(repository.MaintenanceFilter{}); err != nil {
			return err
		}
		finance := repository.FinanceFilter{DateFrom: period.DateFrom, DateTo: period.DateTo}
		if l.FuelLogs, err = tx.FuelLogs().List(finance); err != nil {
			return err
		}
		l.Expenses, err = tx.Expenses().List(finance)
		return err
	})
	if err != nil {
		return metrics.Ledger{}, err
	}

	if period.DateFrom != nil || period.DateTo != nil {
		l.Trips = filterTrips(l.Trips, period)
		l.Maintenance = filterMaintenance(l.Maintenance, period)
	}
	return l, nil
}

func inPeriod(ts time.Time, period FinancialOptions) bool {
	if period.DateFrom != nil && ts.Before(*period.DateFrom) {
		return false
	}
	if period.DateTo != nil && ts.After(*period.DateTo) {
		return false
	}
	return true
}

// filterTrips keeps completed trips whose completion falls in period; other trips carry no revenue.
func filterTrips(trips []model.Trip, period FinancialOptions) []model.Trip {
	out := trips[:0:0]
	for _, trip := range trips {
		if trip.CompletedAt != nil && inPeriod(*trip.CompletedAt, period) {
			out = append(out, trip)
		}
	}
	return out
}

func filterMaintenance(logs []model.MaintenanceLog, period FinancialOptions) []model.MaintenanceLog {
	out := logs[:0:0]
	for _, log := range logs {
		if inPeriod(time.Time(log.Date), period) {
			out = append(out, log)
		}
	}
	return out
}
