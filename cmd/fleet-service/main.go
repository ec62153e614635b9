package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/auth"
	"fleet-service/internal/cache"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	"fleet-service/internal/events"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	var kpiCache service.KPICache = cache.NopCache{}
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
		} else {
			defer redisCache.Close()
			kpiCache = redisCache
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.MQTT.BrokerURL != "" {
		mqttPublisher, err := events.NewMQTTPublisher(events.MQTTConfig{
			BrokerURL:   cfg.MQTT.BrokerURL,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("mqtt broker unavailable, lifecycle events disabled")
		} else {
			defer mqttPublisher.Close()
			publisher = mqttPublisher
		}
	}

	store := repository.NewPostgresStore(database, cfg.DB.TxTimeout)
	uow := service.NewUnitOfWork(store, log, service.UnitOfWorkOptions{
		MaxRetries: cfg.Lifecycle.MaxRetries,
		Cache:      kpiCache,
		Publisher:  publisher,
	})

	handler := httphandler.NewHandler(httphandler.Services{
		Trips:       service.NewTripService(uow),
		Vehicles:    service.NewVehicleService(uow),
		Drivers:     service.NewDriverService(uow),
		Maintenance: service.NewMaintenanceService(uow),
		Finance:     service.NewFinanceService(uow),
		Metrics:     service.NewMetricsService(uow, kpiCache, cfg.Lifecycle.IdleDays, log),
		Audit:       service.NewAuditService(uow),
	}, func(ctx context.Context) error {
		return db.HealthCheck(ctx, database)
	}, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting fleet service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	closeDatabase(database, log)
}

func closeDatabase(database *gorm.DB, log zerolog.Logger) {
	sqlDB, err := database.DB()
	if err != nil {
		log.Error().Err(err).Msg("database handle unavailable")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
