package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
)

var (
	allRoles = []model.UserRole{
		model.UserRoleFleetManager,
		model.UserRoleDispatcher,
		model.UserRoleSafetyOfficer,
		model.UserRoleFinancialAnalyst,
	}
	reportingRoles = []model.UserRole{model.UserRoleFleetManager, model.UserRoleFinancialAnalyst}
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string, log zerolog.Logger) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", handler.healthz)

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)

	anyone := middleware.RequireRoles(allRoles...)
	reporting := middleware.RequireRoles(reportingRoles...)
	fleetManager := middleware.RequireRoles(model.UserRoleFleetManager)
	dispatcher := middleware.RequireRoles(model.UserRoleDispatcher)
	safety := middleware.RequireRoles(model.UserRoleSafetyOfficer)
	analyst := middleware.RequireRoles(model.UserRoleFinancialAnalyst)
	tripReaders := middleware.RequireRoles(
		model.UserRoleFleetManager,
		model.UserRoleDispatcher,
		model.UserRoleFinancialAnalyst,
	)

	trips := protected.Group("/trips")
	{
		trips.GET("", tripReaders, handler.listTrips)
		trips.GET("/:id", tripReaders, handler.getTrip)
		trips.POST("", dispatcher, handler.createTrip)
		trips.PATCH("/:id", dispatcher, handler.updateTrip)
		trips.POST("/:id/dispatch", dispatcher, handler.dispatchTrip)
		trips.POST("/:id/complete", dispatcher, handler.completeTrip)
		trips.POST("/:id/cancel", dispatcher, handler.cancelTrip)
	}

	vehicles := protected.Group("/vehicles")
	{
		vehicles.GET("", anyone, handler.listVehicles)
		vehicles.GET("/:id", anyone, handler.getVehicle)
		vehicles.POST("", fleetManager, handler.createVehicle)
		vehicles.PATCH("/:id", fleetManager, handler.updateVehicle)
		vehicles.POST("/:id/retire", fleetManager, handler.retireVehicle)
		vehicles.DELETE("/:id", fleetManager, handler.deleteVehicle)
	}

	drivers := protected.Group("/drivers")
	{
		drivers.GET("", anyone, handler.listDrivers)
		drivers.GET("/:id", anyone, handler.getDriver)
		drivers.POST("", safety, handler.createDriver)
		drivers.PATCH("/:id", safety, handler.updateDriver)
		drivers.DELETE("/:id", safety, handler.deleteDriver)
		drivers.POST("/:id/duty", safety, handler.setDriverDuty)
		drivers.POST("/:id/suspend", safety, handler.suspendDriver)
		drivers.POST("/:id/unsuspend", safety, handler.unsuspendDriver)
		drivers.POST("/:id/complaints", safety, handler.recordComplaint)
	}

	maintenance := protected.Group("/maintenance")
	{
		maintenance.GET("", anyone, handler.listMaintenance)
		maintenance.GET("/:id", anyone, handler.getMaintenance)
		maintenance.POST("", fleetManager, handler.openMaintenance)
		maintenance.PUT("/:id", fleetManager, handler.updateMaintenance)
		maintenance.POST("/:id/resolve", fleetManager, handler.resolveMaintenance)
		maintenance.DELETE("/:id", fleetManager, handler.deleteMaintenance)
	}

	protected.GET("/fuel-logs", reporting, handler.listFuelLogs)
	protected.POST("/fuel-logs", analyst, handler.addFuelLog)
	protected.GET("/expenses", reporting, handler.listExpenses)
	protected.POST("/expenses", analyst, handler.addExpense)

	analytics := protected.Group("/analytics", reporting)
	{
		analytics.GET("/dashboard", handler.dashboard)
		analytics.GET("/financial", handler.financialReport)
		analytics.GET("/utilization", handler.utilization)
		analytics.GET("/idle-vehicles", handler.idleVehicles)
		analytics.GET("/vehicles/roi", handler.vehicleROI)
		analytics.GET("/drivers/performance", handler.driverPerformance)
	}

	protected.GET("/audit-logs", reporting, handler.listAuditLogs)

	return router
}
