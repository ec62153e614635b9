package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

func (h *Handler) dashboard(c *gin.Context) {
	kpis, err := h.metrics.Dashboard(c.Request.Context(), service.DashboardFilter{
		VehicleType: model.VehicleType(strings.ToUpper(strings.TrimSpace(c.Query("vehicle_type")))),
		Region:      strings.TrimSpace(c.Query("region")),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(kpis))
}

func (h *Handler) financialReport(c *gin.Context) {
	from, err := queryDate(c, "date_from")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	report, err := h.metrics.Financial(c.Request.Context(), service.FinancialOptions{DateFrom: from, DateTo: to})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) utilization(c *gin.Context) {
	report, err := h.metrics.Utilization(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) idleVehicles(c *gin.Context) {
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = v
	}
	vehicles, err := h.metrics.IdleVehicles(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": vehicles}))
}

func (h *Handler) vehicleROI(c *gin.Context) {
	limit, _ := parsePage(c)
	rows, err := h.metrics.VehicleCosts(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": rows}))
}

func (h *Handler) driverPerformance(c *gin.Context) {
	rows, err := h.metrics.DriverPerformance(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": rows}))
}

func (h *Handler) listAuditLogs(c *gin.Context) {
	entityID, err := queryUUID(c, "entity_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	actorID, err := queryUUID(c, "actor_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, offset := parsePage(c)

	entries, err := h.audit.List(c.Request.Context(), service.AuditListOptions{
		EntityType: model.EntityType(strings.ToLower(strings.TrimSpace(c.Query("entity_type")))),
		EntityID:   entityID,
		ActorID:    actorID,
		Actions:    upperCSV[model.AuditAction](c.Query("action")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}
