package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type openMaintenanceRequest struct {
	VehicleID   string  `json:"vehicle_id" binding:"required"`
	Issue       string  `json:"issue" binding:"required"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Cost        float64 `json:"cost"`
}

type updateMaintenanceRequest struct {
	Issue       *string  `json:"issue"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Cost        *float64 `json:"cost"`
	Status      *string  `json:"status"`
}

func (h *Handler) listMaintenance(c *gin.Context) {
	vehicleID, err := queryUUID(c, "vehicle_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, offset := parsePage(c)

	logs, err := h.maintenance.List(c.Request.Context(), service.MaintenanceListOptions{
		VehicleID: vehicleID,
		Statuses:  upperCSV[model.MaintenanceStatus](c.Query("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": logs}))
}

func (h *Handler) getMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c, "maintenance")
	if !ok {
		return
	}
	entry, err := h.maintenance.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(entry))
}

func (h *Handler) openMaintenance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req openMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicleID, err := parseUUID("vehicle_id", req.VehicleID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.maintenance.Open(c.Request.Context(), principal, service.OpenMaintenanceInput{
		VehicleID:   vehicleID,
		Issue:       req.Issue,
		Description: req.Description,
		Date:        date,
		Cost:        req.Cost,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) updateMaintenance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "maintenance")
	if !ok {
		return
	}

	var req updateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	input := service.UpdateMaintenanceInput{
		Issue:       req.Issue,
		Description: req.Description,
		Date:        date,
		Cost:        req.Cost,
	}
	if req.Status != nil {
		status := model.MaintenanceStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}

	result, err := h.maintenance.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) resolveMaintenance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "maintenance")
	if !ok {
		return
	}
	result, err := h.maintenance.Resolve(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) deleteMaintenance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "maintenance")
	if !ok {
		return
	}
	vehicle, err := h.maintenance.Delete(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"vehicle": vehicle}))
}
